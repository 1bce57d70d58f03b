// Package hashing provides Engine implementations for the tiered
// commitment tree.
//
// Both engines are domain separated twice over: a prefix keeps parent
// digests disjoint from raw leaf commitments and from the empty slot
// constant, and the tree level is absorbed into every combine so a
// node at one level can never be replayed as a node at another.
package hashing
