package hashing

import (
	"crypto/sha256"

	"github.com/veiledger/go-veiledger-tiertree/tct"
)

// Hash input prefixes. Leaf commitments are produced externally and
// carry no prefix, so prefixed inputs can never collide with them.
const (
	prefixEmpty = 0x00
	prefixNode  = 0x01
)

// emptyTag seeds the fixed public empty slot constant.
const emptyTag = "tiertree/v1 empty slot"

// SHA256 combines children as
//
//	H( 0x01 || level || c0[32] || c1[32] || c2[32] || c3[32] )
//
// and fixes the empty slot constant as H( 0x00 || emptyTag ).
type SHA256 struct {
	empty tct.Digest
}

// NewSHA256 returns a SHA-256 backed engine.
func NewSHA256() *SHA256 {
	h := sha256.New()
	_, _ = h.Write([]byte{prefixEmpty})
	_, _ = h.Write([]byte(emptyTag))
	e := &SHA256{}
	copy(e.empty[:], h.Sum(nil))
	return e
}

func (e *SHA256) Combine(level uint8, children [4]tct.Digest) tct.Digest {
	h := sha256.New()
	_, _ = h.Write([]byte{prefixNode, level})
	for i := range children {
		_, _ = h.Write(children[i][:])
	}
	var d tct.Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (e *SHA256) Empty() tct.Digest {
	return e.empty
}
