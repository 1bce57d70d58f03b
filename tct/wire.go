package tct

import (
	"encoding/binary"
	"fmt"
)

// Wire layout of an authentication path: the packed 64 bit position,
// big endian, followed by one 3x32 byte sibling record per level.
// This is the StateCommitmentProof / MerklePathChunk shape consumed by
// external proof systems and must round trip losslessly.
const (
	pathStepBytes   = 3 * DigestBytes
	pathHeaderBytes = 8
)

// MarshalBinary encodes the path in its wire form.
func (p *AuthPath) MarshalBinary() ([]byte, error) {
	out := make([]byte, pathHeaderBytes+len(p.Steps)*pathStepBytes)
	binary.BigEndian.PutUint64(out[:pathHeaderBytes], p.Position.Index())
	off := pathHeaderBytes
	for i := range p.Steps {
		for k := range p.Steps[i].Siblings {
			copy(out[off:off+DigestBytes], p.Steps[i].Siblings[k][:])
			off += DigestBytes
		}
	}
	return out, nil
}

// UnmarshalBinary decodes a wire form path. The level count is implied
// by the data length; anything that is not a whole number of sibling
// records after the position header is rejected.
func (p *AuthPath) UnmarshalBinary(data []byte) error {
	if len(data) < pathHeaderBytes || (len(data)-pathHeaderBytes)%pathStepBytes != 0 {
		return fmt.Errorf("%w: %d bytes", ErrPathBytesInvalid, len(data))
	}
	pos, err := PositionFromIndex(binary.BigEndian.Uint64(data[:pathHeaderBytes]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPathBytesInvalid, err)
	}
	depth := (len(data) - pathHeaderBytes) / pathStepBytes
	steps := make([]PathStep, depth)
	off := pathHeaderBytes
	for i := range steps {
		for k := range steps[i].Siblings {
			copy(steps[i].Siblings[k][:], data[off:off+DigestBytes])
			off += DigestBytes
		}
	}
	p.Position = pos
	p.Steps = steps
	return nil
}
