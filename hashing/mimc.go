package hashing

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"

	"github.com/veiledger/go-veiledger-tiertree/tct"
)

// MiMC combines children with the MiMC permutation over the BN254
// scalar field, for deployments whose proof system verifies
// authentication paths in-circuit. Each 32 byte digest is reduced into
// a field element before absorption, and the level is absorbed first
// as its own element:
//
//	MiMC( prefixNode || level, c0, c1, c2, c3 )
//
// Outputs are the canonical big endian field encoding, so every
// parent digest is itself a valid field element.
type MiMC struct {
	empty tct.Digest
}

// NewMiMC returns a MiMC backed engine. The empty constant is the
// field reduction of the tagged empty preimage, a fixed public value.
func NewMiMC() *MiMC {
	var e fr.Element
	e.SetBytes(append([]byte{prefixEmpty}, []byte(emptyTag)...))
	b := e.Bytes()
	eng := &MiMC{}
	copy(eng.empty[:], b[:])
	return eng
}

func (e *MiMC) Combine(level uint8, children [4]tct.Digest) tct.Digest {
	h := mimc.NewMiMC()

	var lv fr.Element
	lv.SetUint64(uint64(prefixNode)<<8 | uint64(level))
	block := lv.Bytes()
	_, _ = h.Write(block[:])

	for i := range children {
		var c fr.Element
		c.SetBytes(children[i][:])
		block = c.Bytes()
		_, _ = h.Write(block[:])
	}

	var d tct.Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (e *MiMC) Empty() tct.Digest {
	return e.empty
}
