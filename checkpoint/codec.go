// Package checkpoint persists tiered commitment tree state: full
// snapshots for restart, and signed head state checkpoints that freeze
// finalization boundaries for external verifiers.
package checkpoint

import (
	"github.com/fxamacker/cbor/v2"
)

// Codec is the deterministic CBOR codec used for snapshots and for
// checkpoint payloads. Determinism matters because checkpoint payloads
// are signed: the same state must always produce the same bytes.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCodec creates a codec with core deterministic encoding options.
func NewCodec() (Codec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return Codec{}, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return Codec{}, err
	}
	return Codec{enc: enc, dec: dec}, nil
}

func (c Codec) MarshalCBOR(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c Codec) UnmarshalCBOR(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}
