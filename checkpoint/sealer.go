package checkpoint

import (
	"crypto/rand"
	"fmt"

	"github.com/veraison/go-cose"
)

// Sealer signs checkpoints as COSE Sign1 messages. A seal commits to a
// finalization boundary; it should only be created after checking the
// new head state is consistent with the previously sealed one.
type Sealer struct {
	issuer string
	codec  Codec
}

func NewSealer(issuer string, codec Codec) Sealer {
	return Sealer{issuer: issuer, codec: codec}
}

// headerLabelIssuer is a private protected header label carrying the
// sealing issuer identity.
const headerLabelIssuer = int64(-65537)

// Sign1 seals the checkpoint. The signature is computed over the full
// payload, then the root is detached before marshaling so that
// verifiers must re-attach a root obtained from the log.
func (s Sealer) Sign1(signer cose.Signer, keyIdentifier []byte, ckpt Checkpoint, external []byte) ([]byte, error) {
	payload, err := s.codec.MarshalCBOR(ckpt)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelKeyID: keyIdentifier,
				headerLabelIssuer:     s.issuer,
			},
		},
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, signer); err != nil {
		return nil, err
	}

	ckpt.Root = nil
	if msg.Payload, err = s.codec.MarshalCBOR(ckpt); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

// VerifySeal checks a sealed checkpoint against the trusted verifier,
// re-attaching the root the caller read from the log. It returns the
// checkpoint carried by the seal.
func VerifySeal(verifier cose.Verifier, codec Codec, sealed []byte, root []byte, external []byte) (*Checkpoint, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(sealed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealVerifyFailed, err)
	}

	var ckpt Checkpoint
	if err := codec.UnmarshalCBOR(msg.Payload, &ckpt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealVerifyFailed, err)
	}
	if ckpt.Root != nil {
		return nil, fmt.Errorf("%w: sealed payload must carry a detached root", ErrSealVerifyFailed)
	}
	ckpt.Root = root

	payload, err := codec.MarshalCBOR(ckpt)
	if err != nil {
		return nil, err
	}
	msg.Payload = payload
	if err := msg.Verify(external, verifier); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealVerifyFailed, err)
	}
	return &ckpt, nil
}
