package checkpoint

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/veiledger/go-veiledger-tiertree/tct"
)

var (
	ErrPathIsNotDir     = errors.New("expected the path to be an existing directory")
	ErrWriteIncomplete  = errors.New("a file write succeeded, but fewer bytes were written than supplied")
	ErrSealVerifyFailed = errors.New("the checkpoint seal signature verification failed")
	ErrNoSnapshot       = errors.New("no snapshot has been written to the store")
)

// PositionSaturated marks a checkpoint taken when no insertion was
// possible: the open block was full, the epoch was out of block slots,
// or the eternity tier was saturated.
const PositionSaturated = ^uint64(0)

// Checkpoint is the signable head state of a tree: everything a
// verifier needs to pin the log at one point in its history. The root
// is detached from the sealed form so verifiers are forced to obtain
// it from the log itself.
type Checkpoint struct {
	// LogID identifies the tree instance the checkpoint belongs to.
	LogID []byte `cbor:"1,keyasint"`
	// Position is the packed position the next insert would be
	// assigned, or PositionSaturated.
	Position uint64 `cbor:"2,keyasint"`
	// Root is the eternity root at the time of the checkpoint.
	Root []byte `cbor:"3,keyasint"`

	BlockHeight    uint8 `cbor:"4,keyasint"`
	EpochHeight    uint8 `cbor:"5,keyasint"`
	EternityHeight uint8 `cbor:"6,keyasint"`

	// Timestamp is unix milliseconds read when the checkpoint was
	// taken, allowing the same root to be re-sealed.
	Timestamp int64 `cbor:"7,keyasint"`
}

// NewCheckpoint captures the tree's current head state under the given
// log identity.
func NewCheckpoint(logID uuid.UUID, tree *tct.Tree) Checkpoint {
	spec := tree.Spec()
	root := tree.Root()
	position := PositionSaturated
	if frontier, ok := tree.Frontier(); ok {
		position = frontier.Index()
	}
	return Checkpoint{
		LogID:          logID[:],
		Position:       position,
		Root:           root.Bytes(),
		BlockHeight:    spec.BlockHeight,
		EpochHeight:    spec.EpochHeight,
		EternityHeight: spec.EternityHeight,
		Timestamp:      time.Now().UnixMilli(),
	}
}
