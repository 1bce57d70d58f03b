// Package tcttesting provides shared helpers for tests that need
// populated commitment trees: deterministic commitment generation and
// bulk insert/finalize drivers.
package tcttesting

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/require"

	"github.com/veiledger/go-veiledger-tiertree/hashing"
	"github.com/veiledger/go-veiledger-tiertree/tct"
)

type TestContext struct {
	Log    logger.Logger
	T      *testing.T
	Engine *hashing.SHA256

	seed uint64
	next uint64
}

type TestConfig struct {
	// Seed fixes the generated commitment stream so data is the same
	// from run to run.
	Seed            uint64
	TestLabelPrefix string
}

func NewTestContext(t *testing.T, cfg TestConfig) *TestContext {
	logger.New("NOOP")
	return &TestContext{
		Log:    logger.Sugar.WithServiceName(cfg.TestLabelPrefix),
		T:      t,
		Engine: hashing.NewSHA256(),
		seed:   cfg.Seed,
	}
}

// GenerateCommitments returns the next n commitments from the seeded
// stream. The digests are arbitrary leaf values, not Engine outputs,
// matching how commitments arrive from an external commitment scheme.
func (c *TestContext) GenerateCommitments(n int) []tct.Digest {
	out := make([]tct.Digest, n)
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], c.seed)
	for i := range out {
		binary.BigEndian.PutUint64(buf[8:], c.next)
		c.next++
		out[i] = sha256.Sum256(buf[:])
	}
	return out
}

// MustInsert inserts every commitment, failing the test on any error,
// and returns the assigned positions.
func (c *TestContext) MustInsert(tree *tct.Tree, commitments []tct.Digest) []tct.Position {
	positions := make([]tct.Position, 0, len(commitments))
	for _, commitment := range commitments {
		pos, err := tree.Insert(commitment)
		require.NoError(c.T, err)
		positions = append(positions, pos)
	}
	return positions
}

// PopulateBlocks inserts counts[i] fresh commitments into block i,
// finalizing each block except the last, which is left open. It
// returns the positions in insertion order.
func (c *TestContext) PopulateBlocks(tree *tct.Tree, counts ...int) []tct.Position {
	var positions []tct.Position
	for i, n := range counts {
		positions = append(positions, c.MustInsert(tree, c.GenerateCommitments(n))...)
		if i < len(counts)-1 {
			_, err := tree.FinalizeBlock()
			require.NoError(c.T, err)
		}
	}
	return positions
}
