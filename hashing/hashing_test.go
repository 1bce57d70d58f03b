package hashing

import (
	"crypto/sha256"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiledger/go-veiledger-tiertree/tct"
)

func testChildren(seed byte) [4]tct.Digest {
	var out [4]tct.Digest
	for i := range out {
		out[i] = sha256.Sum256([]byte{seed, byte(i)})
	}
	return out
}

func TestSHA256Deterministic(t *testing.T) {
	a, b := NewSHA256(), NewSHA256()
	children := testChildren(1)

	require.Equal(t, a.Empty(), b.Empty())
	require.Equal(t, a.Combine(7, children), b.Combine(7, children))
}

func TestSHA256LevelSeparation(t *testing.T) {
	eng := NewSHA256()
	children := testChildren(2)

	seen := map[tct.Digest]uint8{}
	for level := uint8(1); level <= 24; level++ {
		d := eng.Combine(level, children)
		prev, dup := seen[d]
		require.False(t, dup, "levels %d and %d collide", prev, level)
		seen[d] = level
	}
}

func TestSHA256EmptyDisjointFromNodes(t *testing.T) {
	eng := NewSHA256()

	// The empty constant is prefixed 0x00 and nodes 0x01, so even a
	// pathological child set cannot reproduce it.
	var zeros [4]tct.Digest
	assert.NotEqual(t, eng.Empty(), eng.Combine(1, zeros))

	var empties [4]tct.Digest
	for i := range empties {
		empties[i] = eng.Empty()
	}
	assert.NotEqual(t, eng.Empty(), eng.Combine(1, empties))
}

func TestSHA256ChildOrderMatters(t *testing.T) {
	eng := NewSHA256()
	children := testChildren(3)
	swapped := children
	swapped[0], swapped[3] = swapped[3], swapped[0]
	assert.NotEqual(t, eng.Combine(5, children), eng.Combine(5, swapped))
}

func TestMiMCDeterministic(t *testing.T) {
	a, b := NewMiMC(), NewMiMC()
	children := testChildren(4)

	require.Equal(t, a.Empty(), b.Empty())
	require.Equal(t, a.Combine(7, children), b.Combine(7, children))
	assert.NotEqual(t, a.Combine(7, children), a.Combine(8, children))
}

func TestMiMCOutputsAreFieldElements(t *testing.T) {
	eng := NewMiMC()

	inField := func(d tct.Digest) bool {
		var e fr.Element
		e.SetBytes(d[:])
		b := e.Bytes()
		return b == [32]byte(d)
	}

	require.True(t, inField(eng.Empty()))
	d := eng.Combine(1, testChildren(5))
	require.True(t, inField(d))
	for level := uint8(2); level <= 24; level++ {
		d = eng.Combine(level, [4]tct.Digest{d, eng.Empty(), eng.Empty(), eng.Empty()})
		require.True(t, inField(d), "level %d", level)
	}
}

func TestMiMCEmptyDisjointFromNodes(t *testing.T) {
	eng := NewMiMC()
	var empties [4]tct.Digest
	for i := range empties {
		empties[i] = eng.Empty()
	}
	assert.NotEqual(t, eng.Empty(), eng.Combine(1, empties))
}

// TestEnginesDriveTree runs a short tree lifecycle under both engines,
// making sure the domain separation and empty handling hold up under
// real use, not just in isolation.
func TestEnginesDriveTree(t *testing.T) {
	engines := map[string]tct.Engine{
		"sha256": NewSHA256(),
		"mimc":   NewMiMC(),
	}
	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			tree, err := tct.New(eng)
			require.NoError(t, err)

			var positions []tct.Position
			for i := byte(0); i < 3; i++ {
				pos, err := tree.Insert(sha256.Sum256([]byte{0x40, i}))
				require.NoError(t, err)
				positions = append(positions, pos)
			}
			_, err = tree.FinalizeBlock()
			require.NoError(t, err)

			root := tree.Root()
			require.NotEqual(t, eng.Empty(), root)
			for _, pos := range positions {
				path, err := tree.Witness(pos)
				require.NoError(t, err)
				leaf, err := tree.LeafDigest(pos)
				require.NoError(t, err)
				ok, err := tct.VerifyInclusion(eng, tree.Spec(), path, root, leaf)
				require.NoError(t, err)
				require.True(t, ok)
			}
		})
	}
}
