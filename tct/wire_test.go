package tct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthPathWireRoundTrip(t *testing.T) {
	eng := newTestEngine()
	tree, err := New(eng)
	require.NoError(t, err)

	for _, c := range testCommitments(71, 4) {
		_, err := tree.Insert(c)
		require.NoError(t, err)
	}
	_, err = tree.FinalizeBlock()
	require.NoError(t, err)
	pos, err := tree.Insert(testCommitments(72, 1)[0])
	require.NoError(t, err)

	path, err := tree.Witness(pos)
	require.NoError(t, err)

	data, err := path.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 8+int(DefaultTierSpec.Depth())*3*DigestBytes)

	var got AuthPath
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, *path, got)

	// The decoded path still proves the leaf.
	leaf, err := tree.LeafDigest(pos)
	require.NoError(t, err)
	ok, err := VerifyInclusion(eng, DefaultTierSpec, &got, tree.Root(), leaf)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAuthPathUnmarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", make([]byte, 7)},
		{"ragged step", make([]byte, 8+50)},
		{"one sibling short", make([]byte, 8+3*DigestBytes-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p AuthPath
			require.ErrorIs(t, p.UnmarshalBinary(tt.data), ErrPathBytesInvalid)
		})
	}

	// A position with the reserved top bits set is rejected even when
	// the length is well formed.
	data := make([]byte, 8+3*DigestBytes)
	data[0] = 0x80
	var p AuthPath
	require.ErrorIs(t, p.UnmarshalBinary(data), ErrPathBytesInvalid)
}

func TestAuthPathUnmarshalZeroSteps(t *testing.T) {
	// A bare header decodes, but cannot recompute a root for any real
	// tier layout.
	var p AuthPath
	require.NoError(t, p.UnmarshalBinary(make([]byte, 8)))
	require.Empty(t, p.Steps)

	eng := newTestEngine()
	_, err := p.RecomputeRoot(eng, DefaultTierSpec, Digest{})
	require.ErrorIs(t, err, ErrPathLength)
}
