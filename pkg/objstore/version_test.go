package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusfs/coreobj/pkg/blockhash"
)

func TestVersion_AddBlockRequiresStrictlyIncreasingOffset(t *testing.T) {
	v := NewVersion(NewUUID(), "b", "k")

	require.NoError(t, v.AddBlock(VersionBlock{Offset: 0, Hash: blockhash.Sum([]byte("a"))}))
	require.NoError(t, v.AddBlock(VersionBlock{Offset: 10, Hash: blockhash.Sum([]byte("b"))}))

	err := v.AddBlock(VersionBlock{Offset: 10, Hash: blockhash.Sum([]byte("c"))})
	assert.Error(t, err, "a repeated offset is a programmer error")

	err = v.AddBlock(VersionBlock{Offset: 5, Hash: blockhash.Sum([]byte("d"))})
	assert.Error(t, err, "a disordered offset is a programmer error")
}

func TestMergeVersion_UnionsBlocksByOffset(t *testing.T) {
	existing := NewVersion(NewUUID(), "b", "k")
	require.NoError(t, existing.AddBlock(VersionBlock{Offset: 0, Hash: blockhash.Sum([]byte("a"))}))

	incoming := NewVersion(existing.UUID, "b", "k")
	require.NoError(t, incoming.AddBlock(VersionBlock{Offset: 10, Hash: blockhash.Sum([]byte("b"))}))

	mergeVersion(&existing, incoming)

	require.Len(t, existing.Blocks, 2)
	assert.Equal(t, uint64(0), existing.Blocks[0].Offset)
	assert.Equal(t, uint64(10), existing.Blocks[1].Offset)
}

func TestMergeVersion_RepeatedPutBlockMetaIsIdempotent(t *testing.T) {
	hash := blockhash.Sum([]byte("a"))
	existing := NewVersion(NewUUID(), "b", "k")
	require.NoError(t, existing.AddBlock(VersionBlock{Offset: 0, Hash: hash}))

	incoming := NewVersion(existing.UUID, "b", "k")
	require.NoError(t, incoming.AddBlock(VersionBlock{Offset: 0, Hash: hash}))

	mergeVersion(&existing, incoming)
	assert.Len(t, existing.Blocks, 1)
}

func TestMergeVersion_TombstoneIsMonotone(t *testing.T) {
	existing := NewVersion(NewUUID(), "b", "k")
	incoming := existing
	incoming.Tomb.Delete()

	mergeVersion(&existing, incoming)
	assert.True(t, existing.Deleted())
}
