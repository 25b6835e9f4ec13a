package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nimbusfs/coreobj/pkg/blockhash"
)

func TestBlockRef_NewIsLive(t *testing.T) {
	ref := NewBlockRef(blockhash.Sum([]byte("x")), NewUUID())
	assert.False(t, ref.Deleted())
}

func TestMergeBlockRef_TombstoneIsMonotone(t *testing.T) {
	existing := NewBlockRef(blockhash.Sum([]byte("x")), NewUUID())
	incoming := existing
	incoming.Tomb.Delete()

	mergeBlockRef(&existing, incoming)
	assert.True(t, existing.Deleted())

	mergeBlockRef(&existing, NewBlockRef(existing.Block, existing.Version))
	assert.True(t, existing.Deleted(), "merging a non-deleted observation must not resurrect")
}
