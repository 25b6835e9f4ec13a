package objstore

import (
	"context"

	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/crdt"
	"github.com/nimbusfs/coreobj/pkg/kvstore"
)

// BlockRef indexes block hash -> referencing version, the reference
// count a GC collaborator (out of scope, spec §1) would use to decide
// when a block is safe to reclaim. Deleted is a monotone tombstone
// (I6): once true, it never resurrects.
type BlockRef struct {
	Block   blockhash.Hash `msgpack:"block"`
	Version UUID           `msgpack:"version"`
	Tomb    crdt.Tombstone `msgpack:"tomb"`
}

// NewBlockRef builds a live (non-deleted) reference.
func NewBlockRef(block blockhash.Hash, version UUID) BlockRef {
	return BlockRef{Block: block, Version: version}
}

// Deleted reports whether this reference has been tombstoned.
func (r BlockRef) Deleted() bool {
	return r.Tomb.Deleted
}

// mergeBlockRef applies the tombstone's monotone-true merge law (I6).
func mergeBlockRef(existing *BlockRef, incoming BlockRef) {
	existing.Tomb.Merge(incoming.Tomb)
}

// BlockRefTable is the (block_hash, version_uuid) -> BlockRef table.
type BlockRefTable struct {
	table *Table[blockhash.Hash, UUID, BlockRef]
}

// NewBlockRefTable builds the block-ref table over store.
func NewBlockRefTable(store *kvstore.Store) *BlockRefTable {
	schema := Schema[blockhash.Hash, UUID, BlockRef]{
		Name:         "block_refs",
		PartitionKey: func(r BlockRef) blockhash.Hash { return r.Block },
		SortKey:      func(r BlockRef) UUID { return r.Version },
		Merge:        mergeBlockRef,
	}
	return &BlockRefTable{table: NewTable(store, schema)}
}

// Get returns the merged BlockRef for (block, version), if any.
func (t *BlockRefTable) Get(ctx context.Context, block blockhash.Hash, version UUID) (BlockRef, bool, error) {
	return t.table.Get(ctx, block, version)
}

// Insert replicates ref, merging with any existing record.
func (t *BlockRefTable) Insert(ctx context.Context, ref BlockRef) error {
	return t.table.Insert(ctx, ref)
}
