package objstore

import (
	"context"
	"sort"

	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/crdt"
	"github.com/nimbusfs/coreobj/pkg/kvstore"
)

// VersionBlock is one content block of a Version, at a fixed offset
// (spec §3). Immutable once appended.
type VersionBlock struct {
	Offset uint64         `msgpack:"offset"`
	Hash   blockhash.Hash `msgpack:"hash"`
}

// Version is the non-inline half of a streamed PUT: the ordered list of
// blocks that make up one version's content, grown by block-append as
// the PUT pipeline commits each offset (spec §3, §4.5).
type Version struct {
	UUID   UUID           `msgpack:"uuid"`
	Bucket string         `msgpack:"bucket"`
	Key    string         `msgpack:"key"`
	Tomb   crdt.Tombstone `msgpack:"tomb"`
	Blocks []VersionBlock `msgpack:"blocks"`
}

// NewVersion builds an empty Version for uuid.
func NewVersion(uuid UUID, bucket, key string) Version {
	return Version{UUID: uuid, Bucket: bucket, Key: key}
}

// Deleted reports whether this version has been tombstoned by the GC
// collaborator (spec §4 lifecycle; out of scope here beyond the flag).
func (v Version) Deleted() bool {
	return v.Tomb.Deleted
}

// AddBlock appends block to v. offset must be strictly greater than the
// last block's offset — a disordered insert is a programmer error
// (spec §4.5 "Tie-breaks & edge cases").
func (v *Version) AddBlock(block VersionBlock) error {
	if n := len(v.Blocks); n > 0 && block.Offset <= v.Blocks[n-1].Offset {
		return Error.New("version %s: block offset %d not strictly after %d",
			v.UUID, block.Offset, v.Blocks[n-1].Offset)
	}
	v.Blocks = append(v.Blocks, block)
	return nil
}

// mergeVersion folds incoming into existing: blocks are unioned by
// offset (idempotent — a repeated put_block_meta for the same offset
// carries the same hash, spec §4.3) and the tombstone is monotone.
func mergeVersion(existing *Version, incoming Version) {
	existing.Tomb.Merge(incoming.Tomb)

	byOffset := make(map[uint64]VersionBlock, len(existing.Blocks))
	for _, b := range existing.Blocks {
		byOffset[b.Offset] = b
	}
	for _, b := range incoming.Blocks {
		byOffset[b.Offset] = b
	}
	merged := make([]VersionBlock, 0, len(byOffset))
	for _, b := range byOffset {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Offset < merged[j].Offset })
	existing.Blocks = merged
}

// VersionTable is the (uuid, EmptyKey) -> Version metadata table (spec
// §6: "version_table.get(version_uuid, EmptyKey)").
type VersionTable struct {
	table *Table[UUID, EmptyKey, Version]
}

// NewVersionTable builds the version table over store.
func NewVersionTable(store *kvstore.Store) *VersionTable {
	schema := Schema[UUID, EmptyKey, Version]{
		Name:         "versions",
		PartitionKey: func(v Version) UUID { return v.UUID },
		SortKey:      func(v Version) EmptyKey { return EmptyKey{} },
		Merge:        mergeVersion,
	}
	return &VersionTable{table: NewTable(store, schema)}
}

// Get returns the merged Version for uuid, if any.
func (t *VersionTable) Get(ctx context.Context, uuid UUID) (Version, bool, error) {
	return t.table.Get(ctx, uuid, EmptyKey{})
}

// Insert replicates version, merging with any existing record.
func (t *VersionTable) Insert(ctx context.Context, version Version) error {
	return t.table.Insert(ctx, version)
}
