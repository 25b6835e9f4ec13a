package objstore

import (
	"context"
	"sort"

	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/kvstore"
)

// DataKind tags which variant an ObjectVersionData holds (spec §3
// "ObjectVersionData — variant").
type DataKind int

const (
	// DataKindDeleteMarker marks the key logically removed.
	DataKindDeleteMarker DataKind = iota
	// DataKindInline holds the whole payload inline in the record.
	DataKindInline
	// DataKindFirstBlock points at the version's first content block;
	// the rest live in the Version record.
	DataKindFirstBlock
)

// ObjectVersionData is the tagged DeleteMarker | Inline(bytes) |
// FirstBlock(hash) variant (spec §3). Only the field matching Kind is
// meaningful.
type ObjectVersionData struct {
	Kind           DataKind       `msgpack:"kind"`
	Inline         []byte         `msgpack:"inline,omitempty"`
	FirstBlockHash blockhash.Hash `msgpack:"first_block,omitempty"`
}

// DeleteMarkerData builds a DeleteMarker variant.
func DeleteMarkerData() ObjectVersionData {
	return ObjectVersionData{Kind: DataKindDeleteMarker}
}

// InlineData builds an Inline variant.
func InlineData(data []byte) ObjectVersionData {
	return ObjectVersionData{Kind: DataKindInline, Inline: data}
}

// FirstBlockData builds a FirstBlock variant.
func FirstBlockData(hash blockhash.Hash) ObjectVersionData {
	return ObjectVersionData{Kind: DataKindFirstBlock, FirstBlockHash: hash}
}

// ObjectVersion is one revision of an object (spec §3). Mutable before
// commit; immutable once inserted into the table, except for the
// monotone fields a later merge may still advance (IsComplete, Size).
type ObjectVersion struct {
	UUID       UUID              `msgpack:"uuid"`
	Timestamp  uint64            `msgpack:"ts"`
	MimeType   string            `msgpack:"mime_type"`
	Size       uint64            `msgpack:"size"`
	IsComplete bool              `msgpack:"is_complete"`
	Data       ObjectVersionData `msgpack:"data"`
}

// mergeObjectVersion folds incoming into existing, both observations of
// the same version UUID (e.g. the provisional-then-final pair written
// by the PUT pipeline, spec §4.5). IsComplete is monotone (I4); Size is
// stable once complete, so the merge keeps the larger value (domain
// rule noted in spec §4.5's tie-break).
func mergeObjectVersion(existing *ObjectVersion, incoming ObjectVersion) {
	if incoming.Timestamp < existing.Timestamp {
		existing.Timestamp = incoming.Timestamp
	}
	if incoming.MimeType != "" && (existing.MimeType == "" || incoming.IsComplete) {
		existing.MimeType = incoming.MimeType
	}
	if incoming.Size > existing.Size {
		existing.Size = incoming.Size
	}
	existing.Data = mergeVersionData(existing.Data, incoming.Data)
	existing.IsComplete = existing.IsComplete || incoming.IsComplete
}

// mergeVersionData picks between two observations of the same version's
// data variant. In the real PUT pipeline both sides always agree once
// a block hash has been chosen (spec §4.5 step 4a: the provisional and
// final commit share the same FirstBlock hash); DeleteMarker only
// appears as its own fresh version (spec §4.7), so it never legitimately
// competes with a FirstBlock/Inline of the same uuid. A version's
// Data.Kind is fixed for its lifetime (I2, I5), so two observations of
// the same uuid disagreeing on Kind is not a case to resolve — picking
// either side silently would make merge order-dependent, violating the
// CRDT contract (spec §4.1) — it means the uuid was reused for two
// different writes, an invariant violation.
func mergeVersionData(a, b ObjectVersionData) ObjectVersionData {
	if a.Kind == b.Kind {
		return a
	}
	panic(Error.New("version data kind mismatch on merge: %d vs %d", a.Kind, b.Kind))
}

// Object is the logical entity at (bucket, key): an ordered set of
// versions (spec §3). Mutation is only by appending/merging versions.
type Object struct {
	Bucket   string          `msgpack:"bucket"`
	Key      string          `msgpack:"key"`
	Versions []ObjectVersion `msgpack:"versions"`
}

// NewObject builds a fresh Object record carrying the given versions,
// the shape the PUT/DELETE pipelines insert (spec §4.5, §4.7).
func NewObject(bucket, key string, versions ...ObjectVersion) Object {
	return Object{Bucket: bucket, Key: key, Versions: versions}
}

// versionOrder implements invariant I1: versions ordered by timestamp,
// ties broken by uuid.
func versionOrder(a, b ObjectVersion) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp < b.Timestamp
	}
	return string(a.UUID[:]) < string(b.UUID[:])
}

// mergeObject folds incoming's versions into existing's, preserving I1:
// at most one version per uuid, ordered by (timestamp, uuid).
func mergeObject(existing *Object, incoming Object) {
	byUUID := make(map[UUID]int, len(existing.Versions))
	for i, v := range existing.Versions {
		byUUID[v.UUID] = i
	}
	for _, v := range incoming.Versions {
		if i, ok := byUUID[v.UUID]; ok {
			mergeObjectVersion(&existing.Versions[i], v)
			continue
		}
		byUUID[v.UUID] = len(existing.Versions)
		existing.Versions = append(existing.Versions, v)
	}
	sort.SliceStable(existing.Versions, func(i, j int) bool {
		return versionOrder(existing.Versions[i], existing.Versions[j])
	})
}

// LatestComplete returns the most recent version satisfying filter
// (spec §4.6 step 2: "latest complete" selection). filter receives
// IsComplete-true candidates only; it further restricts by variant
// (HEAD excludes DeleteMarker, GET does not).
func (o Object) LatestComplete(filter func(ObjectVersion) bool) (ObjectVersion, bool) {
	for i := len(o.Versions) - 1; i >= 0; i-- {
		v := o.Versions[i]
		if !v.IsComplete {
			continue
		}
		if filter == nil || filter(v) {
			return v, true
		}
	}
	return ObjectVersion{}, false
}

// HasLiveVersion reports whether the latest version of o, in (timestamp,
// uuid) order, is not a DeleteMarker, the existence check DELETE uses to
// decide whether it's a no-op (spec §4.7 step 1).
func (o Object) HasLiveVersion() bool {
	n := len(o.Versions)
	return n > 0 && o.Versions[n-1].Data.Kind != DataKindDeleteMarker
}

// ObjectTable is the (bucket, key) -> Object metadata table.
type ObjectTable struct {
	table *Table[string, string, Object]
}

// NewObjectTable builds the object table over store.
func NewObjectTable(store *kvstore.Store) *ObjectTable {
	schema := Schema[string, string, Object]{
		Name:         "objects",
		PartitionKey: func(o Object) string { return o.Bucket },
		SortKey:      func(o Object) string { return o.Key },
		Merge:        mergeObject,
	}
	return &ObjectTable{table: NewTable(store, schema)}
}

// Get returns the merged Object at (bucket, key), if any.
func (t *ObjectTable) Get(ctx context.Context, bucket, key string) (Object, bool, error) {
	return t.table.Get(ctx, bucket, key)
}

// Insert replicates object, merging with any existing record.
func (t *ObjectTable) Insert(ctx context.Context, object Object) error {
	return t.table.Insert(ctx, object)
}
