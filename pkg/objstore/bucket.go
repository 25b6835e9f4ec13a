package objstore

import (
	"context"

	msgpack "gopkg.in/vmihailenco/msgpack.v2"

	"github.com/nimbusfs/coreobj/pkg/crdt"
	"github.com/nimbusfs/coreobj/pkg/kvstore"
)

// PermissionSet is the capability a key holds on a bucket, checked by
// the authorization oracle the core consumes but doesn't implement
// (spec §6: can_read/can_write). Grounded on Garage's key_table.rs
// PermissionSet, referenced by bucket_table.rs.
type PermissionSet struct {
	AllowRead  bool `msgpack:"allow_read"`
	AllowWrite bool `msgpack:"allow_write"`
}

// BucketState is a bucket's Deleted | Present(BucketParams) variant
// (spec §3). Present -> Deleted is irreversible at equal timestamp (I7):
// mergeBucketState lets Deleted win, and mergeBucket applies it when the
// two register timestamps are equal.
type BucketState struct {
	Deleted bool          `msgpack:"deleted"`
	Params  *BucketParams `msgpack:"params,omitempty"`
}

// DeletedState builds the Deleted variant.
func DeletedState() BucketState {
	return BucketState{Deleted: true}
}

// PresentState builds the Present variant.
func PresentState(params BucketParams) BucketState {
	return BucketState{Params: &params}
}

// mergeBucketState is BucketState's CRDT merge (spec §9, grounded on
// bucket_table.rs's `impl CRDT for BucketState`): Deleted always wins
// over Present, and two Present states merge their params field-wise.
func mergeBucketState(a, b BucketState) BucketState {
	if b.Deleted {
		return DeletedState()
	}
	if a.Deleted {
		return a
	}
	merged := *a.Params
	mergeBucketParams(&merged, *b.Params)
	return PresentState(merged)
}

// BucketParams holds a present bucket's mutable settings: an LWW-map of
// authorized keys and an LWW website flag, merged field-wise
// (grounded on bucket_table.rs's BucketParams).
type BucketParams struct {
	AuthorizedKeys crdt.LWWMap[string, PermissionSet] `msgpack:"authorized_keys"`
	Website        crdt.LWW[bool]                     `msgpack:"website"`
}

// NewBucketParams returns empty params: no authorized keys, website off.
func NewBucketParams() BucketParams {
	return BucketParams{
		AuthorizedKeys: crdt.NewLWWMap[string, PermissionSet](),
		Website:        crdt.NewLWW(false),
	}
}

func mergeBucketParams(existing *BucketParams, incoming BucketParams) {
	existing.AuthorizedKeys.Merge(incoming.AuthorizedKeys)
	existing.Website.Merge(incoming.Website)
}

// Bucket is a named namespace for keys, owning access-control params via
// an LWW register over BucketState (spec §3).
type Bucket struct {
	Name  string               `msgpack:"name"`
	State crdt.LWW[BucketState] `msgpack:"state"`
}

// NewBucket creates a fresh, present, empty bucket.
func NewBucket(name string) Bucket {
	return Bucket{
		Name:  name,
		State: crdt.NewLWW(PresentState(NewBucketParams())),
	}
}

// Valid reports whether b decoded to a semantically meaningful bucket,
// used by the table layer to detect a legacy encoding that happened to
// decode without erroring (see objstore.validatable).
func (b Bucket) Valid() bool {
	state := b.State.Get()
	return b.Name != "" && (state.Deleted || state.Params != nil)
}

// IsDeleted reports whether b's current state is Deleted.
func (b Bucket) IsDeleted() bool {
	return b.State.Get().Deleted
}

// AuthorizedKeys returns the bucket's authorized-key entries, empty if
// the bucket is deleted.
func (b Bucket) AuthorizedKeys() []struct {
	KeyID      string
	Timestamp  uint64
	Permission PermissionSet
} {
	state := b.State.Get()
	if state.Deleted || state.Params == nil {
		return nil
	}
	items := state.Params.AuthorizedKeys.Items()
	out := make([]struct {
		KeyID      string
		Timestamp  uint64
		Permission PermissionSet
	}, len(items))
	for i, it := range items {
		out[i].KeyID = it.Key
		out[i].Timestamp = it.Timestamp
		out[i].Permission = it.Value
	}
	return out
}

// mergeBucket applies BucketState's CRDT merge through the LWW register
// wrapping it (grounded on bucket_table.rs's `Entry::merge`).
func mergeBucket(existing *Bucket, incoming Bucket) {
	combined := existing.State
	if incoming.State.Timestamp > combined.Timestamp {
		combined = incoming.State
	} else if incoming.State.Timestamp == combined.Timestamp {
		combined.Value = mergeBucketState(existing.State.Get(), incoming.State.Get())
	}
	existing.State = combined
}

// legacyAuthorizedKey mirrors a flat, pre-CRDT authorized-key record.
type legacyAuthorizedKey struct {
	KeyID      string `msgpack:"key_id"`
	Timestamp  uint64 `msgpack:"timestamp"`
	AllowRead  bool   `msgpack:"allow_read"`
	AllowWrite bool   `msgpack:"allow_write"`
}

// legacyBucket mirrors the schema bucket_table.rs migrates from
// (model010::bucket_table::Bucket): a flat deleted bool and authorized
// key list, with no nested CRDT containers.
type legacyBucket struct {
	Name           string                `msgpack:"name"`
	Deleted        bool                  `msgpack:"deleted"`
	Timestamp      uint64                `msgpack:"timestamp"`
	AuthorizedKeys []legacyAuthorizedKey `msgpack:"authorized_keys"`
}

// migrateBucket converts a legacy flat encoding into the current
// LWW-register-of-BucketState form, directly grounded on
// bucket_table.rs's `try_migrate`.
func migrateBucket(raw []byte) (Bucket, bool) {
	var old legacyBucket
	if err := msgpack.Unmarshal(raw, &old); err != nil || old.Name == "" {
		return Bucket{}, false
	}

	if old.Deleted {
		return Bucket{
			Name:  old.Name,
			State: crdt.MigrateFromRaw(old.Timestamp, DeletedState()),
		}, true
	}

	keys := crdt.NewLWWMap[string, PermissionSet]()
	for _, ak := range old.AuthorizedKeys {
		keys.Put(ak.KeyID, ak.Timestamp, PermissionSet{AllowRead: ak.AllowRead, AllowWrite: ak.AllowWrite})
	}
	params := BucketParams{AuthorizedKeys: keys, Website: crdt.NewLWW(false)}

	return Bucket{
		Name:  old.Name,
		State: crdt.MigrateFromRaw(old.Timestamp, PresentState(params)),
	}, true
}

// BucketTable is the EmptyKey, name -> Bucket table.
type BucketTable struct {
	table *Table[EmptyKey, string, Bucket]
}

// NewBucketTable builds the bucket table over store.
func NewBucketTable(store *kvstore.Store) *BucketTable {
	schema := Schema[EmptyKey, string, Bucket]{
		Name:         "buckets",
		PartitionKey: func(b Bucket) EmptyKey { return EmptyKey{} },
		SortKey:      func(b Bucket) string { return b.Name },
		Merge:        mergeBucket,
		TryMigrate:   migrateBucket,
	}
	return &BucketTable{table: NewTable(store, schema)}
}

// Get returns the merged Bucket named name, if any.
func (t *BucketTable) Get(ctx context.Context, name string) (Bucket, bool, error) {
	return t.table.Get(ctx, EmptyKey{}, name)
}

// Insert replicates bucket, merging with any existing record.
func (t *BucketTable) Insert(ctx context.Context, bucket Bucket) error {
	return t.table.Insert(ctx, bucket)
}
