// Package objstore holds the metadata data model (spec §3) and the
// generic table contract each logical table (objects, versions,
// block-refs, buckets) is built from (spec §4.1, §4.4, §9 "CRDT trait
// family"): a single `merge` capability per entry, with no inheritance
// hierarchy — just a tagged Go struct per record kind and a merge
// function supplied by its schema.
package objstore

import (
	"context"
	"sync"

	"github.com/zeebo/errs"
	msgpack "gopkg.in/vmihailenco/msgpack.v2"

	"github.com/nimbusfs/coreobj/pkg/kvstore"
)

// Error is the class of errors raised by the metadata tables.
var Error = errs.Class("objstore")

// EmptyKey is used as the partition or sort key for schemas that don't
// need one dimension of the (partition, sort) identity — e.g. the
// version table is keyed by (uuid, EmptyKey) and the bucket table by
// (EmptyKey, name), per spec §6.
type EmptyKey struct{}

// MigrateFunc converts a prior schema's encoding of an entry into the
// current one, or reports that bytes didn't match any known legacy
// schema (spec §6 "try_migrate").
type MigrateFunc[E any] func(raw []byte) (E, bool)

// Schema describes one logical table: how to derive an entry's identity
// and how to merge two observations of the same identity. Merge must be
// commutative, associative and idempotent — the sole correctness
// contract the table layer relies on (spec §4.1).
type Schema[P comparable, S comparable, E any] struct {
	Name         string
	PartitionKey func(e E) P
	SortKey      func(e E) S
	Merge        func(existing *E, incoming E)
	TryMigrate   MigrateFunc[E]
}

// Table is a generic metadata table backed by a local kvstore.Store.
// get/insert is the entire contract the core consumes (spec §4.4); there
// is no read-your-writes guarantee across nodes, only eventual
// convergence via repeated merge.
type Table[P comparable, S comparable, E any] struct {
	schema Schema[P, S, E]
	store  *kvstore.Store

	// mu serializes the read-merge-write sequence in Insert. No request
	// task holds this lock across a suspension point (spec §5) — it is
	// only held for the duration of a single local store round trip.
	mu sync.Mutex
}

// NewTable builds a table from its schema and local backing store.
func NewTable[P comparable, S comparable, E any](store *kvstore.Store, schema Schema[P, S, E]) *Table[P, S, E] {
	return &Table[P, S, E]{schema: schema, store: store}
}

func (t *Table[P, S, E]) encodeKey(pk P, sk S) ([]byte, error) {
	pkb, err := msgpack.Marshal(pk)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	skb, err := msgpack.Marshal(sk)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	key := make([]byte, 0, len(pkb)+len(skb)+4)
	key = append(key, byte(len(pkb)>>24), byte(len(pkb)>>16), byte(len(pkb)>>8), byte(len(pkb)))
	key = append(key, pkb...)
	key = append(key, skb...)
	return key, nil
}

// validatable lets an entry type reject a structurally-successful but
// semantically-empty decode (msgpack's map-based decoding is lenient: it
// silently zero-fills fields absent from a legacy encoding instead of
// erroring). Entries whose current and legacy schemas could otherwise be
// confused implement it; most entry types don't need to.
type validatable interface {
	Valid() bool
}

func (t *Table[P, S, E]) decode(raw []byte) (E, error) {
	var entry E
	if err := msgpack.Unmarshal(raw, &entry); err == nil {
		if v, ok := any(entry).(validatable); !ok || v.Valid() {
			return entry, nil
		}
	}
	if t.schema.TryMigrate != nil {
		if migrated, ok := t.schema.TryMigrate(raw); ok {
			return migrated, nil
		}
	}
	var zero E
	return zero, Error.New("%s: could not decode or migrate entry", t.schema.Name)
}

// Get reads the locally merged value for (partitionKey, sortKey).
func (t *Table[P, S, E]) Get(ctx context.Context, partitionKey P, sortKey S) (E, bool, error) {
	var zero E
	key, err := t.encodeKey(partitionKey, sortKey)
	if err != nil {
		return zero, false, err
	}
	raw, found, err := t.store.Get(t.schema.Name, key)
	if err != nil {
		return zero, false, Error.Wrap(err)
	}
	if !found {
		return zero, false, nil
	}
	entry, err := t.decode(raw)
	if err != nil {
		return zero, false, err
	}
	return entry, true, nil
}

// Insert replicates entry locally: on receipt, the node merges it with
// any existing entry of the same identity via the schema's Merge (spec
// §4.4). Replication to other table replicas is the out-of-scope anti-
// entropy layer; this is the one node's half of "insert".
func (t *Table[P, S, E]) Insert(ctx context.Context, entry E) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	partitionKey := t.schema.PartitionKey(entry)
	sortKey := t.schema.SortKey(entry)
	key, err := t.encodeKey(partitionKey, sortKey)
	if err != nil {
		return err
	}

	merged := entry
	raw, found, err := t.store.Get(t.schema.Name, key)
	if err != nil {
		return Error.Wrap(err)
	}
	if found {
		existing, err := t.decode(raw)
		if err != nil {
			return err
		}
		merged = existing
		t.schema.Merge(&merged, entry)
	}

	encoded, err := msgpack.Marshal(merged)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(t.store.Put(t.schema.Name, key, encoded))
}
