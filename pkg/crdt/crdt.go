// Package crdt provides the conflict-free merge primitives the metadata
// tables are built on: a last-writer-wins register, a last-writer-wins
// map, and a monotone tombstone flag. Every primitive satisfies the same
// contract the table engine relies on: merge is commutative, associative
// and idempotent.
package crdt

import (
	"bytes"
	"sort"

	"github.com/zeebo/errs"
	msgpack "gopkg.in/vmihailenco/msgpack.v2"
)

// Error is the class of errors raised while merging or encoding CRDT values.
var Error = errs.Class("crdt")

// tieBreak orders two values deterministically when their timestamps are
// equal, by comparing their msgpack-encoded bytes. This is the
// implementer's choice the spec leaves open (§9 "Open question"): ties
// are broken by the larger serialized value, so merge stays a pure
// function of the two inputs.
func tieBreak(a, b interface{}) int {
	ab, errA := msgpack.Marshal(a)
	bb, errB := msgpack.Marshal(b)
	if errA != nil || errB != nil {
		// Values that can't be encoded can't be compared deterministically;
		// keep the existing value rather than panic.
		return -1
	}
	return bytes.Compare(ab, bb)
}

// LWW is a last-writer-wins register over a value of type T.
type LWW[T any] struct {
	Timestamp uint64 `msgpack:"ts"`
	Value     T      `msgpack:"value"`
}

// NewLWW creates a register at timestamp 0, holding value.
func NewLWW[T any](value T) LWW[T] {
	return LWW[T]{Timestamp: 0, Value: value}
}

// MigrateFromRaw builds a register directly from a previously-recorded
// timestamp and value, used by try_migrate hooks converting a legacy
// schema encoding into the current CRDT shape.
func MigrateFromRaw[T any](timestamp uint64, value T) LWW[T] {
	return LWW[T]{Timestamp: timestamp, Value: value}
}

// Set replaces the register's value at the given timestamp. Callers pass
// now_msec(); Set never decreases the timestamp of a register below its
// current value, since that would be indistinguishable from a merge and
// could un-do a later write already observed elsewhere.
func (r *LWW[T]) Set(timestamp uint64, value T) {
	if timestamp < r.Timestamp {
		timestamp = r.Timestamp
	}
	r.Timestamp = timestamp
	r.Value = value
}

// Get returns the register's current value.
func (r *LWW[T]) Get() T {
	return r.Value
}

// Merge folds another observation of the same register into this one,
// keeping the greater timestamp (ties broken deterministically).
func (r *LWW[T]) Merge(other LWW[T]) {
	switch {
	case other.Timestamp > r.Timestamp:
		*r = other
	case other.Timestamp == r.Timestamp && tieBreak(other.Value, r.Value) > 0:
		*r = other
	}
}

// LWWMap is a last-writer-wins map from K to V: each key has its own LWW
// register, so concurrent writes to distinct keys never conflict and
// concurrent writes to the same key resolve by timestamp.
type LWWMap[K comparable, V any] struct {
	entries map[K]LWW[V]
}

// mapItem is the sorted, read-only view of one LWWMap entry.
type mapItem[K comparable, V any] struct {
	Key       K
	Timestamp uint64
	Value     V
}

// NewLWWMap returns an empty map.
func NewLWWMap[K comparable, V any]() LWWMap[K, V] {
	return LWWMap[K, V]{entries: make(map[K]LWW[V])}
}

// Put writes value for key at timestamp, merging with any existing entry.
func (m *LWWMap[K, V]) Put(key K, timestamp uint64, value V) {
	if m.entries == nil {
		m.entries = make(map[K]LWW[V])
	}
	existing, ok := m.entries[key]
	if !ok {
		m.entries[key] = LWW[V]{Timestamp: timestamp, Value: value}
		return
	}
	existing.Merge(LWW[V]{Timestamp: timestamp, Value: value})
	m.entries[key] = existing
}

// MigrateFromRawItem builds a single-key map, used by try_migrate hooks
// folding a legacy per-key record into the current LWWMap encoding.
func MigrateFromRawItem[K comparable, V any](key K, timestamp uint64, value V) LWWMap[K, V] {
	m := NewLWWMap[K, V]()
	m.Put(key, timestamp, value)
	return m
}

// Get returns the current value for key, if present.
func (m *LWWMap[K, V]) Get(key K) (V, bool) {
	entry, ok := m.entries[key]
	return entry.Value, ok
}

// Merge folds another map's entries into this one, key by key.
func (m *LWWMap[K, V]) Merge(other LWWMap[K, V]) {
	for key, entry := range other.entries {
		existing, ok := m.entries[key]
		if m.entries == nil {
			m.entries = make(map[K]LWW[V])
		}
		if !ok {
			m.entries[key] = entry
			continue
		}
		existing.Merge(entry)
		m.entries[key] = existing
	}
}

// Items returns the map's entries as a deterministically ordered slice,
// sorted by key's msgpack encoding so two replicas with the same logical
// content always iterate in the same order.
func (m *LWWMap[K, V]) Items() []mapItem[K, V] {
	items := make([]mapItem[K, V], 0, len(m.entries))
	for key, entry := range m.entries {
		items = append(items, mapItem[K, V]{Key: key, Timestamp: entry.Timestamp, Value: entry.Value})
	}
	sort.Slice(items, func(i, j int) bool {
		ki, _ := msgpack.Marshal(items[i].Key)
		kj, _ := msgpack.Marshal(items[j].Key)
		return bytes.Compare(ki, kj) < 0
	})
	return items
}

// Tombstone is a monotone delete flag: once true, merging with any value
// (true or false) keeps it true. It is the building block for
// set-with-tombstone schemas like BlockRef (§3, §4.1).
type Tombstone struct {
	Deleted bool `msgpack:"deleted"`
}

// Delete marks the tombstone deleted. Irreversible.
func (t *Tombstone) Delete() {
	t.Deleted = true
}

// Merge keeps Deleted true if either side has it set.
func (t *Tombstone) Merge(other Tombstone) {
	t.Deleted = t.Deleted || other.Deleted
}
