// Package kvstore provides the embedded, boltdb-backed key/value store
// that fills the local half of the replicated table engine's consumed
// contract (spec §4.4): a node-local merge target that `pkg/objstore`'s
// generic Table reads from and writes into. Transport and anti-entropy
// between nodes are out of scope (spec §1) — this package only has to
// give a single node somewhere durable to keep its merged rows.
package kvstore

import (
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/zeebo/errs"
)

// Error is the class of errors raised by the local store.
var Error = errs.Class("kvstore")

// Store is a boltdb database holding one bucket per logical table.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the boltdb file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return Error.Wrap(s.db.Close())
}

func (s *Store) ensureTable(table string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(table))
		return err
	})
}

// Get reads the raw bytes stored under key in table. found is false if
// the table or key doesn't exist yet.
func (s *Store) Get(table string, key []byte) (value []byte, found bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v == nil {
			return nil
		}
		found = true
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, Error.Wrap(err)
	}
	return value, found, nil
}

// Put writes value under key in table, creating the table if needed.
func (s *Store) Put(table string, key, value []byte) error {
	if err := s.ensureTable(table); err != nil {
		return Error.Wrap(err)
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		return b.Put(key, value)
	})
	return Error.Wrap(err)
}

// Item is a single (key, value) pair from a table scan.
type Item struct {
	Key   []byte
	Value []byte
}

// List returns every entry in table, in boltdb's byte-sorted key order.
// Used sparingly: the core's operations are all point lookups by
// (partition, sort) key; List exists for the rare scan-shaped need
// (e.g. a GC collaborator walking BlockRefs, out of scope here but the
// contract is still useful to expose).
func (s *Store) List(table string) ([]Item, error) {
	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			items = append(items, Item{
				Key:   append([]byte(nil), k...),
				Value: append([]byte(nil), v...),
			})
			return nil
		})
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return items, nil
}
