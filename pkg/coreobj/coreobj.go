// Package coreobj wires the process-wide singletons — config, metadata
// tables, and block manager — into the one handle request tasks borrow
// (spec §9 "Global state": initialize once at startup, pass explicit
// handles into request tasks, no ambient context). Grounded on
// original_source/src/api/s3_put.rs's `garage.object_table`,
// `garage.version_table`, `garage.block_ref_table`, `garage.block_manager`,
// `garage.config` field-access pattern.
package coreobj

import (
	"go.uber.org/zap"

	"github.com/nimbusfs/coreobj/pkg/blockmgr"
	"github.com/nimbusfs/coreobj/pkg/config"
	"github.com/nimbusfs/coreobj/pkg/kvstore"
	"github.com/nimbusfs/coreobj/pkg/objstore"
)

// Core is the process-wide handle the PUT/GET/DELETE pipelines operate
// against. It is built once at startup and passed explicitly into every
// request task; nothing here is package-level global state.
type Core struct {
	Config       config.Config
	Log          *zap.Logger
	BlockManager blockmgr.BlockManager

	ObjectTable   *objstore.ObjectTable
	VersionTable  *objstore.VersionTable
	BlockRefTable *objstore.BlockRefTable
	BucketTable   *objstore.BucketTable

	store *kvstore.Store
}

// New opens the local store and builds the metadata tables over it,
// pairing them with the given block manager.
func New(cfg config.Config, log *zap.Logger, blockManager blockmgr.BlockManager) (*Core, error) {
	store, err := kvstore.Open(cfg.KVStorePath)
	if err != nil {
		return nil, err
	}
	return &Core{
		Config:        cfg,
		Log:           log,
		BlockManager:  blockManager,
		ObjectTable:   objstore.NewObjectTable(store),
		VersionTable:  objstore.NewVersionTable(store),
		BlockRefTable: objstore.NewBlockRefTable(store),
		BucketTable:   objstore.NewBucketTable(store),
		store:         store,
	}, nil
}

// Close releases the local store's file handle.
func (c *Core) Close() error {
	return c.store.Close()
}
