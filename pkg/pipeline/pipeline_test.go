package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/config"
	"github.com/nimbusfs/coreobj/pkg/coreobj"
)

// fakeBlockManager is an in-memory stand-in for the grpc-backed block
// manager, good enough to exercise the pipelines' put/get/verify
// contract without a real replica set.
type fakeBlockManager struct {
	mu     sync.Mutex
	blocks map[blockhash.Hash][]byte

	failPut bool
}

func newFakeBlockManager() *fakeBlockManager {
	return &fakeBlockManager{blocks: make(map[blockhash.Hash][]byte)}
}

func (f *fakeBlockManager) PutBlock(ctx context.Context, hash blockhash.Hash, data []byte) error {
	if f.failPut {
		return errFakePut
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks[hash] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlockManager) GetBlock(ctx context.Context, hash blockhash.Hash) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blocks[hash]
	if !ok {
		return nil, errFakeNotFound
	}
	return append([]byte(nil), data...), nil
}

var (
	errFakePut      = fakeErr("put_block failed")
	errFakeNotFound = fakeErr("block not found")
)

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func newTestCore(t *testing.T, bm *fakeBlockManager) *coreobj.Core {
	t.Helper()
	cfg := config.Default()
	cfg.KVStorePath = filepath.Join(t.TempDir(), "core.db")
	cfg.BlockSize = 16
	cfg.InlineThreshold = 8

	core, err := coreobj.New(cfg, zaptest.NewLogger(t), bm)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}
