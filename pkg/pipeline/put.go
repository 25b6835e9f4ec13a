// Package pipeline orchestrates the PUT, GET/HEAD and DELETE operations
// (spec §4.5–4.7) the core offers the (out-of-scope) HTTP router. PUT is
// grounded directly on original_source/src/api/s3_put.rs's handle_put:
// an inline fast path, and a streaming path that pipelines block
// replication, metadata commit, and the next body read (spec §9
// "Pipelined three-way join").
package pipeline

import (
	"context"
	"io"

	monkit "gopkg.in/spacemonkeygo/monkit.v2"

	"golang.org/x/sync/errgroup"

	"github.com/nimbusfs/coreobj/pkg/apperr"
	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/chunker"
	"github.com/nimbusfs/coreobj/pkg/coreobj"
	"github.com/nimbusfs/coreobj/pkg/objstore"
)

var mon = monkit.Package()

// Put streams body into (bucket, key), returning the fresh version's
// uuid once it is durably committed (spec §4.5).
func Put(ctx context.Context, core *coreobj.Core, bucket, key, mimeType string, body io.Reader) (uuid objstore.UUID, err error) {
	defer mon.Task()(&ctx)(&err)

	versionUUID := objstore.NewUUID()
	ts := objstore.NowMsec()

	chunks := chunker.New(body, core.Config.BlockSize)
	firstBlock, err := chunks.Next()
	if err != nil {
		return objstore.ZeroUUID, apperr.Wrap(apperr.KindTransport, err)
	}
	if firstBlock == nil {
		return objstore.ZeroUUID, apperr.ErrBadRequest
	}

	if len(firstBlock) < core.Config.InlineThreshold {
		return versionUUID, putInline(ctx, core, bucket, key, mimeType, versionUUID, ts, firstBlock)
	}
	return versionUUID, putStreaming(ctx, core, bucket, key, mimeType, versionUUID, ts, firstBlock, chunks)
}

// putInline commits a single Object record holding one inline version
// (spec §4.5 step 3, the "fast path").
func putInline(ctx context.Context, core *coreobj.Core, bucket, key, mimeType string, versionUUID objstore.UUID, ts uint64, data []byte) error {
	version := objstore.ObjectVersion{
		UUID:       versionUUID,
		Timestamp:  ts,
		MimeType:   mimeType,
		Size:       uint64(len(data)),
		IsComplete: true,
		Data:       objstore.InlineData(data),
	}
	object := objstore.NewObject(bucket, key, version)
	if err := core.ObjectTable.Insert(ctx, object); err != nil {
		return apperr.Wrap(apperr.KindQuorumUnavailable, err)
	}
	return nil
}

// putStreaming runs the streaming path: a provisional ObjectVersion
// makes the write visible immediately (is_complete=false), then each
// block's replication, its metadata commit, and the next body read run
// concurrently — depth exactly one of each, per spec §4.5/§9.
func putStreaming(
	ctx context.Context,
	core *coreobj.Core,
	bucket, key, mimeType string,
	versionUUID objstore.UUID,
	ts uint64,
	firstBlock []byte,
	chunks *chunker.Chunker,
) error {
	objectVersion := objstore.ObjectVersion{
		UUID:      versionUUID,
		Timestamp: ts,
		MimeType:  mimeType,
		Size:      uint64(len(firstBlock)),
		Data:      objstore.FirstBlockData(blockhash.Sum(firstBlock)),
	}

	provisional := objstore.NewObject(bucket, key, objectVersion)
	if err := core.ObjectTable.Insert(ctx, provisional); err != nil {
		return apperr.Wrap(apperr.KindQuorumUnavailable, err)
	}

	version := objstore.NewVersion(versionUUID, bucket, key)

	currData := firstBlock
	currHash := blockhash.Sum(firstBlock)
	offset := uint64(0)

	for {
		block, hash := currData, currHash

		var nextBlock []byte
		group, gctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			return apperr.Wrap(apperr.KindQuorumUnavailable, core.BlockManager.PutBlock(gctx, hash, block))
		})
		group.Go(func() error {
			return commitBlockMeta(gctx, core, &version, offset, hash)
		})
		group.Go(func() error {
			next, err := chunks.Next()
			if err != nil {
				return apperr.Wrap(apperr.KindTransport, err)
			}
			nextBlock = next
			return nil
		})
		if err := group.Wait(); err != nil {
			// spec §4.5 "On any failure mid-stream: return the error;
			// metadata records written so far remain" — no compensating
			// rollback, at-least-once semantics, orphans left for GC.
			return err
		}

		total := offset + uint64(len(block))
		if nextBlock == nil {
			objectVersion.IsComplete = true
			objectVersion.Size = total
			final := objstore.NewObject(bucket, key, objectVersion)
			if err := core.ObjectTable.Insert(ctx, final); err != nil {
				return apperr.Wrap(apperr.KindQuorumUnavailable, err)
			}
			return nil
		}

		offset = total
		currData = nextBlock
		currHash = blockhash.Sum(nextBlock)
	}
}

// commitBlockMeta appends one block to the running Version and inserts
// both the Version and its BlockRef (spec §4.5 step 4b's
// put_block_meta).
func commitBlockMeta(ctx context.Context, core *coreobj.Core, version *objstore.Version, offset uint64, hash blockhash.Hash) error {
	if err := version.AddBlock(objstore.VersionBlock{Offset: offset, Hash: hash}); err != nil {
		return apperr.Wrap(apperr.KindInternal, err)
	}
	blockRef := objstore.NewBlockRef(hash, version.UUID)
	snapshot := *version

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return core.VersionTable.Insert(gctx, snapshot)
	})
	group.Go(func() error {
		return core.BlockRefTable.Insert(gctx, blockRef)
	})
	if err := group.Wait(); err != nil {
		return apperr.Wrap(apperr.KindQuorumUnavailable, err)
	}
	return nil
}
