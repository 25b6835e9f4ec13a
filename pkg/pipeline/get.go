package pipeline

import (
	"bytes"
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nimbusfs/coreobj/pkg/apperr"
	"github.com/nimbusfs/coreobj/pkg/blockhash"
	"github.com/nimbusfs/coreobj/pkg/coreobj"
	"github.com/nimbusfs/coreobj/pkg/objstore"
)

// Headers is the response metadata GET/HEAD build from the selected
// version (spec §4.6 step 3).
type Headers struct {
	ContentType   string
	ContentLength uint64
	LastModified  time.Time
}

func headersFrom(v objstore.ObjectVersion) Headers {
	return Headers{
		ContentType:   v.MimeType,
		ContentLength: v.Size,
		LastModified:  time.UnixMilli(int64(v.Timestamp)),
	}
}

// Head loads headers for the latest complete, non-DeleteMarker version
// of (bucket, key) (spec §4.6 step 2, HEAD filter).
func Head(ctx context.Context, core *coreobj.Core, bucket, key string) (headers Headers, err error) {
	defer mon.Task()(&ctx)(&err)

	object, found, err := core.ObjectTable.Get(ctx, bucket, key)
	if err != nil {
		return Headers{}, apperr.Wrap(apperr.KindInternal, err)
	}
	if !found {
		return Headers{}, apperr.ErrNotFound
	}
	version, ok := object.LatestComplete(func(v objstore.ObjectVersion) bool {
		return v.Data.Kind != objstore.DataKindDeleteMarker
	})
	if !ok {
		return Headers{}, apperr.ErrNotFound
	}
	return headersFrom(version), nil
}

// Get loads headers and a body producer for the latest complete version
// of (bucket, key) (spec §4.6). A DeleteMarker still selected as
// "latest complete" maps to NotFound at this body step, not at
// selection, per spec §4.6 step 2.
func Get(ctx context.Context, core *coreobj.Core, bucket, key string) (headers Headers, body io.ReadCloser, err error) {
	defer mon.Task()(&ctx)(&err)

	object, found, err := core.ObjectTable.Get(ctx, bucket, key)
	if err != nil {
		return Headers{}, nil, apperr.Wrap(apperr.KindInternal, err)
	}
	if !found {
		return Headers{}, nil, apperr.ErrNotFound
	}
	version, ok := object.LatestComplete(nil)
	if !ok {
		return Headers{}, nil, apperr.ErrNotFound
	}

	headers = headersFrom(version)

	switch version.Data.Kind {
	case objstore.DataKindDeleteMarker:
		return Headers{}, nil, apperr.ErrNotFound
	case objstore.DataKindInline:
		return headers, io.NopCloser(bytes.NewReader(version.Data.Inline)), nil
	case objstore.DataKindFirstBlock:
		b, err := newBlockBody(ctx, core, version.UUID, version.Data.FirstBlockHash)
		if err != nil {
			return Headers{}, nil, err
		}
		return headers, b, nil
	default:
		return Headers{}, nil, apperr.New(apperr.KindInternal, "object version %s: unknown data kind %d", version.UUID, version.Data.Kind)
	}
}

// blockBody streams a version's blocks in order with a bounded
// read-ahead of depth 2: the producer goroutine is never more than one
// block ahead of what the consumer has read (spec §4.6 step 4, §9
// "Streaming body production for GET").
type blockBody struct {
	ch     chan blockResult
	cancel context.CancelFunc
	cur    []byte
}

type blockResult struct {
	data []byte
	err  error
}

// newBlockBody concurrently (a) fetches the first block — already known
// by hash from the ObjectVersion — and (b) loads the Version record
// naming the rest, then starts the bounded-read-ahead producer (spec
// §4.6 step 4, FirstBlock variant).
func newBlockBody(ctx context.Context, core *coreobj.Core, versionUUID objstore.UUID, firstHash blockhash.Hash) (*blockBody, error) {
	var firstData []byte
	var version objstore.Version
	var versionFound bool

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		firstData, err = core.BlockManager.GetBlock(gctx, firstHash)
		return err
	})
	group.Go(func() error {
		v, found, err := core.VersionTable.Get(gctx, versionUUID)
		if err != nil {
			return err
		}
		version, versionFound = v, found
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.KindBlockUnavailable, err)
	}
	if !versionFound {
		return nil, apperr.New(apperr.KindInternal, "version %s: no version record for FirstBlock object", versionUUID)
	}

	bctx, cancel := context.WithCancel(ctx)
	body := &blockBody{ch: make(chan blockResult), cancel: cancel}
	go body.produce(bctx, core, version, firstData)
	return body, nil
}

func (b *blockBody) produce(ctx context.Context, core *coreobj.Core, version objstore.Version, firstData []byte) {
	defer close(b.ch)
	for i, block := range version.Blocks {
		var data []byte
		var err error
		if i == 0 {
			data = firstData
		} else {
			data, err = core.BlockManager.GetBlock(ctx, block.Hash)
		}
		select {
		case b.ch <- blockResult{data: data, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// Read implements io.Reader, pulling from the bounded-read-ahead
// channel one block at a time.
func (b *blockBody) Read(p []byte) (int, error) {
	for len(b.cur) == 0 {
		r, ok := <-b.ch
		if !ok {
			return 0, io.EOF
		}
		if r.err != nil {
			return 0, apperr.Wrap(apperr.KindBlockUnavailable, r.err)
		}
		b.cur = r.data
	}
	n := copy(p, b.cur)
	b.cur = b.cur[n:]
	return n, nil
}

// Close stops the producer goroutine if the consumer abandons the body
// early (spec §5 "Cancellation": in-flight block RPCs are abandoned).
func (b *blockBody) Close() error {
	b.cancel()
	return nil
}
