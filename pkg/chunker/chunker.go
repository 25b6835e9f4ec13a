// Package chunker converts a streaming request body into a lazy,
// finite sequence of fixed-size blocks (spec §4.2). Grounded directly on
// original_source/src/api/s3_put.rs's BodyChunker: a size-bounded buffer
// drained into exactly block_size chunks except the last, which may be
// shorter.
package chunker

import (
	"io"

	"github.com/zeebo/errs"
)

// Error is the class of errors raised reading the underlying body.
var Error = errs.Class("chunker")

// Chunker reads fixed-size blocks from body until it's drained. It is
// not restartable: callers must consume it linearly (spec §4.2).
type Chunker struct {
	body      io.Reader
	blockSize int
	buf       []byte
	readAll   bool
	frame     []byte
}

// New returns a Chunker reading body in blockSize-byte blocks. The
// internal buffer never exceeds blockSize plus one transport read, per
// spec §4.2's memory bound.
func New(body io.Reader, blockSize int) *Chunker {
	return &Chunker{
		body:      body,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
		frame:     make([]byte, 32*1024),
	}
}

// Next returns the next block, or (nil, nil) once the body is fully
// drained and the buffer is empty. Transport errors are propagated
// verbatim from the body, wrapped in Error for classification.
func (c *Chunker) Next() ([]byte, error) {
	for !c.readAll && len(c.buf) < c.blockSize {
		n, err := c.body.Read(c.frame)
		if n > 0 {
			c.buf = append(c.buf, c.frame[:n]...)
		}
		if err == io.EOF {
			c.readAll = true
			break
		}
		if err != nil {
			return nil, Error.Wrap(err)
		}
	}

	if len(c.buf) == 0 {
		return nil, nil
	}

	take := c.blockSize
	if len(c.buf) < take {
		take = len(c.buf)
	}
	block := make([]byte, take)
	copy(block, c.buf[:take])
	c.buf = c.buf[take:]
	return block, nil
}
