package chunker

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, c *Chunker) [][]byte {
	t.Helper()
	var blocks [][]byte
	for {
		b, err := c.Next()
		require.NoError(t, err)
		if b == nil {
			return blocks
		}
		blocks = append(blocks, b)
	}
}

func TestChunker_ExactMultiple(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 30)
	c := New(bytes.NewReader(body), 10)

	blocks := drain(t, c)
	require.Len(t, blocks, 3)
	for _, b := range blocks {
		assert.Len(t, b, 10)
	}
}

func TestChunker_ShortLastBlock(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 25)
	c := New(bytes.NewReader(body), 10)

	blocks := drain(t, c)
	require.Len(t, blocks, 3)
	assert.Len(t, blocks[0], 10)
	assert.Len(t, blocks[1], 10)
	assert.Len(t, blocks[2], 5)
}

func TestChunker_EmptyBody(t *testing.T) {
	c := New(bytes.NewReader(nil), 10)

	b, err := c.Next()
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestChunker_SmallerThanFrame(t *testing.T) {
	body := []byte("hi")
	c := New(bytes.NewReader(body), 10)

	blocks := drain(t, c)
	require.Len(t, blocks, 1)
	assert.Equal(t, body, blocks[0])
}

type erroringReader struct{}

func (erroringReader) Read([]byte) (int, error) {
	return 0, errors.New("transport broke")
}

func TestChunker_PropagatesReadError(t *testing.T) {
	c := New(erroringReader{}, 10)

	_, err := c.Next()
	assert.Error(t, err)
}

func TestChunker_PreservesOrderAcrossBlockBoundary(t *testing.T) {
	var body bytes.Buffer
	for i := 0; i < 5; i++ {
		body.WriteString("0123456789")
	}
	c := New(&body, 10)

	blocks := drain(t, c)
	require.Len(t, blocks, 5)
	for _, b := range blocks {
		assert.Equal(t, []byte("0123456789"), b)
	}
}

var _ io.Reader = erroringReader{}
