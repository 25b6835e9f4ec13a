package blockhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_Deterministic(t *testing.T) {
	data := []byte("the quick brown fox")
	assert.Equal(t, Sum(data), Sum(append([]byte(nil), data...)))
}

func TestSum_DifferentInputsDiffer(t *testing.T) {
	assert.NotEqual(t, Sum([]byte("a")), Sum([]byte("b")))
}

func TestVerify(t *testing.T) {
	data := []byte("block contents")
	h := Sum(data)

	assert.True(t, Verify(h, data))
	assert.False(t, Verify(h, []byte("tampered")))
}

func TestFromBytes(t *testing.T) {
	h := Sum([]byte("x"))

	roundTripped, err := FromBytes(h.Bytes())
	require.NoError(t, err)
	assert.Equal(t, h, roundTripped)

	_, err = FromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestIsZero(t *testing.T) {
	var zero Hash
	assert.True(t, zero.IsZero())
	assert.False(t, Sum([]byte("x")).IsZero())
}

func TestString(t *testing.T) {
	h := Sum([]byte("x"))
	assert.Len(t, h.String(), Size*2)
}
