package crdt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLWW_SetNeverRewindsTimestamp(t *testing.T) {
	r := NewLWW("a")
	r.Set(10, "b")
	r.Set(5, "c")

	assert.Equal(t, uint64(10), r.Timestamp)
	assert.Equal(t, "c", r.Get())
}

func TestLWW_MergeKeepsGreaterTimestamp(t *testing.T) {
	for i, tc := range []struct {
		existing LWW[string]
		incoming LWW[string]
		want     string
	}{
		{LWW[string]{Timestamp: 1, Value: "a"}, LWW[string]{Timestamp: 2, Value: "b"}, "b"},
		{LWW[string]{Timestamp: 2, Value: "a"}, LWW[string]{Timestamp: 1, Value: "b"}, "a"},
	} {
		errTag := fmt.Sprintf("test case #%d", i)
		r := tc.existing
		r.Merge(tc.incoming)
		assert.Equal(t, tc.want, r.Get(), errTag)
	}
}

func TestLWW_MergeIsIdempotentAndCommutative(t *testing.T) {
	a := LWW[int]{Timestamp: 3, Value: 7}
	b := LWW[int]{Timestamp: 3, Value: 9}

	ab := a
	ab.Merge(b)
	ba := b
	ba.Merge(a)
	require.Equal(t, ab, ba, "merge must be commutative on a tie")

	again := ab
	again.Merge(b)
	assert.Equal(t, ab, again, "merge must be idempotent")
}

func TestLWWMap_PutMergesSameKey(t *testing.T) {
	m := NewLWWMap[string, int]()
	m.Put("x", 1, 10)
	m.Put("x", 5, 20)
	m.Put("x", 2, 30)

	v, ok := m.Get("x")
	require.True(t, ok)
	assert.Equal(t, 20, v, "later timestamp wins regardless of call order")
}

func TestLWWMap_MergeIsKeyWise(t *testing.T) {
	a := NewLWWMap[string, int]()
	a.Put("x", 1, 1)
	b := NewLWWMap[string, int]()
	b.Put("y", 1, 2)

	a.Merge(b)

	x, ok := a.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, x)
	y, ok := a.Get("y")
	require.True(t, ok)
	assert.Equal(t, 2, y)
}

func TestLWWMap_ItemsDeterministicOrder(t *testing.T) {
	a := NewLWWMap[string, int]()
	a.Put("b", 1, 2)
	a.Put("a", 1, 1)
	a.Put("c", 1, 3)

	items := a.Items()
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Key, items[i].Key)
	}
}

func TestTombstone_MonotoneDelete(t *testing.T) {
	a := Tombstone{}
	b := Tombstone{Deleted: true}

	a.Merge(b)
	assert.True(t, a.Deleted)

	a.Merge(Tombstone{Deleted: false})
	assert.True(t, a.Deleted, "merging with a non-deleted observation must not resurrect")
}
