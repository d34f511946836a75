package list

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seqListKeys[K comparable, V any](l *SeqList[K, V]) []K {
	keys := make([]K, 0, l.Len())
	l.Foreach(func(idx int64, key K, val V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func TestSeqList_RemoveByKey(t *testing.T) {
	l := NewSeqList[string, int]()
	require.NoError(t, l.Insert("A", 1))
	require.NoError(t, l.Insert("B", 2))
	require.NoError(t, l.Insert("C", 3))
	require.Equal(t, int64(3), l.Len())

	require.True(t, l.RemoveByKey("B"))
	require.Equal(t, int64(2), l.Len())
	_, ok := l.FindByKey("B")
	require.False(t, ok)

	val, ok := l.FindByKey("A")
	require.True(t, ok)
	require.Equal(t, 1, val)
	val, ok = l.FindByKey("C")
	require.True(t, ok)
	require.Equal(t, 3, val)

	require.False(t, l.RemoveByKey("B"))
	require.Equal(t, int64(2), l.Len())
	require.Equal(t, []string{"A", "C"}, seqListKeys(l))
}

func TestSeqList_InsertPolicy(t *testing.T) {
	testcases := []struct {
		policy   InsertPolicy
		expected []int
	}{
		{InsertAtTail, []int{1, 2, 3, 4}},
		{InsertAtHead, []int{4, 3, 2, 1}},
		{InsertAtTailByWalk, []int{1, 2, 3, 4}},
	}
	for _, tc := range testcases {
		t.Run(tc.policy.String(), func(t *testing.T) {
			l := NewSeqList[int, string](WithSeqListPolicy[int, string](tc.policy))
			require.Equal(t, tc.policy, l.Policy())
			for i := 1; i <= 4; i++ {
				require.NoError(t, l.Insert(i, "v"))
			}
			require.Equal(t, tc.expected, seqListKeys(l))

			key, _, ok := l.Front()
			require.True(t, ok)
			require.Equal(t, tc.expected[0], key)
		})
	}
}

func TestSeqList_UpsertKeepsPosition(t *testing.T) {
	l := NewSeqList[int, string]()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Insert(i, "old"))
	}
	require.NoError(t, l.Insert(2, "new"))
	require.Equal(t, int64(5), l.Len())
	require.Equal(t, []int{0, 1, 2, 3, 4}, seqListKeys(l))
	val, ok := l.Find(2)
	require.True(t, ok)
	require.Equal(t, "new", val)
}

func TestSeqList_TrustedKeys(t *testing.T) {
	l := NewSeqList[int, int](WithSeqListTrustedKeys[int, int]())
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Insert(i, i*i))
	}
	require.Equal(t, int64(100), l.Len())
	for i := 0; i < 100; i++ {
		val, ok := l.Find(i)
		require.True(t, ok)
		require.Equal(t, i*i, val)
	}
}

func TestSeqList_RemoveTailThenAppend(t *testing.T) {
	l := NewSeqList[int, int]()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Insert(i, i))
	}
	require.True(t, l.Remove(2))
	require.NoError(t, l.Insert(9, 9))
	require.Equal(t, []int{0, 1, 9}, seqListKeys(l))

	require.True(t, l.Remove(0))
	require.True(t, l.Remove(1))
	require.True(t, l.Remove(9))
	require.Equal(t, int64(0), l.Len())
	_, _, ok := l.Front()
	require.False(t, ok)

	// The tail is reset with the head.
	require.NoError(t, l.Insert(7, 7))
	require.NoError(t, l.Insert(8, 8))
	require.Equal(t, []int{7, 8}, seqListKeys(l))
}

func TestSeqList_Clear(t *testing.T) {
	l := NewSeqList[int, int]()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Insert(i, i))
	}
	l.Clear()
	require.Equal(t, int64(0), l.Len())
	require.Empty(t, seqListKeys(l))
	_, ok := l.Find(3)
	require.False(t, ok)
	require.False(t, l.Remove(3))

	require.NoError(t, l.Insert(1, 1))
	require.Equal(t, []int{1}, seqListKeys(l))
}

func TestSeqList_ForeachStop(t *testing.T) {
	l := NewSeqList[int, int]()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Insert(i, i))
	}
	visited := 0
	l.Foreach(func(idx int64, key int, val int) bool {
		visited++
		return idx < 2
	})
	require.Equal(t, 3, visited)
}

func TestSeqList_UnknownPolicy(t *testing.T) {
	require.Panics(t, func() {
		NewSeqList[int, int](WithSeqListPolicy[int, int](_insertPolicyMax))
	})
	require.Equal(t, "unknown", _insertPolicyMax.String())
}

func TestParseInsertPolicy(t *testing.T) {
	for _, p := range []InsertPolicy{InsertAtTail, InsertAtHead, InsertAtTailByWalk} {
		parsed, err := ParseInsertPolicy(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}
	parsed, err := ParseInsertPolicy(" HEAD ")
	require.NoError(t, err)
	require.Equal(t, InsertAtHead, parsed)
	_, err = ParseInsertPolicy("middle")
	require.Error(t, err)
}
