package seq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func less(a, b int) bool { return a < b }

func TestMergeInterleaves(t *testing.T) {
	a := FromSlice([]int{1, 4, 7})
	b := FromSlice([]int{2, 3, 9})
	c := FromSlice([]int{5, 6, 8})

	got, err := Collect(Merge(less, a, b, c))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestMergeStableOnTies(t *testing.T) {
	type item struct {
		source int
		value  int
	}
	lessItem := func(a, b item) bool { return a.value < b.value }

	a := FromSlice([]item{{0, 1}, {0, 2}})
	b := FromSlice([]item{{1, 1}, {1, 2}})

	got, err := Collect(Merge(lessItem, a, b))
	require.NoError(t, err)
	require.Equal(t, []item{{0, 1}, {1, 1}, {0, 2}, {1, 2}}, got)
}

func TestMergeEmptySources(t *testing.T) {
	got, err := Collect(Merge(less))
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMergeSkipsExhaustedSources(t *testing.T) {
	a := Empty[int]()
	b := FromSlice([]int{1, 2})

	got, err := Collect(Merge(less, a, b))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, got)
}
