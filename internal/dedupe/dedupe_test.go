package dedupe

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapBackend(t *testing.T) {
	m := NewMapBackend()
	for _, w := range []string{"ab", "aB", "ab", "a"} {
		require.Nil(t, m.Upsert(w))
	}
	require.Equal(t, 3, m.Len())

	var got []string
	require.Nil(t, m.IterCallback(func(word string) {
		got = append(got, word)
	}))
	sort.Strings(got)
	require.Equal(t, []string{"a", "aB", "ab"}, got)
	m.Cleanup()
}

func TestDiskBackend(t *testing.T) {
	d, err := NewDiskBackend()
	require.Nil(t, err)
	defer d.Cleanup()
	for _, w := range []string{"bb", "ab", "bb"} {
		require.Nil(t, d.Upsert(w))
	}
	var got []string
	require.Nil(t, d.IterCallback(func(word string) {
		got = append(got, word)
	}))
	require.ElementsMatch(t, []string{"ab", "bb"}, got)
}
