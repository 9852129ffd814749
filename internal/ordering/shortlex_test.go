package ordering

import (
	"sort"
	"testing"

	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/stretchr/testify/require"
)

var alphabet = words.MustAlphabet("aAbB")

func parse(s string) words.Word { return alphabet.MustParse(s) }

func TestCompare(t *testing.T) {
	o := New()
	require.True(t, o.Less(parse("B"), parse("aa")))
	require.True(t, o.Less(parse("aA"), parse("ab")))
	require.True(t, o.Less(parse("ab"), parse("a~")))
	require.Equal(t, 0, o.Compare(parse("aB"), parse("aB")))
	require.Equal(t, 1, o.Compare(parse("ba"), parse("aB")))
}

func TestKeyMatchesCompare(t *testing.T) {
	o := New()
	ws := []words.Word{parse("bB"), parse("a"), parse("B~"), parse("Aab"), parse("ab"), parse("A")}
	byKey := append([]words.Word(nil), ws...)
	sort.Slice(byKey, func(i, j int) bool { return o.Key(byKey[i]) < o.Key(byKey[j]) })
	byCompare := append([]words.Word(nil), ws...)
	sort.Slice(byCompare, func(i, j int) bool { return o.Less(byCompare[i], byCompare[j]) })
	require.Equal(t, byCompare, byKey)
}

func TestCyclicComparisons(t *testing.T) {
	o := New()
	require.True(t, o.CyclicallyPrecedesAll(parse("aab"), parse("baa")))
	require.False(t, o.CyclicallyPrecedesAll(parse("aba"), parse("baa")))
	require.True(t, o.CyclicallyPrecedesAll(parse("b"), parse("aa")))
	require.False(t, o.CyclicallyPrecedesAll(parse("aa"), parse("b")))
	// reversed rotations of "abB" are "aBb", "baB" and "Bba"
	require.True(t, o.CyclicallyPrecedesAllReversed(parse("aBb"), parse("abB")))
	require.False(t, o.CyclicallyPrecedesAllReversed(parse("Bba"), parse("abB")))
}

func TestFirstAndRotation(t *testing.T) {
	o := New()
	require.Equal(t, parse("a"), o.First([]words.Word{parse("ab"), parse("a"), parse("B")}))
	require.Nil(t, o.First(nil))
	require.Equal(t, parse("abb"), o.CyclicFirstRotation(parse("bab"), parse("Bba")))
	require.Len(t, o.CyclicFirstRotation(words.Word{}), 0)
}
