package fsm

import (
	"errors"
	"testing"

	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/stretchr/testify/require"
)

func clauses(ss ...string) [][]words.Symbol {
	out := make([][]words.Symbol, len(ss))
	for i, s := range ss {
		out[i] = alphabet.MustParse(s)
	}
	return out
}

func TestCNFHit(t *testing.T) {
	m, err := NewCNF(alphabet.Size(), clauses("aA", "bB"))
	require.Nil(t, err)
	require.Equal(t, 4, m.States())

	tests := []struct {
		word string
		hit  bool
		dist int
	}{
		{"", false, 2},
		{"a", false, 1},
		{"AA", false, 1},
		{"aB", true, 0},
		{"bbbA", true, 0},
		{"BBB", false, 1},
	}
	for _, tc := range tests {
		w := alphabet.MustParse(tc.word)
		require.Equal(t, tc.hit, m.Hit(w), tc.word)
		require.Equal(t, tc.dist, m.Distance(w), tc.word)
	}
}

func TestCNFSharedGenerator(t *testing.T) {
	// "a" satisfies both clauses so one letter is enough
	m, err := NewCNF(alphabet.Size(), clauses("ab", "aB"))
	require.Nil(t, err)
	require.Equal(t, 1, m.Distance(words.Word{}))
	require.True(t, m.Hit(alphabet.MustParse("a")))
	require.Equal(t, 1, m.Distance(alphabet.MustParse("b")))
}

func TestCNFNoClauses(t *testing.T) {
	m, err := NewCNF(alphabet.Size(), nil)
	require.Nil(t, err)
	require.True(t, m.Hit(words.Word{}))
	require.Equal(t, 0, m.Distance(alphabet.MustParse("ab")))
}

func TestCNFErrors(t *testing.T) {
	tooMany := make([][]words.Symbol, MaxClauses+1)
	for i := range tooMany {
		tooMany[i] = alphabet.MustParse("a")
	}
	_, err := NewCNF(alphabet.Size(), tooMany)
	require.True(t, errors.Is(err, words.ErrConfiguration))

	_, err = NewCNF(alphabet.Size(), [][]words.Symbol{{}})
	require.True(t, errors.Is(err, words.ErrConfiguration))
}
