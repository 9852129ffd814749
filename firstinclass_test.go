package bundler

import (
	"sort"
	"strings"
	"testing"

	"github.com/projectdiscovery/bundler/internal/relators"
	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/stretchr/testify/require"
)

// leastCommuting returns the least word equal to w when a and b commute:
// its letters sorted, or those of its case swap when smaller. ok is false
// when w is not the shortest word of its element.
func leastCommuting(w string) (least string, ok bool) {
	if strings.Contains(w, "a") && strings.Contains(w, "A") {
		return "", false
	}
	if strings.Contains(w, "b") && strings.Contains(w, "B") {
		return "", false
	}
	rank := func(c byte) int { return strings.IndexByte("aAbB", c) }
	sorted := func(s string) string {
		bin := []byte(s)
		sort.Slice(bin, func(i, j int) bool { return rank(bin[i]) < rank(bin[j]) })
		return string(bin)
	}
	swapped := strings.Map(func(r rune) rune {
		if r >= 'a' {
			return r - 'a' + 'A'
		}
		return r - 'A' + 'a'
	}, w)
	x, y := sorted(w), sorted(swapped)
	for i := 0; i < len(x); i++ {
		if x[i] != y[i] {
			if rank(y[i]) < rank(x[i]) {
				x = y
			}
			break
		}
	}
	return x, true
}

func TestFirstInClassCommuting(t *testing.T) {
	e, err := BuildValidityEngine("aAbB", relatorGeometry{"ab=ba"}, "", "", nil, nil)
	require.Nil(t, err)
	require.Len(t, e.Relators(), 8)

	for _, s := range allWords("aAbB", 4) {
		least, ok := leastCommuting(s)
		want := ok && least == s
		w := e.alphabet.MustParse(s)
		require.Equal(t, want, e.FirstInClass(w, -1, false), s)
		if want {
			// giving up early never rejects the least word
			require.True(t, e.FirstInClass(w, 1, false), s)
		}
	}
}

func TestFirstInClassPrefix(t *testing.T) {
	e, err := BuildValidityEngine("aAbB", relatorGeometry{"ab=ba"}, "", "", nil, nil)
	require.Nil(t, err)

	for _, tc := range []struct {
		prefix string
		want   bool
	}{
		{"a", true},
		{"ab", true},
		{"aab", true},
		// b can be moved in front of a
		{"ba", false},
		{"abA", false},
		// its case swap starts with a
		{"A", false},
	} {
		ok, err := e.FirstInClassString(tc.prefix, -1, true)
		require.Nil(t, err)
		require.Equal(t, tc.want, ok, tc.prefix)
	}
}

func TestFirstInClassAutomorphisms(t *testing.T) {
	e, err := BuildValidityEngine("aAbB", nil, "aAbB|bBaA", "", nil, nil)
	require.Nil(t, err)
	ok, err := e.FirstInClassString("aab", -1, false)
	require.Nil(t, err)
	require.True(t, ok)
	// relabels to aab
	ok, err = e.FirstInClassString("bba", -1, false)
	require.Nil(t, err)
	require.False(t, ok)
}

// cyclicClass lists the words reached from w by substituting balanced
// relators anywhere on the cyclic word, w included.
func cyclicClass(e *Engine, w words.Word) []words.Word {
	var balanced []relators.Relator
	for _, r := range e.relators {
		if r.Balanced() {
			balanced = append(balanced, r)
		}
	}
	seen := map[string]struct{}{w.Key(): {}}
	class := []words.Word{w}
	for i := 0; i < len(class); i++ {
		current := class[i]
		n := len(current)
		for k := 0; k < n; k++ {
			rotation := words.Concat(current[k:], current[:k])
			for _, r := range balanced {
				if len(r.Pattern) > n || !words.HasPrefix(rotation, r.Pattern) {
					continue
				}
				next := words.Concat(r.Replacement, rotation[len(r.Pattern):])
				if _, ok := seen[next.Key()]; ok {
					continue
				}
				seen[next.Key()] = struct{}{}
				class = append(class, next)
			}
		}
	}
	return class
}

func TestFirstInClassBraidConsistency(t *testing.T) {
	s, err := DefaultConfig.Surface("S_1_1")
	require.Nil(t, err)
	e, err := NewEngine(s, nil, nil)
	require.Nil(t, err)

	accepted := 0
	for _, raw := range allWords("aAbB", 6) {
		w := e.alphabet.MustParse(raw)
		if !e.FirstInClass(w, -1, false) {
			continue
		}
		accepted++
		key := e.Key(w)
		for _, other := range cyclicClass(e, w) {
			for k := range other {
				rotation := words.Concat(other[k:], other[:k])
				require.GreaterOrEqual(t, e.Key(rotation), key, "%v reaches %v", raw, e.Format(other))
			}
		}
	}
	require.Greater(t, accepted, 0)
}
