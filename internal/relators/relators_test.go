package relators

import (
	"errors"
	"testing"

	"github.com/projectdiscovery/bundler/internal/ordering"
	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/stretchr/testify/require"
)

var torus = words.MustAlphabet("aAbB")

type mat [2][2]int64

func (m mat) mul(o mat) mat {
	var out mat
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return out
}

// sl2 represents the torus twists a and b in SL(2, Z); it satisfies every
// relation of the punctured torus mapping class group.
var sl2 = map[byte]mat{
	'a': {{1, 1}, {0, 1}},
	'A': {{1, -1}, {0, 1}},
	'b': {{1, 0}, {-1, 1}},
	'B': {{1, 0}, {1, 1}},
}

func evaluate(w words.Word) mat {
	out := mat{{1, 0}, {0, 1}}
	for _, s := range w {
		out = out.mul(sl2[torus.Letter(s)])
	}
	return out
}

func requireHolds(t *testing.T, rels []Relator) {
	t.Helper()
	for _, r := range rels {
		require.Equal(t, evaluate(r.Pattern), evaluate(r.Replacement), "relator %v", Format(torus, r))
	}
}

func formatAll(rels []Relator) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = Format(torus, r)
	}
	return out
}

func torusSurface() Surface {
	a, b := torus.MustParse("a")[0], torus.MustParse("b")[0]
	return Surface{
		Kinds:         map[words.Symbol]CurveKind{a: Annulus, b: Annulus},
		Intersections: map[[2]words.Symbol]int{{a, b}: 1},
	}
}

func TestParse(t *testing.T) {
	r, err := Parse(torus, "aba=bab")
	require.Nil(t, err)
	require.True(t, r.Balanced())
	require.Equal(t, "aba=bab", Format(torus, r))

	r, err = Parse(torus, "aA=")
	require.Nil(t, err)
	require.False(t, r.Balanced())

	for _, bad := range []string{"aba", "ab=ab", "ax=b"} {
		_, err = Parse(torus, bad)
		require.True(t, errors.Is(err, words.ErrConfiguration), bad)
	}
}

func TestShuffleCommutator(t *testing.T) {
	r, err := Parse(torus, "ab=ba")
	require.Nil(t, err)
	got := formatAll(Shuffle(torus, []Relator{r}))
	require.ElementsMatch(t, []string{
		"ab=ba", "ba=ab", "bA=Ab", "Ab=bA",
		"BA=AB", "AB=BA", "aB=Ba", "Ba=aB",
	}, got)
}

func TestShuffleKeepsRelationsTrue(t *testing.T) {
	derived, err := Derive(torus, torusSurface())
	require.Nil(t, err)
	shuffled := Shuffle(torus, derived)
	require.NotEmpty(t, shuffled)
	requireHolds(t, shuffled)
	for _, r := range shuffled {
		require.False(t, r.Trivial())
	}
	// deterministic order
	require.Equal(t, formatAll(shuffled), formatAll(Shuffle(torus, derived)))
}

func TestDeriveTorus(t *testing.T) {
	derived, err := Derive(torus, torusSurface())
	require.Nil(t, err)
	require.ElementsMatch(t, []string{"aba=bab", "Abba=baaB", "bab=aba", "Baab=abbA"}, formatAll(derived))
	requireHolds(t, derived)
}

func TestDeriveDisjoint(t *testing.T) {
	a, b := torus.MustParse("a")[0], torus.MustParse("b")[0]
	derived, err := Derive(torus, Surface{
		Kinds:         map[words.Symbol]CurveKind{a: Annulus, b: Rectangle},
		Intersections: map[[2]words.Symbol]int{{b, a}: 0},
	})
	require.Nil(t, err)
	require.ElementsMatch(t, []string{"ab=ba", "ba=ab"}, formatAll(derived))
}

func TestDeriveArcs(t *testing.T) {
	alphabet := words.MustAlphabet("aAcCxX")
	a, c, x := alphabet.MustParse("a")[0], alphabet.MustParse("c")[0], alphabet.MustParse("x")[0]
	surface := Surface{
		Kinds:         map[words.Symbol]CurveKind{a: Annulus, c: Annulus, x: Rectangle},
		Intersections: map[[2]words.Symbol]int{{x, c}: 1},
	}
	_, err := Derive(alphabet, surface)
	require.True(t, errors.Is(err, words.ErrConfiguration))

	surface.ArcNeighbours = map[[2]words.Symbol][2]words.Symbol{{x, c}: {a, a}}
	derived, err := Derive(alphabet, surface)
	require.Nil(t, err)
	got := make([]string, len(derived))
	for i, r := range derived {
		got[i] = Format(alphabet, r)
	}
	require.ElementsMatch(t, []string{
		"xcx=aCa", "cxc=aXa", "xcxc=cxcx",
		"Acx=aXC", "Acx=aXC", "Axc=aCX", "Axc=aCX",
	}, got)

	_, err = Derive(alphabet, Surface{Kinds: map[words.Symbol]CurveKind{a: Annulus}})
	require.True(t, errors.Is(err, words.ErrConfiguration))
}

func TestClassify(t *testing.T) {
	balanced, reducing := Classify([]Relator{
		{Pattern: torus.MustParse("ab"), Replacement: torus.MustParse("ba")},
		{Pattern: torus.MustParse("aA"), Replacement: words.Word{}},
	})
	require.Len(t, balanced, 1)
	require.Len(t, reducing, 1)
}

func TestBadPrefixFreeGroup(t *testing.T) {
	patterns := FindBadPrefixRelators(torus, nil, 100, 6, ordering.New())
	got := make([]string, len(patterns))
	for i, p := range patterns {
		got[i] = torus.Format(p)
	}
	require.ElementsMatch(t, []string{"aA", "Aa", "bB", "Bb"}, got)
}

func TestCompletionIsSound(t *testing.T) {
	order := ordering.New()
	derived, err := Derive(torus, torusSurface())
	require.Nil(t, err)
	extended := append(Shuffle(torus, derived), freeReductions(torus)...)
	rs := NewRewritingSystem(order, extended)
	found := rs.FindNewRelators(100, 6)
	require.NotEmpty(t, found)
	requireHolds(t, found)
	for _, r := range found {
		require.True(t, order.Less(r.Replacement, r.Pattern), Format(torus, r))
	}
}

func TestSimplerRelators(t *testing.T) {
	order := ordering.New()
	derived, err := Derive(torus, torusSurface())
	require.Nil(t, err)
	simpler := simplerRelators(torus, Shuffle(torus, derived), 100, 6, order)
	require.NotEmpty(t, simpler)
	requireHolds(t, simpler)
	for _, r := range simpler {
		require.Greater(t, len(r.Pattern), len(r.Replacement), Format(torus, r))
		require.LessOrEqual(t, len(r.Pattern), 6)
	}

	patterns := FindSimplerRelators(torus, nil, 100, 6, order)
	got := make([]string, len(patterns))
	for i, p := range patterns {
		got[i] = torus.Format(p)
	}
	require.ElementsMatch(t, []string{"aA", "Aa", "bB", "Bb"}, got)
}
