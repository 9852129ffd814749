package homology

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/stretchr/testify/require"
)

func mustMatrix(t *testing.T, rows [][]int64) *Matrix {
	m, err := NewMatrix(rows)
	require.Nil(t, err)
	return m
}

func TestDeterminant(t *testing.T) {
	tests := []struct {
		rows [][]int64
		det  int64
	}{
		{[][]int64{}, 1},
		{[][]int64{{5}}, 5},
		{[][]int64{{1, 2}, {3, 4}}, -2},
		{[][]int64{{0, 1}, {1, 0}}, -1},
		{[][]int64{{2, 0, 1}, {1, 3, 2}, {1, 1, 2}}, 6},
		{[][]int64{{0, 2, 1}, {0, 3, 2}, {1, 1, 1}}, 1},
		{[][]int64{{1, 2, 3}, {2, 4, 6}, {0, 1, 1}}, 0},
		{[][]int64{{0, 0, 0, 2}, {0, 0, 3, 0}, {0, 5, 0, 0}, {7, 0, 0, 0}}, 210},
	}
	for _, tc := range tests {
		det, err := mustMatrix(t, tc.rows).Determinant()
		require.Nil(t, err)
		require.Equal(t, tc.det, det, "%v", tc.rows)
	}
}

func TestNewMatrixNotSquare(t *testing.T) {
	_, err := NewMatrix([][]int64{{1, 2}, {3}})
	require.True(t, errors.Is(err, words.ErrConfiguration))
}

func TestMul(t *testing.T) {
	a := mustMatrix(t, [][]int64{{1, 1}, {0, 1}})
	b := mustMatrix(t, [][]int64{{1, 0}, {-1, 1}})
	ab, err := a.Mul(b)
	require.Nil(t, err)
	require.Equal(t, [][]int64{{0, 1}, {-1, 1}}, ab.Rows())
	ai, err := a.Mul(Identity(2))
	require.Nil(t, err)
	require.True(t, ai.Equal(a))
	det, err := a.shiftedDeterminant(-1)
	require.Nil(t, err)
	require.EqualValues(t, 0, det)
}

func TestMulOverflow(t *testing.T) {
	half := mustMatrix(t, [][]int64{{math.MaxInt64 / 2, 0}, {0, 1}})
	_, err := half.Mul(mustMatrix(t, [][]int64{{3, 0}, {0, 1}}))
	require.True(t, errors.Is(err, ErrOverflow))
	_, err = half.Mul(mustMatrix(t, [][]int64{{2, 0}, {0, 1}}))
	require.Nil(t, err)
	// sums overflow too
	_, err = mustMatrix(t, [][]int64{{math.MaxInt64, 1}, {0, 1}}).Mul(mustMatrix(t, [][]int64{{1, 0}, {1, 1}}))
	require.True(t, errors.Is(err, ErrOverflow))

	_, err = mustMatrix(t, [][]int64{{math.MaxInt64, 0}, {0, 2}}).Determinant()
	require.True(t, errors.Is(err, ErrOverflow))
	// exact although the Bareiss intermediates exceed int64
	det, err := mustMatrix(t, [][]int64{{math.MaxInt64, 1}, {math.MaxInt64, 1}}).Determinant()
	require.Nil(t, err)
	require.EqualValues(t, 0, det)
}

func TestOrderLongWords(t *testing.T) {
	a, p := torusProduct(t, 6)
	// (aB)^n acts by the cat map, its order is L(2n) - 2
	order, err := p.Order(a.MustParse(strings.Repeat("aB", 20)))
	require.Nil(t, err)
	require.EqualValues(t, 228826125, order)
	order, err = p.Order(a.MustParse(strings.Repeat("aB", 45)))
	require.Nil(t, err)
	require.EqualValues(t, int64(6440026026380244496), order)

	_, err = p.Order(a.MustParse(strings.Repeat("aB", 46)))
	require.True(t, errors.Is(err, ErrOverflow))
}

func torusProduct(t *testing.T, threshold int) (*words.Alphabet, *Product) {
	a := words.MustAlphabet("aAbB")
	gens := []*Matrix{
		mustMatrix(t, [][]int64{{1, 1}, {0, 1}}),
		mustMatrix(t, [][]int64{{1, -1}, {0, 1}}),
		mustMatrix(t, [][]int64{{1, 0}, {-1, 1}}),
		mustMatrix(t, [][]int64{{1, 0}, {1, 1}}),
	}
	p, err := NewProduct(gens, threshold, 16)
	require.Nil(t, err)
	return a, p
}

func TestOrder(t *testing.T) {
	a, p := torusProduct(t, 6)
	// ba has trace 1 so |det(H - I)| = |2 - 1| = 1
	order, err := p.Order(a.MustParse("ab"))
	require.Nil(t, err)
	require.EqualValues(t, 1, order)

	// Baa has trace 4
	order, err = p.Order(a.MustParse("aaB"))
	require.Nil(t, err)
	require.EqualValues(t, 2, order)

	// a is parabolic: infinite homology
	order, err = p.Order(a.MustParse("a"))
	require.Nil(t, err)
	require.EqualValues(t, 0, order)

	_, err = p.Order(a.MustParse("a~"))
	require.True(t, errors.Is(err, words.ErrInconsistentState))
}

func TestProductCacheMatchesDirect(t *testing.T) {
	a, cached := torusProduct(t, 6)
	_, direct := torusProduct(t, 0)
	for _, s := range []string{"abab", "aabBBa", "abABabAB", "bbbbbbbbba", "AbaBAbaB"} {
		w := a.MustParse(s)
		want, err := direct.Of(w)
		require.Nil(t, err)
		got, err := cached.Of(w)
		require.Nil(t, err)
		require.True(t, want.Equal(got), s)
	}
	require.Greater(t, cached.Cached(), 0)
	require.Equal(t, 0, direct.Cached())
}

func TestProductConcurrent(t *testing.T) {
	a, p := torusProduct(t, 4)
	w := a.MustParse("abAbbaBa")
	want, err := p.Of(w)
	require.Nil(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Of(w)
			require.Nil(t, err)
			require.True(t, want.Equal(got))
		}()
	}
	wg.Wait()
}
