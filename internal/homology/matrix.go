// Package homology computes the action of mapping classes on first
// homology and the order of the resulting torsion.
package homology

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/projectdiscovery/utils/errkit"
)

// ErrOverflow is returned when an exact result does not fit in an int64.
var ErrOverflow = errkit.New("homology: integer overflow")

// Matrix is a square integer matrix stored row major.
type Matrix struct {
	n    int
	data []int64
}

// NewMatrix copies rows into a matrix. Rows must form a square.
func NewMatrix(rows [][]int64) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, data: make([]int64, n*n)}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: matrix row %d has %d entries, want %d", words.ErrConfiguration, i, len(row), n)
		}
		copy(m.data[i*n:], row)
	}
	return m, nil
}

// Identity returns the n by n identity.
func Identity(n int) *Matrix {
	m := &Matrix{n: n, data: make([]int64, n*n)}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Size is the number of rows.
func (m *Matrix) Size() int { return m.n }

// At returns entry (i, j).
func (m *Matrix) At(i, j int) int64 { return m.data[i*m.n+j] }

// Rows returns a copy of the entries.
func (m *Matrix) Rows() [][]int64 {
	out := make([][]int64, m.n)
	for i := range out {
		out[i] = append([]int64(nil), m.data[i*m.n:(i+1)*m.n]...)
	}
	return out
}

// Mul returns m * o, or ErrOverflow when an entry leaves the int64 range.
func (m *Matrix) Mul(o *Matrix) (*Matrix, error) {
	n := m.n
	out := &Matrix{n: n, data: make([]int64, n*n)}
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				v, ok := mulAdd(out.data[i*n+j], a, o.data[k*n+j])
				if !ok {
					return nil, fmt.Errorf("%w: product entry (%d, %d)", ErrOverflow, i, j)
				}
				out.data[i*n+j] = v
			}
		}
	}
	return out, nil
}

// mulAdd returns acc + a*b. ok is false on overflow.
func mulAdd(acc, a, b int64) (int64, bool) {
	if a == math.MinInt64 || b == math.MinInt64 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(abs(a)), uint64(abs(b)))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	p := int64(lo)
	if (a < 0) != (b < 0) {
		p = -p
	}
	sum := acc + p
	if (acc > 0 && p > 0 && sum < 0) || (acc < 0 && p < 0 && sum >= 0) {
		return 0, false
	}
	return sum, true
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Equal reports entrywise equality.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.n != o.n {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Determinant uses fraction-free (Bareiss) elimination so every
// intermediate division is exact. Intermediates are big integers, and
// ErrOverflow is returned when the result does not fit in an int64.
func (m *Matrix) Determinant() (int64, error) {
	return m.shiftedDeterminant(0)
}

// shiftedDeterminant is det(m + c*I).
func (m *Matrix) shiftedDeterminant(c int64) (int64, error) {
	n := m.n
	if n == 0 {
		return 1, nil
	}
	a := make([]*big.Int, len(m.data))
	for i, v := range m.data {
		a[i] = big.NewInt(v)
	}
	for i := 0; i < n; i++ {
		a[i*n+i].Add(a[i*n+i], big.NewInt(c))
	}
	negate := false
	prev := big.NewInt(1)
	for i := 0; i < n-1; i++ {
		if a[i*n+i].Sign() == 0 {
			swap := -1
			for r := i + 1; r < n; r++ {
				if a[r*n+i].Sign() != 0 {
					swap = r
					break
				}
			}
			if swap < 0 {
				return 0, nil
			}
			for col := 0; col < n; col++ {
				a[i*n+col], a[swap*n+col] = a[swap*n+col], a[i*n+col]
			}
			negate = !negate
		}
		pivot := a[i*n+i]
		for r := i + 1; r < n; r++ {
			for col := i + 1; col < n; col++ {
				v := new(big.Int).Mul(a[r*n+col], pivot)
				v.Sub(v, new(big.Int).Mul(a[r*n+i], a[i*n+col]))
				a[r*n+col] = v.Quo(v, prev)
			}
		}
		prev = pivot
	}
	det := new(big.Int).Set(a[n*n-1])
	if negate {
		det.Neg(det)
	}
	if !det.IsInt64() {
		return 0, fmt.Errorf("%w: determinant %v", ErrOverflow, det)
	}
	return det.Int64(), nil
}
