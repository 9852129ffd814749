package homology

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/projectdiscovery/bundler/internal/words"
)

// Product multiplies generator matrices along words. Products of short
// words are memoised in a bounded LRU shared by every caller.
type Product struct {
	generators []*Matrix
	dim        int
	threshold  int

	mu    sync.Mutex
	cache *simplelru.LRU
}

// NewProduct takes one matrix per alphabet symbol. Words of length at most
// threshold are cached, keeping at most size entries.
func NewProduct(generators []*Matrix, threshold, size int) (*Product, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("%w: no generator matrices", words.ErrConfiguration)
	}
	dim := generators[0].Size()
	for i, g := range generators {
		if g == nil || g.Size() != dim {
			return nil, fmt.Errorf("%w: generator matrix %d is not %dx%d", words.ErrConfiguration, i, dim, dim)
		}
	}
	if size <= 0 {
		size = 1
	}
	cache, err := simplelru.NewLRU(size, nil)
	if err != nil {
		return nil, err
	}
	return &Product{generators: generators, dim: dim, threshold: threshold, cache: cache}, nil
}

// Of returns the product of the generator matrices of w, left to right.
func (p *Product) Of(w words.Word) (*Matrix, error) {
	for _, s := range w {
		if int(s) >= len(p.generators) {
			return nil, fmt.Errorf("%w: symbol %d has no homology matrix", words.ErrInconsistentState, s)
		}
	}
	return p.of(w)
}

func (p *Product) of(w words.Word) (*Matrix, error) {
	switch len(w) {
	case 0:
		return Identity(p.dim), nil
	case 1:
		return p.generators[w[0]], nil
	}
	cached := len(w) <= p.threshold
	if cached {
		p.mu.Lock()
		v, ok := p.cache.Get(w.Key())
		p.mu.Unlock()
		if ok {
			return v.(*Matrix), nil
		}
	}
	half := len(w) / 2
	left, err := p.of(w[:half])
	if err != nil {
		return nil, err
	}
	right, err := p.of(w[half:])
	if err != nil {
		return nil, err
	}
	m, err := left.Mul(right)
	if err != nil {
		return nil, err
	}
	if cached {
		p.mu.Lock()
		p.cache.Add(w.Key(), m)
		p.mu.Unlock()
	}
	return m, nil
}

// Order is |det(H - I)| where H is the action of w read right to left.
// Zero means the first homology of the mapping torus is infinite.
// ErrOverflow is returned once H or the order leaves the int64 range.
func (p *Product) Order(w words.Word) (int64, error) {
	m, err := p.Of(words.Reverse(w))
	if err != nil {
		return 0, err
	}
	det, err := m.shiftedDeterminant(-1)
	if err != nil {
		return 0, err
	}
	if det < 0 {
		det = -det
	}
	return det, nil
}

// Cached is the number of memoised products.
func (p *Product) Cached() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.Len()
}
