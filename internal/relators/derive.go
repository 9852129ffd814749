package relators

import (
	"fmt"

	"github.com/projectdiscovery/bundler/internal/words"
)

// CurveKind is the shape of the support of a generator.
type CurveKind string

const (
	// Annulus generators are Dehn twists about simple closed curves.
	Annulus CurveKind = "annulus"
	// Rectangle generators are half twists about arcs.
	Rectangle CurveKind = "rectangle"
)

// Surface is the intersection data relators are derived from. Keys are
// the lower case generator symbols; pairs are unordered.
type Surface struct {
	Kinds         map[words.Symbol]CurveKind
	Intersections map[[2]words.Symbol]int
	// ArcNeighbours maps (arc, annulus) to the generators (l, r) on either
	// side of the arc where it crosses the annulus.
	ArcNeighbours map[[2]words.Symbol][2]words.Symbol
}

func (s Surface) intersection(x, y words.Symbol) (int, bool) {
	if n, ok := s.Intersections[[2]words.Symbol{x, y}]; ok {
		return n, true
	}
	n, ok := s.Intersections[[2]words.Symbol{y, x}]
	return n, ok
}

// Derive lists the standard relations between generators: disjoint
// supports commute, annuli meeting once braid, and an arc crossing an
// annulus once satisfies the arc relations. Pairs without intersection
// data contribute nothing.
func Derive(a *words.Alphabet, s Surface) ([]Relator, error) {
	var lower []words.Symbol
	for i := 0; i < a.Size(); i++ {
		sym := words.Symbol(i)
		if !a.IsLower(sym) {
			continue
		}
		if _, ok := s.Kinds[sym]; !ok {
			return nil, fmt.Errorf("%w: generator %q has no curve kind", words.ErrConfiguration, a.Letter(sym))
		}
		lower = append(lower, sym)
	}
	for sym, kind := range s.Kinds {
		if kind != Annulus && kind != Rectangle {
			return nil, fmt.Errorf("%w: generator %q has unknown curve kind %q", words.ErrConfiguration, a.Letter(sym), kind)
		}
	}

	var out []Relator
	add := func(x, y words.Word) {
		out = append(out, Relator{Pattern: x, Replacement: y})
	}
	for _, x := range lower {
		for _, y := range lower {
			if x == y {
				continue
			}
			n, ok := s.intersection(x, y)
			if !ok {
				continue
			}
			X, Y := a.Inverse(x), a.Inverse(y)
			kx, ky := s.Kinds[x], s.Kinds[y]
			switch {
			case n == 0 && !(kx == Rectangle && ky == Rectangle):
				add(words.Word{x, y}, words.Word{y, x})
			case n == 1 && kx == Annulus && ky == Annulus:
				add(words.Word{x, y, x}, words.Word{y, x, y})
				add(words.Word{X, y, y, x}, words.Word{y, x, x, Y})
			case n == 1 && kx == Rectangle && ky == Annulus:
				lr, ok := s.ArcNeighbours[[2]words.Symbol{x, y}]
				if !ok {
					return nil, fmt.Errorf("%w: arc %q crosses %q but has no neighbours", words.ErrConfiguration, a.Letter(x), a.Letter(y))
				}
				l, r := lr[0], lr[1]
				L, R := a.Inverse(l), a.Inverse(r)
				add(words.Word{x, y, x}, words.Word{l, Y, r})
				add(words.Word{y, x, y}, words.Word{l, X, r})
				add(words.Word{x, y, x, y}, words.Word{y, x, y, x})
				add(words.Word{L, y, x}, words.Word{r, X, Y})
				add(words.Word{R, y, x}, words.Word{l, X, Y})
				add(words.Word{L, x, y}, words.Word{r, Y, X})
				add(words.Word{R, x, y}, words.Word{l, Y, X})
			}
		}
	}
	return out, nil
}
