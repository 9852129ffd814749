package bundler

import (
	"fmt"

	"github.com/projectdiscovery/bundler/internal/freegroup"
	"github.com/projectdiscovery/bundler/internal/relators"
	"github.com/projectdiscovery/bundler/internal/words"
)

// Geometry describes the surface whose mapping classes are enumerated.
type Geometry interface {
	// Relators lists equalities between words in the generators written
	// as "pattern=replacement".
	Relators() ([]string, error)
	// LoopAction returns how each generator moves a loop on the surface
	// and the loops to start exploring from. A nil action disables the
	// fixed loop test.
	LoopAction() (act func(generator byte, loop string) string, seeds []string, err error)
	// HomologyMatrices returns the action of each generator on first
	// homology, nil when unknown.
	HomologyMatrices() (map[byte][][]int64, error)
}

// SurfaceGeometry is the Geometry of a configured surface. Relators are
// derived from its curves and intersections, loops are cyclic words in
// its fundamental group moved by the configured twists.
type SurfaceGeometry struct {
	surface  *Surface
	alphabet *words.Alphabet
	group    *freegroup.Group
	twists   map[byte]*freegroup.Automorphism
}

// NewSurfaceGeometry validates s.
func NewSurfaceGeometry(s *Surface) (*SurfaceGeometry, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", ErrConfiguration)
	}
	a, err := words.NewAlphabet(s.Generators)
	if err != nil {
		return nil, err
	}
	g := &SurfaceGeometry{surface: s, alphabet: a}
	if s.Pi1 == "" {
		if len(s.Twists) > 0 || len(s.Seeds) > 0 {
			return nil, fmt.Errorf("%w: twists and seeds need pi1 generators", ErrConfiguration)
		}
		return g, nil
	}
	if g.group, err = freegroup.New(s.Pi1); err != nil {
		return nil, err
	}
	g.twists = make(map[byte]*freegroup.Automorphism, a.Size())
	for i := 0; i < a.Size(); i++ {
		letter := a.Letter(words.Symbol(i))
		images, ok := s.Twists[string(letter)]
		if !ok {
			return nil, fmt.Errorf("%w: generator %q has no twist", ErrConfiguration, letter)
		}
		bin := map[byte]string{}
		for k, v := range images {
			if len(k) != 1 {
				return nil, fmt.Errorf("%w: twist %q maps %q which is not a letter", ErrConfiguration, letter, k)
			}
			bin[k[0]] = v
		}
		twist, err := g.group.NewAutomorphism(bin)
		if err != nil {
			return nil, fmt.Errorf("twist %q: %w", letter, err)
		}
		g.twists[letter] = twist
	}
	for k := range s.Twists {
		if len(k) != 1 {
			return nil, fmt.Errorf("%w: twist of unknown generator %q", ErrConfiguration, k)
		}
		if _, ok := a.Symbol(k[0]); !ok {
			return nil, fmt.Errorf("%w: twist of unknown generator %q", ErrConfiguration, k)
		}
	}
	return g, nil
}

// Relators returns the configured relators followed by those derived from
// the intersection data.
func (g *SurfaceGeometry) Relators() ([]string, error) {
	out := append([]string(nil), g.surface.Relators...)
	if len(g.surface.Curves) == 0 {
		return out, nil
	}
	data, err := g.intersectionData()
	if err != nil {
		return nil, err
	}
	derived, err := relators.Derive(g.alphabet, data)
	if err != nil {
		return nil, err
	}
	for _, r := range derived {
		out = append(out, relators.Format(g.alphabet, r))
	}
	return out, nil
}

func (g *SurfaceGeometry) symbol(name, what string) (words.Symbol, error) {
	if len(name) != 1 {
		return 0, fmt.Errorf("%w: %s %q is not a single generator", ErrConfiguration, what, name)
	}
	s, ok := g.alphabet.Symbol(name[0])
	if !ok || s == g.alphabet.Stop() || !g.alphabet.IsLower(s) {
		return 0, fmt.Errorf("%w: %s %q is not a lower case generator of %q", ErrConfiguration, what, name, g.alphabet.Letters())
	}
	return s, nil
}

func (g *SurfaceGeometry) pair(name, what string) ([2]words.Symbol, error) {
	if len(name) != 2 {
		return [2]words.Symbol{}, fmt.Errorf("%w: %s %q must name two generators", ErrConfiguration, what, name)
	}
	x, err := g.symbol(name[:1], what)
	if err != nil {
		return [2]words.Symbol{}, err
	}
	y, err := g.symbol(name[1:], what)
	if err != nil {
		return [2]words.Symbol{}, err
	}
	return [2]words.Symbol{x, y}, nil
}

func (g *SurfaceGeometry) intersectionData() (relators.Surface, error) {
	s := g.surface
	data := relators.Surface{
		Kinds:         map[words.Symbol]relators.CurveKind{},
		Intersections: map[[2]words.Symbol]int{},
		ArcNeighbours: map[[2]words.Symbol][2]words.Symbol{},
	}
	for name, kind := range s.Curves {
		sym, err := g.symbol(name, "curve")
		if err != nil {
			return data, err
		}
		data.Kinds[sym] = relators.CurveKind(kind)
	}
	for name, n := range s.Intersections {
		p, err := g.pair(name, "intersection")
		if err != nil {
			return data, err
		}
		if n < 0 {
			return data, fmt.Errorf("%w: negative intersection %q", ErrConfiguration, name)
		}
		data.Intersections[p] = n
	}
	for name, lr := range s.ArcNeighbours {
		p, err := g.pair(name, "arc")
		if err != nil {
			return data, err
		}
		neighbours, err := g.pair(lr, "arc neighbours")
		if err != nil {
			return data, err
		}
		data.ArcNeighbours[p] = neighbours
	}
	return data, nil
}

// LoopAction moves canonical cyclic words of the fundamental group. The
// default seeds are the free generators and their pairwise products.
func (g *SurfaceGeometry) LoopAction() (func(byte, string) string, []string, error) {
	if g.group == nil {
		return nil, nil, nil
	}
	pi1 := g.group.Alphabet()
	canonical := func(w words.Word) string {
		return pi1.Format(g.group.Canonical(w))
	}

	var seeds []string
	if len(g.surface.Seeds) > 0 {
		for _, raw := range g.surface.Seeds {
			w, err := pi1.Parse(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: seed %q: %v", ErrConfiguration, raw, err)
			}
			if c := canonical(w); c != "" {
				seeds = append(seeds, c)
			}
		}
	} else {
		var basis []words.Symbol
		for i := 0; i < pi1.Size(); i++ {
			if pi1.IsLower(words.Symbol(i)) {
				basis = append(basis, words.Symbol(i))
			}
		}
		for _, x := range basis {
			seeds = append(seeds, canonical(words.Word{x}))
		}
		for i, x := range basis {
			for _, y := range basis[i+1:] {
				seeds = append(seeds, canonical(words.Word{x, y}), canonical(words.Word{x, pi1.Inverse(y)}))
			}
		}
	}

	act := func(generator byte, loop string) string {
		w, err := pi1.Parse(loop)
		if err != nil {
			return loop
		}
		return canonical(g.twists[generator].Apply(w))
	}
	return act, seeds, nil
}

// HomologyMatrices abelianizes the twists.
func (g *SurfaceGeometry) HomologyMatrices() (map[byte][][]int64, error) {
	if g.group == nil {
		return nil, nil
	}
	out := make(map[byte][][]int64, len(g.twists))
	for letter, twist := range g.twists {
		out[letter] = twist.Abelianize().Rows()
	}
	return out, nil
}
