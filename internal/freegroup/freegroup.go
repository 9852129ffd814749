// Package freegroup implements automorphisms of a free group, used as the
// action of twists on the fundamental group of a surface.
package freegroup

import (
	"fmt"
	"sort"

	"github.com/projectdiscovery/bundler/internal/homology"
	"github.com/projectdiscovery/bundler/internal/ordering"
	"github.com/projectdiscovery/bundler/internal/words"
)

// Group is the free group on the lower case letters of an alphabet.
type Group struct {
	alphabet *words.Alphabet
	order    *ordering.ShortLex
	basis    []words.Symbol
}

// New returns the free group generated by the lower case letters of
// letters, e.g. "xXyY".
func New(letters string) (*Group, error) {
	a, err := words.NewAlphabet(letters)
	if err != nil {
		return nil, err
	}
	g := &Group{alphabet: a, order: ordering.New()}
	for i := 0; i < a.Size(); i++ {
		if a.IsLower(words.Symbol(i)) {
			g.basis = append(g.basis, words.Symbol(i))
		}
	}
	return g, nil
}

// Alphabet returns the letters of the group.
func (g *Group) Alphabet() *words.Alphabet { return g.alphabet }

// Rank is the number of free generators.
func (g *Group) Rank() int { return len(g.basis) }

// FreeReduce cancels adjacent inverse pairs.
func (g *Group) FreeReduce(w words.Word) words.Word {
	out := make(words.Word, 0, len(w))
	for _, s := range w {
		if n := len(out); n > 0 && out[n-1] == g.alphabet.Inverse(s) {
			out = out[:n-1]
			continue
		}
		out = append(out, s)
	}
	return out
}

// CyclicReduce freely reduces w and then cancels its ends against each
// other.
func (g *Group) CyclicReduce(w words.Word) words.Word {
	w = g.FreeReduce(w)
	i, j := 0, len(w)
	for j-i >= 2 && w[i] == g.alphabet.Inverse(w[j-1]) {
		i++
		j--
	}
	return w[i:j]
}

// Canonical returns the least rotation of the cyclically reduced w and of
// its inverse. Two words give the same canonical form exactly when they
// represent the same unoriented free homotopy class of loops.
func (g *Group) Canonical(w words.Word) words.Word {
	c := g.CyclicReduce(w)
	return g.order.CyclicFirstRotation(c, g.alphabet.InverseWord(c))
}

// Automorphism maps every letter of the group to a word.
type Automorphism struct {
	group  *Group
	images []words.Word
}

// NewAutomorphism builds an automorphism from the images of some letters.
// A letter without an image is fixed unless its inverse has one, in which
// case it maps to the inverse image.
func (g *Group) NewAutomorphism(images map[byte]string) (*Automorphism, error) {
	a := g.alphabet
	out := make([]words.Word, a.Size())
	letters := make([]byte, 0, len(images))
	for c := range images {
		letters = append(letters, c)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	for _, c := range letters {
		s, ok := a.Symbol(c)
		if !ok || s == a.Stop() {
			return nil, fmt.Errorf("%w: letter %q is not a generator of %q", words.ErrConfiguration, c, a.Letters())
		}
		image, err := a.Parse(images[c])
		if err != nil {
			return nil, fmt.Errorf("%w: image of %q: %v", words.ErrConfiguration, c, err)
		}
		image = g.FreeReduce(image)
		inverse := a.InverseWord(image)
		if prev := out[a.Inverse(s)]; prev != nil && prev.Key() != inverse.Key() {
			return nil, fmt.Errorf("%w: images of %q and its inverse disagree", words.ErrConfiguration, c)
		}
		out[s] = image
		out[a.Inverse(s)] = inverse
	}
	for i := range out {
		if out[i] == nil {
			out[i] = words.Word{words.Symbol(i)}
		}
	}
	return &Automorphism{group: g, images: out}, nil
}

// Apply returns the freely reduced image of w.
func (f *Automorphism) Apply(w words.Word) words.Word {
	out := make(words.Word, 0, len(w))
	for _, s := range w {
		out = append(out, f.images[s]...)
	}
	return f.group.FreeReduce(out)
}

// Image returns the image of a single letter.
func (f *Automorphism) Image(s words.Symbol) words.Word { return f.images[s] }

// Abelianize returns the action on first homology in the basis of lower
// case generators: column i holds the exponent sums of the image of basis
// element i.
func (f *Automorphism) Abelianize() *homology.Matrix {
	g := f.group
	rows := make([][]int64, len(g.basis))
	for j := range rows {
		rows[j] = make([]int64, len(g.basis))
	}
	for i, gen := range g.basis {
		for _, s := range f.images[gen] {
			for j, b := range g.basis {
				switch s {
				case b:
					rows[j][i]++
				case g.alphabet.Inverse(b):
					rows[j][i]--
				}
			}
		}
	}
	m, _ := homology.NewMatrix(rows)
	return m
}
