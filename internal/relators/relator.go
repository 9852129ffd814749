// Package relators builds the relator database of a surface: equalities
// between words in the mapping class group generators, closed under
// cyclic shuffling, inversion and swapping, and the rewriting rules
// derived from it.
package relators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/projectdiscovery/bundler/internal/ordering"
	"github.com/projectdiscovery/bundler/internal/words"
)

// Relator states that Pattern and Replacement represent the same group
// element.
type Relator struct {
	Pattern     words.Word
	Replacement words.Word
}

// Balanced relators have sides of equal length.
func (r Relator) Balanced() bool { return len(r.Pattern) == len(r.Replacement) }

// Swap returns the relator read right to left.
func (r Relator) Swap() Relator { return Relator{Pattern: r.Replacement, Replacement: r.Pattern} }

// Trivial relators have identical sides.
func (r Relator) Trivial() bool { return string(r.Pattern) == string(r.Replacement) }

// key separates the sides with a byte no symbol uses.
func (r Relator) key() string {
	return string(r.Pattern) + "\xff" + string(r.Replacement)
}

// Format renders r as "pattern=replacement".
func Format(a *words.Alphabet, r Relator) string {
	return a.Format(r.Pattern) + "=" + a.Format(r.Replacement)
}

// Parse reads a relator written as "pattern=replacement". Either side may
// be empty.
func Parse(a *words.Alphabet, s string) (Relator, error) {
	left, right, ok := strings.Cut(s, "=")
	if !ok {
		return Relator{}, fmt.Errorf("%w: relator %q has no '='", words.ErrConfiguration, s)
	}
	pattern, err := a.Parse(strings.TrimSpace(left))
	if err != nil {
		return Relator{}, fmt.Errorf("%w: relator %q: %v", words.ErrConfiguration, s, err)
	}
	replacement, err := a.Parse(strings.TrimSpace(right))
	if err != nil {
		return Relator{}, fmt.Errorf("%w: relator %q: %v", words.ErrConfiguration, s, err)
	}
	if pattern.Key() == replacement.Key() {
		return Relator{}, fmt.Errorf("%w: relator %q has identical sides", words.ErrConfiguration, s)
	}
	return Relator{Pattern: pattern, Replacement: replacement}, nil
}

// set keeps relators unique.
type set map[string]Relator

func (s set) add(r Relator) {
	s[r.key()] = r
}

func (s set) sorted(order *ordering.ShortLex) []Relator {
	out := make([]Relator, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	Sort(order, out)
	return out
}

// Sort orders relators by pattern then replacement, both in ShortLex.
func Sort(order *ordering.ShortLex, rels []Relator) {
	sort.Slice(rels, func(i, j int) bool {
		if c := order.Compare(rels[i].Pattern, rels[j].Pattern); c != 0 {
			return c < 0
		}
		return order.Less(rels[i].Replacement, rels[j].Replacement)
	})
}

// Shuffle closes rels under the moves that keep a relation true: cyclic
// shuffles that avoid every existing pattern, inversion of both sides and
// swapping the sides. Trivial relators are dropped.
func Shuffle(a *words.Alphabet, rels []Relator) []Relator {
	order := ordering.New()
	base := set{}
	for _, r := range rels {
		base.add(r)
	}

	shuffled := set{}
	for _, r := range base.sorted(order) {
		for _, s := range shuffles(a, r) {
			clean := true
			for _, existing := range base {
				if words.Contains(s.Pattern, existing.Pattern) {
					clean = false
					break
				}
			}
			if clean {
				shuffled.add(s)
			}
		}
	}
	for key, s := range shuffled {
		minimal := true
		for other, t := range shuffled {
			if other != key && words.Contains(s.Pattern, t.Pattern) {
				minimal = false
				break
			}
		}
		if minimal {
			base.add(s)
		}
	}

	for _, r := range base.sorted(order) {
		base.add(Relator{Pattern: a.InverseWord(r.Pattern), Replacement: a.InverseWord(r.Replacement)})
	}
	for _, r := range base.sorted(order) {
		base.add(r.Swap())
	}
	for key, r := range base {
		if r.Trivial() {
			delete(base, key)
		}
	}
	return base.sorted(order)
}

// shuffles moves letters from the front of the pattern to the end of the
// replacement: a1 a2 = b1 b2 gives a2 b2^-1 = a1^-1 b1.
func shuffles(a *words.Alphabet, r Relator) []Relator {
	x, y := r.Pattern, r.Replacement
	out := make([]Relator, 0, len(x))
	for i := 0; i < len(x); i++ {
		split := len(y) - i
		if split < 0 {
			split += len(y)
		}
		if split < 0 {
			split = 0
		}
		out = append(out, Relator{
			Pattern:     words.Concat(x[i:], a.InverseWord(y[split:])),
			Replacement: words.Concat(a.InverseWord(x[:i]), y[:split]),
		})
	}
	return out
}

// Classify splits rels into balanced relators and reducing ones.
func Classify(rels []Relator) (balanced, reducing []Relator) {
	for _, r := range rels {
		if r.Balanced() {
			balanced = append(balanced, r)
		} else {
			reducing = append(reducing, r)
		}
	}
	return balanced, reducing
}

// Patterns returns the patterns of rels, each once, in first-seen order.
func Patterns(rels []Relator) []words.Word {
	seen := map[string]struct{}{}
	var out []words.Word
	for _, r := range rels {
		if _, ok := seen[r.Pattern.Key()]; ok {
			continue
		}
		seen[r.Pattern.Key()] = struct{}{}
		out = append(out, r.Pattern)
	}
	return out
}
