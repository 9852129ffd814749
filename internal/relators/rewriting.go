package relators

import (
	"strings"

	"github.com/projectdiscovery/bundler/internal/ordering"
	"github.com/projectdiscovery/bundler/internal/words"
)

// RewritingSystem runs a bounded Knuth-Bendix style completion. Every
// reduction rewrites a word to a ShortLex smaller one, so any word
// containing a reduction pattern is not the least word of its class.
type RewritingSystem struct {
	order      *ordering.ShortLex
	relations  []Relator
	equations  set
	reductions set
}

// NewRewritingSystem prepares a completion of rels.
func NewRewritingSystem(order *ordering.ShortLex, rels []Relator) *RewritingSystem {
	return &RewritingSystem{order: order, relations: rels}
}

// orient puts the larger side first.
func (rs *RewritingSystem) orient(x, y words.Word) Relator {
	if rs.order.Less(y, x) {
		return Relator{Pattern: x, Replacement: y}
	}
	return Relator{Pattern: y, Replacement: x}
}

// normalise applies rules until none matches.
func normalise(rules []Relator, w words.Word) words.Word {
	for {
		applied := false
		for _, r := range rules {
			i := strings.Index(string(w), string(r.Pattern))
			if i < 0 {
				continue
			}
			w = words.Concat(w[:i], r.Replacement, w[i+len(r.Pattern):])
			applied = true
			break
		}
		if !applied {
			return w
		}
	}
}

// nextEquation picks a shortest equation, ties broken by ShortLex.
func (rs *RewritingSystem) nextEquation() (string, Relator) {
	var bestKey string
	var best Relator
	found := false
	for key, e := range rs.equations {
		if !found || len(e.Pattern) < len(best.Pattern) ||
			(len(e.Pattern) == len(best.Pattern) && lessRelator(rs.order, e, best)) {
			bestKey, best, found = key, e, true
		}
	}
	return bestKey, best
}

func lessRelator(order *ordering.ShortLex, a, b Relator) bool {
	if c := order.Compare(a.Pattern, b.Pattern); c != 0 {
		return c < 0
	}
	return order.Less(a.Replacement, b.Replacement)
}

// FindNewRelators completes the system until it holds n reductions or
// runs out of equations. Critical pairs with a side of length maxLen or
// more are discarded; maxLen <= 0 disables the bound. It returns the
// reductions followed by the equations still outstanding, all oriented
// larger side first.
func (rs *RewritingSystem) FindNewRelators(n, maxLen int) []Relator {
	rs.equations = set{}
	rs.reductions = set{}
	for _, r := range rs.relations {
		rs.equations.add(rs.orient(r.Pattern, r.Replacement))
	}

	within := func(x, y words.Word) bool {
		return maxLen <= 0 || (len(x) < maxLen && len(y) < maxLen)
	}
	// completion need not terminate on its own
	budget := 64 * (n + len(rs.relations) + 1)
	for steps := 0; len(rs.equations) > 0 && len(rs.reductions) < n && steps < budget; steps++ {
		key, e := rs.nextEquation()
		rules := rs.reductions.sorted(rs.order)
		x, y := normalise(rules, e.Pattern), normalise(rules, e.Replacement)
		if x.Key() != y.Key() {
			r := rs.orient(x, y)
			withR := append(rules[:len(rules):len(rules)], r)

			var stale []Relator
			for k, old := range rs.reductions {
				if words.Contains(old.Replacement, r.Pattern) {
					stale = append(stale, old)
					delete(rs.reductions, k)
				}
			}
			for _, old := range stale {
				rs.reductions.add(Relator{Pattern: old.Pattern, Replacement: normalise(withR, old.Replacement)})
			}
			rules = rs.reductions.sorted(rs.order)

			for _, r2 := range rules {
				limit := min(len(r.Pattern), len(r2.Pattern))
				for k := 1; k <= limit; k++ {
					if string(r.Pattern[len(r.Pattern)-k:]) == string(r2.Pattern[:k]) {
						o1 := normalise(rules, words.Concat(r.Replacement, r2.Pattern[k:]))
						o2 := normalise(rules, words.Concat(r.Pattern[:len(r.Pattern)-k], r2.Replacement))
						if o1.Key() != o2.Key() && within(o1, o2) {
							rs.equations.add(rs.orient(o1, o2))
						}
						break
					}
				}
				for k := 1; k <= limit; k++ {
					if string(r2.Pattern[len(r2.Pattern)-k:]) == string(r.Pattern[:k]) {
						o1 := normalise(rules, words.Concat(r2.Replacement, r.Pattern[k:]))
						o2 := normalise(rules, words.Concat(r2.Pattern[:len(r2.Pattern)-k], r.Replacement))
						if o1.Key() != o2.Key() && within(o1, o2) {
							rs.equations.add(rs.orient(o1, o2))
						}
						break
					}
				}
			}

			// reductions made redundant by r go back to the equations
			for k, old := range rs.reductions {
				if words.Contains(old.Pattern, r.Pattern) {
					rs.equations[k] = old
				}
			}
			for k := range rs.equations {
				delete(rs.reductions, k)
			}
			rs.reductions.add(r)
		}
		delete(rs.equations, key)
	}

	out := rs.reductions.sorted(rs.order)
	return append(out, rs.equations.sorted(rs.order)...)
}

func freeReductions(a *words.Alphabet) []Relator {
	out := make([]Relator, 0, a.Size())
	for i := 0; i < a.Size(); i++ {
		s := words.Symbol(i)
		out = append(out, Relator{Pattern: words.Word{s, a.Inverse(s)}, Replacement: words.Word{}})
	}
	return out
}

// FindBadPrefixRelators returns patterns that never occur in a least word
// of its class, nor in a prefix of one: the left hand sides of a bounded
// completion of rels plus free reductions.
func FindBadPrefixRelators(a *words.Alphabet, rels []Relator, n, maxLen int, order *ordering.ShortLex) []words.Word {
	extended := append(append([]Relator(nil), rels...), freeReductions(a)...)
	rs := NewRewritingSystem(order, extended)
	return Patterns(rs.FindNewRelators(n, maxLen))
}

// FindSimplerRelators returns patterns equal in the group to a strictly
// shorter word. It composes the unbalanced relators and free reductions
// with rels breadth first until at least n are known or nothing new
// appears. Patterns longer than maxLen are skipped when maxLen > 0.
func FindSimplerRelators(a *words.Alphabet, rels []Relator, n, maxLen int, order *ordering.ShortLex) []words.Word {
	return Patterns(simplerRelators(a, rels, n, maxLen, order))
}

func simplerRelators(a *words.Alphabet, rels []Relator, n, maxLen int, order *ordering.ShortLex) []Relator {
	all := set{}
	for _, r := range rels {
		all.add(r)
		all.add(r.Swap())
	}
	everything := all.sorted(order)

	shorter := set{}
	frontier := set{}
	addShorter := func(into set, x, y words.Word) {
		if len(x) == len(y) {
			return
		}
		if len(x) < len(y) {
			x, y = y, x
		}
		if maxLen > 0 && len(x) > maxLen {
			return
		}
		r := Relator{Pattern: x, Replacement: y}
		if _, ok := shorter[r.key()]; ok {
			return
		}
		into.add(r)
	}
	for _, r := range everything {
		addShorter(frontier, r.Pattern, r.Replacement)
	}
	for _, r := range freeReductions(a) {
		addShorter(frontier, r.Pattern, r.Replacement)
	}

	for len(frontier) > 0 && len(shorter)+len(frontier) < n {
		next := set{}
		for _, r := range frontier.sorted(order) {
			for _, r2 := range everything {
				limit := min(len(r.Pattern), len(r2.Pattern))
				for k := 1; k <= limit; k++ {
					if string(r.Pattern[len(r.Pattern)-k:]) == string(r2.Pattern[:k]) {
						o1 := words.Concat(r.Replacement, r2.Pattern[k:])
						o2 := words.Concat(r.Pattern[:len(r.Pattern)-k], r2.Replacement)
						addShorter(next, o2, o1)
					}
				}
				for k := 1; k <= limit; k++ {
					if string(r2.Pattern[len(r2.Pattern)-k:]) == string(r.Pattern[:k]) {
						o1 := words.Concat(r2.Replacement, r.Pattern[k:])
						o2 := words.Concat(r2.Pattern[:len(r2.Pattern)-k], r.Replacement)
						addShorter(next, o1, o2)
					}
				}
			}
		}
		for k, r := range frontier {
			shorter[k] = r
		}
		for k := range next {
			if _, ok := shorter[k]; ok {
				delete(next, k)
			}
		}
		frontier = next
	}
	for k, r := range frontier {
		shorter[k] = r
	}
	return shorter.sorted(order)
}
