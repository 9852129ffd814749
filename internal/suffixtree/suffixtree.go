// Package suffixtree precomputes the depth first traversal of the tree of
// words that avoid a set of forbidden patterns, keyed by the last few
// letters of a word.
package suffixtree

import "github.com/projectdiscovery/bundler/internal/words"

// Matcher reports whether a word contains a forbidden pattern.
type Matcher interface {
	Hit(w words.Word) bool
}

// Tree holds the lookup tables for nodes up to a fixed depth. Words
// longer than the depth are looked up by their suffix of that length.
type Tree struct {
	depth      int
	firstChild map[string]words.Symbol
	sibling    map[string]words.Word
	last       map[string]struct{}
}

// Build explores every word of length at most depth that bad does not hit.
// Children are visited in alphabet order.
func Build(alphabet int, bad Matcher, depth int) *Tree {
	if depth < 1 {
		depth = 1
	}
	t := &Tree{
		depth:      depth,
		firstChild: map[string]words.Symbol{},
		sibling:    map[string]words.Word{},
		last:       map[string]struct{}{},
	}
	children := func(node words.Word) []words.Word {
		var out []words.Word
		for sym := 0; sym < alphabet; sym++ {
			child := words.Concat(node, words.Word{words.Symbol(sym)})
			if !bad.Hit(child) {
				out = append(out, child)
			}
		}
		return out
	}

	// upwards[n] is the nearest ancestor-or-self of n that is not a last
	// child, the node to move on from once the subtree of n is exhausted.
	upwards := map[string]words.Word{"": {}}
	nodes := []words.Word{{}}
	for level := 0; level < depth; level++ {
		var next []words.Word
		for _, node := range nodes {
			kids := children(node)
			if len(kids) == 0 {
				continue
			}
			t.firstChild[node.Key()] = kids[0][len(kids[0])-1]
			for i := 0; i+1 < len(kids); i++ {
				t.sibling[kids[i].Key()] = kids[i+1]
				upwards[kids[i].Key()] = kids[i]
			}
			lastChild := kids[len(kids)-1]
			t.sibling[lastChild.Key()] = upwards[node.Key()]
			upwards[lastChild.Key()] = upwards[node.Key()]
			t.last[lastChild.Key()] = struct{}{}
			next = append(next, kids...)
		}
		nodes = next
	}
	for _, node := range nodes {
		if kids := children(node); len(kids) > 0 {
			t.firstChild[node.Key()] = kids[0][len(kids[0])-1]
		}
	}
	return t
}

// Depth is the length of the suffixes used as keys.
func (t *Tree) Depth() int { return t.depth }

func (t *Tree) suffix(w words.Word) words.Word {
	if len(w) <= t.depth {
		return w
	}
	return w[len(w)-t.depth:]
}

// FirstChild returns the first letter that may follow w. ok is false when
// no letter can.
func (t *Tree) FirstChild(w words.Word) (words.Symbol, bool) {
	s, ok := t.firstChild[t.suffix(w).Key()]
	return s, ok
}

// Descend returns w extended by its first child.
func (t *Tree) Descend(w words.Word) (words.Word, bool) {
	s, ok := t.FirstChild(w)
	if !ok {
		return nil, false
	}
	return words.Concat(w, words.Word{s}), true
}

// Backtrack returns the node following the subtree of w in depth first
// order, or an empty word when the traversal is over. w is not modified.
func (t *Tree) Backtrack(w words.Word) words.Word {
	for len(w) > 0 {
		suffix := t.suffix(w)
		next, ok := t.sibling[suffix.Key()]
		if !ok {
			return words.Word{}
		}
		w = words.Concat(w[:len(w)-len(suffix)], next)
		if _, isLast := t.last[suffix.Key()]; !isLast {
			break
		}
	}
	return w
}
