// Package fsm contains the finite state machines used to prune the word
// search: a multi-pattern substring matcher, an automaton over clause
// bitmasks and an orbit automaton driven by a group action.
package fsm

import (
	"fmt"
	"slices"

	"github.com/projectdiscovery/bundler/internal/words"
)

// Match is one pattern occurrence. The occurrence covers w[End-len(Pattern):End].
type Match struct {
	End     int
	Index   int
	Pattern words.Word
}

// Automaton is a deterministic machine over symbols 0..alphabet-1 with a
// flat transition table. State 0 is the start. A symbol outside the
// alphabet sends a matcher back to the start since no pattern contains it.
type Automaton struct {
	alphabet int
	table    []int32
	// accept[s] lists pattern indices whose occurrence ends at s.
	accept   [][]int32
	minMatch []int32
	distance []int32
	patterns []words.Word
	// absorbing machines keep accepting once they accepted (CNF).
	absorbing bool
}

// Build compiles patterns into a matcher recognising every word that
// contains at least one of them. Duplicate patterns are kept once.
func Build(alphabet int, patterns []words.Word) (*Automaton, error) {
	if alphabet <= 0 {
		return nil, fmt.Errorf("%w: matcher alphabet must not be empty", words.ErrConfiguration)
	}
	unique := make([]words.Word, 0, len(patterns))
	index := map[string]int{}
	for _, p := range patterns {
		if len(p) == 0 {
			return nil, fmt.Errorf("%w: empty pattern", words.ErrConfiguration)
		}
		for _, s := range p {
			if int(s) >= alphabet {
				return nil, fmt.Errorf("%w: pattern symbol %d outside alphabet of %d", words.ErrConfiguration, s, alphabet)
			}
		}
		if _, ok := index[p.Key()]; ok {
			continue
		}
		index[p.Key()] = len(unique)
		unique = append(unique, p.Clone())
	}

	// every prefix of a pattern is a state
	prefixes := map[string]struct{}{"": {}}
	for _, p := range unique {
		for i := 1; i <= len(p); i++ {
			prefixes[string(p[:i])] = struct{}{}
		}
	}

	m := &Automaton{alphabet: alphabet, patterns: unique}
	states := []words.Word{{}}
	ids := map[string]int32{"": 0}
	for cursor := 0; cursor < len(states); cursor++ {
		path := states[cursor]
		row := make([]int32, alphabet)
		for sym := 0; sym < alphabet; sym++ {
			next := append(path.Clone(), words.Symbol(sym))
			// longest suffix of next that is still a pattern prefix
			for start := 0; start <= len(next); start++ {
				suffix := next[start:]
				if _, ok := prefixes[string(suffix)]; !ok {
					continue
				}
				id, ok := ids[string(suffix)]
				if !ok {
					id = int32(len(states))
					ids[string(suffix)] = id
					states = append(states, suffix.Clone())
				}
				row[sym] = id
				break
			}
		}
		m.table = append(m.table, row...)
	}

	m.accept = make([][]int32, len(states))
	m.minMatch = make([]int32, len(states))
	for id, path := range states {
		for start := 0; start < len(path); start++ {
			if i, ok := index[string(path[start:])]; ok {
				m.accept[id] = append(m.accept[id], int32(i))
				if m.minMatch[id] == 0 || int32(len(path)-start) < m.minMatch[id] {
					m.minMatch[id] = int32(len(path) - start)
				}
			}
		}
		// ascending pattern order inside one end position
		slices.Sort(m.accept[id])
	}
	m.computeDistances()
	return m, nil
}

// States is the number of states.
func (m *Automaton) States() int { return len(m.accept) }

// Patterns returns the deduplicated patterns in index order.
func (m *Automaton) Patterns() []words.Word { return m.patterns }

// Pattern returns pattern i.
func (m *Automaton) Pattern(i int) words.Word { return m.patterns[i] }

func (m *Automaton) step(state int32, s words.Symbol) int32 {
	if int(s) >= m.alphabet {
		if m.absorbing {
			return state
		}
		return 0
	}
	return m.table[int(state)*m.alphabet+int(s)]
}

func (m *Automaton) accepting(state int32) bool {
	return len(m.accept[state]) > 0
}

// Hit reports whether w contains some pattern.
func (m *Automaton) Hit(w words.Word) bool {
	state := int32(0)
	if m.accepting(state) {
		return true
	}
	for _, s := range w {
		state = m.step(state, s)
		if m.accepting(state) {
			return true
		}
	}
	return false
}

// CyclicHit reports whether some pattern no longer than w occurs in a
// cyclic rotation of w.
func (m *Automaton) CyclicHit(w words.Word) bool {
	n := len(w)
	if n == 0 {
		return false
	}
	state := int32(0)
	for i := 0; i < 2*n-1; i++ {
		state = m.step(state, w[i%n])
		if m.accepting(state) && int(m.minMatch[state]) <= n {
			return true
		}
	}
	return false
}

// Evaluate returns every occurrence of every pattern in w, overlapping ones
// included, ordered by end position.
func (m *Automaton) Evaluate(w words.Word) []Match {
	var matches []Match
	state := int32(0)
	for i, s := range w {
		state = m.step(state, s)
		for _, p := range m.accept[state] {
			if int(p) >= len(m.patterns) {
				continue
			}
			matches = append(matches, Match{End: i + 1, Index: int(p), Pattern: m.patterns[p]})
		}
	}
	return matches
}

// Distance is the least number of further symbols needed after reading w
// to reach an accepting state: 0 when w is already accepted and -1 when
// no accepting state is reachable.
func (m *Automaton) Distance(w words.Word) int {
	state := int32(0)
	if m.accepting(state) {
		return 0
	}
	for _, s := range w {
		state = m.step(state, s)
		if m.accepting(state) && !m.absorbing {
			return 0
		}
	}
	return int(m.distance[state])
}

// computeDistances runs a reverse breadth first search from the accepting
// states.
func (m *Automaton) computeDistances() {
	n := len(m.accept)
	reverse := make([][]int32, n)
	for state := 0; state < n; state++ {
		for sym := 0; sym < m.alphabet; sym++ {
			target := m.table[state*m.alphabet+sym]
			reverse[target] = append(reverse[target], int32(state))
		}
	}
	m.distance = make([]int32, n)
	queue := make([]int32, 0, n)
	for state := range m.distance {
		m.distance[state] = -1
		if m.accepting(int32(state)) {
			m.distance[state] = 0
			queue = append(queue, int32(state))
		}
	}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for _, prev := range reverse[state] {
			if m.distance[prev] < 0 {
				m.distance[prev] = m.distance[state] + 1
				queue = append(queue, prev)
			}
		}
	}
}
