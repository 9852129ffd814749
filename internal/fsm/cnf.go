package fsm

import (
	"fmt"

	"github.com/projectdiscovery/bundler/internal/words"
)

// MaxClauses bounds the number of clauses of a CNF automaton; it has one
// state per subset of clauses.
const MaxClauses = 20

// NewCNF builds the automaton accepting exactly the words that contain at
// least one symbol of every clause. State k has bit i set once clause i
// was satisfied. With no clauses every word is accepted.
func NewCNF(alphabet int, clauses [][]words.Symbol) (*Automaton, error) {
	if alphabet <= 0 {
		return nil, fmt.Errorf("%w: automaton alphabet must not be empty", words.ErrConfiguration)
	}
	if len(clauses) > MaxClauses {
		return nil, fmt.Errorf("%w: %d clauses exceed the limit of %d", words.ErrConfiguration, len(clauses), MaxClauses)
	}
	flags := make([]int32, alphabet)
	for i, clause := range clauses {
		if len(clause) == 0 {
			return nil, fmt.Errorf("%w: clause %d is empty", words.ErrConfiguration, i)
		}
		for _, s := range clause {
			if int(s) >= alphabet {
				return nil, fmt.Errorf("%w: clause symbol %d outside alphabet of %d", words.ErrConfiguration, s, alphabet)
			}
			flags[s] |= 1 << i
		}
	}
	n := 1 << len(clauses)
	m := &Automaton{
		alphabet:  alphabet,
		table:     make([]int32, n*alphabet),
		accept:    make([][]int32, n),
		minMatch:  make([]int32, n),
		absorbing: true,
	}
	for state := 0; state < n; state++ {
		for sym := 0; sym < alphabet; sym++ {
			m.table[state*alphabet+sym] = int32(state) | flags[sym]
		}
	}
	m.accept[n-1] = []int32{0}
	m.computeDistances()
	return m, nil
}
