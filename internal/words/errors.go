package words

import "github.com/projectdiscovery/utils/errkit"

var (
	// ErrConfiguration is returned when the engine inputs are malformed
	// (alphabet, clauses, automorphism table, geometry or options).
	ErrConfiguration = errkit.New("invalid configuration")
	// ErrInconsistentState is returned when a word references a symbol
	// the engine was not built for.
	ErrInconsistentState = errkit.New("inconsistent state")
)
