package bundler

import "github.com/projectdiscovery/bundler/internal/words"

var (
	// ErrConfiguration is returned when an engine cannot be built from its
	// inputs.
	ErrConfiguration = words.ErrConfiguration
	// ErrInconsistentState is returned when a word uses letters outside
	// the alphabet.
	ErrInconsistentState = words.ErrInconsistentState
)
