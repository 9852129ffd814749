package bundler

// Engine Options
type Options struct {
	// depth of the precomputed suffix tree
	SuffixDepth int
	// length of the prefixes a census is split into
	PrefixDepth int
	// largest equivalence class explored for a word before accepting it
	// (negative = explore the whole class)
	LargestClass int
	// largest equivalence class explored for a prefix (negative = whole class)
	LargestClassPrefix int
	// number of tracked loops checked for a fixed point (negative = all)
	BasicSearchRange int
	// depth of the orbit of loops under the generators
	LoopInvariantFsmDepth int
	// number of bad prefix relators to look for
	BadPrefixRelators int
	// number of simplifying relators to look for
	SimplerRelators int
	// longest relator considered when completing the relator database
	RelatorMaxLength int
	// longest word whose homology action is cached
	HomologyCacheThreshold int
	// number of cached homology products
	HomologyCacheSize int
	// AsymmetricGenerators when true word, its reverse and its case swap
	// are not treated as the same mapping class
	AsymmetricGenerators bool
	// AcceptableHomologyOrders restricts words to those with one of these
	// homology orders (empty = any)
	AcceptableHomologyOrders []int64
	// prefix placed in front of every word of a census
	MasterPrefix string
	// number of prefixes explored concurrently
	Workers int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	opts := &Options{}
	opts.applyDefaults()
	return opts
}

// SymmetricGenerators reports whether reversal and case swapping are
// symmetries of the generating set.
func (o *Options) SymmetricGenerators() bool { return !o.AsymmetricGenerators }

func (o *Options) applyDefaults() {
	if o.SuffixDepth <= 0 {
		o.SuffixDepth = 3
	}
	if o.PrefixDepth <= 0 {
		o.PrefixDepth = 6
	}
	if o.LargestClass == 0 {
		o.LargestClass = 20
	}
	if o.LargestClassPrefix == 0 {
		o.LargestClassPrefix = 50
	}
	if o.BasicSearchRange == 0 {
		o.BasicSearchRange = 50
	}
	if o.LoopInvariantFsmDepth <= 0 {
		o.LoopInvariantFsmDepth = 4
	}
	if o.BadPrefixRelators <= 0 {
		o.BadPrefixRelators = 100
	}
	if o.SimplerRelators <= 0 {
		o.SimplerRelators = 100
	}
	if o.RelatorMaxLength <= 0 {
		o.RelatorMaxLength = 6
	}
	if o.HomologyCacheThreshold <= 0 {
		o.HomologyCacheThreshold = 6
	}
	if o.HomologyCacheSize <= 0 {
		o.HomologyCacheSize = 4096
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
}

func (o *Options) acceptsOrder(order int64) bool {
	if len(o.AcceptableHomologyOrders) == 0 {
		return true
	}
	for _, v := range o.AcceptableHomologyOrders {
		if v == order {
			return true
		}
	}
	return false
}
