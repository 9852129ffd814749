package bundler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/projectdiscovery/bundler/internal/automorph"
	"github.com/projectdiscovery/bundler/internal/fsm"
	"github.com/projectdiscovery/bundler/internal/homology"
	"github.com/projectdiscovery/bundler/internal/ordering"
	"github.com/projectdiscovery/bundler/internal/relators"
	"github.com/projectdiscovery/bundler/internal/suffixtree"
	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/projectdiscovery/gologger"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// ClauseSeparator splits the clauses of a must contain expression such
// as "aA^bB".
const ClauseSeparator = "^"

// WordFilter is an extra acceptance test run on words that passed the
// cheap checks.
type WordFilter func(e *Engine, word string) bool

// Engine decides which words are the canonical representatives of their
// mapping classes. It is immutable once built and safe for concurrent use.
type Engine struct {
	alphabet *words.Alphabet
	order    *ordering.ShortLex
	opts     Options
	filter   WordFilter

	relators   []relators.Relator
	automorphs *automorph.Table
	starts     []bool

	balanced     *fsm.Automaton
	replacements [][]words.Word
	badPrefix    *fsm.Automaton
	simpler      *fsm.Automaton
	cnf          *fsm.Automaton
	loops        *fsm.Orbit
	tree         *suffixtree.Tree
	homology     *homology.Product
}

// BuildValidityEngine builds every automaton needed to test words over
// alphabet. automorphisms lists the symmetries of the generators (see
// automorph.Parse) and mustContain the clauses every word has to meet.
// A nil geometry builds an engine for the free group.
func BuildValidityEngine(alphabet string, geometry Geometry, automorphisms, mustContain string, filter WordFilter, opts *Options) (*Engine, error) {
	a, err := words.NewAlphabet(alphabet)
	if err != nil {
		return nil, err
	}
	e := &Engine{alphabet: a, order: ordering.New(), filter: filter}
	if opts != nil {
		e.opts = *opts
	}
	e.opts.applyDefaults()

	if e.automorphs, err = automorph.Parse(a, automorphisms, e.opts.SymmetricGenerators()); err != nil {
		return nil, err
	}
	clauses, err := e.parseClauses(mustContain)
	if err != nil {
		return nil, err
	}
	e.starts = e.startingSymbols(clauses)

	gologger.Info().Msgf("Listing relators")
	if err := e.loadRelators(geometry); err != nil {
		return nil, err
	}

	gologger.Info().Msgf("Building FSMs")
	if err := e.buildMatchers(); err != nil {
		return nil, err
	}
	if e.cnf, err = fsm.NewCNF(a.Size(), clauses); err != nil {
		return nil, err
	}
	if err := e.buildGeometry(geometry); err != nil {
		return nil, err
	}

	gologger.Info().Msgf("Constructing suffix tree")
	e.tree = suffixtree.Build(a.Size(), e.badPrefix, e.opts.SuffixDepth)
	return e, nil
}

// NewEngine builds the engine of a configured surface.
func NewEngine(s *Surface, filter WordFilter, opts *Options) (*Engine, error) {
	g, err := NewSurfaceGeometry(s)
	if err != nil {
		return nil, err
	}
	return BuildValidityEngine(s.Generators, g, s.Automorphisms, s.MustContain, filter, opts)
}

func (e *Engine) parseClauses(mustContain string) ([][]words.Symbol, error) {
	var raw []string
	for _, clause := range strings.Split(mustContain, ClauseSeparator) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		letters := []byte(clause)
		sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
		unique := letters[:0]
		for i, c := range letters {
			if i == 0 || c != letters[i-1] {
				unique = append(unique, c)
			}
		}
		raw = append(raw, string(unique))
	}
	dedupe := sliceutil.Dedupe(raw)
	if len(raw) != len(dedupe) {
		gologger.Warning().Msgf("%v duplicate clauses found in %q. purging them..", len(raw)-len(dedupe), mustContain)
	}
	clauses := make([][]words.Symbol, 0, len(dedupe))
	for _, clause := range dedupe {
		w, err := e.alphabet.Parse(clause)
		if err != nil {
			return nil, fmt.Errorf("%w: clause %q: %v", ErrConfiguration, clause, err)
		}
		for _, s := range w {
			if s == e.alphabet.Stop() {
				return nil, fmt.Errorf("%w: clause %q contains the stop letter", ErrConfiguration, clause)
			}
		}
		clauses = append(clauses, w)
	}
	return clauses, nil
}

// startingSymbols allows generators in order up to and including the
// first one that forms a clause on its own (with its inverse when the
// generators are symmetric). Any word can be rotated to start there.
func (e *Engine) startingSymbols(clauses [][]words.Symbol) []bool {
	a := e.alphabet
	starts := make([]bool, a.Size())
	for i := 0; i < a.Size(); i++ {
		s := words.Symbol(i)
		starts[s] = true
		want := []words.Symbol{s}
		if e.opts.SymmetricGenerators() && a.Inverse(s) != s {
			want = append(want, a.Inverse(s))
		}
		for _, clause := range clauses {
			if sameSymbols(clause, want) {
				return starts
			}
		}
	}
	return starts
}

func sameSymbols(x, y []words.Symbol) bool {
	if len(x) != len(y) {
		return false
	}
	seen := map[words.Symbol]struct{}{}
	for _, s := range x {
		seen[s] = struct{}{}
	}
	for _, s := range y {
		if _, ok := seen[s]; !ok {
			return false
		}
	}
	return true
}

func (e *Engine) loadRelators(geometry Geometry) error {
	if geometry == nil {
		return nil
	}
	raw, err := geometry.Relators()
	if err != nil {
		return err
	}
	dedupe := sliceutil.Dedupe(raw)
	if len(raw) != len(dedupe) {
		gologger.Warning().Msgf("%v duplicate relators found. purging them..", len(raw)-len(dedupe))
	}
	rels := make([]relators.Relator, 0, len(dedupe))
	for _, s := range dedupe {
		r, err := relators.Parse(e.alphabet, s)
		if err != nil {
			return err
		}
		rels = append(rels, r)
	}
	e.relators = relators.Shuffle(e.alphabet, rels)
	gologger.Verbose().Msgf("%v relators after shuffling", len(e.relators))
	return nil
}

func (e *Engine) buildMatchers() error {
	a := e.alphabet
	balanced, _ := relators.Classify(e.relators)
	index := map[string]int{}
	var patterns []words.Word
	for _, r := range balanced {
		i, ok := index[r.Pattern.Key()]
		if !ok {
			i = len(patterns)
			index[r.Pattern.Key()] = i
			patterns = append(patterns, r.Pattern)
			e.replacements = append(e.replacements, nil)
		}
		e.replacements[i] = append(e.replacements[i], r.Replacement)
	}
	var err error
	if e.balanced, err = fsm.Build(a.Size(), patterns); err != nil {
		return err
	}

	bad := relators.FindBadPrefixRelators(a, e.relators, e.opts.BadPrefixRelators, e.opts.RelatorMaxLength, e.order)
	if e.badPrefix, err = fsm.Build(a.Size(), bad); err != nil {
		return err
	}
	simpler := relators.FindSimplerRelators(a, e.relators, e.opts.SimplerRelators, e.opts.RelatorMaxLength, e.order)
	if e.simpler, err = fsm.Build(a.Size(), simpler); err != nil {
		return err
	}
	gologger.Verbose().Msgf("%v balanced, %v bad prefix and %v simpler patterns", len(patterns), len(bad), len(simpler))
	return nil
}

func (e *Engine) buildGeometry(geometry Geometry) error {
	a := e.alphabet
	var (
		act   func(byte, string) string
		seeds []string
		rows  map[byte][][]int64
		err   error
	)
	if geometry != nil {
		if act, seeds, err = geometry.LoopAction(); err != nil {
			return err
		}
		if rows, err = geometry.HomologyMatrices(); err != nil {
			return err
		}
	}

	if act == nil {
		e.loops = fsm.NewAction[string](a.Size(), nil, nil, 0)
	} else {
		e.loops = fsm.NewAction(a.Size(), func(s words.Symbol, loop string) string {
			return act(a.Letter(s), loop)
		}, seeds, e.opts.LoopInvariantFsmDepth)
	}
	gologger.Verbose().Msgf("Loop invariant FSM has %v states", e.loops.States())

	if rows == nil {
		if len(e.opts.AcceptableHomologyOrders) > 0 {
			return fmt.Errorf("%w: homology orders are filtered but the geometry has no homology action", ErrConfiguration)
		}
		return nil
	}
	matrices := make([]*homology.Matrix, a.Size())
	for i := range matrices {
		letter := a.Letter(words.Symbol(i))
		r, ok := rows[letter]
		if !ok {
			return fmt.Errorf("%w: generator %q has no homology matrix", ErrConfiguration, letter)
		}
		if matrices[i], err = homology.NewMatrix(r); err != nil {
			return err
		}
	}
	e.homology, err = homology.NewProduct(matrices, e.opts.HomologyCacheThreshold, e.opts.HomologyCacheSize)
	return err
}

// Alphabet returns the generators in order.
func (e *Engine) Alphabet() *words.Alphabet { return e.alphabet }

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Relators returns the shuffled relator database.
func (e *Engine) Relators() []string {
	out := make([]string, 0, len(e.relators))
	for _, r := range e.relators {
		out = append(out, relators.Format(e.alphabet, r))
	}
	return out
}

// Parse converts s to a word over the generators.
func (e *Engine) Parse(s string) (words.Word, error) {
	w, err := e.alphabet.Parse(s)
	if err != nil {
		return nil, err
	}
	for _, sym := range w {
		if sym == e.alphabet.Stop() {
			return nil, fmt.Errorf("%w: %q contains the stop letter", ErrInconsistentState, s)
		}
	}
	return w, nil
}

// generatorsOnly reports whether w uses alphabet letters only, Stop
// excluded.
func (e *Engine) generatorsOnly(w words.Word) bool {
	for _, s := range w {
		if int(s) >= e.alphabet.Size() {
			return false
		}
	}
	return true
}

// Format renders w.
func (e *Engine) Format(w words.Word) string { return e.alphabet.Format(w) }

// Key returns a string whose natural order is the short-lex order of words.
func (e *Engine) Key(w words.Word) string { return e.order.Key(w) }

// ValidPrefix reports whether word can still be extended to a valid word
// of length at most depth.
func (e *Engine) ValidPrefix(word words.Word, depth int) bool {
	if len(word) == 0 {
		return true
	}
	if !e.generatorsOnly(word) || !e.starts[word[0]] {
		return false
	}
	if d := e.cnf.Distance(word); d < 0 || d > depth-len(word) {
		return false
	}
	return e.FirstInClass(word, e.opts.LargestClassPrefix, true)
}

// ValidWord reports whether word is a candidate monodromy: it contains
// every required generator, fixes none of the tracked loops, passes the
// filters and is the least word of its class found.
func (e *Engine) ValidWord(word words.Word) bool {
	if len(word) == 0 || !e.generatorsOnly(word) || !e.cnf.Hit(word) {
		return false
	}
	// w fixes a loop iff its reverse does
	if e.loops.HasCycle(word, e.opts.BasicSearchRange) {
		return false
	}
	if len(e.opts.AcceptableHomologyOrders) > 0 {
		order, err := e.homology.Order(word)
		if err != nil || !e.opts.acceptsOrder(order) {
			return false
		}
	}
	if e.filter != nil && !e.filter(e, e.alphabet.Format(word)) {
		return false
	}
	return e.FirstInClass(word, e.opts.LargestClass, false)
}

// ValidWordString is ValidWord for a written word.
func (e *Engine) ValidWordString(s string) (bool, error) {
	w, err := e.Parse(s)
	if err != nil {
		return false, err
	}
	return e.ValidWord(w), nil
}

// ValidPrefixString is ValidPrefix for a written word.
func (e *Engine) ValidPrefixString(s string, depth int) (bool, error) {
	w, err := e.Parse(s)
	if err != nil {
		return false, err
	}
	return e.ValidPrefix(w, depth), nil
}

// HomologyOrder is |det(H - I)| for the action H of word on first
// homology, the order of the torsion of the mapping torus (0 when
// infinite).
func (e *Engine) HomologyOrder(word words.Word) (int64, error) {
	if e.homology == nil {
		return 0, fmt.Errorf("%w: geometry has no homology action", ErrConfiguration)
	}
	return e.homology.Order(word)
}

// EnumerateSuffixes walks the words extending prefix depth first. It
// returns the valid words of length at most wordDepth found below prefix
// without passing a node of length depth, and the valid prefixes of length
// exactly depth where the walk stopped. Exploring each of those prefixes
// with depth = wordDepth completes the census.
func (e *Engine) EnumerateSuffixes(prefix words.Word, depth, wordDepth int) (valid, prefixes []words.Word, err error) {
	if !(len(prefix) < depth && depth <= wordDepth) {
		return nil, nil, fmt.Errorf("%w: need len(prefix) %d < depth %d <= word depth %d", ErrConfiguration, len(prefix), depth, wordDepth)
	}
	if !e.generatorsOnly(prefix) {
		return nil, nil, fmt.Errorf("%w: prefix is not a word over %q", ErrInconsistentState, e.alphabet.Letters())
	}
	word, ok := e.tree.Descend(prefix)
	if !ok {
		return nil, nil, nil
	}
	for len(word) > 0 && words.HasPrefix(word, prefix) {
		isValid := e.ValidWord(word)
		if isValid {
			valid = append(valid, word)
		}
		switch {
		case len(word) == wordDepth:
			word = e.tree.Backtrack(word)
		case isValid || e.ValidPrefix(word, wordDepth):
			if len(word) == depth {
				prefixes = append(prefixes, word)
				word = e.tree.Backtrack(word)
			} else if next, ok := e.tree.Descend(word); ok {
				word = next
			} else {
				word = e.tree.Backtrack(word)
			}
		default:
			word = e.tree.Backtrack(word)
		}
	}
	return valid, prefixes, nil
}
