// Package automorph parses the symmetries of a generating set and tests
// whether a word is beaten by one of its automorphic images.
package automorph

import (
	"fmt"
	"strings"

	"github.com/projectdiscovery/bundler/internal/ordering"
	"github.com/projectdiscovery/bundler/internal/words"
	"github.com/projectdiscovery/gologger"
)

// RuleSeparator splits the rules of a table, TriggerSeparator splits a
// rule into its trigger set and substitution.
const (
	RuleSeparator    = "|"
	TriggerSeparator = ":"
)

// Rule relabels the alphabet. A rule with a trigger only applies to words
// that avoid every trigger symbol.
type Rule struct {
	Trigger []words.Symbol
	// Map has one entry per symbol, Stop included.
	Map []words.Symbol
}

func (r Rule) apply(w words.Word) words.Word {
	out := make(words.Word, len(w))
	for i, s := range w {
		out[i] = r.Map[s]
	}
	return out
}

func (r Rule) triggered(w words.Word) bool {
	for _, s := range w {
		for _, t := range r.Trigger {
			if s == t {
				return false
			}
		}
	}
	return true
}

// Table is the parsed set of automorphisms of a surface.
type Table struct {
	alphabet  *words.Alphabet
	order     *ordering.ShortLex
	symmetric bool
	always    []Rule
	triggered []Rule
}

// Parse reads rules such as "aAbBxX|AaBbXx|xX:bBaAxX". Each substitution
// lists the image of every alphabet letter in alphabet order. The identity
// is always included. When symmetric is set, reversal and case swapping
// are treated as symmetries too.
func Parse(a *words.Alphabet, rules string, symmetric bool) (*Table, error) {
	t := &Table{alphabet: a, order: ordering.New(), symmetric: symmetric}
	identity := make([]words.Symbol, a.Size()+1)
	for i := range identity {
		identity[i] = words.Symbol(i)
	}
	t.always = append(t.always, Rule{Map: identity})

	seen := map[string]struct{}{ruleKey("", a.Letters()): {}}
	for _, raw := range strings.Split(rules, RuleSeparator) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		trigger, substitution := "", raw
		if i := strings.LastIndex(raw, TriggerSeparator); i >= 0 {
			trigger, substitution = raw[:i], raw[i+len(TriggerSeparator):]
		}
		key := ruleKey(trigger, substitution)
		if _, ok := seen[key]; ok {
			gologger.Warning().Msgf("duplicate automorphism %q, skipping", raw)
			continue
		}
		seen[key] = struct{}{}

		rule, err := parseRule(a, trigger, substitution)
		if err != nil {
			return nil, err
		}
		if len(rule.Trigger) == 0 {
			t.always = append(t.always, rule)
		} else {
			t.triggered = append(t.triggered, rule)
		}
	}
	return t, nil
}

func ruleKey(trigger, substitution string) string {
	return trigger + TriggerSeparator + substitution
}

func parseRule(a *words.Alphabet, trigger, substitution string) (Rule, error) {
	if len(substitution) != a.Size() {
		return Rule{}, fmt.Errorf("%w: automorphism %q must have %d letters", words.ErrConfiguration, substitution, a.Size())
	}
	image, err := a.Parse(substitution)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: automorphism %q: %v", words.ErrConfiguration, substitution, err)
	}
	used := make([]bool, a.Size())
	for _, s := range image {
		if s == a.Stop() || used[s] {
			return Rule{}, fmt.Errorf("%w: automorphism %q is not a permutation of %q", words.ErrConfiguration, substitution, a.Letters())
		}
		used[s] = true
	}
	for i, s := range image {
		if image[a.Inverse(words.Symbol(i))] != a.Inverse(s) {
			return Rule{}, fmt.Errorf("%w: automorphism %q does not commute with inversion", words.ErrConfiguration, substitution)
		}
	}
	rule := Rule{Map: append(image, a.Stop())}
	if trigger != "" {
		rule.Trigger, err = a.Parse(trigger)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: automorphism trigger %q: %v", words.ErrConfiguration, trigger, err)
		}
	}
	return rule, nil
}

// Rules is the number of parsed rules, identity included.
func (t *Table) Rules() int { return len(t.always) + len(t.triggered) }

// Before reports whether word is at most every image of next: every
// applicable relabelling T, and for each of them every rotation of T(next),
// of its inverse and, on symmetric surfaces, of its reverse and its case
// swap. Triggered rules are skipped in prefix mode. word and next have
// the same length.
func (t *Table) Before(word, next words.Word, prefix bool) bool {
	for _, rule := range t.always {
		if !t.beats(word, rule.apply(next)) {
			return false
		}
	}
	if prefix {
		return true
	}
	for _, rule := range t.triggered {
		if rule.triggered(next) && !t.beats(word, rule.apply(next)) {
			return false
		}
	}
	return true
}

func (t *Table) beats(word, image words.Word) bool {
	if !t.order.CyclicallyPrecedesAll(word, image) {
		return false
	}
	if t.symmetric && !t.order.CyclicallyPrecedesAllReversed(word, image) {
		return false
	}
	swapped := t.alphabet.SwapCase(image)
	if t.symmetric && !t.order.CyclicallyPrecedesAll(word, swapped) {
		return false
	}
	// reversed swap is the inverse
	return t.order.CyclicallyPrecedesAllReversed(word, swapped)
}
