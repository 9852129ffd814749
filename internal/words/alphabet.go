package words

import (
	"fmt"
	"strings"
	"unicode"
)

// StopLetter renders the end-of-word sentinel. It sorts after every
// generator and is the padding character of ordering keys.
const StopLetter = '~'

// Symbol is the rank of a letter in its alphabet. The sentinel Stop has
// rank equal to the alphabet size.
type Symbol uint8

// Word is a sequence of symbols. string(w) is a cheap map key.
type Word []Symbol

// Key returns a string usable as a map key.
func (w Word) Key() string { return string(w) }

// Clone returns a copy of w that does not alias it.
func (w Word) Clone() Word {
	out := make(Word, len(w))
	copy(out, w)
	return out
}

// Concat joins words into a freshly allocated word.
func Concat(parts ...Word) Word {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Word, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Reverse returns w read backwards.
func Reverse(w Word) Word {
	out := make(Word, len(w))
	for i, s := range w {
		out[len(w)-1-i] = s
	}
	return out
}

// HasPrefix reports whether w starts with prefix.
func HasPrefix(w, prefix Word) bool {
	if len(prefix) > len(w) {
		return false
	}
	for i := range prefix {
		if w[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Contains reports whether pattern occurs in w as a contiguous subword.
func Contains(w, pattern Word) bool {
	return strings.Contains(string(w), string(pattern))
}

// Alphabet is an ordered set of ASCII letters, closed under inversion.
// The inverse of a letter is its case-swapped partner.
type Alphabet struct {
	letters string
	index   [256]int
	inverse []Symbol
	pair    []int
	pairs   int
}

// NewAlphabet validates letters and builds the rank tables.
func NewAlphabet(letters string) (*Alphabet, error) {
	if letters == "" {
		return nil, fmt.Errorf("%w: empty alphabet", ErrConfiguration)
	}
	if len(letters) >= int(^Symbol(0)) {
		return nil, fmt.Errorf("%w: alphabet of %d letters is too large", ErrConfiguration, len(letters))
	}
	a := &Alphabet{letters: letters}
	for i := range a.index {
		a.index[i] = -1
	}
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= unicode.MaxASCII || !unicode.IsLetter(rune(c)) {
			return nil, fmt.Errorf("%w: alphabet letter %q is not an ASCII letter", ErrConfiguration, c)
		}
		if a.index[c] >= 0 {
			return nil, fmt.Errorf("%w: duplicate alphabet letter %q", ErrConfiguration, c)
		}
		a.index[c] = i
	}
	a.inverse = make([]Symbol, len(letters)+1)
	a.pair = make([]int, len(letters)+1)
	seen := map[byte]int{}
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		partner := swapCase(c)
		j := a.index[partner]
		if j < 0 {
			return nil, fmt.Errorf("%w: alphabet %q is missing inverse of %q", ErrConfiguration, letters, c)
		}
		a.inverse[i] = Symbol(j)
		lower := byte(unicode.ToLower(rune(c)))
		p, ok := seen[lower]
		if !ok {
			p = a.pairs
			seen[lower] = p
			a.pairs++
		}
		a.pair[i] = p
	}
	a.inverse[len(letters)] = a.Stop()
	a.pair[len(letters)] = -1
	return a, nil
}

// MustAlphabet is NewAlphabet for literals known to be valid.
func MustAlphabet(letters string) *Alphabet {
	a, err := NewAlphabet(letters)
	if err != nil {
		panic(err)
	}
	return a
}

// Letters returns the alphabet in rank order.
func (a *Alphabet) Letters() string { return a.letters }

// Size is the number of letters, excluding Stop.
func (a *Alphabet) Size() int { return len(a.letters) }

// Pairs is the number of {x, X} generator pairs.
func (a *Alphabet) Pairs() int { return a.pairs }

// Stop is the end-of-word sentinel.
func (a *Alphabet) Stop() Symbol { return Symbol(len(a.letters)) }

// Symbol returns the rank of c.
func (a *Alphabet) Symbol(c byte) (Symbol, bool) {
	if c == StopLetter {
		return a.Stop(), true
	}
	i := a.index[c]
	if i < 0 {
		return 0, false
	}
	return Symbol(i), true
}

// Letter renders s.
func (a *Alphabet) Letter(s Symbol) byte {
	if int(s) >= len(a.letters) {
		return StopLetter
	}
	return a.letters[s]
}

// IsLower reports whether s is the lower case member of its pair.
func (a *Alphabet) IsLower(s Symbol) bool {
	c := a.Letter(s)
	return c >= 'a' && c <= 'z'
}

// Pair returns the index of the generator pair containing s, -1 for Stop.
func (a *Alphabet) Pair(s Symbol) int {
	if int(s) >= len(a.pair) {
		return -1
	}
	return a.pair[s]
}

// Inverse returns the case-swapped partner of s. Stop is its own inverse.
func (a *Alphabet) Inverse(s Symbol) Symbol {
	if int(s) >= len(a.inverse) {
		return s
	}
	return a.inverse[s]
}

// SwapCase replaces every symbol by its partner without reversing.
func (a *Alphabet) SwapCase(w Word) Word {
	out := make(Word, len(w))
	for i, s := range w {
		out[i] = a.Inverse(s)
	}
	return out
}

// InverseWord returns the group inverse of w: reversed and case-swapped.
func (a *Alphabet) InverseWord(w Word) Word {
	out := make(Word, len(w))
	for i, s := range w {
		out[len(w)-1-i] = a.Inverse(s)
	}
	return out
}

// Valid reports whether every symbol of w is a letter or Stop.
func (a *Alphabet) Valid(w Word) bool {
	for _, s := range w {
		if int(s) > len(a.letters) {
			return false
		}
	}
	return true
}

// Parse converts s to a word. The sentinel '~' is accepted as Stop.
func (a *Alphabet) Parse(s string) (Word, error) {
	w := make(Word, len(s))
	for i := 0; i < len(s); i++ {
		sym, ok := a.Symbol(s[i])
		if !ok {
			return nil, fmt.Errorf("%w: letter %q of %q is not in alphabet %q", ErrInconsistentState, s[i], s, a.letters)
		}
		w[i] = sym
	}
	return w, nil
}

// MustParse is Parse for literals known to be valid.
func (a *Alphabet) MustParse(s string) Word {
	w, err := a.Parse(s)
	if err != nil {
		panic(err)
	}
	return w
}

// Format renders w.
func (a *Alphabet) Format(w Word) string {
	var sb strings.Builder
	sb.Grow(len(w))
	for _, s := range w {
		sb.WriteByte(a.Letter(s))
	}
	return sb.String()
}

func swapCase(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	case c >= 'A' && c <= 'Z':
		return c - 'A' + 'a'
	}
	return c
}
