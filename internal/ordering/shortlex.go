// Package ordering implements the ShortLex total order on words: shorter
// words first, ties broken letter by letter on alphabet rank with Stop last.
package ordering

import (
	"strings"

	"github.com/projectdiscovery/bundler/internal/words"
)

// ShortLex compares words. Symbols already carry their alphabet rank so
// one order serves every alphabet.
type ShortLex struct{}

// New returns the order.
func New() *ShortLex {
	return &ShortLex{}
}

// Compare returns -1, 0 or 1.
func (o *ShortLex) Compare(a, b words.Word) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether a strictly precedes b.
func (o *ShortLex) Less(a, b words.Word) bool {
	return o.Compare(a, b) < 0
}

// Key maps w to a string whose byte order equals the ShortLex order. The
// key is prefixed with one '~' per letter so that longer words sort later.
func (o *ShortLex) Key(w words.Word) string {
	var sb strings.Builder
	sb.Grow(2 * len(w))
	sb.WriteString(strings.Repeat(string(rune(words.StopLetter)), len(w)))
	for _, s := range w {
		sb.WriteByte('!' + byte(s))
	}
	return sb.String()
}

// First returns the least word of ws, nil when ws is empty.
func (o *ShortLex) First(ws []words.Word) words.Word {
	var best words.Word
	for i, w := range ws {
		if i == 0 || o.Less(w, best) {
			best = w
		}
	}
	return best
}

// CyclicallyPrecedesAll reports whether a is at most every rotation of b.
// Shorter a precedes, longer a does not.
func (o *ShortLex) CyclicallyPrecedesAll(a, b words.Word) bool {
	n := len(b)
	if len(a) != n {
		return len(a) < n
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := a[j], b[(i+j)%n]
			if x < y {
				break
			}
			if x > y {
				return false
			}
		}
	}
	return true
}

// CyclicallyPrecedesAllReversed reports whether a is at most every
// rotation of b read backwards.
func (o *ShortLex) CyclicallyPrecedesAllReversed(a, b words.Word) bool {
	n := len(b)
	if len(a) != n {
		return len(a) < n
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := a[j], b[((i-j)%n+n)%n]
			if x < y {
				break
			}
			if x > y {
				return false
			}
		}
	}
	return true
}

// CyclicFirstRotation returns the least rotation among all rotations of
// every word in ws. All words are expected to have the same length.
func (o *ShortLex) CyclicFirstRotation(ws ...words.Word) words.Word {
	var best words.Word
	found := false
	for _, w := range ws {
		for i := 0; i < len(w) || (i == 0 && len(w) == 0); i++ {
			rotation := words.Concat(w[i:], w[:i])
			if !found || o.Less(rotation, best) {
				best = rotation
				found = true
			}
		}
	}
	return best
}
