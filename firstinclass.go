package bundler

import "github.com/projectdiscovery/bundler/internal/words"

// FirstInClass reports whether word is the least word of its class. The
// class is explored breadth first through the balanced relators: cyclic
// substitutions in word mode, substitutions that stay valid for every
// extension in prefix mode. The search gives up and accepts once
// maxTreeSize words were seen (0 or less explores the whole class), so a
// word can be accepted although a better one exists. It is never rejected
// wrongly. Words with symbols outside the alphabet are rejected.
func (e *Engine) FirstInClass(word words.Word, maxTreeSize int, prefix bool) bool {
	if !e.generatorsOnly(word) || e.badPrefix.Hit(word) {
		return false
	}
	if prefix {
		if e.simpler.Hit(word) {
			return false
		}
	} else if e.simpler.CyclicHit(word) {
		return false
	}

	n := len(word)
	if prefix {
		word = append(word[:n:n], e.alphabet.Stop())
		n++
	}
	if !e.automorphs.Before(word, word, prefix) {
		return false
	}

	seen := map[string]struct{}{word.Key(): {}}
	queue := []words.Word{word}
	for len(queue) > 0 {
		reached := queue[0]
		queue = queue[1:]

		var target words.Word
		if prefix {
			target = reached[:n-1]
		} else {
			target = words.Concat(reached, reached)
		}
		for _, m := range e.balanced.Evaluate(target) {
			b := m.End
			a := b - len(m.Pattern)
			if !prefix && (a >= n || len(m.Pattern) > n) {
				continue
			}
			for _, replace := range e.replacements[m.Index] {
				var next words.Word
				if prefix || b <= n {
					next = words.Concat(reached[:a], replace, reached[b:])
				} else {
					// the occurrence wraps around the end of the word
					next = words.Concat(replace[n-a:], reached[b-n:a], replace[:n-a])
				}
				if _, ok := seen[next.Key()]; ok {
					continue
				}
				if prefix {
					if e.simpler.Hit(next[:n-1]) {
						return false
					}
				} else if e.simpler.CyclicHit(next) {
					return false
				}
				if !e.automorphs.Before(word, next, prefix) {
					return false
				}
				if len(seen) == maxTreeSize {
					return true
				}
				seen[next.Key()] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return true
}

// FirstInClassString is FirstInClass for a written word.
func (e *Engine) FirstInClassString(s string, maxTreeSize int, prefix bool) (bool, error) {
	w, err := e.Parse(s)
	if err != nil {
		return false, err
	}
	return e.FirstInClass(w, maxTreeSize, prefix), nil
}
