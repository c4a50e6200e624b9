// Package lexicon provides tokenization and phrase-aware word-list matching
// shared by the trait scorer and the lexicon emotion classifier.
package lexicon

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it into word tokens. Apostrophes and
// inner hyphens stay part of a word ("don't", "hands-on").
func Tokenize(text string) []string {
	text = strings.ReplaceAll(text, "’", "'")
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-')
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Lexicon maps single words and multi-word phrases to one or more categories.
type Lexicon[C comparable] struct {
	terms    map[string][]C
	maxWords int
}

func New[C comparable](entries map[C][]string) *Lexicon[C] {
	l := &Lexicon[C]{terms: make(map[string][]C)}
	for cat, words := range entries {
		for _, w := range words {
			key := strings.Join(Tokenize(w), " ")
			if key == "" {
				continue
			}
			l.terms[key] = append(l.terms[key], cat)
			if n := strings.Count(key, " ") + 1; n > l.maxWords {
				l.maxWords = n
			}
		}
	}
	return l
}

// Match calls fn for every term occurrence in tokens. Longer phrases win over
// their prefixes and consumed tokens are not matched again.
func (l *Lexicon[C]) Match(tokens []string, fn func(cat C, pos int)) {
	for i := 0; i < len(tokens); {
		matched := 0
		for n := min(l.maxWords, len(tokens)-i); n >= 1; n-- {
			cats, ok := l.terms[strings.Join(tokens[i:i+n], " ")]
			if !ok {
				continue
			}
			for _, c := range cats {
				fn(c, i)
			}
			matched = n
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
}

// Count tallies matches per category.
func (l *Lexicon[C]) Count(tokens []string) map[C]int {
	out := make(map[C]int)
	l.Match(tokens, func(c C, _ int) { out[c]++ })
	return out
}

// Contains reports whether the single token is a term.
func (l *Lexicon[C]) Contains(token string) bool {
	_, ok := l.terms[token]
	return ok
}
