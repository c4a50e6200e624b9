package index

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxFragmentChars bounds a fragment's length in runes.
const DefaultMaxFragmentChars = 800

// Chunk packs whole sentences into pieces of at most max runes.
// A sentence longer than max is split at word boundaries, and a single word
// longer than max is cut at rune boundaries.
func Chunk(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxFragmentChars
	}
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	add := func(piece string) {
		n := utf8.RuneCountInString(piece)
		if curLen > 0 && curLen+1+n > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(piece)
		curLen += n
	}

	for _, s := range Sentences(text) {
		if utf8.RuneCountInString(s) <= max {
			add(s)
			continue
		}
		flush()
		for _, piece := range splitWords(s, max) {
			add(piece)
		}
		flush()
	}
	flush()
	return chunks
}

// Sentences splits text after '.', '!' or '?' followed by whitespace, and at line breaks.
func Sentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	emit := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			out = append(out, strings.Join(strings.Fields(s), " "))
		}
		start = end
	}
	for i, r := range runes {
		switch {
		case r == '\n':
			emit(i + 1)
		case (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]):
			emit(i + 1)
		}
	}
	emit(len(runes))
	return out
}

func splitWords(s string, max int) []string {
	var out []string
	var cur strings.Builder
	curLen := 0
	for _, w := range strings.Fields(s) {
		n := utf8.RuneCountInString(w)
		if n > max {
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
				curLen = 0
			}
			out = append(out, splitRunes(w, max)...)
			continue
		}
		if curLen > 0 && curLen+1+n > max {
			out = append(out, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(w)
		curLen += n
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func splitRunes(w string, max int) []string {
	runes := []rune(w)
	var out []string
	for i := 0; i < len(runes); i += max {
		end := i + max
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}
