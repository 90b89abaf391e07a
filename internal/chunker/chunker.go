package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the default chunk size in characters.
const DefaultMaxChars = 12000

// Split breaks text into ordered chunks of at most maxChars characters.
// Text within the limit is returned unchanged as a single chunk. Longer text
// is packed greedily by paragraph; a paragraph that cannot fit on its own is
// split by sentences, and a sentence that still cannot fit is cut.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}
	return pack(splitByParagraphs(text), "\n\n", maxChars)
}

// pack accumulates parts into chunks until adding the next would exceed
// maxChars, then starts a new chunk.
func pack(parts []string, joiner string, maxChars int) []string {
	var result []string
	var current strings.Builder
	currentChars := 0
	joinChars := utf8.RuneCountInString(joiner)

	flush := func() {
		if currentChars > 0 {
			result = append(result, current.String())
			current.Reset()
			currentChars = 0
		}
	}

	for _, part := range parts {
		partChars := utf8.RuneCountInString(part)

		// A part larger than a whole chunk is split further.
		if partChars > maxChars {
			flush()
			if joiner == "\n\n" {
				result = append(result, pack(splitSentences(part), " ", maxChars)...)
			} else {
				result = append(result, cut(part, maxChars)...)
			}
			continue
		}

		extra := partChars
		if currentChars > 0 {
			extra += joinChars
		}
		if currentChars+extra > maxChars {
			flush()
			extra = partChars
		}

		if currentChars > 0 {
			current.WriteString(joiner)
		}
		current.WriteString(part)
		currentChars += extra
	}
	flush()

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?' || r == '।' || r == '؟') && i+utf8.RuneLen(r) < len(text) && text[i+utf8.RuneLen(r)] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// cut splits text into pieces of exactly maxChars characters (the last may
// be shorter).
func cut(text string, maxChars int) []string {
	var pieces []string
	for text != "" {
		i, n := 0, 0
		for i < len(text) && n < maxChars {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
			n++
		}
		pieces = append(pieces, text[:i])
		text = text[i:]
	}
	return pieces
}
