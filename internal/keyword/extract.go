// Package keyword extracts keywords from review text and aggregates them
// across a corpus by frequency, sentiment and theme.
package keyword

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// minTokenRunes is the shortest token kept; anything shorter is noise.
const minTokenRunes = 4

// Extract lower-cases text, replaces every rune that is not a Latin letter,
// a digit or whitespace with a space, and returns the tokens longer than
// three runes that are not stopwords.
func Extract(text string) []string {
	if text == "" {
		return nil
	}
	// Compose decomposed accents so "é" is one Latin letter.
	text = norm.NFC.String(strings.ToLower(text))

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case unicode.IsLetter(r) && unicode.Is(unicode.Latin, r):
			return r
		default:
			return ' '
		}
	}, text)

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) < minTokenRunes || IsStopword(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Machine-translated reviews carry a banner and, sometimes, the author's
// original text after a marker.
var (
	translatedBanner = regexp.MustCompile(`(?i)\((?:translated by google|traduit par google)\)`)
	originalMarker   = regexp.MustCompile(`(?i)\((?:original|avis d'origine|texte d'origine)\)`)
)

// OriginalSegment reduces a machine-translated review to a single language
// segment: the author's original text when present, otherwise the text with
// the translation banner removed.
func OriginalSegment(text string) string {
	if loc := originalMarker.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:])
	}
	return strings.TrimSpace(translatedBanner.ReplaceAllString(text, ""))
}
