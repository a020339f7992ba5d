// Package analyzer turns free text into the normalized token stream that is
// the only unit ever indexed or queried. The same analyzer must be used at
// index time and query time; a mismatch silently destroys recall.
package analyzer

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z]+`)

// stopWords is fixed at build time: the general English stop-word set, the
// domain vocabulary that carries no discriminating signal ("player",
// "club", ...), and the post-stem tokens that appear in nearly every
// document and would otherwise swamp the index.
var stopWords = buildStopWords()

func buildStopWords() map[string]struct{} {
	words := []string{
		// general English stop words
		"the", "and", "in", "for", "with", "on", "at", "from", "by", "as", "is", "was",
		"are", "were", "be", "been", "have", "has", "had", "to", "of", "a", "an", "that",
		"this", "these", "those", "it", "its", "or", "but", "not", "what", "which", "who",
		"when", "where", "why", "how", "all", "any", "both", "each", "few", "more", "most",
		"other", "some", "such", "no", "nor", "only", "own", "same", "so", "than", "too",
		"very", "can", "will", "just", "should", "now",
		// domain vocabulary with no discriminating signal
		"player", "club", "team", "football", "soccer", "match", "game", "season",
		"league", "cup", "champions", "premier", "la", "bundesliga", "serie", "current",
		"main", "position", "nationality", "birth", "place",
		// post-stem tokens present in nearly every document
		"comprehensive", "international", "performance", "transfermarkt", "injury",
		"summary", "market", "history", "database", "value", "data", "teammat", "sourc",
		"career", "assist", "app", "minut", "available", "national", "significant",
		"teammate", "transfer", "goal",
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// stem applies the fixed suffix-stripping rules, first match wins.
func stem(word string) string {
	n := len(word)
	switch {
	case n > 5 && strings.HasSuffix(word, "ing"):
		return word[:n-3]
	case n > 4 && strings.HasSuffix(word, "ed"):
		return word[:n-2]
	case n > 4 && strings.HasSuffix(word, "es"):
		return word[:n-2]
	case n > 3 && strings.HasSuffix(word, "s"):
		return word[:n-1]
	default:
		return word
	}
}

func lowerASCII(text string) string {
	b := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

// Tokenize lowercases text, extracts maximal runs of ASCII letters, drops
// words of length <= 2 or present in the stop-word set, and stems the
// survivors.
func Tokenize(text string) []string {
	lowered := lowerASCII(text)
	words := wordPattern.FindAllString(lowered, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if _, isStop := stopWords[w]; isStop {
			continue
		}
		tokens = append(tokens, stem(w))
	}
	return tokens
}

// TokenizeName normalizes a name for name-matching purposes: it skips the
// stop-word filter and the length gate (a two-letter surname must still
// match) but still stems.
func TokenizeName(text string) []string {
	lowered := lowerASCII(text)
	words := wordPattern.FindAllString(lowered, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		tokens = append(tokens, stem(w))
	}
	return tokens
}
