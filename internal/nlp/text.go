// Package nlp provides the rule-based tokenization the scoring pipeline is
// built on. No language model is involved: sentence splitting and salient-term
// extraction are regex/token heuristics, which is all the quality and
// similarity scorers need.
package nlp

import (
	"regexp"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	wordPattern     = regexp.MustCompile(`\w+`)
	sentencePattern = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
)

// Tokenize lowercases text and returns its letter-sequence tokens, stopwords
// excluded.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Words returns every \w+ run of text, lowercased, stopwords included. Used
// for type-token diversity where stopword removal would skew the ratio.
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Sentences splits text on terminal punctuation. A trailing fragment without
// punctuation counts as a sentence.
func Sentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SalientTerms extracts the set of content-bearing terms from text: non-stop
// tokens of at least three letters. A stemmed-token frequency heuristic stands
// in for POS tagging here: noun extraction without a tagger.
func SalientTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		if len(tok) < 3 {
			continue
		}
		terms[stem(tok)] = struct{}{}
	}
	return terms
}

// Jaccard returns |a∩b| / |a∪b|, and 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// stem strips common English suffixes so that plural/singular and simple
// inflections collide ("networks" -> "network", "uses" -> "use").
func stem(tok string) string {
	for _, suffix := range []string{"ies", "ing", "es", "ed", "s"} {
		if strings.HasSuffix(tok, suffix) && len(tok)-len(suffix) >= 3 {
			return tok[:len(tok)-len(suffix)]
		}
	}
	return tok
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was",
		"were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
