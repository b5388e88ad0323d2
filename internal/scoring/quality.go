package scoring

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/docrank/internal/nlp"
)

// Knowledge-quality combination weights.
const (
	structureWeight   = 0.3
	factDensityWeight = 0.3
	clarityWeight     = 0.2
	referenceWeight   = 0.2
)

// Clarity peaks at this average sentence length in words.
const optimalSentenceLength = 15.0

var (
	headingPattern   = regexp.MustCompile(`(?m)^#+\s|^[A-Z][^\n]+\n[-=]+`)
	listPattern      = regexp.MustCompile(`(?m)^\s*[-*]\s|^\s*\d+\.\s`)
	linkPattern      = regexp.MustCompile(`\[.*?\]\(.*?\)|https?://\S+`)
	citationPattern  = regexp.MustCompile(`\[\d+\]|\(\d{4}\)`)
	refHeadPattern   = regexp.MustCompile(`(?i)references:|bibliography:|sources:`)
	definitionRegexp = regexp.MustCompile(`(?i)is\s+(?:a|an|the)\s+.*?(?:that|which|where)`)
	exampleRegexp    = regexp.MustCompile(`(?i)for\s+example|e\.g\.|such\s+as`)
	contextRegexp    = regexp.MustCompile(`(?i)in\s+context|when|where|why`)
)

// Multi-word factual indicators are matched as substrings of the lowercased
// sentence; single words are matched as whole tokens so "this" does not count
// as "is".
var (
	factualPhrases = []string{"defined as", "refers to"}
	factualWords   = map[string]struct{}{
		"is": {}, "are": {}, "was": {}, "were": {},
		"has": {}, "have": {}, "had": {},
		"contains": {}, "includes": {}, "consists": {}, "comprises": {},
		"means": {}, "indicates": {},
	}
)

// knowledgeQuality combines the four content-quality signals.
func knowledgeQuality(content string) float64 {
	return structureWeight*structureScore(content) +
		factDensityWeight*factDensity(content) +
		clarityWeight*clarityScore(content) +
		referenceWeight*referenceScore(content)
}

// structureScore checks for headings, lists, and paragraph breaks.
func structureScore(content string) float64 {
	return checklist(
		headingPattern.MatchString(content),
		listPattern.MatchString(content),
		strings.Contains(content, "\n\n"),
	)
}

// factDensity is the fraction of sentences that carry a factual indicator.
func factDensity(content string) float64 {
	sentences := nlp.Sentences(content)
	if len(sentences) == 0 {
		return 0
	}
	factual := 0
	for _, sent := range sentences {
		if sentenceIsFactual(sent) {
			factual++
		}
	}
	return float64(factual) / float64(len(sentences))
}

func sentenceIsFactual(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, phrase := range factualPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, word := range nlp.Words(lower) {
		if _, ok := factualWords[word]; ok {
			return true
		}
	}
	return false
}

// clarityScore blends sentence-length fit with type-token diversity.
func clarityScore(content string) float64 {
	sentences := nlp.Sentences(content)
	if len(sentences) == 0 {
		return 0
	}

	totalWords := 0
	for _, sent := range sentences {
		totalWords += len(strings.Fields(sent))
	}
	avgLen := float64(totalWords) / float64(len(sentences))
	deviation := avgLen - optimalSentenceLength
	if deviation < 0 {
		deviation = -deviation
	}
	lengthScore := 1.0 - minFloat(deviation/optimalSentenceLength, 1.0)

	words := nlp.Words(content)
	diversityScore := 0.0
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		diversityScore = float64(len(unique)) / float64(len(words))
	}

	return 0.6*lengthScore + 0.4*diversityScore
}

// referenceScore checks for links, citation markers, and a references heading.
func referenceScore(content string) float64 {
	return checklist(
		linkPattern.MatchString(content),
		citationPattern.MatchString(content),
		refHeadPattern.MatchString(content),
	)
}

// completeness checks for a definition, an example marker, and a context
// marker.
func completeness(content string) float64 {
	return checklist(
		definitionRegexp.MatchString(content),
		exampleRegexp.MatchString(content),
		contextRegexp.MatchString(content),
	)
}

// checklist maps k satisfied checks out of len(checks) to k/len.
func checklist(checks ...bool) float64 {
	hit := 0
	for _, c := range checks {
		if c {
			hit++
		}
	}
	return float64(hit) / float64(len(checks))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
