package processing

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/DeafMist/comment-radar/internal/models"
)

// MaxSources bounds how many user-supplied sources a query may target.
const MaxSources = 5

var (
	urlRegex    = regexp.MustCompile(`http\S+`)
	nonLetters  = regexp.MustCompile(`[^A-Za-z\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
	caseFolding = cases.Fold()
)

var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "am": {}, "an": {}, "and": {},
	"any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "because": {}, "been": {}, "but": {},
	"by": {}, "can": {}, "could": {}, "did": {}, "do": {}, "does": {}, "dont": {}, "for": {},
	"from": {}, "get": {}, "had": {}, "has": {}, "have": {}, "he": {}, "her": {}, "here": {},
	"him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "im": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "just": {}, "like": {}, "me": {}, "more": {}, "my": {},
	"no": {}, "not": {}, "of": {}, "on": {}, "one": {}, "or": {}, "other": {}, "our": {},
	"out": {}, "so": {}, "some": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {}, "up": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "which": {}, "who": {}, "will": {}, "with": {},
	"would": {}, "you": {}, "your": {},
}

// ParseSources splits a comma-separated source list, drops blanks and keeps
// at most MaxSources entries. An empty list becomes the search-everywhere sentinel.
func ParseSources(raw string) []string {
	return LimitSources(strings.Split(raw, ","))
}

// LimitSources applies the ParseSources rules to an already split list.
func LimitSources(items []string) []string {
	out := make([]string, 0, MaxSources)
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
		if len(out) == MaxSources {
			break
		}
	}
	if len(out) == 0 {
		return []string{models.AllSources}
	}
	return out
}

// ContainsFold reports whether text contains keyword under Unicode case folding.
func ContainsFold(text, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(caseFolding.String(text), caseFolding.String(keyword))
}

// RemoveURLs removes everything that starts with "http" up to the next whitespace.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, "")
}

// CleanCloudText joins comment bodies and strips URLs and every character
// that is not an ASCII letter or whitespace.
func CleanCloudText(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	joined := strings.Join(texts, " ")
	joined = RemoveURLs(joined)
	joined = nonLetters.ReplaceAllString(joined, "")
	joined = whitespace.ReplaceAllString(joined, " ")
	return strings.TrimSpace(joined)
}

// WordCount is one entry of a word-cloud frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordFrequencies returns the most frequent words that are not stop-words.
// Ties are broken alphabetically so the output is stable.
func WordFrequencies(text string, limit, minLen int) []WordCount {
	clean := strings.ToLower(text)
	if strings.TrimSpace(clean) == "" {
		return nil
	}

	freq := make(map[string]int)
	for _, token := range strings.Fields(clean) {
		if len([]rune(token)) < minLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		freq[token]++
	}

	if len(freq) == 0 {
		return nil
	}

	pairs := make([]WordCount, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, WordCount{Word: word, Count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count == pairs[j].Count {
			return pairs[i].Word < pairs[j].Word
		}
		return pairs[i].Count > pairs[j].Count
	})

	if limit > 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}
	return pairs
}
