// Package rag ranks document chunks against a question and assembles the
// context handed to a language model.
package rag

import (
	"sort"
	"strings"
)

const defaultTopK = 3

// Excerpt is one ranked chunk
type Excerpt struct {
	Index   int
	Content string
	Score   int
}

// Result is the outcome of a retrieval
type Result struct {
	Excerpts []Excerpt
	// Matched is false when no chunk shares a keyword with the query and
	// Excerpts falls back to the opening chunk
	Matched bool
}

// Best returns the top excerpt, if any
func (r Result) Best() (Excerpt, bool) {
	if len(r.Excerpts) == 0 {
		return Excerpt{}, false
	}
	return r.Excerpts[0], true
}

// Retriever does keyword retrieval over a document's chunks
type Retriever struct {
	topK int
}

// NewRetriever creates a retriever returning at most topK excerpts
func NewRetriever(topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{topK: topK}
}

// Retrieve ranks chunks by how many query keywords they contain. Ties keep
// document order.
func (r *Retriever) Retrieve(chunks []string, query string) Result {
	if len(chunks) == 0 {
		return Result{}
	}
	keywords := extractKeywords(query)

	var scored []Excerpt
	for i, chunk := range chunks {
		if s := score(chunk, keywords); s > 0 {
			scored = append(scored, Excerpt{Index: i, Content: chunk, Score: s})
		}
	}
	if len(scored) == 0 {
		return Result{Excerpts: []Excerpt{{Index: 0, Content: chunks[0]}}}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return Result{Excerpts: scored, Matched: true}
}

func score(chunk string, keywords []string) int {
	content := strings.ToLower(chunk)
	n := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			n++
		}
	}
	return n
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"what": true, "which": true, "who": true, "when": true, "where": true,
	"why": true, "how": true, "this": true, "that": true, "about": true,
}

// extractKeywords lowercases the query and drops short and stop words
func extractKeywords(query string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(query)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if len(word) > 2 && !stopWords[word] {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
