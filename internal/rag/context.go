package rag

import (
	"fmt"
	"strings"
)

const defaultMaxChars = 8000

// ContextBuilder turns retrieval results into a model prompt
type ContextBuilder struct {
	maxChars int
}

// NewContextBuilder creates a builder that caps the excerpt context at
// maxChars runes
func NewContextBuilder(maxChars int) *ContextBuilder {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &ContextBuilder{maxChars: maxChars}
}

// BuildContext formats the excerpts of a retrieval
func (cb *ContextBuilder) BuildContext(result Result) string {
	var parts []string
	for i, ex := range result.Excerpts {
		parts = append(parts, fmt.Sprintf("### Excerpt %d:", i+1))
		parts = append(parts, ex.Content)
		parts = append(parts, "")
	}
	context := strings.Join(parts, "\n")

	if r := []rune(context); len(r) > cb.maxChars {
		context = string(r[:cb.maxChars]) + "\n\n[Context truncated...]"
	}
	return context
}

// BuildPrompt wraps the context and the user's question for the model
func (cb *ContextBuilder) BuildPrompt(filename, context, question string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("You are answering questions about the PDF document %q.", filename))
	parts = append(parts, "Answer only from the excerpts below.")
	parts = append(parts, "")

	if context != "" {
		parts = append(parts, "## Document Excerpts:")
		parts = append(parts, context)
		parts = append(parts, "")
	}

	parts = append(parts, "## User Question:")
	parts = append(parts, question)
	parts = append(parts, "")
	parts = append(parts, "If the excerpts do not contain the answer, say so plainly.")

	return strings.Join(parts, "\n")
}
