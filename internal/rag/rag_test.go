package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("What is the summary of Chapter 3?")
	assert.Equal(t, []string{"summary", "chapter"}, got)
}

func TestRetrieveRanksByKeywordHits(t *testing.T) {
	chunks := []string{
		"intro about cats",
		"revenue grew in 2024",
		"revenue and profit both grew",
		"closing remarks",
	}
	res := NewRetriever(2).Retrieve(chunks, "How did revenue and profit change?")

	require.True(t, res.Matched)
	require.Len(t, res.Excerpts, 2)
	assert.Equal(t, 2, res.Excerpts[0].Index)
	assert.Equal(t, 2, res.Excerpts[0].Score)
	assert.Equal(t, 1, res.Excerpts[1].Index)
}

func TestRetrieveFallsBackToOpening(t *testing.T) {
	res := NewRetriever(0).Retrieve([]string{"intro", "body"}, "zebra")

	assert.False(t, res.Matched)
	best, ok := res.Best()
	require.True(t, ok)
	assert.Equal(t, "intro", best.Content)
	assert.Zero(t, best.Score)
}

func TestRetrieveEmpty(t *testing.T) {
	res := NewRetriever(3).Retrieve(nil, "anything")
	_, ok := res.Best()
	assert.False(t, ok)
}

func TestBuildPrompt(t *testing.T) {
	cb := NewContextBuilder(0)
	ctx := cb.BuildContext(Result{Excerpts: []Excerpt{{Content: "Revenue grew."}, {Content: "Costs fell."}}})

	assert.Contains(t, ctx, "### Excerpt 1:\nRevenue grew.")
	assert.Contains(t, ctx, "### Excerpt 2:\nCosts fell.")

	prompt := cb.BuildPrompt("report.pdf", ctx, "What happened?")
	assert.Contains(t, prompt, `"report.pdf"`)
	assert.Contains(t, prompt, "## User Question:\nWhat happened?")
}

func TestBuildContextTruncates(t *testing.T) {
	cb := NewContextBuilder(20)
	ctx := cb.BuildContext(Result{Excerpts: []Excerpt{{Content: strings.Repeat("é", 50)}}})

	assert.True(t, strings.HasSuffix(ctx, "[Context truncated...]"))
	assert.Equal(t, 20, len([]rune(strings.TrimSuffix(ctx, "\n\n[Context truncated...]"))))
}
