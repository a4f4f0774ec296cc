package mockapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfchat/cli/internal/api"
	"github.com/pdfchat/cli/internal/mockapi"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func newClient(t *testing.T, text string, opts ...mockapi.Option) *api.Client {
	t.Helper()
	opts = append(opts, mockapi.WithExtractor(mockapi.ExtractorFunc(func([]byte) (string, error) {
		return text, nil
	})))
	ts := httptest.NewServer(mockapi.New(opts...).Handler())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL)
}

func TestQuotesBestExcerpt(t *testing.T) {
	client := newClient(t, "Cats sleep a lot. Revenue grew twelve percent.", mockapi.WithChunkSize(20))
	ctx := context.Background()

	up := client.UploadDocument(ctx, "report.pdf", samplePDF)
	require.True(t, up.OK(), up.Error)
	assert.Greater(t, up.Data.ChunkCount, 1)

	reply := client.SendMessage(ctx, up.Data.DocumentID, "What about revenue?")
	require.True(t, reply.OK())
	assert.Contains(t, reply.Data.Response, "most relevant passage")
	assert.Contains(t, reply.Data.Response, "Revenue")

	reply = client.SendMessage(ctx, up.Data.DocumentID, "zebras?")
	require.True(t, reply.OK())
	assert.Contains(t, reply.Data.Response, "couldn't find anything")
	assert.Contains(t, reply.Data.Response, "Cats sleep")
}

func TestDefaultExtractorReadsRealPDF(t *testing.T) {
	data, err := os.ReadFile("../pdfinfo/testdata/report.pdf")
	require.NoError(t, err)

	ts := httptest.NewServer(mockapi.New().Handler())
	t.Cleanup(ts.Close)
	client := api.NewClient(ts.URL)
	ctx := context.Background()

	up := client.UploadDocument(ctx, "report.pdf", data)
	require.True(t, up.OK(), up.Error)
	assert.Equal(t, 1, up.Data.ChunkCount)

	reply := client.SendMessage(ctx, up.Data.DocumentID, "How much did revenue grow?")
	require.True(t, reply.OK(), reply.Error)
	assert.Contains(t, reply.Data.Response, "twelve percent")
}

func TestGeneratorAnswers(t *testing.T) {
	gen := &fakeGenerator{reply: "Revenue grew by twelve percent."}
	client := newClient(t, "Revenue grew twelve percent.", mockapi.WithGenerator(gen))
	ctx := context.Background()

	health := client.Health(ctx)
	require.True(t, health.OK())
	assert.True(t, health.Data.OpenAIConfigured)

	up := client.UploadDocument(ctx, "report.pdf", samplePDF)
	require.True(t, up.OK())
	reply := client.SendMessage(ctx, up.Data.DocumentID, "How did revenue change?")
	require.True(t, reply.OK())
	assert.Equal(t, "Revenue grew by twelve percent.", reply.Data.Response)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"report.pdf"`)
	assert.Contains(t, gen.prompts[0], "Revenue grew twelve percent.")
	assert.Contains(t, gen.prompts[0], "How did revenue change?")
}

func TestGeneratorFailureFallsBackToQuote(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("ollama down")}
	client := newClient(t, "Revenue grew twelve percent.", mockapi.WithGenerator(gen))
	ctx := context.Background()

	up := client.UploadDocument(ctx, "report.pdf", samplePDF)
	require.True(t, up.OK())
	reply := client.SendMessage(ctx, up.Data.DocumentID, "revenue?")
	require.True(t, reply.OK())
	assert.Contains(t, reply.Data.Response, "most relevant passage")
}

func TestUploadValidation(t *testing.T) {
	client := newClient(t, "")
	ctx := context.Background()

	res := client.UploadDocument(ctx, "notes.txt", []byte("hello"))
	assert.Equal(t, api.FailureApplication, res.Kind)
	assert.Equal(t, "Only PDF files are allowed", res.Error)

	res = client.UploadDocument(ctx, "blank.pdf", samplePDF)
	assert.Equal(t, "No text found in PDF", res.Error)
}

func TestChatValidation(t *testing.T) {
	client := newClient(t, "Some text.")
	ctx := context.Background()

	up := client.UploadDocument(ctx, "a.pdf", samplePDF)
	require.True(t, up.OK())
	res := client.SendMessage(ctx, up.Data.DocumentID, "   ")
	assert.Equal(t, "Message is required", res.Error)

	hist := client.GetChatHistory(ctx, "nope")
	assert.Equal(t, "Document not found", hist.Error)
}

func TestUnknownRoute(t *testing.T) {
	ts := httptest.NewServer(mockapi.New().Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nothing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := new(strings.Builder)
	_, _ = io.Copy(body, resp.Body)
	assert.JSONEq(t, `{"success":false,"error":"Endpoint not found"}`, body.String())
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mockapi.New().ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
