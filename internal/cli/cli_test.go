package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfchat/cli/internal/mockapi"
	"github.com/pdfchat/cli/internal/session"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

const sampleText = "Quarterly report. Revenue grew twelve percent. The outlook for next year is stable."

func newServer(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	srv := mockapi.New(mockapi.WithExtractor(mockapi.ExtractorFunc(func([]byte) (string, error) {
		return sampleText, nil
	})))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--api-url", url}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

var documentID = regexp.MustCompile(`Document ID: (\S+)`)

func TestHealth(t *testing.T) {
	url := newServer(t)

	out, err := execute(t, url, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:    healthy")
	assert.Contains(t, out, "Server:    "+url)
}

func TestHealthUnreachable(t *testing.T) {
	url := newServer(t)
	ts := httptest.NewServer(nil)
	dead := ts.URL
	ts.Close()

	_, err := execute(t, url, "--api-url", dead, "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Network error")
}

func TestUploadAskHistoryDelete(t *testing.T) {
	url := newServer(t)

	out, err := execute(t, url, "upload", writeFile(t, "report.pdf", samplePDF))
	require.NoError(t, err)
	assert.Contains(t, out, "Chunks:      1")
	m := documentID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = execute(t, url, "ask", id, "How", "much", "did", "revenue", "grow?")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue grew twelve percent")

	out, err = execute(t, url, "history", id)
	require.NoError(t, err)
	assert.Contains(t, out, "You: How much did revenue grow?")

	out, err = execute(t, url, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "FILENAME")
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, id)

	out, err = execute(t, url, "docs", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Document deleted successfully")

	_, err = execute(t, url, "ask", id, "anything")
	require.Error(t, err)
	assert.Equal(t, "Document not found", err.Error())

	out, err = execute(t, url, "documents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents uploaded yet.")
}

func TestUploadRejectsNonPDF(t *testing.T) {
	url := newServer(t)

	_, err := execute(t, url, "upload", writeFile(t, "notes.pdf", []byte("plain text")))
	require.Error(t, err)
	assert.Equal(t, session.MsgNotPDF, err.Error())
}

func TestUploadMissingFile(t *testing.T) {
	url := newServer(t)

	_, err := execute(t, url, "upload", filepath.Join(t.TempDir(), "gone.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestHistoryEmpty(t *testing.T) {
	url := newServer(t)
	out, err := execute(t, url, "upload", writeFile(t, "report.pdf", samplePDF))
	require.NoError(t, err)
	id := documentID.FindStringSubmatch(out)[1]

	out, err = execute(t, url, "history", id)
	require.NoError(t, err)
	assert.Equal(t, "No messages yet.\n", out)
}

func TestArgumentValidation(t *testing.T) {
	url := newServer(t)

	_, err := execute(t, url, "ask", "only-id")
	assert.Error(t, err)

	_, err = execute(t, url, "ask", "id", "  ")
	assert.EqualError(t, err, "question is empty")

	_, err = execute(t, url, "history")
	assert.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	url := newServer(t)
	path := writeFile(t, "config.yaml", []byte("api: [not a map"))

	_, err := execute(t, url, "--config", path, "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestMockServerNeedsReachableOllama(t *testing.T) {
	url := newServer(t)
	ts := httptest.NewServer(nil)
	dead := ts.URL
	ts.Close()

	_, err := execute(t, url, "mock-server", "--addr", "127.0.0.1:0", "--ollama-url", dead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select ollama model")
}
