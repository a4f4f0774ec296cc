package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileSniffsContent(t *testing.T) {
	dir := t.TempDir()

	disguised := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(disguised, []byte("just some notes, not a pdf"), 0644))
	f, err := OpenFile(disguised)
	require.NoError(t, err)
	assert.False(t, f.IsPDF(), "extension alone does not make a PDF")
	assert.ErrorIs(t, f.RequirePDF(), ErrNotPDF)

	sniffed := filepath.Join(dir, "scan.bin")
	require.NoError(t, os.WriteFile(sniffed, []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), 0644))
	f, err = OpenFile(sniffed)
	require.NoError(t, err)
	assert.True(t, f.IsPDF())
	assert.Equal(t, MediaTypePDF, f.MediaType)
	assert.Equal(t, "scan.bin", f.Name)
	assert.NoError(t, f.RequirePDF())
}

func TestOpenFileErrors(t *testing.T) {
	_, err := OpenFile("   ")
	assert.Error(t, err)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestCleanPath(t *testing.T) {
	t.Setenv("HOME", "/home/ada")

	cases := map[string]string{
		"  /tmp/a.pdf \n":    "/tmp/a.pdf",
		"'/tmp/my file.pdf'": "/tmp/my file.pdf",
		`"/tmp/my file.pdf"`: "/tmp/my file.pdf",
		`/tmp/my\ file.pdf`:  "/tmp/my file.pdf",
		"file:///tmp/a.pdf":  "/tmp/a.pdf",
		"~/docs/a.pdf":       "/home/ada/docs/a.pdf",
		"relative/a.pdf":     "relative/a.pdf",
		"~someone/a.pdf":     "~someone/a.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanPath(in), in)
	}
}
