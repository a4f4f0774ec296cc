package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfchat/cli/internal/pdfinfo"
)

// MediaTypePDF is the only media type the upload flow accepts
const MediaTypePDF = "application/pdf"

// ErrNotPDF is returned by RequirePDF for anything that does not sniff as a PDF
var ErrNotPDF = errors.New("not a PDF file")

// File is a local file picked for upload
type File struct {
	Name      string
	Path      string
	MediaType string
	Data      []byte
	// Pages is 0 when the file is not a readable PDF
	Pages int
}

// IsPDF reports whether the file's media type is PDF
func (f File) IsPDF() bool {
	return f.MediaType == MediaTypePDF
}

// Size returns the file size in bytes
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// RequirePDF returns ErrNotPDF unless the file is a PDF
func (f File) RequirePDF() error {
	if !f.IsPDF() {
		return fmt.Errorf("%s (%s): %w", f.Name, f.MediaType, ErrNotPDF)
	}
	return nil
}

// OpenFile reads a file for upload. The path may come straight from a
// terminal drop, so surrounding quotes, escaped spaces and a leading ~ are
// accepted. The media type is sniffed from content, not the extension.
func OpenFile(path string) (File, error) {
	path = CleanPath(path)
	if path == "" {
		return File{}, errors.New("no file given")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read file: %w", err)
	}

	f := File{
		Name:      filepath.Base(path),
		Path:      path,
		MediaType: mimetype.Detect(data).String(),
		Data:      data,
	}
	if f.IsPDF() {
		if info, err := pdfinfo.Inspect(data); err == nil {
			f.Pages = info.Pages
		}
	}
	return f, nil
}

// CleanPath normalizes a path typed or dropped into the terminal
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	if len(path) >= 2 {
		first, last := path[0], path[len(path)-1]
		if (first == '\'' || first == '"') && first == last {
			path = path[1 : len(path)-1]
		}
	}
	path = strings.TrimPrefix(path, "file://")
	path = strings.ReplaceAll(path, `\ `, " ")

	if path == "~" || strings.HasPrefix(path, "~/") {
		path = filepath.Join(os.Getenv("HOME"), strings.TrimPrefix(path, "~"))
	}
	return path
}
