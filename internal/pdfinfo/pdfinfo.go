// Package pdfinfo reads page counts and text out of PDF bytes with MuPDF.
package pdfinfo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
)

// PreviewLength caps the first-page preview in runes
const PreviewLength = 200

// Info is what the client shows about a local PDF before uploading it
type Info struct {
	Pages   int
	Preview string
}

// Inspect opens a PDF held in memory and reports its page count and a
// short preview of the first page with text.
func Inspect(data []byte) (Info, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	info := Info{Pages: doc.NumPage()}
	for i := 0; i < info.Pages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		if text = collapseSpace(text); text != "" {
			info.Preview = truncate(text, PreviewLength)
			break
		}
	}
	return info, nil
}

// ExtractText returns the text of every page, pages separated by blank lines
func ExtractText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var parts []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
