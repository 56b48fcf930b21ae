package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/casesheet/internal/document"
)

// ErrNoText is returned when a file yields no text after every extraction
// attempt.
var ErrNoText = errors.New("no readable text found in the case sheet")

// Parser converts raw case sheet bytes into a Document.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error)
}

// OCR renders and recognizes a PDF on disk. Pages are separated by form feeds.
type OCR interface {
	ExtractPDF(ctx context.Context, path string) (string, error)
}

// Options configures the PDF parser; other formats ignore it.
type Options struct {
	FallbackPdftotext bool
	OCR               OCR // nil disables the scanned-page fallback
	MinCharsPerPage   int
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{
			FallbackPdftotext: opts.FallbackPdftotext,
			OCR:               opts.OCR,
			MinCharsPerPage:   opts.MinCharsPerPage,
		}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Parse picks a parser for filename and fails with ErrNoText when the
// result carries no text.
func Parse(ctx context.Context, r io.Reader, filename string, opts Options) (*document.Document, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(ctx, r, filename)
	if err != nil {
		return nil, err
	}
	if doc.Empty() {
		return nil, ErrNoText
	}
	return doc, nil
}

func trimExt(filename string, exts ...string) string {
	base := filepath.Base(filename)
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
