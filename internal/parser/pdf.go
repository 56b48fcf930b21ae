package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dgallion1/casesheet/internal/document"
)

// DefaultMinCharsPerPage is the text density under which an image-bearing
// PDF is treated as scanned.
const DefaultMinCharsPerPage = 50

// PDFParser handles PDF files. It reads the text layer with the Go library,
// falls back to pdftotext if enabled, and finally to OCR for scanned sheets.
type PDFParser struct {
	FallbackPdftotext bool
	OCR               OCR
	MinCharsPerPage   int
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf requires a ReaderAt+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "casesheet-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc := document.New(trimExt(filename, ".pdf"))
	if pages, images, err := inspectPDF(tmpPath); err == nil {
		doc.PageCount = pages
		doc.HasImages = images
	}

	text, textErr := extractPDFText(ctx, tmpPath)
	if textErr != nil && p.FallbackPdftotext {
		text, textErr = extractPdftotext(ctx, tmpPath)
	}
	if textErr == nil {
		addPages(doc, text)
	}

	if p.OCR != nil && (textErr != nil || NeedsOCR(doc, p.minChars())) {
		scanned, err := p.OCR.ExtractPDF(ctx, tmpPath)
		switch {
		case err != nil && textErr != nil:
			return nil, fmt.Errorf("extract pdf text: %v; ocr: %w", textErr, err)
		case err != nil && doc.Empty():
			return nil, fmt.Errorf("ocr: %w", err)
		case err == nil && strings.TrimSpace(scanned) != "":
			count := doc.PageCount
			doc.Pages = nil
			addPages(doc, scanned)
			doc.PageCount = max(count, doc.PageCount)
			doc.Source = document.SourceOCR
		}
		return doc, nil
	}

	if textErr != nil {
		return nil, fmt.Errorf("extract pdf text: %w", textErr)
	}
	return doc, nil
}

func (p *PDFParser) minChars() int {
	if p.MinCharsPerPage <= 0 {
		return DefaultMinCharsPerPage
	}
	return p.MinCharsPerPage
}

// NeedsOCR reports whether a text-layer document looks scanned: no text at
// all, or images with fewer than minChars characters per page.
func NeedsOCR(doc *document.Document, minChars int) bool {
	if doc.Empty() {
		return true
	}
	if !doc.HasImages || doc.PageCount == 0 {
		return false
	}
	return doc.Chars()/doc.PageCount < minChars
}

func addPages(doc *document.Document, text string) {
	for _, page := range splitPages(text) {
		doc.AddPage(page)
	}
}

// inspectPDF reads page count and whether any page references an image.
func inspectPDF(path string) (int, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, false, fmt.Errorf("pdfcpu read: %w", err)
	}

	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(pctx, pageNr)) > 0 {
			return pctx.PageCount, true, nil
		}
	}
	return pctx.PageCount, false, nil
}

func extractPDFText(ctx context.Context, path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
