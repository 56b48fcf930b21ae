// Package document holds the text acquired from one case sheet file.
package document

import "strings"

// Text sources.
const (
	SourceText = "text" // embedded text layer or markup
	SourceOCR  = "ocr"
)

// Document is the root of a parsed case sheet.
type Document struct {
	Title     string // From metadata or filename
	Pages     []Page
	Source    string // SourceText or SourceOCR
	PageCount int    // Physical pages; equals len(Pages) for non-paged formats
	HasImages bool   // Image streams were found (PDF only)
}

// Page is the text of one physical page, or the whole file for formats
// without pages.
type Page struct {
	Number int
	Text   string
}

// New returns an empty text-sourced document.
func New(title string) *Document {
	return &Document{Title: title, Source: SourceText}
}

// AddPage appends a page, skipping blank text. Invalid UTF-8 from a damaged
// text layer is dropped.
func (d *Document) AddPage(text string) {
	text = strings.TrimSpace(strings.ToValidUTF8(text, ""))
	if text == "" {
		return
	}
	d.Pages = append(d.Pages, Page{Number: len(d.Pages) + 1, Text: text})
	if d.PageCount < len(d.Pages) {
		d.PageCount = len(d.Pages)
	}
}

// Text joins page text with newlines.
func (d *Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// Empty reports whether no page carries text.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text()) == ""
}

// Chars counts runes across all pages.
func (d *Document) Chars() int {
	n := 0
	for _, p := range d.Pages {
		n += len([]rune(p.Text))
	}
	return n
}
