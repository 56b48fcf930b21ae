package parser

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/dgallion1/casesheet/internal/document"
)

// TextParser handles plain text files. Blank lines are dropped; every other
// line is kept as-is so headings stay at line start.
type TextParser struct{}

func (p *TextParser) Parse(_ context.Context, r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	doc := document.New(trimExt(filename, ".txt"))
	doc.AddPage(strings.Join(lines, "\n"))
	return doc, nil
}
