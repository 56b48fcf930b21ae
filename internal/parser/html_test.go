package parser

import (
	"context"
	"strings"
	"testing"
)

func TestHTMLParser(t *testing.T) {
	input := `<html><head><title>Ward 4 Sheet</title><style>p{}</style></head>
<body>
<nav>Home | Back</nav>
<h2>Diagnosis</h2>
<p>Community  acquired
pneumonia</p>
<h2>Plan</h2>
<ul><li>Amoxicillin</li><li>Review in 48h</li></ul>
<script>var x = 1;</script>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(context.Background(), strings.NewReader(input), "sheet.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Ward 4 Sheet" {
		t.Errorf("expected title %q, got %q", "Ward 4 Sheet", doc.Title)
	}
	want := "Diagnosis\nCommunity acquired pneumonia\nPlan\nAmoxicillin\nReview in 48h"
	if doc.Text() != want {
		t.Errorf("expected %q, got %q", want, doc.Text())
	}
}

func TestHTMLParser_TitleFromFilename(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(context.Background(), strings.NewReader("<p>hi</p>"), "notes.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
}

func TestHeadingLevel(t *testing.T) {
	for tag, want := range map[string]int{"h1": 1, "h6": 6, "h7": 0, "hr": 0, "p": 0, "header": 0} {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", tag, got, want)
		}
	}
}
