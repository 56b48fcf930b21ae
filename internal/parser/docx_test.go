package parser

import (
	"bytes"
	"context"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T) []byte {
	t.Helper()
	d := docx.New().WithDefaultTheme()
	d.AddParagraph().Style("Heading1").AddText("Discharge Summary")
	d.AddParagraph().AddText("Diagnosis: community acquired pneumonia")
	d.AddParagraph()
	d.AddParagraph().AddText("Plan: oral antibiotics for 7 days")

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCXParser(t *testing.T) {
	p := &DOCXParser{}
	doc, err := p.Parse(context.Background(), bytes.NewReader(buildDOCX(t)), "ward.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Discharge Summary" {
		t.Errorf("expected heading title, got %q", doc.Title)
	}
	want := "Discharge Summary\nDiagnosis: community acquired pneumonia\nPlan: oral antibiotics for 7 days"
	if got := doc.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if doc.PageCount != 1 {
		t.Errorf("expected 1 page, got %d", doc.PageCount)
	}
}

func TestDOCXParser_TitleFromFilename(t *testing.T) {
	d := docx.New().WithDefaultTheme()
	d.AddParagraph().AddText("History: none")
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	doc, err := (&DOCXParser{}).Parse(context.Background(), &buf, "clinic-note.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "clinic-note" {
		t.Errorf("expected filename title, got %q", doc.Title)
	}
}

func TestDOCXParser_Invalid(t *testing.T) {
	if _, err := (&DOCXParser{}).Parse(context.Background(), bytes.NewReader([]byte("not a zip")), "x.docx"); err == nil {
		t.Fatal("expected error for invalid docx")
	}
}
