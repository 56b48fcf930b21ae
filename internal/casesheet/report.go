package casesheet

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoCondition is the condition label when no terms could be ranked.
const NoCondition = "No disease identified"

// Condition is the topic-model guess at what the sheet is about.
type Condition struct {
	Label    string   `json:"label" yaml:"label"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// SectionSummary is the shortened text of one section.
type SectionSummary struct {
	Name    string `json:"name" yaml:"name"`
	Summary string `json:"summary" yaml:"summary"`
}

// Report is everything derived from one case sheet.
type Report struct {
	Filename  string           `json:"filename" yaml:"filename"`
	Source    string           `json:"source" yaml:"source"`
	Condition *Condition       `json:"condition,omitempty" yaml:"condition,omitempty"`
	Sections  []SectionSummary `json:"sections,omitempty" yaml:"sections,omitempty"`

	// Fallback is the whole-text summary, set only when no section produced one.
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	// Suggestion is empty when the sheet already carries a plan-like section.
	Suggestion string  `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	State      string  `json:"state" yaml:"state"`
	Status     string  `json:"status" yaml:"status"`
	Polarity   float64 `json:"polarity" yaml:"polarity"`
}

// Format renders the report as the plain-text summary shown to users and
// written to <name>_summary.txt.
func (r *Report) Format() string {
	var blocks []string
	titler := cases.Title(language.English)

	if r.Condition != nil {
		var b strings.Builder
		b.WriteString("🩺 Identified Condition: " + r.Condition.Label)
		for _, line := range r.Condition.Evidence {
			b.WriteString("\n" + line)
		}
		blocks = append(blocks, b.String())
	}

	for _, s := range r.Sections {
		blocks = append(blocks, "🩺 "+titler.String(s.Name)+":\n"+s.Summary)
	}
	if len(r.Sections) == 0 {
		blocks = append(blocks, "🩺 Summary:\n"+r.Fallback)
	}

	if r.Suggestion != "" {
		blocks = append(blocks, "💡 Suggestion:\n"+r.Suggestion)
	}
	if r.State != "" {
		blocks = append(blocks, "📌 Patient State:\n"+r.State)
	}
	if r.Status != "" {
		blocks = append(blocks, "💡 Patient Status:\n"+r.Status)
	}

	return strings.Join(blocks, "\n\n")
}
