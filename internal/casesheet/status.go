package casesheet

import "strings"

// Polarity thresholds; values strictly beyond them are positive or negative.
const (
	PositiveThreshold = 0.2
	NegativeThreshold = -0.2
)

// StateFor classifies the patient from keyword membership. Medication
// keywords win over checkup keywords, which win over normal keywords.
func (r *Rules) StateFor(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, r.MedicationKeywords):
		return r.States.Medication
	case containsAny(lower, r.CheckupKeywords):
		return r.States.Checkup
	case containsAny(lower, r.NormalKeywords):
		return r.States.Normal
	default:
		return r.States.Unknown
	}
}

// SuggestionFor maps a polarity score to the follow-up suggestion.
func (r *Rules) SuggestionFor(polarity float64) string {
	return r.Suggestions.pick(polarity)
}

// StatusFor maps a polarity score to the patient status line.
func (r *Rules) StatusFor(polarity float64) string {
	return r.Statuses.pick(polarity)
}

// HasPlan reports whether any plan-like section is present.
func (r *Rules) HasPlan(s Sections) bool {
	for _, name := range r.PlanSections {
		if s.Has(name) {
			return true
		}
	}
	return false
}

func (m PolarityMessages) pick(polarity float64) string {
	switch {
	case polarity > PositiveThreshold:
		return m.Positive
	case polarity < NegativeThreshold:
		return m.Negative
	default:
		return m.Neutral
	}
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
