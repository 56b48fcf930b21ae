// Package casesheet holds the text heuristics applied to a case sheet:
// boilerplate filtering, heading-based section splitting, keyword and
// polarity status messages, and the report layout.
package casesheet

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Rules is the vocabulary driving the line filter, section splitter, and
// status heuristics.
type Rules struct {
	// Lines containing any of these (case-insensitive) are dropped.
	Boilerplate []string `yaml:"boilerplate"`

	// Headings in match priority order. Longer headings that share a suffix
	// with a shorter one ("Treatment Plan", "Plan") must come first.
	Headings []string `yaml:"headings"`

	// SummaryOrder lists case-folded section names in report order.
	SummaryOrder []string `yaml:"summary_order"`

	// PlanSections suppress the polarity suggestion when any is present.
	PlanSections []string `yaml:"plan_sections"`

	MedicationKeywords []string `yaml:"medication_keywords"`
	CheckupKeywords    []string `yaml:"checkup_keywords"`
	NormalKeywords     []string `yaml:"normal_keywords"`

	States      StateMessages    `yaml:"states"`
	Suggestions PolarityMessages `yaml:"suggestions"`
	Statuses    PolarityMessages `yaml:"statuses"`
}

// StateMessages are the keyword heuristic outcomes.
type StateMessages struct {
	Medication string `yaml:"medication"`
	Checkup    string `yaml:"checkup"`
	Normal     string `yaml:"normal"`
	Unknown    string `yaml:"unknown"`
}

// PolarityMessages map a polarity band to a fixed message.
type PolarityMessages struct {
	Positive string `yaml:"positive"`
	Negative string `yaml:"negative"`
	Neutral  string `yaml:"neutral"`
}

// DefaultRules returns the built-in vocabulary.
func DefaultRules() *Rules {
	return &Rules{
		Boilerplate: []string{
			"hospital", "patient card", "registration", "general hospital",
			"medical records", "department", "address", "phone", "fax", "email",
			"date of surgery", "date:", "time:", "patient id", "record no",
			"summary sheet department", "emergency", "insurance",
		},
		Headings: []string{
			"History", "Chief Complaint", "Presenting Complaint",
			"Diagnosis", "Assessment", "Problem Summary",
			"Treatment Plan", "Plan", "Suggestion", "Advice",
		},
		SummaryOrder: []string{
			"history", "chief complaint", "presenting complaint", "problem summary",
			"diagnosis", "assessment", "treatment plan", "plan", "suggestion", "advice",
		},
		PlanSections: []string{"suggestion", "advice", "plan", "treatment plan"},
		MedicationKeywords: []string{
			"medication", "tablet", "capsule", "prescribed", "take medicine", "continue medicine",
			"on treatment", "course of antibiotics", "blood pressure control", "insulin", "dose",
		},
		CheckupKeywords: []string{
			"visit doctor", "consult", "appointment", "examination", "evaluation",
			"follow up", "symptoms", "fever", "pain", "nausea", "diagnosis pending",
		},
		NormalKeywords: []string{
			"no complaints", "healthy", "routine checkup", "fit", "normal findings", "asymptomatic",
		},
		States: StateMessages{
			Medication: "💊 Taking Medicine: Patient is on a prescribed treatment plan and should continue medication as advised.",
			Checkup:    "🩺 Checkup to a Doctor: Patient needs medical evaluation for symptoms or a routine examination.",
			Normal:     "✅ Normal: Patient is generally healthy and requires no immediate medical attention.",
			Unknown:    "ℹ Unable to determine exact patient state from the given text.",
		},
		Suggestions: PolarityMessages{
			Positive: "✅ Patient condition is stable. Continue treatment and review later.",
			Negative: "⚠ Patient may need urgent attention. Refer immediately.",
			Neutral:  "🔍 Monitor progress and revisit if symptoms persist.",
		},
		Statuses: PolarityMessages{
			Positive: "Stable: Patient condition appears positive.",
			Negative: "Critical: Patient may require urgent attention.",
			Neutral:  "Monitor: Patient condition needs regular observation.",
		},
	}
}

// LoadRules reads a YAML rules file and overlays every non-empty field onto
// DefaultRules. An empty path returns the defaults.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}
	rules.merge(&override)
	return rules, nil
}

func (r *Rules) merge(o *Rules) {
	mergeList(&r.Boilerplate, o.Boilerplate)
	mergeList(&r.Headings, o.Headings)
	mergeList(&r.SummaryOrder, o.SummaryOrder)
	mergeList(&r.PlanSections, o.PlanSections)
	mergeList(&r.MedicationKeywords, o.MedicationKeywords)
	mergeList(&r.CheckupKeywords, o.CheckupKeywords)
	mergeList(&r.NormalKeywords, o.NormalKeywords)

	mergeString(&r.States.Medication, o.States.Medication)
	mergeString(&r.States.Checkup, o.States.Checkup)
	mergeString(&r.States.Normal, o.States.Normal)
	mergeString(&r.States.Unknown, o.States.Unknown)
	mergePolarity(&r.Suggestions, o.Suggestions)
	mergePolarity(&r.Statuses, o.Statuses)
}

func mergeList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergePolarity(dst *PolarityMessages, src PolarityMessages) {
	mergeString(&dst.Positive, src.Positive)
	mergeString(&dst.Negative, src.Negative)
	mergeString(&dst.Neutral, src.Neutral)
}
