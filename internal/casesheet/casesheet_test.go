package casesheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterLines(t *testing.T) {
	r := DefaultRules()
	input := strings.Join([]string{
		"  City General Hospital  ",
		"",
		"Patient ID: 99812",
		"Phone 0700123456",
		"  Diagnosis: viral fever  ",
		"123-456-7890",
		"Patient complains of headache",
		"   ",
	}, "\n")

	got := r.FilterLines(input)
	assert.Equal(t, "Diagnosis: viral fever\nPatient complains of headache", got)
}

func TestFilterLines_DigitThreshold(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name string
		line string
		keep bool
	}{
		{"exactly one third kept", "ab1", true},
		{"over one third dropped", "a12", false},
		{"no digits kept", "blood sugar stable", true},
		{"dose with units kept", "metformin 500 mg twice daily", true},
		{"all digits dropped", "20240101", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.FilterLines(tt.line)
			if tt.keep {
				assert.Equal(t, tt.line, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterLines_Idempotent(t *testing.T) {
	r := DefaultRules()
	inputs := []string{
		"",
		"Diagnosis: flu\nPlan: rest",
		"Hospital header\n\nHistory - cough for 3 days\n555 1234\nAdvice: fluids",
		"   leading and trailing   \n\n\n",
	}
	for _, in := range inputs {
		once := r.FilterLines(in)
		assert.Equal(t, once, r.FilterLines(once), "input %q", in)
	}
}

func TestFilterLines_CaseInsensitiveBoilerplate(t *testing.T) {
	r := DefaultRules()
	assert.Empty(t, r.FilterLines("EMERGENCY CONTACT"))
	assert.Empty(t, r.FilterLines("Insurance provider: Acme"))
}

func TestSplitSections_Basic(t *testing.T) {
	r := DefaultRules()
	s := r.SplitSections("Diagnosis: flu\nPlan: rest")

	assert.Equal(t, map[string]string{"diagnosis": "flu", "plan": "rest"}, s.Map())
	names := []string{}
	for _, sec := range s.List() {
		names = append(names, sec.Name)
	}
	assert.Equal(t, []string{"diagnosis", "plan"}, names)
}

func TestSplitSections_NoHeading(t *testing.T) {
	r := DefaultRules()
	inputs := []string{"", "patient walked in with a cough", "Notes\nfollow later"}
	for _, in := range inputs {
		s := r.SplitSections(in)
		require.Equal(t, 1, s.Len())
		got, ok := s.Get(FullText)
		require.True(t, ok)
		assert.Equal(t, in, got)
	}
}

func TestSplitSections_LongestHeadingFirst(t *testing.T) {
	r := DefaultRules()
	s := r.SplitSections("Treatment Plan- antibiotics for 5 days\nplan: review in a week")

	got, ok := s.Get("treatment plan")
	require.True(t, ok)
	assert.Equal(t, "antibiotics for 5 days", got)
	got, ok = s.Get("plan")
	require.True(t, ok)
	assert.Equal(t, "review in a week", got)
}

func TestSplitSections_DuplicateOverwritesInPlace(t *testing.T) {
	r := DefaultRules()
	s := r.SplitSections("Diagnosis: first guess\nHistory: smoker\nDiagnosis: confirmed asthma")

	require.Equal(t, 2, s.Len())
	list := s.List()
	assert.Equal(t, "diagnosis", list[0].Name)
	assert.Equal(t, "confirmed asthma", list[0].Content)
	assert.Equal(t, "history", list[1].Name)
}

func TestSplitSections_MultilineContentAndPreamble(t *testing.T) {
	r := DefaultRules()
	text := "Name withheld\nHISTORY:\ncough for two weeks\nnight sweats\nAssessment\nlikely bronchitis"
	s := r.SplitSections(text)

	got, _ := s.Get("history")
	assert.Equal(t, "cough for two weeks\nnight sweats", got)
	got, _ = s.Get("assessment")
	assert.Equal(t, "likely bronchitis", got)
	assert.False(t, s.Has(FullText))
}

func TestSplitSections_HeadingMidLineIgnored(t *testing.T) {
	r := DefaultRules()
	s := r.SplitSections("the diagnosis was unclear")
	assert.True(t, s.Has(FullText))
}

func TestStateFor_Priority(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"medication beats normal", "Patient is healthy, continue insulin dose", r.States.Medication},
		{"medication beats checkup", "Fever noted, prescribed paracetamol", r.States.Medication},
		{"checkup beats normal", "Mostly healthy but reports pain", r.States.Checkup},
		{"normal", "Routine checkup, asymptomatic", r.States.Normal},
		{"unknown", "Nothing recorded", r.States.Unknown},
		{"empty", "", r.States.Unknown},
		{"case folded", "TABLET given", r.States.Medication},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.StateFor(tt.text))
		})
	}
}

func TestPolarityMessages(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		polarity       float64
		wantSuggestion string
		wantStatus     string
	}{
		{0.5, r.Suggestions.Positive, r.Statuses.Positive},
		{0.2, r.Suggestions.Neutral, r.Statuses.Neutral},
		{0, r.Suggestions.Neutral, r.Statuses.Neutral},
		{-0.2, r.Suggestions.Neutral, r.Statuses.Neutral},
		{-0.21, r.Suggestions.Negative, r.Statuses.Negative},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantSuggestion, r.SuggestionFor(tt.polarity), "polarity %v", tt.polarity)
		assert.Equal(t, tt.wantStatus, r.StatusFor(tt.polarity), "polarity %v", tt.polarity)
	}
}

func TestHasPlan(t *testing.T) {
	r := DefaultRules()
	assert.True(t, r.HasPlan(r.SplitSections("Advice: rest")))
	assert.False(t, r.HasPlan(r.SplitSections("History: none")))
}

func TestLoadRules_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
headings:
  - Impression
  - Follow Up
states:
  unknown: "State unclear."
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Impression", "Follow Up"}, r.Headings)
	assert.Equal(t, "State unclear.", r.States.Unknown)
	assert.Equal(t, DefaultRules().Boilerplate, r.Boilerplate)
	assert.Equal(t, DefaultRules().States.Medication, r.States.Medication)

	s := r.SplitSections("Impression: gastritis")
	got, _ := s.Get("impression")
	assert.Equal(t, "gastritis", got)
}

func TestLoadRules_Errors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("headings: [unclosed"), 0o644))
	_, err = LoadRules(path)
	assert.Error(t, err)

	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), r)
}

func TestReportFormat(t *testing.T) {
	rep := &Report{
		Condition: &Condition{Label: "asthma wheeze inhaler", Evidence: []string{"wheeze at night"}},
		Sections: []SectionSummary{
			{Name: "chief complaint", Summary: "Shortness of breath."},
		},
		Suggestion: "Monitor.",
		State:      "State.",
		Status:     "Status.",
	}
	want := "🩺 Identified Condition: asthma wheeze inhaler\nwheeze at night\n\n" +
		"🩺 Chief Complaint:\nShortness of breath.\n\n" +
		"💡 Suggestion:\nMonitor.\n\n" +
		"📌 Patient State:\nState.\n\n" +
		"💡 Patient Status:\nStatus."
	assert.Equal(t, want, rep.Format())
}

func TestReportFormat_FallbackWithoutSections(t *testing.T) {
	rep := &Report{Fallback: "Text too short to summarize.", State: "s"}
	out := rep.Format()
	assert.True(t, strings.HasPrefix(out, "🩺 Summary:\nText too short to summarize."))
	assert.NotContains(t, out, "Suggestion")
}
