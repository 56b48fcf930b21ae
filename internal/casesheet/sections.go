package casesheet

import (
	"regexp"
	"strings"
)

// FullText is the section key used when no heading matches.
const FullText = "full_text"

// Section is one labeled slice of a case sheet.
type Section struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

// Sections is an ordered heading -> content map. Order is the order a heading
// was first seen; a repeated heading replaces the earlier content in place.
type Sections struct {
	entries []Section
	index   map[string]int
}

func (s *Sections) set(name, content string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[name]; ok {
		s.entries[i].Content = content
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Section{Name: name, Content: content})
}

// Get returns the content for a case-folded section name.
func (s Sections) Get(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.entries[i].Content, true
}

// Has reports whether the section exists, even with empty content.
func (s Sections) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of distinct sections.
func (s Sections) Len() int { return len(s.entries) }

// List returns a copy of the sections in document order.
func (s Sections) List() []Section {
	return append([]Section(nil), s.entries...)
}

// Map returns the sections as a plain map.
func (s Sections) Map() map[string]string {
	m := make(map[string]string, len(s.entries))
	for _, e := range s.entries {
		m[e.Name] = e.Content
	}
	return m
}

// headingPattern matches any heading at the start of a line, optionally
// followed by ':' or '-'.
func (r *Rules) headingPattern() *regexp.Regexp {
	quoted := make([]string, len(r.Headings))
	for i, h := range r.Headings {
		quoted[i] = regexp.QuoteMeta(h)
	}
	return regexp.MustCompile(`(?im)^(` + strings.Join(quoted, "|") + `)[:\-]?`)
}

// SplitSections partitions text on heading lines. Each heading owns the text
// up to the next heading or the end of text. Without any heading match the
// whole text is returned under FullText.
func (r *Rules) SplitSections(text string) Sections {
	var out Sections
	if len(r.Headings) == 0 {
		out.set(FullText, text)
		return out
	}

	matches := r.headingPattern().FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		out.set(FullText, text)
		return out
	}

	for i, m := range matches {
		heading := text[m[2]:m[3]]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		out.set(strings.ToLower(heading), strings.TrimSpace(text[m[1]:end]))
	}
	return out
}
