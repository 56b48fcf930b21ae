package casesheet

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FilterLines drops blank lines, number-heavy lines (IDs, phone numbers),
// and administrative boilerplate. Kept lines are trimmed and keep their order.
func (r *Rules) FilterLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if digitHeavy(line) {
			continue
		}
		if r.isBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// digitHeavy reports whether digits make up more than a third of line.
func digitHeavy(line string) bool {
	digits := 0
	for _, c := range line {
		if unicode.IsDigit(c) {
			digits++
		}
	}
	return float64(digits) > float64(utf8.RuneCountInString(line))/3
}

func (r *Rules) isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range r.Boilerplate {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}
