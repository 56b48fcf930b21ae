package summarize

import (
	"context"
	"strings"
)

const (
	defaultLeadSentences = 5
	leadFallbackChars    = 500
)

// Lead keeps the first N sentences.
type Lead struct {
	n int
}

// NewLead returns a Lead summarizer; n <= 0 uses 5.
func NewLead(n int) *Lead {
	if n <= 0 {
		n = defaultLeadSentences
	}
	return &Lead{n: n}
}

func (l *Lead) Summarize(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return TooShort, nil
	}
	sents := sentences(text)
	if len(sents) == 0 {
		return truncateRunes(text, leadFallbackChars), nil
	}
	if len(sents) > l.n {
		sents = sents[:l.n]
	}
	return strings.Join(sents, "\n"), nil
}

// truncateRunes cuts s to n runes, marking a cut with "...".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
