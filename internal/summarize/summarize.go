// Package summarize shortens section text. Lead and Rank are extractive and
// run in-process; Remote asks an inference endpoint for an abstractive summary.
package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Messages returned instead of a summary.
const (
	TooShort    = "Text too short to summarize."
	NoSentences = "Could not generate summary."
)

// Summarizer turns one block of text into a shorter block.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Kinds accepted by New.
const (
	KindLead   = "lead"
	KindRank   = "rank"
	KindRemote = "remote"
)

// Config carries the knobs for every summarizer kind; unused fields are ignored.
type Config struct {
	Sentences  int
	Ratio      float64
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// New returns the summarizer for kind. An empty kind is lead.
func New(kind string, cfg Config) (Summarizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindLead:
		return NewLead(cfg.Sentences), nil
	case KindRank:
		return NewRank(cfg.Ratio), nil
	case KindRemote:
		return NewRemote(cfg.URL, cfg.APIKey, cfg.HTTPClient), nil
	default:
		return nil, fmt.Errorf("unknown summarizer %q (want lead, rank, or remote)", kind)
	}
}

// sentences segments text with prose, dropping empty sentences.
func sentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(doc.Sentences()))
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
