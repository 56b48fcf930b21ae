// Package sentiment scores the polarity of clinical free text.
package sentiment

import (
	"strings"

	"github.com/jdkato/prose/v2"
)

// negation window, in tokens before a scored word
const negationWindow = 2

// negatedFactor is applied to a word inside a negation window.
const negatedFactor = -0.5

// Polarity returns a score in [-1, 1]. Words with no lexicon entry are
// ignored; text with no scored words is 0.
func Polarity(text string) float64 {
	words := tokenize(text)

	var sum float64
	var scored int
	for i, w := range words {
		score, ok := lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := intensifiers[words[i-1]]; ok {
				score *= m
			}
		}
		if negatedAt(words, i) {
			score *= negatedFactor
		}
		sum += clamp(score)
		scored++
	}
	if scored == 0 {
		return 0
	}
	return clamp(sum / float64(scored))
}

func negatedAt(words []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if negators[words[j]] {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return strings.Fields(strings.ToLower(text))
	}
	tokens := doc.Tokens()
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		words = append(words, strings.ToLower(tok.Text))
	}
	return words
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
