package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want func(float64) bool
	}{
		{"empty", "", func(p float64) bool { return p == 0 }},
		{"no lexicon words", "patient came in on tuesday", func(p float64) bool { return p == 0 }},
		{"positive", "Patient is stable and improving.", func(p float64) bool { return p > 0.2 }},
		{"negative", "Severe pain and fever, condition deteriorating.", func(p float64) bool { return p < -0.2 }},
		{"negated negative", "No pain reported.", func(p float64) bool { return p > 0 }},
		{"negated positive", "Patient is not stable.", func(p float64) bool { return p < 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Polarity(tt.text)
			assert.True(t, tt.want(p), "polarity %v for %q", p, tt.text)
			assert.GreaterOrEqual(t, p, -1.0)
			assert.LessOrEqual(t, p, 1.0)
		})
	}
}

func TestPolarity_Intensifier(t *testing.T) {
	plain := Polarity("good")
	strong := Polarity("very good")
	assert.InDelta(t, 0.7, plain, 1e-9)
	assert.Greater(t, strong, plain)
}

func TestPolarity_Clamped(t *testing.T) {
	assert.Equal(t, 1.0, Polarity("extremely excellent"))
	assert.Equal(t, -1.0, Polarity("extremely terrible"))
}
