package analyze

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/casesheet/internal/config"
	"github.com/dgallion1/casesheet/internal/summarize"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Config{Summarizer: summarize.KindRank, SummaryRatio: 0.5}
	a, err := FromConfig(cfg, nil, nil, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, summarize.KindRank, a.name)
	assert.Nil(t, a.parseOpts.OCR)

	rep, err := a.AnalyzeText(context.Background(), "x.txt", "Diagnosis: flu", "text")
	require.NoError(t, err)
	assert.NotEmpty(t, rep.Sections)
}

func TestFromConfig_Errors(t *testing.T) {
	_, err := FromConfig(config.Config{Summarizer: "gpt"}, nil, nil, quietLogger())
	assert.Error(t, err)

	_, err = FromConfig(config.Config{RulesPath: filepath.Join(t.TempDir(), "missing.yaml")}, nil, nil, quietLogger())
	assert.Error(t, err)
}
