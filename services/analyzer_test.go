package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClothingAnalysisNormalises(t *testing.T) {
	text := "```json\n" + `{
		"name": "Linen shirt",
		"category": "上衣",
		"primary_color": "white",
		"style": " Casual ",
		"material": "linen",
		"suitable_seasons": ["夏季", "spring", "Summer"],
		"suitable_occasions": ["日常", "work"],
		"confidence": 1.4
	}` + "\n```"

	analysis, err := ParseClothingAnalysis(text)

	require.NoError(t, err)
	assert.Equal(t, "top", analysis.Category)
	assert.Equal(t, "casual", analysis.Style)
	assert.Equal(t, []string{"summer", "spring"}, analysis.Seasons)
	assert.Equal(t, []string{"daily", "work"}, analysis.Occasions)
	assert.Equal(t, 1.0, analysis.Confidence)
}

func TestParseClothingAnalysisUnknownCategory(t *testing.T) {
	analysis, err := ParseClothingAnalysis(`{"category": "cape", "confidence": 0.3}`)

	require.NoError(t, err)
	assert.Equal(t, "other", analysis.Category)
	assert.Empty(t, analysis.Seasons)
}

func TestParseClothingAnalysisRejectsGarbage(t *testing.T) {
	_, err := ParseClothingAnalysis("I think this is a shirt")
	assert.Error(t, err)

	_, err = ParseClothingAnalysis("```json\n```")
	assert.Error(t, err)
}

func TestAnalyzerWithoutKeyReturnsDefault(t *testing.T) {
	a := NewGoogleClothingAnalyzer("", "gemini-2.5-flash")

	analysis, err := a.AnalyzeClothing(context.Background(), "/does/not/matter.jpg")

	require.NoError(t, err)
	assert.Equal(t, DefaultAnalysis(), analysis)
	assert.Equal(t, "other", analysis.Category)
	assert.Len(t, analysis.Seasons, 4)
	assert.Zero(t, analysis.Confidence)
}
