package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"wardrobeapi/logging"
	"wardrobeapi/recommender"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

var ErrContentBlocked = errors.New("content blocked by safety filters")

// ClothingAnalysis is what the vision model extracts from a garment photo.
type ClothingAnalysis struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	PrimaryColor string   `json:"primary_color"`
	Style        string   `json:"style"`
	Material     string   `json:"material"`
	Seasons      []string `json:"suitable_seasons"`
	Occasions    []string `json:"suitable_occasions"`
	Confidence   float64  `json:"confidence"`
}

// DefaultAnalysis is used when no model is configured or the answer is unusable.
func DefaultAnalysis() ClothingAnalysis {
	return ClothingAnalysis{
		Name:         "Unknown item",
		Category:     string(recommender.CategoryOther),
		PrimaryColor: "unknown",
		Style:        "casual",
		Material:     "unknown",
		Seasons:      []string{"spring", "summer", "autumn", "winter"},
		Occasions:    []string{"daily"},
		Confidence:   0,
	}
}

type ClothingAnalyzer interface {
	AnalyzeClothing(ctx context.Context, filePath string) (ClothingAnalysis, error)
}

type GoogleClothingAnalyzer struct {
	APIKey string
	Model  string
	logger zerolog.Logger
}

func NewGoogleClothingAnalyzer(apiKey, model string) *GoogleClothingAnalyzer {
	return &GoogleClothingAnalyzer{
		APIKey: apiKey,
		Model:  model,
		logger: logging.Component("analyzer"),
	}
}

const clothingSystemInstruction = `You are a fashion assistant labelling a single garment photo for a wardrobe app.
Return JSON only. Use English lower-case labels.
- category: one of top, bottom, outerwear, shoes, accessory, other
- primary_color: the dominant color of the garment itself, not the background
- style: one of formal, casual, sporty, romantic, vintage, modern
- material: short material description such as cotton, denim, wool, leather
- suitable_seasons: subset of spring, summer, autumn, winter
- suitable_occasions: subset of daily, work, formal, casual, sport, date, party
- confidence: 0 to 1
If the photo does not show clothing, set category to other and confidence to 0.`

var clothingResponseSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"name":          {Type: "string"},
		"category":      {Type: "string", Enum: []string{"top", "bottom", "outerwear", "shoes", "accessory", "other"}},
		"primary_color": {Type: "string"},
		"style":         {Type: "string"},
		"material":      {Type: "string"},
		"suitable_seasons": {
			Type:  "array",
			Items: &genai.Schema{Type: "string"},
		},
		"suitable_occasions": {
			Type:  "array",
			Items: &genai.Schema{Type: "string"},
		},
		"confidence": {Type: "number"},
	},
	Required: []string{"name", "category", "primary_color", "style", "material", "suitable_seasons", "suitable_occasions", "confidence"},
}

var dashAlphaRule = regexp.MustCompile(`[^a-z0-9-]`)

// AnalyzeClothing uploads the photo to the Gemini file store and asks for a
// structured description. Without an API key it returns DefaultAnalysis.
func (a *GoogleClothingAnalyzer) AnalyzeClothing(ctx context.Context, filePath string) (ClothingAnalysis, error) {
	if a.APIKey == "" {
		return DefaultAnalysis(), nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return ClothingAnalysis{}, fmt.Errorf("genai client: %w", err)
	}

	name := dashAlphaRule.ReplaceAllString(strings.ToLower(strings.ReplaceAll(filepath.Base(filePath), ".", "-")), "")
	genFile, err := a.tryUploadGoogleStorage(ctx, client, filePath, name)
	if err != nil {
		return ClothingAnalysis{}, err
	}

	parts := []*genai.Part{
		{FileData: &genai.FileData{FileURI: genFile.URI, MIMEType: genFile.MIMEType}},
		{Text: "Describe this garment."},
	}
	result, err := client.Models.GenerateContent(ctx, a.Model, []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		Temperature:      genai.Ptr[float32](0.2),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: clothingSystemInstruction}},
		},
		ResponseSchema: clothingResponseSchema,
	})
	if err != nil {
		return ClothingAnalysis{}, fmt.Errorf("generate content: %w", err)
	}
	if result.UsageMetadata != nil {
		a.logger.Debug().
			Int32("input_tokens", result.UsageMetadata.PromptTokenCount).
			Int32("output_tokens", result.UsageMetadata.CandidatesTokenCount).
			Msg("clothing analysis usage")
	}

	text, err := firstCandidateText(result)
	if err != nil {
		return ClothingAnalysis{}, err
	}
	analysis, err := ParseClothingAnalysis(text)
	if err != nil {
		a.logger.Warn().Err(err).Msg("unusable model answer, using default analysis")
		return DefaultAnalysis(), nil
	}
	return analysis, nil
}

func (a *GoogleClothingAnalyzer) tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath, newName string) (*genai.File, error) {
	const maxUploadTimes = 3
	var lastErr error
	for i := range maxUploadTimes {
		genFile, err := client.Files.UploadFromPath(ctx, filePath, &genai.UploadFileConfig{Name: newName})
		if err == nil {
			return genFile, nil
		}
		lastErr = err
		a.logger.Warn().Err(err).Int("attempt", i+1).Str("file", filePath).Msg("upload to google storage failed")
	}
	return nil, fmt.Errorf("failed to upload file to google storage after %d attempts: %w", maxUploadTimes, lastErr)
}

func firstCandidateText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil {
		return "", errors.New("empty model response")
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrContentBlocked, result.PromptFeedback.BlockReasonMessage)
	}
	for _, c := range result.Candidates {
		for _, rating := range c.SafetyRatings {
			if rating.Blocked {
				return "", fmt.Errorf("%w: %s", ErrContentBlocked, rating.Category)
			}
		}
	}
	return result.Text(), nil
}

// ParseClothingAnalysis decodes a model answer, tolerating markdown fences,
// and normalises labels to the canonical vocabulary.
func ParseClothingAnalysis(text string) (ClothingAnalysis, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return ClothingAnalysis{}, errors.New("empty analysis")
	}

	var analysis ClothingAnalysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		return ClothingAnalysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	analysis.Category = string(recommender.ParseCategory(analysis.Category))
	analysis.Style = strings.ToLower(strings.TrimSpace(analysis.Style))
	analysis.Seasons = canonicalTags(analysis.Seasons)
	analysis.Occasions = canonicalTags(analysis.Occasions)
	if analysis.Confidence < 0 {
		analysis.Confidence = 0
	} else if analysis.Confidence > 1 {
		analysis.Confidence = 1
	}
	return analysis, nil
}

func canonicalTags(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := map[string]bool{}
	for _, l := range labels {
		tag := recommender.CanonicalTag(l)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
