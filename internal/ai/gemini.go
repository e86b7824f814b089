package ai

import (
	"context"
	"errors"
	"fmt"
	"resalelens/internal/config"
	"resalelens/internal/entity"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiAnalyzer runs the listing analysis through a Gemini model with the
// Google Search tool enabled so price and comparable data come from live
// market results.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer creates the analyzer from configuration.
func NewGeminiAnalyzer(ctx context.Context, cfg config.Config) (*GeminiAnalyzer, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := strings.TrimSpace(cfg.GeminiAnalysisModel)
	if model == "" {
		model = "gemini-2.5-pro"
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

// AnalyzeListing implements Analyzer.
func (g *GeminiAnalyzer) AnalyzeListing(ctx context.Context, imageURL string, signal *entity.VisionSignal) (*entity.ListingAnalysis, error) {
	prompt, err := BuildAnalysisPrompt(signal)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"model":         g.model,
		"prompt_length": len(prompt),
	}).Info("listing_analysis_start")

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	genConfig := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		Temperature: genai.Ptr[float32](0.2),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini analysis call: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, errors.New("gemini analysis returned no candidates")
	}

	text := result.Text()
	logrus.WithFields(logrus.Fields{
		"model":           g.model,
		"response_length": len(text),
	}).Info("listing_analysis_response")

	return ParseListingAnalysis(text)
}
