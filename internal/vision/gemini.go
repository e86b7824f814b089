package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"resalelens/internal/config"
	"resalelens/internal/entity"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiAnnotator runs label extraction through a Gemini multimodal model.
type GeminiAnnotator struct {
	client     *genai.Client
	httpClient *http.Client
	model      string
}

// NewGeminiAnnotator creates a Gemini-backed annotator.
func NewGeminiAnnotator(ctx context.Context, cfg config.Config) (*GeminiAnnotator, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := strings.TrimSpace(cfg.GeminiVisionModel)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiAnnotator{
		client:     client,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		model:      model,
	}, nil
}

// Annotate downloads the photo and asks the model for structured labels.
func (g *GeminiAnnotator) Annotate(ctx context.Context, imageURL string) (*entity.VisionSignal, error) {
	data, mimeType, err := g.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(annotationPrompt),
		{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini vision call: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, errors.New("gemini vision returned no candidates")
	}

	text := result.Text()
	logrus.WithFields(logrus.Fields{
		"model":           g.model,
		"response_length": len(text),
	}).Debug("vision_annotation_response")

	return parseVisionSignal(text)
}

func (g *GeminiAnnotator) fetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create image request: %w", err)
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download image http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
