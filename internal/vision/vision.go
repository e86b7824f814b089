package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"resalelens/internal/config"
	"resalelens/internal/entity"
	"resalelens/internal/utils"
	"strings"
)

const (
	DriverStub   = "stub"
	DriverGemini = "gemini"
	DriverArk    = "ark"
)

// Annotator extracts a structured vision signal from a product photo. The
// signal is prompt context for the generative analysis and is never
// persisted.
type Annotator interface {
	Annotate(ctx context.Context, imageURL string) (*entity.VisionSignal, error)
}

// NewAnnotator instantiates the configured vision driver.
func NewAnnotator(ctx context.Context, cfg config.Config) (Annotator, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.VisionDriver))
	switch driver {
	case "", DriverStub:
		return NewStubAnnotator(), nil
	case DriverGemini:
		return NewGeminiAnnotator(ctx, cfg)
	case DriverArk:
		return NewArkAnnotator(cfg)
	default:
		return nil, fmt.Errorf("unsupported vision driver: %s", cfg.VisionDriver)
	}
}

// annotationPrompt instructs a multimodal model to behave like a label
// detection API and answer with a single JSON object.
const annotationPrompt = `Identify what is shown in this product photo.

Respond with a single JSON object and nothing else, using this structure:
{
  "labels": [{"description": "Clothing", "score": 0.95}],
  "objects": [{"name": "Jacket", "score": 0.91}],
  "text": ["any readable text such as brand names or size tags"]
}

Include up to 8 labels ordered by confidence, up to 4 objects, and only text
that is actually visible. Scores are between 0 and 1.`

// parseVisionSignal extracts the JSON object from a model response and
// decodes it.
func parseVisionSignal(text string) (*entity.VisionSignal, error) {
	raw, err := utils.ExtractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("vision response: %w", err)
	}
	var signal entity.VisionSignal
	if err := json.Unmarshal([]byte(raw), &signal); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}
	if len(signal.Labels) == 0 && len(signal.Objects) == 0 && len(signal.Text) == 0 {
		return nil, fmt.Errorf("vision response carried no annotations")
	}
	return &signal, nil
}

// StubAnnotator returns a fixed generic signal. It keeps the analysis
// pipeline usable without a vision credential; the generative model still
// sees the image context through the web-search step.
type StubAnnotator struct{}

// NewStubAnnotator creates the static annotator.
func NewStubAnnotator() *StubAnnotator {
	return &StubAnnotator{}
}

// Annotate implements Annotator with a canned response.
func (s *StubAnnotator) Annotate(ctx context.Context, imageURL string) (*entity.VisionSignal, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return &entity.VisionSignal{
		Labels: []entity.VisionLabel{
			{Description: "Clothing", Score: 0.95},
			{Description: "Jacket", Score: 0.92},
			{Description: "Leather", Score: 0.88},
			{Description: "Fashion", Score: 0.85},
		},
		Objects: []entity.VisionObject{
			{Name: "Jacket", Score: 0.91},
		},
		Text: []string{"Brand Name"},
	}, nil
}
