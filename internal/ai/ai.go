package ai

import (
	"context"
	"errors"
	"resalelens/internal/entity"
)

// ErrMalformedResponse marks a model response from which no valid listing
// analysis could be extracted. Callers treat it like any other provider
// failure; no placeholder data is ever substituted.
var ErrMalformedResponse = errors.New("model response did not contain a valid analysis object")

// Analyzer produces a marketplace listing analysis from a product photo and
// its vision signal.
type Analyzer interface {
	AnalyzeListing(ctx context.Context, imageURL string, signal *entity.VisionSignal) (*entity.ListingAnalysis, error)
}
