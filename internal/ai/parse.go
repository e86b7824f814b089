package ai

import (
	"encoding/json"
	"fmt"
	"resalelens/internal/entity"
	"resalelens/internal/utils"
	"strings"
)

// ParseListingAnalysis extracts the first JSON object from a free-text model
// response and validates it against the required structure. Any failure is
// wrapped in ErrMalformedResponse so callers can route it through the
// provider-failure path instead of accepting fabricated data.
func ParseListingAnalysis(text string) (*entity.ListingAnalysis, error) {
	raw, err := utils.ExtractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var analysis entity.ListingAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if missing := validateListingAnalysis(&analysis); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing or invalid fields: %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}

	return &analysis, nil
}

// validateListingAnalysis returns the names of required fields that are
// absent or carry unusable values.
func validateListingAnalysis(a *entity.ListingAnalysis) []string {
	var missing []string

	if strings.TrimSpace(a.ItemName) == "" {
		missing = append(missing, "itemName")
	}
	if strings.TrimSpace(a.Condition) == "" {
		missing = append(missing, "condition")
	}
	if a.RecommendedPrice.Low <= 0 || a.RecommendedPrice.Median <= 0 || a.RecommendedPrice.High <= 0 {
		missing = append(missing, "recommendedPrice")
	}
	if strings.TrimSpace(a.MarketplaceRecommendation.Platform) == "" {
		missing = append(missing, "marketplaceRecommendation.platform")
	}
	if strings.TrimSpace(a.GeneratedContent.Title) == "" {
		missing = append(missing, "generatedContent.title")
	}
	if strings.TrimSpace(a.GeneratedContent.Description) == "" {
		missing = append(missing, "generatedContent.description")
	}
	if len(a.GeneratedContent.Tags) == 0 {
		missing = append(missing, "generatedContent.tags")
	}
	if len(a.Comparables) == 0 {
		missing = append(missing, "comparables")
	}
	for i, comp := range a.Comparables {
		if strings.TrimSpace(comp.Title) == "" || strings.TrimSpace(comp.URL) == "" {
			missing = append(missing, fmt.Sprintf("comparables[%d]", i))
		}
	}

	return missing
}
