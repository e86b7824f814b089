package service

import (
	"resalelens/internal/entity"
	"strings"
)

const (
	confidenceFloor = 85
	confidenceCeil  = 100
)

// ScoreConfidence derives a confidence score in [85,100] from the
// completeness of the parsed analysis. A response that passed strict parsing
// starts at the floor; each quality check it satisfies moves it towards the
// ceiling. The same input always yields the same score.
func ScoreConfidence(a *entity.ListingAnalysis) int {
	if a == nil {
		return confidenceFloor
	}

	checks := []bool{
		strings.TrimSpace(a.Condition) != "",
		a.RecommendedPrice.Low > 0,
		a.RecommendedPrice.Low <= a.RecommendedPrice.Median && a.RecommendedPrice.Median <= a.RecommendedPrice.High,
		strings.TrimSpace(a.MarketplaceRecommendation.Platform) != "",
		strings.TrimSpace(a.MarketplaceRecommendation.Reasoning) != "",
		strings.TrimSpace(a.GeneratedContent.Title) != "" && len(a.GeneratedContent.Title) <= 80,
		len(strings.TrimSpace(a.GeneratedContent.Description)) >= 40,
		len(a.GeneratedContent.Tags) >= 5,
		len(a.Comparables) == 3,
		comparablesHaveURLs(a.Comparables),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}

	span := confidenceCeil - confidenceFloor
	return confidenceFloor + (span*passed+len(checks)/2)/len(checks)
}

func comparablesHaveURLs(comps []entity.Comparable) bool {
	if len(comps) == 0 {
		return false
	}
	for _, c := range comps {
		if !strings.HasPrefix(c.URL, "http://") && !strings.HasPrefix(c.URL, "https://") {
			return false
		}
	}
	return true
}
