package service

import (
	"resalelens/internal/entity"
	"testing"
)

func TestScoreConfidenceFullListing(t *testing.T) {
	score := ScoreConfidence(testListing())
	if score != 100 {
		t.Fatalf("expected 100 for a complete listing, got %d", score)
	}
}

func TestScoreConfidenceNil(t *testing.T) {
	if got := ScoreConfidence(nil); got != 85 {
		t.Fatalf("expected floor for nil listing, got %d", got)
	}
}

func TestScoreConfidenceDeterministic(t *testing.T) {
	listing := testListing()
	first := ScoreConfidence(listing)
	for i := 0; i < 10; i++ {
		if got := ScoreConfidence(listing); got != first {
			t.Fatalf("expected stable score %d, got %d", first, got)
		}
	}
}

func TestScoreConfidencePartialListing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.ListingAnalysis)
	}{
		{"missing condition", func(a *entity.ListingAnalysis) { a.Condition = "" }},
		{"inverted prices", func(a *entity.ListingAnalysis) { a.RecommendedPrice.Median = a.RecommendedPrice.High + 10 }},
		{"no platform", func(a *entity.ListingAnalysis) { a.MarketplaceRecommendation.Platform = "" }},
		{"short description", func(a *entity.ListingAnalysis) { a.GeneratedContent.Description = "short" }},
		{"few tags", func(a *entity.ListingAnalysis) { a.GeneratedContent.Tags = []string{"one"} }},
		{"two comparables", func(a *entity.ListingAnalysis) { a.Comparables = a.Comparables[:2] }},
		{"bad comparable url", func(a *entity.ListingAnalysis) { a.Comparables[0].URL = "not-a-url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := testListing()
			tt.mutate(listing)
			got := ScoreConfidence(listing)
			if got >= 100 {
				t.Fatalf("expected degraded score below 100, got %d", got)
			}
			if got < 85 {
				t.Fatalf("score below floor: %d", got)
			}
		})
	}
}
