package ai

import (
	"errors"
	"strings"
	"testing"
)

const validResponse = `{
  "itemName": "Vintage Leather Jacket",
  "condition": "Good - Minor wear",
  "recommendedPrice": {"low": 45, "median": 65, "high": 85},
  "marketplaceRecommendation": {"platform": "Depop", "reasoning": "Vintage demand"},
  "generatedContent": {
    "title": "Vintage Brown Leather Jacket",
    "description": "Classic vintage leather jacket in good condition.",
    "tags": ["vintage", "leather", "jacket"]
  },
  "comparables": [
    {"title": "Similar jacket", "price": 60, "url": "https://example.com/1"}
  ]
}`

func TestParseListingAnalysis(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bare json", validResponse},
		{"markdown fence", "```json\n" + validResponse + "\n```"},
		{"surrounding prose", "Here is my analysis:\n" + validResponse + "\nLet me know if you need more."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := ParseListingAnalysis(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if analysis.ItemName != "Vintage Leather Jacket" {
				t.Fatalf("unexpected item name: %s", analysis.ItemName)
			}
			if analysis.RecommendedPrice.Median != 65 {
				t.Fatalf("unexpected median price: %v", analysis.RecommendedPrice.Median)
			}
			if analysis.MarketplaceRecommendation.Platform != "Depop" {
				t.Fatalf("unexpected platform: %s", analysis.MarketplaceRecommendation.Platform)
			}
			if len(analysis.Comparables) != 1 {
				t.Fatalf("expected 1 comparable, got %d", len(analysis.Comparables))
			}
		})
	}
}

func TestParseListingAnalysisRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty response", ""},
		{"prose only", "I could not analyze this image, sorry."},
		{"truncated json", validResponse[:len(validResponse)/2]},
		{"missing item name", strings.Replace(validResponse, `"Vintage Leather Jacket"`, `""`, 1)},
		{"zero prices", strings.Replace(validResponse, `{"low": 45, "median": 65, "high": 85}`, `{"low": 0, "median": 0, "high": 0}`, 1)},
		{"no comparables", strings.Replace(validResponse,
			`[
    {"title": "Similar jacket", "price": 60, "url": "https://example.com/1"}
  ]`, `[]`, 1)},
		{"comparable without url", strings.Replace(validResponse, `"url": "https://example.com/1"`, `"url": ""`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseListingAnalysis(tt.input); !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
