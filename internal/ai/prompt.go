package ai

import (
	"encoding/json"
	"fmt"
	"resalelens/internal/entity"

	"github.com/lithammer/dedent"
)

var analysisPromptTemplate = dedent.Dedent(`
	You are an expert e-commerce analyst and pricing strategist. Your goal is to
	provide a comprehensive analysis for an online seller based on data extracted
	from a product image. You have access to web search to find real-time market
	data.

	Analysis Task:
	Review the provided vision data.
	Perform a targeted web search on Google Shopping, eBay, Facebook Marketplace,
	Poshmark, and Amazon for this item.
	Based on your search, provide a complete analysis in a structured JSON format.
	Do not include any text outside of the JSON object.

	Vision Data:
	%s

	Required JSON Output Structure:
	{
	  "itemName": "A concise and marketable name for the product.",
	  "condition": "The likely condition (e.g., 'New with Tags', 'Pre-owned, Good', 'Vintage').",
	  "recommendedPrice": {
	    "low": <number>,
	    "median": <number>,
	    "high": <number>
	  },
	  "marketplaceRecommendation": {
	    "platform": "The single best platform (eBay, Poshmark, etc.) to sell this item.",
	    "reasoning": "A brief explanation of why this platform is best, considering fees, audience, and item type."
	  },
	  "generatedContent": {
	    "title": "An SEO-optimized listing title, under 80 characters.",
	    "description": "A compelling, detailed product description.",
	    "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
	  },
	  "comparables": [
	    {"title": "Title of the comparable listing.", "price": <number>, "url": "Direct URL to the listing."},
	    {"title": "Title of the comparable listing.", "price": <number>, "url": "Direct URL to the listing."},
	    {"title": "Title of the comparable listing.", "price": <number>, "url": "Direct URL to the listing."}
	  ]
	}

	Return exactly three comparables.`)

// BuildAnalysisPrompt renders the listing-analysis prompt with the vision
// signal embedded as JSON.
func BuildAnalysisPrompt(signal *entity.VisionSignal) (string, error) {
	if signal == nil {
		signal = &entity.VisionSignal{}
	}
	raw, err := json.Marshal(signal)
	if err != nil {
		return "", fmt.Errorf("marshal vision signal: %w", err)
	}
	return fmt.Sprintf(analysisPromptTemplate, string(raw)), nil
}
