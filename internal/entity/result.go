package entity

// VisionSignal carries the structured annotations extracted from the product
// photo. It is prompt context only and is never persisted.
type VisionSignal struct {
	Labels  []VisionLabel  `json:"labels"`
	Objects []VisionObject `json:"objects"`
	Text    []string       `json:"text"`
}

// VisionLabel is a scored classification label.
type VisionLabel struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// VisionObject is a localised object annotation.
type VisionObject struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ListingAnalysis is the structured output parsed from the generative model
// response.
type ListingAnalysis struct {
	ItemName                  string                    `json:"itemName"`
	Condition                 string                    `json:"condition"`
	RecommendedPrice          PriceRange                `json:"recommendedPrice"`
	MarketplaceRecommendation MarketplaceRecommendation `json:"marketplaceRecommendation"`
	GeneratedContent          GeneratedContent          `json:"generatedContent"`
	Comparables               []Comparable              `json:"comparables"`
}

// MarketplaceRecommendation names the best platform for the item and why.
type MarketplaceRecommendation struct {
	Platform  string `json:"platform"`
	Reasoning string `json:"reasoning"`
}

// GeneratedContent is the SEO listing copy produced by the model.
type GeneratedContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
