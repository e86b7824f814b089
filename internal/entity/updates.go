package entity

// UserUpdates 用户更新字段
type UserUpdates struct {
	DisplayName  *string
	PasswordHash *string
	IsActive     *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.DisplayName != nil {
		updates["display_name"] = *u.DisplayName
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// AnalysisResultUpdates 分析完成后写回的派生字段
type AnalysisResultUpdates struct {
	ItemName               string
	Condition              string
	PriceRange             *PriceRange
	RecommendedMarketplace string
	MarketplaceReasoning   string
	GeneratedTitle         string
	GeneratedDescription   string
	GeneratedTags          []string
	Comparables            []Comparable
	ConfidenceScore        int
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (a AnalysisResultUpdates) ToMap() map[string]interface{} {
	updates := map[string]interface{}{
		"item_name":               a.ItemName,
		"condition":               a.Condition,
		"recommended_marketplace": a.RecommendedMarketplace,
		"marketplace_reasoning":   a.MarketplaceReasoning,
		"generated_title":         a.GeneratedTitle,
		"generated_description":   a.GeneratedDescription,
		"generated_tags":          StringArray(a.GeneratedTags),
		"comparables":             Comparables(a.Comparables),
		"confidence_score":        a.ConfidenceScore,
	}
	if a.PriceRange != nil {
		updates["price_range"] = *a.PriceRange
	}
	return updates
}
