package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
	AnalysisStatusFailed     = "failed"
)

// AnalysisStatusTerminal reports whether a status permits no further
// transitions.
func AnalysisStatusTerminal(status string) bool {
	return status == AnalysisStatusCompleted || status == AnalysisStatusFailed
}

// DbAnalysis stores one product-photo analysis. The record is created by the
// client in the pending state; the orchestrator is the only writer after
// that, and every update is scoped to (id, user_id).
type DbAnalysis struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint    `gorm:"column:user_id;index;not null" json:"user_id"`
	User   *DbUser `gorm:"foreignKey:UserID" json:"-"`

	ImageURL string `gorm:"column:image_url;type:text;not null" json:"image_url"`
	Status   string `gorm:"column:status;type:varchar(32);index;not null;default:pending" json:"status"`

	ItemName               string      `gorm:"column:item_name;type:varchar(255)" json:"item_name"`
	Condition              string      `gorm:"column:condition;type:varchar(128)" json:"condition"`
	PriceRange             *PriceRange `gorm:"column:price_range;type:json" json:"price_range"`
	RecommendedMarketplace string      `gorm:"column:recommended_marketplace;type:varchar(128)" json:"recommended_marketplace"`
	MarketplaceReasoning   string      `gorm:"column:marketplace_reasoning;type:text" json:"marketplace_reasoning"`
	GeneratedTitle         string      `gorm:"column:generated_title;type:varchar(255)" json:"generated_title"`
	GeneratedDescription   string      `gorm:"column:generated_description;type:text" json:"generated_description"`
	GeneratedTags          StringArray `gorm:"column:generated_tags;type:json" json:"generated_tags"`
	Comparables            Comparables `gorm:"column:comparables;type:json" json:"comparables"`
	ConfidenceScore        int         `gorm:"column:confidence_score" json:"confidence_score"`
	ErrorMessage           string      `gorm:"column:error_message;type:text" json:"error_message"`
}

// TableName 指定表名。
func (DbAnalysis) TableName() string {
	return "analyses"
}

// PriceRange is a three-point price estimate in whole currency units.
type PriceRange struct {
	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`
}

// Value 实现 driver.Valuer 接口。
func (p PriceRange) Value() (driver.Value, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口。
func (p *PriceRange) Scan(value interface{}) error {
	return scanJSONColumn(value, p, "PriceRange")
}

// Comparable is a reference listing used to justify a price estimate.
type Comparable struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
	URL   string  `json:"url"`
}

// Comparables is stored as a JSON array.
type Comparables []Comparable

// Value 实现 driver.Valuer 接口。
func (c Comparables) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]Comparable(c))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口。
func (c *Comparables) Scan(value interface{}) error {
	return scanJSONColumn(value, (*[]Comparable)(c), "Comparables")
}

// AnalysisCreateRequest creates a pending record before the orchestrator is
// invoked.
type AnalysisCreateRequest struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url" binding:"required"`
}

// AnalysisQuery supports listing analyses with pagination.
type AnalysisQuery struct {
	BaseParams
	UserID uint   `json:"-"`
	Status string `json:"status" form:"status" query:"status"`
}

// AnalysisListResponse 分析记录列表响应。
type AnalysisListResponse struct {
	Analyses []DbAnalysis `json:"analyses"`
	Meta     *Meta        `json:"meta"`
}

// AnalyzeImageRequest is the orchestrator input.
type AnalyzeImageRequest struct {
	AnalysisID string `json:"analysis_id"`
	ImageURL   string `json:"image_url"`
}

// AnalyzeImageResponse is the orchestrator success summary.
type AnalyzeImageResponse struct {
	Success         bool   `json:"success"`
	AnalysisID      string `json:"analysis_id"`
	ConfidenceScore int    `json:"confidence_score"`
	ItemName        string `json:"item_name"`
}
