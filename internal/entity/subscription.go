package entity

import (
	"errors"
	"time"
)

// ErrInsufficientCredits is returned when a credit reservation finds no
// credits left on the account.
var ErrInsufficientCredits = errors.New("insufficient credits")

// ErrCreditConflict is returned when the conditional credit update lost the
// race against a concurrent request and ran out of retries.
var ErrCreditConflict = errors.New("credit balance changed concurrently")

const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanBusiness   = "business"
	PlanEnterprise = "enterprise"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)

// FreePlanCredits 新注册账户的初始额度。
const FreePlanCredits = 2

// DbSubscription is the per-user credit account. Each analysis request
// consumes one credit; CreditsRemaining never goes below zero.
type DbSubscription struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint   `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	User   *DbUser `gorm:"foreignKey:UserID" json:"-"`

	PlanType         string `gorm:"column:plan_type;type:varchar(50);not null;default:free" json:"plan_type"`
	Status           string `gorm:"column:status;type:varchar(50);not null;default:active" json:"status"`
	CreditsRemaining int    `gorm:"column:credits_remaining;not null;default:0" json:"credits_remaining"`
	CreditsTotal     int    `gorm:"column:credits_total;not null;default:0" json:"credits_total"`

	CurrentPeriodStart *time.Time `gorm:"column:current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end" json:"current_period_end"`
}

// TableName 指定表名。
func (DbSubscription) TableName() string {
	return "user_subscriptions"
}

// Plan describes a purchasable credit plan shown on the pricing page.
type Plan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceUSD     int    `json:"price_usd"`
	Credits      int    `json:"credits"`
	CreditsLabel string `json:"credits_label"`
}

// Plans is the static plan catalogue. Credits of 0 means unlimited.
var Plans = []Plan{
	{ID: PlanFree, Name: "Free", PriceUSD: 0, Credits: 2, CreditsLabel: "2 Analyses Total"},
	{ID: PlanBasic, Name: "Basic", PriceUSD: 9, Credits: 20, CreditsLabel: "20 Analyses / month"},
	{ID: PlanPro, Name: "Pro", PriceUSD: 19, Credits: 50, CreditsLabel: "50 Analyses / month"},
	{ID: PlanBusiness, Name: "Business", PriceUSD: 39, Credits: 100, CreditsLabel: "100 Analyses / month"},
	{ID: PlanEnterprise, Name: "Enterprise", PriceUSD: 99, Credits: 0, CreditsLabel: "Unlimited Analyses"},
}
