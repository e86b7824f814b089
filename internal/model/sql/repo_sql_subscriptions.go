package sql

import (
	"context"
	"errors"
	"fmt"
	"resalelens/internal/entity"
	"time"

	"gorm.io/gorm"
)

// maxDeductAttempts bounds the optimistic retry loop for the conditional
// credit decrement.
const maxDeductAttempts = 3

// CreateSubscription persists a new subscription account.
func (r *GormRepository) CreateSubscription(ctx context.Context, sub *entity.DbSubscription) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if sub == nil {
		return fmt.Errorf("subscription is nil")
	}
	return r.db.WithContext(ctx).Create(sub).Error
}

// GetSubscription loads the subscription account for a user.
func (r *GormRepository) GetSubscription(ctx context.Context, userID uint) (*entity.DbSubscription, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var sub entity.DbSubscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeductCredit reserves one credit for the user. The decrement only applies
// while the balance still equals the value just read, so two concurrent
// requests cannot both spend the last credit. Returns the balance before
// the deduction.
func (r *GormRepository) DeductCredit(ctx context.Context, userID uint) (int, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	for attempt := 0; attempt < maxDeductAttempts; attempt++ {
		var sub entity.DbSubscription
		if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, entity.ErrInsufficientCredits
			}
			return 0, err
		}
		if sub.CreditsRemaining <= 0 {
			return 0, entity.ErrInsufficientCredits
		}

		result := r.db.WithContext(ctx).
			Model(&entity.DbSubscription{}).
			Where("user_id = ? AND credits_remaining = ?", userID, sub.CreditsRemaining).
			Updates(map[string]interface{}{
				"credits_remaining": sub.CreditsRemaining - 1,
				"updated_at":        time.Now().UTC(),
			})
		if result.Error != nil {
			return 0, result.Error
		}
		if result.RowsAffected == 1 {
			return sub.CreditsRemaining, nil
		}
		// Lost the race against another request for this user, re-read.
	}

	return 0, entity.ErrCreditConflict
}

// RestoreCredit sets the balance back to priorValue, but only while it still
// equals priorValue-1. Repeating the call after a successful restore affects
// zero rows, which keeps the compensation idempotent.
func (r *GormRepository) RestoreCredit(ctx context.Context, userID uint, priorValue int) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return fmt.Errorf("invalid user id")
	}
	if priorValue <= 0 {
		return fmt.Errorf("invalid prior credit value: %d", priorValue)
	}

	return r.db.WithContext(ctx).
		Model(&entity.DbSubscription{}).
		Where("user_id = ? AND credits_remaining = ?", userID, priorValue-1).
		Updates(map[string]interface{}{
			"credits_remaining": priorValue,
			"updated_at":        time.Now().UTC(),
		}).Error
}
