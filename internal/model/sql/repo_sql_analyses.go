package sql

import (
	"context"
	"fmt"
	"resalelens/internal/entity"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nonTerminalStatuses guards every mutation so that completed and failed
// records are never rewritten.
var nonTerminalStatuses = []string{entity.AnalysisStatusPending, entity.AnalysisStatusProcessing}

// CreateAnalysis inserts a new analysis record.
func (r *GormRepository) CreateAnalysis(ctx context.Context, analysis *entity.DbAnalysis) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if analysis == nil {
		return fmt.Errorf("analysis is nil")
	}
	return r.db.WithContext(ctx).Create(analysis).Error
}

// GetAnalysis retrieves a single analysis owned by the given user.
func (r *GormRepository) GetAnalysis(ctx context.Context, id string, userID uint) (*entity.DbAnalysis, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || userID == 0 {
		return nil, fmt.Errorf("invalid analysis id")
	}

	var analysis entity.DbAnalysis
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&analysis).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ListAnalyses retrieves paginated analyses for one user, newest first.
func (r *GormRepository) ListAnalyses(ctx context.Context, params *entity.AnalysisQuery) ([]entity.DbAnalysis, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbAnalysis{})
	if params != nil {
		if params.UserID > 0 {
			query = query.Where("user_id = ?", params.UserID)
		}
		if trimmed := strings.TrimSpace(params.Status); trimmed != "" && trimmed != "all" {
			query = query.Where("status = ?", trimmed)
		}
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, nil, err
	}

	page := 1
	pageSize := 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}

	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	var analyses []entity.DbAnalysis
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&analyses).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(totalCount, page, pageSize)
	return analyses, meta, nil
}

// DeleteAnalysis removes an analysis owned by the given user.
func (r *GormRepository) DeleteAnalysis(ctx context.Context, id string, userID uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || userID == 0 {
		return fmt.Errorf("invalid analysis id")
	}

	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entity.DbAnalysis{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAnalysisProcessing moves a pending record to processing. The status
// guard means a record that already reached a terminal state reports zero
// affected rows instead of regressing.
func (r *GormRepository) MarkAnalysisProcessing(ctx context.Context, id string, userID uint) (int64, error) {
	return r.updateAnalysisGuarded(ctx, id, userID, map[string]interface{}{
		"status": entity.AnalysisStatusProcessing,
	})
}

// CompleteAnalysis writes the derived fields and moves the record to
// completed in a single ownership-scoped update.
func (r *GormRepository) CompleteAnalysis(ctx context.Context, id string, userID uint, result entity.AnalysisResultUpdates) (int64, error) {
	updates := result.ToMap()
	updates["status"] = entity.AnalysisStatusCompleted
	updates["error_message"] = ""
	return r.updateAnalysisGuarded(ctx, id, userID, updates)
}

// FailAnalysis moves the record to failed with a human-readable message.
func (r *GormRepository) FailAnalysis(ctx context.Context, id string, userID uint, errorMessage string) (int64, error) {
	return r.updateAnalysisGuarded(ctx, id, userID, map[string]interface{}{
		"status":        entity.AnalysisStatusFailed,
		"error_message": errorMessage,
	})
}

func (r *GormRepository) updateAnalysisGuarded(ctx context.Context, id string, userID uint, updates map[string]interface{}) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	if strings.TrimSpace(id) == "" || userID == 0 {
		return 0, fmt.Errorf("invalid analysis id")
	}
	updates["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&entity.DbAnalysis{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userID, nonTerminalStatuses).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
