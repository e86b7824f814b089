package model

import (
	"context"

	"resalelens/internal/entity"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)

	// 订阅与额度
	CreateSubscription(ctx context.Context, sub *entity.DbSubscription) error
	GetSubscription(ctx context.Context, userID uint) (*entity.DbSubscription, error)
	// DeductCredit reserves one credit with an expected-prior-value guard so
	// two concurrent requests for the same user cannot both spend the same
	// credit. Returns the balance before deduction.
	DeductCredit(ctx context.Context, userID uint) (int, error)
	// RestoreCredit undoes a deduction. It sets the balance back to the
	// pre-deduction value only while the balance still equals the deducted
	// value, making the compensation idempotent.
	RestoreCredit(ctx context.Context, userID uint, priorValue int) error

	// 分析记录
	CreateAnalysis(ctx context.Context, analysis *entity.DbAnalysis) error
	GetAnalysis(ctx context.Context, id string, userID uint) (*entity.DbAnalysis, error)
	ListAnalyses(ctx context.Context, params *entity.AnalysisQuery) ([]entity.DbAnalysis, *entity.Meta, error)
	DeleteAnalysis(ctx context.Context, id string, userID uint) error
	// MarkAnalysisProcessing transitions a non-terminal record to processing,
	// scoped to the owner. Returns the number of affected rows so callers can
	// detect terminal records.
	MarkAnalysisProcessing(ctx context.Context, id string, userID uint) (int64, error)
	CompleteAnalysis(ctx context.Context, id string, userID uint, result entity.AnalysisResultUpdates) (int64, error)
	FailAnalysis(ctx context.Context, id string, userID uint, errorMessage string) (int64, error)
}
