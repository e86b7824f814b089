package service

import (
	"context"
	"errors"
	"fmt"
	"resalelens/internal/ai"
	"resalelens/internal/entity"
	"resalelens/internal/model"
	"resalelens/internal/vision"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrAnalysisNotFound 请求的分析记录不存在或不属于调用者。
var ErrAnalysisNotFound = errors.New("analysis not found")

// ErrAnalysisFinalized 分析记录已处于终态，不允许再次处理。
var ErrAnalysisFinalized = errors.New("analysis already completed")

// ProviderError wraps a hard failure from the vision or generative provider.
// It always follows the compensation path: the reserved credit is restored
// and the record moves to failed.
type ProviderError struct {
	Stage string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider failure: %v", e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AnalysisService orchestrates one product-photo analysis as a linear saga:
// reserve a credit, mark the record processing, gather the vision signal,
// invoke the generative model, persist the outcome, and compensate the
// credit when a provider step fails. It holds no state between requests.
type AnalysisService struct {
	repo      model.Repository
	annotator vision.Annotator
	analyzer  ai.Analyzer
	timeout   time.Duration
}

// NewAnalysisService 创建分析服务实例
func NewAnalysisService(repo model.Repository, annotator vision.Annotator, analyzer ai.Analyzer, timeout time.Duration) *AnalysisService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &AnalysisService{
		repo:      repo,
		annotator: annotator,
		analyzer:  analyzer,
		timeout:   timeout,
	}
}

// Analyze runs the saga for one analysis record owned by userID. The record
// must exist in a non-terminal state; the caller has already been
// authenticated and the request validated.
//
// Error contract: entity.ErrInsufficientCredits and entity.ErrCreditConflict
// are returned with no side effects. ErrAnalysisNotFound and
// ErrAnalysisFinalized are returned after the reserved credit has been
// restored. A *ProviderError is returned after full compensation (credit
// restored, record failed). Any other error is a persistence failure with no
// compensation attempted.
func (s *AnalysisService) Analyze(ctx context.Context, userID uint, req entity.AnalyzeImageRequest) (*entity.AnalyzeImageResponse, error) {
	logger := logrus.WithFields(logrus.Fields{
		"analysis_id": req.AnalysisID,
		"user_id":     userID,
	})

	// 预扣额度，带前值守卫，防止并发超扣
	priorCredits, err := s.repo.DeductCredit(ctx, userID)
	if err != nil {
		return nil, err
	}
	logger.WithField("credits_before", priorCredits).Info("credit_reserved")

	// 在昂贵的模型调用之前切换到 processing，让轮询中的客户端看到进度
	rows, err := s.repo.MarkAnalysisProcessing(ctx, req.AnalysisID, userID)
	if err != nil {
		return nil, fmt.Errorf("mark analysis processing: %w", err)
	}
	if rows == 0 {
		// Terminal record or wrong owner. The credit was reserved for
		// nothing, give it back before rejecting.
		s.restoreCredit(userID, priorCredits, logger)
		if _, getErr := s.repo.GetAnalysis(ctx, req.AnalysisID, userID); getErr != nil {
			return nil, ErrAnalysisNotFound
		}
		return nil, ErrAnalysisFinalized
	}

	signal, err := s.annotator.Annotate(ctx, req.ImageURL)
	if err != nil {
		logger.WithError(err).Error("vision_annotation_failed")
		return nil, s.compensate(userID, priorCredits, req.AnalysisID, &ProviderError{Stage: "vision", Err: err}, logger)
	}

	analysisCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	listing, err := s.analyzer.AnalyzeListing(analysisCtx, req.ImageURL, signal)
	if err != nil {
		logger.WithError(err).Error("listing_analysis_failed")
		return nil, s.compensate(userID, priorCredits, req.AnalysisID, &ProviderError{Stage: "analysis", Err: err}, logger)
	}

	confidence := ScoreConfidence(listing)

	result := entity.AnalysisResultUpdates{
		ItemName:               listing.ItemName,
		Condition:              listing.Condition,
		PriceRange:             &listing.RecommendedPrice,
		RecommendedMarketplace: listing.MarketplaceRecommendation.Platform,
		MarketplaceReasoning:   listing.MarketplaceRecommendation.Reasoning,
		GeneratedTitle:         listing.GeneratedContent.Title,
		GeneratedDescription:   listing.GeneratedContent.Description,
		GeneratedTags:          listing.GeneratedContent.Tags,
		Comparables:            listing.Comparables,
		ConfidenceScore:        confidence,
	}

	rows, err = s.repo.CompleteAnalysis(ctx, req.AnalysisID, userID, result)
	if err != nil {
		return nil, fmt.Errorf("complete analysis: %w", err)
	}
	if rows == 0 {
		// The record reached a terminal state underneath us. The credit was
		// genuinely spent on a model call, so it stays consumed.
		logger.Warn("analysis_finalized_concurrently")
		return nil, ErrAnalysisFinalized
	}

	logger.WithFields(logrus.Fields{
		"item_name":        listing.ItemName,
		"confidence_score": confidence,
	}).Info("analysis_completed")

	return &entity.AnalyzeImageResponse{
		Success:         true,
		AnalysisID:      req.AnalysisID,
		ConfidenceScore: confidence,
		ItemName:        listing.ItemName,
	}, nil
}

// compensate restores the reserved credit and fails the record, then returns
// the provider error for the handler to map. Compensation runs on a fresh
// context so an abandoned client connection cannot interrupt it.
func (s *AnalysisService) compensate(userID uint, priorCredits int, analysisID string, provErr *ProviderError, logger *logrus.Entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.restoreCredit(userID, priorCredits, logger)

	if _, err := s.repo.FailAnalysis(ctx, analysisID, userID, "AI analysis failed"); err != nil {
		logger.WithError(err).Error("fail_analysis_update_failed")
	}

	return provErr
}

func (s *AnalysisService) restoreCredit(userID uint, priorCredits int, logger *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.repo.RestoreCredit(ctx, userID, priorCredits); err != nil {
		logger.WithError(err).Error("credit_restore_failed")
		return
	}
	logger.WithField("credits_restored_to", priorCredits).Info("credit_restored")
}
