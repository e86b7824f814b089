package service

import (
	"context"
	"errors"
	"resalelens/internal/entity"
	"testing"
	"time"
)

// fakeRepo is an in-memory stand-in for the persistence layer that tracks a
// single user's credit balance and a single analysis record.
type fakeRepo struct {
	credits       int
	status        string
	errorMessage  string
	result        *entity.AnalysisResultUpdates
	deductCalls   int
	restoreCalls  int
	deductErr     error
	completeErr   error
	recordMissing bool
}

func newFakeRepo(credits int, status string) *fakeRepo {
	return &fakeRepo{credits: credits, status: status}
}

func (r *fakeRepo) CreateUser(ctx context.Context, user *entity.DbUser) error { return nil }
func (r *fakeRepo) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	return nil
}
func (r *fakeRepo) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeRepo) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeRepo) CreateSubscription(ctx context.Context, sub *entity.DbSubscription) error {
	return nil
}
func (r *fakeRepo) GetSubscription(ctx context.Context, userID uint) (*entity.DbSubscription, error) {
	return &entity.DbSubscription{UserID: userID, CreditsRemaining: r.credits}, nil
}

func (r *fakeRepo) DeductCredit(ctx context.Context, userID uint) (int, error) {
	r.deductCalls++
	if r.deductErr != nil {
		return 0, r.deductErr
	}
	if r.credits <= 0 {
		return 0, entity.ErrInsufficientCredits
	}
	prior := r.credits
	r.credits--
	return prior, nil
}

func (r *fakeRepo) RestoreCredit(ctx context.Context, userID uint, priorValue int) error {
	r.restoreCalls++
	if r.credits == priorValue-1 {
		r.credits = priorValue
	}
	return nil
}

func (r *fakeRepo) CreateAnalysis(ctx context.Context, analysis *entity.DbAnalysis) error {
	return nil
}
func (r *fakeRepo) GetAnalysis(ctx context.Context, id string, userID uint) (*entity.DbAnalysis, error) {
	if r.recordMissing {
		return nil, errors.New("record not found")
	}
	return &entity.DbAnalysis{ID: id, UserID: userID, Status: r.status}, nil
}
func (r *fakeRepo) ListAnalyses(ctx context.Context, params *entity.AnalysisQuery) ([]entity.DbAnalysis, *entity.Meta, error) {
	return nil, nil, nil
}
func (r *fakeRepo) DeleteAnalysis(ctx context.Context, id string, userID uint) error { return nil }

func (r *fakeRepo) MarkAnalysisProcessing(ctx context.Context, id string, userID uint) (int64, error) {
	if r.recordMissing || entity.AnalysisStatusTerminal(r.status) {
		return 0, nil
	}
	r.status = entity.AnalysisStatusProcessing
	return 1, nil
}

func (r *fakeRepo) CompleteAnalysis(ctx context.Context, id string, userID uint, result entity.AnalysisResultUpdates) (int64, error) {
	if r.completeErr != nil {
		return 0, r.completeErr
	}
	if entity.AnalysisStatusTerminal(r.status) {
		return 0, nil
	}
	r.status = entity.AnalysisStatusCompleted
	r.result = &result
	return 1, nil
}

func (r *fakeRepo) FailAnalysis(ctx context.Context, id string, userID uint, errorMessage string) (int64, error) {
	if entity.AnalysisStatusTerminal(r.status) {
		return 0, nil
	}
	r.status = entity.AnalysisStatusFailed
	r.errorMessage = errorMessage
	return 1, nil
}

type fakeAnnotator struct {
	signal *entity.VisionSignal
	err    error
}

func (a *fakeAnnotator) Annotate(ctx context.Context, imageURL string) (*entity.VisionSignal, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.signal, nil
}

type fakeAnalyzer struct {
	listing *entity.ListingAnalysis
	err     error
}

func (a *fakeAnalyzer) AnalyzeListing(ctx context.Context, imageURL string, signal *entity.VisionSignal) (*entity.ListingAnalysis, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.listing, nil
}

func testListing() *entity.ListingAnalysis {
	return &entity.ListingAnalysis{
		ItemName:         "Vintage Leather Jacket",
		Condition:        "Good - Minor wear",
		RecommendedPrice: entity.PriceRange{Low: 45, Median: 65, High: 85},
		MarketplaceRecommendation: entity.MarketplaceRecommendation{
			Platform:  "Depop",
			Reasoning: "Strong demand for vintage outerwear among younger buyers.",
		},
		GeneratedContent: entity.GeneratedContent{
			Title:       "Vintage Brown Leather Jacket - Classic Moto Style",
			Description: "Classic vintage leather jacket in good condition with minor wear on the cuffs. Timeless style.",
			Tags:        []string{"vintage", "leather", "jacket", "moto", "brown"},
		},
		Comparables: []entity.Comparable{
			{Title: "Similar jacket", Price: 60, URL: "https://example.com/1"},
			{Title: "Similar jacket", Price: 70, URL: "https://example.com/2"},
			{Title: "Similar jacket", Price: 55, URL: "https://example.com/3"},
		},
	}
}

func testRequest() entity.AnalyzeImageRequest {
	return entity.AnalyzeImageRequest{
		AnalysisID: "analysis-1",
		ImageURL:   "https://example.com/photo.jpg",
	}
}

func newTestService(repo *fakeRepo, annotator *fakeAnnotator, analyzer *fakeAnalyzer) *AnalysisService {
	if annotator == nil {
		annotator = &fakeAnnotator{signal: &entity.VisionSignal{
			Labels: []entity.VisionLabel{{Description: "Jacket", Score: 0.9}},
		}}
	}
	if analyzer == nil {
		analyzer = &fakeAnalyzer{listing: testListing()}
	}
	return NewAnalysisService(repo, annotator, analyzer, time.Minute)
}

func TestAnalyzeSuccessConsumesOneCredit(t *testing.T) {
	repo := newFakeRepo(2, entity.AnalysisStatusPending)
	svc := newTestService(repo, nil, nil)

	resp, err := svc.Analyze(context.Background(), 1, testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success response")
	}
	if resp.ItemName != "Vintage Leather Jacket" {
		t.Fatalf("unexpected item name: %s", resp.ItemName)
	}
	if resp.ConfidenceScore < 85 || resp.ConfidenceScore > 100 {
		t.Fatalf("confidence score out of range: %d", resp.ConfidenceScore)
	}
	if repo.credits != 1 {
		t.Fatalf("expected 1 credit remaining, got %d", repo.credits)
	}
	if repo.status != entity.AnalysisStatusCompleted {
		t.Fatalf("expected completed status, got %s", repo.status)
	}
	if repo.result == nil || repo.result.ItemName != "Vintage Leather Jacket" {
		t.Fatal("expected persisted analysis result")
	}
	if repo.restoreCalls != 0 {
		t.Fatalf("expected no credit restore on success, got %d", repo.restoreCalls)
	}
}

func TestAnalyzeInsufficientCredits(t *testing.T) {
	repo := newFakeRepo(0, entity.AnalysisStatusPending)
	svc := newTestService(repo, nil, nil)

	_, err := svc.Analyze(context.Background(), 1, testRequest())
	if !errors.Is(err, entity.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if repo.status != entity.AnalysisStatusPending {
		t.Fatalf("expected record untouched, got status %s", repo.status)
	}
}

func TestAnalyzeVisionFailureCompensates(t *testing.T) {
	repo := newFakeRepo(2, entity.AnalysisStatusPending)
	svc := newTestService(repo, &fakeAnnotator{err: errors.New("vision unavailable")}, nil)

	_, err := svc.Analyze(context.Background(), 1, testRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Stage != "vision" {
		t.Fatalf("expected vision stage, got %s", provErr.Stage)
	}
	if repo.credits != 2 {
		t.Fatalf("expected credit restored to 2, got %d", repo.credits)
	}
	if repo.status != entity.AnalysisStatusFailed {
		t.Fatalf("expected failed status, got %s", repo.status)
	}
	if repo.errorMessage != "AI analysis failed" {
		t.Fatalf("unexpected error message: %q", repo.errorMessage)
	}
}

func TestAnalyzeModelFailureCompensates(t *testing.T) {
	repo := newFakeRepo(1, entity.AnalysisStatusPending)
	svc := newTestService(repo, nil, &fakeAnalyzer{err: errors.New("model timeout")})

	_, err := svc.Analyze(context.Background(), 1, testRequest())

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Stage != "analysis" {
		t.Fatalf("expected analysis stage, got %s", provErr.Stage)
	}
	if repo.credits != 1 {
		t.Fatalf("expected credit restored to 1, got %d", repo.credits)
	}
	if repo.status != entity.AnalysisStatusFailed {
		t.Fatalf("expected failed status, got %s", repo.status)
	}
}

func TestAnalyzeTerminalRecordRestoresCredit(t *testing.T) {
	repo := newFakeRepo(2, entity.AnalysisStatusCompleted)
	svc := newTestService(repo, nil, nil)

	_, err := svc.Analyze(context.Background(), 1, testRequest())
	if !errors.Is(err, ErrAnalysisFinalized) {
		t.Fatalf("expected ErrAnalysisFinalized, got %v", err)
	}
	if repo.credits != 2 {
		t.Fatalf("expected credit restored to 2, got %d", repo.credits)
	}
	if repo.status != entity.AnalysisStatusCompleted {
		t.Fatalf("expected status unchanged, got %s", repo.status)
	}
}

func TestAnalyzeMissingRecordRestoresCredit(t *testing.T) {
	repo := newFakeRepo(1, entity.AnalysisStatusPending)
	repo.recordMissing = true
	svc := newTestService(repo, nil, nil)

	_, err := svc.Analyze(context.Background(), 1, testRequest())
	if !errors.Is(err, ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}
	if repo.credits != 1 {
		t.Fatalf("expected credit restored to 1, got %d", repo.credits)
	}
}

func TestAnalyzeCompleteRaceKeepsCreditSpent(t *testing.T) {
	repo := newFakeRepo(3, entity.AnalysisStatusPending)

	// 在写回之前把记录推进到终态,模拟并发完成
	svc := NewAnalysisService(repo, &fakeAnnotator{signal: &entity.VisionSignal{}}, analyzerFunc(func(ctx context.Context, imageURL string, signal *entity.VisionSignal) (*entity.ListingAnalysis, error) {
		repo.status = entity.AnalysisStatusFailed
		return testListing(), nil
	}), time.Minute)

	_, err := svc.Analyze(context.Background(), 1, testRequest())
	if !errors.Is(err, ErrAnalysisFinalized) {
		t.Fatalf("expected ErrAnalysisFinalized, got %v", err)
	}
	// 模型调用已经发生,额度保持扣减
	if repo.credits != 2 {
		t.Fatalf("expected credit to stay spent, got %d", repo.credits)
	}
	if repo.restoreCalls != 0 {
		t.Fatalf("expected no restore, got %d calls", repo.restoreCalls)
	}
}

type analyzerFunc func(ctx context.Context, imageURL string, signal *entity.VisionSignal) (*entity.ListingAnalysis, error)

func (f analyzerFunc) AnalyzeListing(ctx context.Context, imageURL string, signal *entity.VisionSignal) (*entity.ListingAnalysis, error) {
	return f(ctx, imageURL, signal)
}
