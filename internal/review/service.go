// Package review orchestrates the essay pipeline: quota check, evaluator
// call, feedback extraction, report persistence and rendering. It owns no
// domain rules itself; those live in access, feedback and report.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"bandcheck/internal/access"
	"bandcheck/internal/feedback"
	"bandcheck/internal/platform/metrics"
	dErrors "bandcheck/pkg/domain-errors"
	"bandcheck/pkg/platform/sentinel"
)

// DefaultConcurrency bounds how many evaluator and render calls may run at
// once across all users.
const DefaultConcurrency = 8

// Evaluator produces free-form feedback text for an essay.
type Evaluator interface {
	Evaluate(ctx context.Context, essay string) (string, error)
}

// Renderer turns a structured report into a finished document.
type Renderer interface {
	Render(rep feedback.Report) ([]byte, error)
}

// Service wires the pipeline together. Slow collaborator work runs under a
// weighted semaphore so one user's slow call cannot starve the process.
type Service struct {
	access    *access.Service
	evaluator Evaluator
	renderer  Renderer
	reports   ReportStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	slots     *semaphore.Weighted
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrencyLimit bounds concurrent evaluator and render calls.
func WithConcurrencyLimit(n int64) Option {
	return func(s *Service) {
		s.slots = semaphore.NewWeighted(n)
	}
}

func NewService(accessSvc *access.Service, evaluator Evaluator, renderer Renderer, reports ReportStore, opts ...Option) (*Service, error) {
	if accessSvc == nil {
		return nil, fmt.Errorf("access service is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if reports == nil {
		return nil, fmt.Errorf("report store is required")
	}

	svc := &Service{
		access:    accessSvc,
		evaluator: evaluator,
		renderer:  renderer,
		reports:   reports,
		logger:    slog.Default(),
		slots:     semaphore.NewWeighted(DefaultConcurrency),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Analyze runs one essay through the pipeline. The quota is consumed only
// after the evaluator has answered: a failed evaluation costs the user
// nothing.
func (s *Service) Analyze(ctx context.Context, userID, essay string) (AnalysisResult, error) {
	essay = strings.TrimSpace(essay)
	if essay == "" {
		return AnalysisResult{}, dErrors.New(dErrors.CodeInvalidInput, "essay text is required")
	}

	allowed, err := s.access.CheckQuota(ctx, userID)
	if err != nil {
		return AnalysisResult{}, err
	}
	if !allowed {
		s.metrics.IncrementQuotaDenials()
		s.logger.InfoContext(ctx, "analysis refused, free limit reached", "user_id", userID)
		return AnalysisResult{}, dErrors.New(dErrors.CodeQuotaExceeded,
			"free analysis limit reached; redeem a license key to continue")
	}

	raw, err := s.evaluate(ctx, essay)
	if err != nil {
		s.logger.WarnContext(ctx, "essay evaluation failed",
			"user_id", userID,
			"error", err.Error(),
		)
		return AnalysisResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable,
			"essay evaluation is temporarily unavailable")
	}

	rep := feedback.Parse(raw)
	if err := s.reports.SaveReport(ctx, userID, rep); err != nil {
		return AnalysisResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store report")
	}
	if err := s.access.RecordAnalysis(ctx, userID); err != nil {
		return AnalysisResult{}, err
	}
	s.metrics.IncrementEssaysAnalyzed()

	s.logger.InfoContext(ctx, "essay analyzed",
		"user_id", userID,
		"criteria_matched", len(rep.Criteria),
		"overall_scored", rep.HasOverallScore,
	)
	return AnalysisResult{
		Report:    rep,
		Summary:   rep.Summary(),
		WordCount: len(strings.Fields(essay)),
	}, nil
}

func (s *Service) evaluate(ctx context.Context, essay string) (string, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	defer s.slots.Release(1)

	start := time.Now()
	raw, err := s.evaluator.Evaluate(ctx, essay)
	if err != nil {
		s.metrics.ObserveEvaluatorLatency("error", time.Since(start))
		return "", err
	}
	s.metrics.ObserveEvaluatorLatency("ok", time.Since(start))
	return raw, nil
}

// RenderReport renders the user's most recent report as a document.
func (s *Service) RenderReport(ctx context.Context, userID string) ([]byte, error) {
	rep, err := s.reports.GetReport(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no report available; analyze an essay first")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load report")
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "rendering capacity unavailable")
	}
	defer s.slots.Release(1)

	doc, err := s.renderer.Render(rep)
	if err != nil {
		s.logger.ErrorContext(ctx, "report rendering failed",
			"user_id", userID,
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render report")
	}
	return doc, nil
}

// Redeem activates a license key for the user.
func (s *Service) Redeem(ctx context.Context, userID, key string) (access.ActivationResult, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t\r\n") {
		return access.ActivationResult{}, dErrors.New(dErrors.CodeInvalidInput, "license key is required")
	}

	result, err := s.access.Redeem(ctx, userID, key)
	if err != nil {
		return access.ActivationResult{}, err
	}
	s.metrics.IncrementLicensesActivated()
	return result, nil
}

// Status reports the user's current access state.
func (s *Service) Status(ctx context.Context, userID string) (access.Status, error) {
	return s.access.Status(ctx, userID)
}
