package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"bandcheck/internal/platform/metrics"
	"bandcheck/internal/platform/middleware"
	"bandcheck/internal/review"
	"bandcheck/internal/transport/http/shared"
	dErrors "bandcheck/pkg/domain-errors"
)

// Service defines the interface for essay operations.
type Service interface {
	Analyze(ctx context.Context, userID, essay string) (review.AnalysisResult, error)
	RenderReport(ctx context.Context, userID string) ([]byte, error)
}

// Handler handles the essay endpoints.
type Handler struct {
	logger       *slog.Logger
	reviews      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new essay Handler.
func New(
	reviews Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		reviews:      reviews,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// AnalyzeRequest is the analyze endpoint's body.
type AnalyzeRequest struct {
	Essay string `json:"essay"`
}

// CriterionResult is one criterion line of the analyze response.
type CriterionResult struct {
	Label   string  `json:"label"`
	Band    float64 `json:"band"`
	Comment string  `json:"comment"`
}

// AnalyzeResponse is the analyze endpoint's reply.
type AnalyzeResponse struct {
	Criteria    []CriterionResult `json:"criteria"`
	OverallBand *float64          `json:"overall_band,omitempty"`
	Summary     string            `json:"summary"`
	WordCount   int               `json:"word_count"`
}

// Register registers the essay routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	essayRouter := chi.NewRouter()
	essayRouter.Use(middleware.Recovery(h.logger))
	essayRouter.Use(middleware.RequestID)
	essayRouter.Use(middleware.Logger(h.logger))
	essayRouter.Use(middleware.Timeout(90 * time.Second))
	essayRouter.Use(middleware.ContentTypeJSON)
	essayRouter.Use(middleware.LatencyMiddleware(h.metrics))
	essayRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	essayRouter.Post("/analyze", h.handleAnalyze)
	essayRouter.Get("/report", h.handleReport)

	r.Mount("/essays", essayRouter)
}

// handleAnalyze runs one essay through the pipeline for the authenticated
// user.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid analyze request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !govalidator.StringLength(req.Essay, "1", "50000") {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "essay must be between 1 and 50000 characters"))
		return
	}

	result, err := h.reviews.Analyze(ctx, userID, req.Essay)
	if err != nil {
		switch {
		case dErrors.Is(err, dErrors.CodeQuotaExceeded) || dErrors.Is(err, dErrors.CodeInvalidInput):
			h.logger.InfoContext(ctx, "analysis refused",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
		case dErrors.Is(err, dErrors.CodeUnavailable):
			h.logger.WarnContext(ctx, "analysis unavailable",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "analysis failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to analyze essay"))
		}
		return
	}

	shared.WriteJSON(w, http.StatusOK, toAnalyzeResponse(result))
}

// handleReport streams the user's most recent report as a PNG document.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	doc, err := h.reviews.RenderReport(ctx, userID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "report rendering failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to render report"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="report.png"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.ErrorContext(ctx, "failed to write report response",
			"request_id", requestID,
			"error", err.Error(),
		)
	}
}

func toAnalyzeResponse(result review.AnalysisResult) AnalyzeResponse {
	resp := AnalyzeResponse{
		Criteria:  make([]CriterionResult, 0, len(result.Report.Criteria)),
		Summary:   result.Summary,
		WordCount: result.WordCount,
	}
	for _, c := range result.Report.Criteria {
		resp.Criteria = append(resp.Criteria, CriterionResult{
			Label:   string(c.Label),
			Band:    c.Band,
			Comment: c.Comment,
		})
	}
	if result.Report.HasOverallScore {
		overall := result.Report.OverallScore
		resp.OverallBand = &overall
	}
	return resp
}
