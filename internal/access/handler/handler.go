package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"bandcheck/internal/access"
	"bandcheck/internal/platform/metrics"
	"bandcheck/internal/platform/middleware"
	"bandcheck/internal/transport/http/shared"
	dErrors "bandcheck/pkg/domain-errors"
)

// Service defines the interface for access operations.
type Service interface {
	Redeem(ctx context.Context, userID, key string) (access.ActivationResult, error)
	Status(ctx context.Context, userID string) (access.Status, error)
}

// Handler handles the access endpoints.
type Handler struct {
	logger       *slog.Logger
	accessSvc    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new access Handler.
func New(
	accessSvc Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		accessSvc:    accessSvc,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// RedeemRequest is the redeem endpoint's body.
type RedeemRequest struct {
	LicenseKey string `json:"license_key"`
}

// RedeemResponse is the redeem endpoint's reply.
type RedeemResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// StatusResponse is the status endpoint's reply.
type StatusResponse struct {
	State            string     `json:"state"`
	RemainingFree    *int       `json:"remaining_free,omitempty"`
	LicenseExpiresAt *time.Time `json:"license_expires_at,omitempty"`
}

// Register registers the access routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	accessRouter := chi.NewRouter()
	accessRouter.Use(middleware.Recovery(h.logger))
	accessRouter.Use(middleware.RequestID)
	accessRouter.Use(middleware.Logger(h.logger))
	accessRouter.Use(middleware.Timeout(30 * time.Second))
	accessRouter.Use(middleware.ContentTypeJSON)
	accessRouter.Use(middleware.LatencyMiddleware(h.metrics))
	accessRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	accessRouter.Post("/redeem", h.handleRedeem)
	accessRouter.Get("/status", h.handleStatus)

	r.Mount("/access", accessRouter)
}

// handleRedeem activates a license key for the authenticated user.
func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
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

	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid redeem request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !govalidator.StringLength(req.LicenseKey, "1", "100") {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "license_key must be between 1 and 100 characters"))
		return
	}

	result, err := h.accessSvc.Redeem(ctx, userID, req.LicenseKey)
	if err != nil {
		switch {
		case dErrors.Is(err, dErrors.CodeLicenseInvalid) || dErrors.Is(err, dErrors.CodeInvalidInput):
			h.logger.InfoContext(ctx, "license refused",
				"request_id", requestID,
			)
			shared.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "redeem failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to redeem license"))
		}
		return
	}

	shared.WriteJSON(w, http.StatusOK, RedeemResponse{ExpiresAt: result.ExpiresAt})
}

// handleStatus reports the authenticated user's access state.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
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

	status, err := h.accessSvc.Status(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "status lookup failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to load access status"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

func toStatusResponse(status access.Status) StatusResponse {
	resp := StatusResponse{State: string(status.State)}
	switch status.State {
	case access.StateFree:
		remaining := status.Remaining
		resp.RemainingFree = &remaining
	case access.StateLicensed:
		resp.LicenseExpiresAt = status.Expiry
	}
	return resp
}
