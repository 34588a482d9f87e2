package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bandcheck/internal/access"
	accesshandler "bandcheck/internal/access/handler"
	"bandcheck/internal/evaluator"
	"bandcheck/internal/jwtauth"
	"bandcheck/internal/license"
	"bandcheck/internal/platform/config"
	"bandcheck/internal/platform/httpserver"
	"bandcheck/internal/platform/logger"
	"bandcheck/internal/platform/metrics"
	platformredis "bandcheck/internal/platform/redis"
	"bandcheck/internal/report"
	"bandcheck/internal/review"
	reviewhandler "bandcheck/internal/review/handler"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err.Error())
		os.Exit(1)
	}

	var accessStore access.Store = access.NewInMemoryStore()
	var reportStore review.ReportStore = review.NewInMemoryReportStore()
	if redisClient != nil {
		accessStore = access.NewRedisStore(redisClient.Client)
		reportStore = review.NewRedisReportStore(redisClient.Client)
		log.Info("using redis-backed stores")
	} else {
		log.Warn("REDIS_URL not set, state will not survive restarts")
	}

	var verifier access.Verifier
	if cfg.VerifierBaseURL != "" {
		verifier = license.NewClient(cfg.VerifierBaseURL, cfg.VerifierSecret,
			license.WithLogger(log))
	} else {
		log.Warn("LICENSE_VERIFIER_URL not set, using mock verifier")
		verifier = license.MockVerifier{Latency: 200 * time.Millisecond}
	}

	var eval review.Evaluator
	if cfg.GeminiAPIKey != "" {
		opts := []evaluator.Option{}
		if cfg.GeminiModel != "" {
			opts = append(opts, evaluator.WithModel(cfg.GeminiModel))
		}
		client, err := evaluator.NewClient(ctx, cfg.GeminiAPIKey, opts...)
		if err != nil {
			log.Error("evaluator setup failed", "error", err.Error())
			os.Exit(1)
		}
		eval = client
	} else {
		log.Warn("GEMINI_API_KEY not set, using mock evaluator")
		eval = evaluator.MockEvaluator{Latency: time.Second}
	}

	accessSvc, err := access.NewService(accessStore, verifier, access.WithLogger(log))
	if err != nil {
		log.Error("access service setup failed", "error", err.Error())
		os.Exit(1)
	}

	renderer := report.NewRenderer(cfg.TemplatePath, cfg.FontPath, report.WithLogger(log))

	reviewSvc, err := review.NewService(accessSvc, eval, renderer, reportStore,
		review.WithLogger(log),
		review.WithMetrics(m),
		review.WithConcurrencyLimit(cfg.ConcurrencyLimit),
	)
	if err != nil {
		log.Error("review service setup failed", "error", err.Error())
		os.Exit(1)
	}

	jwtService := jwtauth.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	jwtValidator := jwtauth.NewJWTServiceAdapter(jwtService)

	router := chi.NewRouter()
	reviewhandler.New(reviewSvc, log, m, jwtValidator).Register(router)
	accesshandler.New(reviewSvc, log, m, jwtValidator).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting bandcheck", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
