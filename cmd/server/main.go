package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/database"
	"github.com/lingua-prep/adaptive-exam-engine/internal/grading"
	"github.com/lingua-prep/adaptive-exam-engine/internal/handler"
	"github.com/lingua-prep/adaptive-exam-engine/internal/logger"
	"github.com/lingua-prep/adaptive-exam-engine/internal/notify"
	"github.com/lingua-prep/adaptive-exam-engine/internal/repository"
	"github.com/lingua-prep/adaptive-exam-engine/internal/router"
	"github.com/lingua-prep/adaptive-exam-engine/internal/service"
	"github.com/lingua-prep/adaptive-exam-engine/internal/validator"
	"github.com/lingua-prep/adaptive-exam-engine/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Adaptive Exam Engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	sessionRepo := repository.NewSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	creditRepo := repository.NewCreditRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)

	// ─── Grading Backend ───────────────────────────────────────────────
	// Without an API key, spoken answers save ungraded instead of failing.
	var grader grading.Grader
	if g, err := grading.NewOpenAIGrader(cfg.OpenAIAPIKey, cfg.OpenAIModel, log); err != nil {
		log.Warn().Err(err).Msg("AI grading disabled")
	} else {
		grader = g
	}

	// ─── Notification Sink ─────────────────────────────────────────────
	var sink notify.Sink
	if cfg.NotifyWebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.NotifyWebhookURL)
	} else {
		sink = notify.NewLogSink(log)
	}
	dispatcher := notify.NewDispatcher(rdb, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, candidateRepo)
	sessionService := service.NewSessionService(cfg, sessionRepo, answerRepo, candidateRepo, creditRepo, dispatcher, log)
	flowService := service.NewFlowService(sessionRepo, answerRepo, questionRepo, grader, log)
	publisher := service.NewRedisEventPublisher(rdb)
	integrityService := service.NewIntegrityService(sessionRepo, violationRepo, publisher, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, candidateRepo),
		Session:   handler.NewSessionHandler(sessionService),
		Flow:      handler.NewFlowHandler(flowService),
		Integrity: handler.NewIntegrityHandler(integrityService),
		ProctorWS: handler.NewProctorWSHandler(rdb, sessionRepo, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	violationWorker := worker.NewViolationWorker(pool, rdb, log)
	notifyWorker := worker.NewNotifyWorker(rdb, sink, log)

	go violationWorker.Start(workerCtx)
	go notifyWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
