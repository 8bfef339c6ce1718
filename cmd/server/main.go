// Package main runs the credit decision engine HTTP API: application
// sessions, step evaluation, decisions and the decision history.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"credit-decision-engine/internal/config"
	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/handlers"
	"credit-decision-engine/internal/metrics"
	"credit-decision-engine/internal/services/database"
	"credit-decision-engine/internal/services/history"
	"credit-decision-engine/internal/services/notify"
	s3service "credit-decision-engine/internal/services/s3"
	"credit-decision-engine/internal/services/ses"
	"credit-decision-engine/internal/session"
	"credit-decision-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	logger := utils.GetLogger()
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// The database is optional: without one the server runs in demo mode
	// and keeps the decision log in memory.
	var historyStore history.Store

	db, err := database.New(cfg)
	if err != nil {
		logger.Warn("Could not connect to database, running in demo mode", utils.Error(err))
		db = nil
		historyStore = history.NewMemoryStore()
	} else {
		defer db.Close()
		historyStore = database.NewHistoryRepository(db)
	}

	sessionStore, err := buildSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to build session store", utils.Error(err))
	}

	manager, err := session.NewManager(sessionStore, session.Config{
		Policy:         cfg.RulePolicy,
		Mode:           cfg.AggregationMode,
		StartDelayDays: cfg.CreditStartDelayDays,
	}, m)
	if err != nil {
		logger.Fatal("Invalid engine configuration", utils.Error(err))
	}

	// S3 archiving and decision notifications are optional features.
	var archiver *s3service.Service
	if cfg.S3Bucket != "" {
		archiver, err = s3service.NewService(ctx, cfg.S3Bucket)
		if err != nil {
			logger.Warn("Could not initialize S3 archiver", utils.Error(err))
			archiver = nil
		}
	}

	var emailer *ses.Service
	if cfg.SESSenderEmail != "" {
		emailer, err = ses.NewService(ctx, cfg.SESSenderEmail)
		if err != nil {
			logger.Warn("Could not initialize SES sender", utils.Error(err))
			emailer = nil
		}
	}

	var notifier *notify.Service
	if cfg.DecisionWebhookURL != "" || emailer != nil {
		notifier = notify.NewService(cfg.DecisionWebhookURL, emailer, m)
	}

	policy, err := decision.PolicyByName(cfg.RulePolicy)
	if err != nil {
		logger.Fatal("Invalid engine configuration", utils.Error(err))
	}
	mode, err := decision.ModeByName(cfg.AggregationMode)
	if err != nil {
		logger.Fatal("Invalid engine configuration", utils.Error(err))
	}
	engine := decision.NewEngine(policy, mode, cfg.CreditStartDelayDays)

	appHandler := handlers.NewApplicationHandler(manager, historyStore, archiver, notifier)
	batchHandler := handlers.NewBatchHTTPHandler(engine, historyStore)
	healthHandler := handlers.NewHealthHandlerWithDB(db)

	r := chi.NewRouter()
	appHandler.Register(r)
	batchHandler.Register(r)
	r.Get("/health", healthHandler.HandleHTTP)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Starting credit decision engine API",
		utils.String("addr", addr),
		utils.String("policy", cfg.RulePolicy),
		utils.String("mode", cfg.AggregationMode),
		utils.String("sessionStore", cfg.SessionStore),
		utils.String("stage", cfg.Stage))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", utils.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", utils.Error(err))
	}
}

// buildSessionStore selects the session backend from configuration.
func buildSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.SessionStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return session.NewRedisStore(client, time.Duration(cfg.SessionTTLMinutes)*time.Minute), nil
	case "memory", "":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
