// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/agent"
	"github.com/glancehq/assistant-platform/internal/apiclient"
	"github.com/glancehq/assistant-platform/internal/config"
	"github.com/glancehq/assistant-platform/internal/conversation"
	"github.com/glancehq/assistant-platform/internal/handler"
	"github.com/glancehq/assistant-platform/internal/llm"
	"github.com/glancehq/assistant-platform/internal/middleware"
	"github.com/glancehq/assistant-platform/internal/mock"
	natsclient "github.com/glancehq/assistant-platform/internal/nats"
	"github.com/glancehq/assistant-platform/internal/prompt"
	"github.com/glancehq/assistant-platform/internal/tool"
	"github.com/glancehq/assistant-platform/internal/tools"
	"github.com/glancehq/assistant-platform/pkg/logger"
	"github.com/glancehq/assistant-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "assistant-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Optional NATS event mirror
	var mirror *natsclient.Client
	if cfg.NATSURL != "" {
		mirror, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, event mirror disabled", zap.Error(err))
		} else {
			defer mirror.Close()
		}
	}

	// Initialize LLM client
	var llmClient llm.Client
	switch cfg.LLMProvider {
	case "anthropic":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMBaseURL)
	}
	if err != nil {
		log.Warn("failed to create LLM client, falling back to mock agent", zap.Error(err))
		llmClient = nil
	}

	// Downstream API clients
	mailClient := apiclient.NewMailClient(log)
	calendarClient := apiclient.NewCalendarClient(cfg.CalendarBaseURL, log)

	// Tool registry
	registry := tool.NewRegistry(log)
	tools.RegisterEmailTools(registry, mailClient)
	tools.RegisterCalendarTools(registry, calendarClient)
	tools.RegisterGeneralTools(registry, time.Local)
	log.Info("tools registered", zap.Strings("tools", registry.AllNames()))

	// Core agent components
	store := conversation.NewStore(cfg.MaxHistoryEntries)
	executor := tool.NewExecutor(registry, log)
	router := prompt.NewRouter()
	contextBuilder := prompt.NewContextBuilder(time.Local, mailClient, log)
	widgets := agent.NewWidgetGenerator(log)

	var processor handler.Processor
	if cfg.UseMockAgent || llmClient == nil {
		log.Info("using mock agent")
		processor = mock.New(cfg.WordStreamDelay, log)
	} else {
		processor = agent.New(llmClient, registry, executor, router, store, contextBuilder, widgets, agent.Config{
			MaxIterations:        cfg.MaxIterations,
			ContextWindowEntries: cfg.ContextWindowEntries,
			WordStreamDelay:      cfg.WordStreamDelay,
			LLMTimeout:           cfg.LLMTimeout,
			LLMModel:             cfg.LLMModel,
			LLMTemperature:       cfg.LLMTemperature,
			LLMMaxTokens:         cfg.LLMMaxTokens,
		}, log)
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(llmClient, registry)
	chatHandler := handler.NewChatHandler(processor, store, mirror, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Chat endpoints
	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Delete("/chat/{conversationId}", chatHandler.Clear)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
