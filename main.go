package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/giygas/medicaments-assistant/assistant"
	"github.com/giygas/medicaments-assistant/config"
	"github.com/giygas/medicaments-assistant/data"
	"github.com/giygas/medicaments-assistant/health"
	"github.com/giygas/medicaments-assistant/logging"
	"github.com/giygas/medicaments-assistant/scheduler"
	"github.com/giygas/medicaments-assistant/search"
	"github.com/giygas/medicaments-assistant/server"
	"github.com/giygas/medicaments-assistant/validation"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional: environment variables may come from the service
	// manager instead.
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", logging.ParseLevel(cfg.LogLevel), cfg.LogRetentionWeeks, cfg.MaxLogFileSize)

	dataContainer := data.NewContainer()
	dataContainer.SetServerStartTime(time.Now())

	retriever := search.NewRetriever(search.Options{
		LexicalWeight:  cfg.Ranking.LexicalWeight,
		SemanticWeight: cfg.Ranking.SemanticWeight,
		Threshold:      cfg.Ranking.Threshold,
	})
	scorer := search.NewConfidenceScorer(search.ConfidenceOptions{
		Floor:   cfg.Ranking.ConfidenceFloor,
		NoMatch: cfg.Ranking.NoMatchConfidence,
		GapRef:  cfg.Ranking.GapReference,
	})
	validator := validation.NewQueryValidator()

	var generator assistant.Generator
	if cfg.Generation.BaseURL != "" {
		generator = assistant.NewOpenAIClient(assistant.OpenAIConfig{
			BaseURL: cfg.Generation.BaseURL,
			APIKey:  cfg.Generation.APIKey,
			Model:   cfg.Generation.Model,
			Timeout: cfg.Generation.Timeout,
		})
		logging.Info("Generation enabled", "model", cfg.Generation.Model)
	} else {
		logging.Info("Generation disabled, all answers use fallback synthesis")
	}

	synthesizer := assistant.NewSynthesizer(dataContainer, retriever, scorer, validator, generator,
		assistant.Options{
			TopK:              cfg.Ranking.TopK,
			GenerationTimeout: cfg.Generation.Timeout,
			DefaultCertainty:  cfg.Ranking.DefaultCertainty,
			FallbackCertainty: cfg.Ranking.FallbackCertainty,
		})

	sched := scheduler.NewScheduler(dataContainer, cfg.CatalogPath)
	if err := sched.Start(); err != nil {
		logging.Error("Scheduler failed to start", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, server.Deps{
		DataStore:     dataContainer,
		Synthesizer:   synthesizer,
		Retriever:     retriever,
		Validator:     validator,
		HealthChecker: health.NewHealthChecker(dataContainer),
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
