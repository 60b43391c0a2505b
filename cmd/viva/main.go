package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vivalabs/viva/internal/analyzer"
	"github.com/vivalabs/viva/internal/anthropic"
	"github.com/vivalabs/viva/internal/api"
	"github.com/vivalabs/viva/internal/config"
	"github.com/vivalabs/viva/internal/events"
	"github.com/vivalabs/viva/internal/generator"
	"github.com/vivalabs/viva/internal/interview"
	"github.com/vivalabs/viva/internal/speech"
	"github.com/vivalabs/viva/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("viva starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	deps := interview.Deps{
		Analyzer:  analyzer.New(llm, slog.Default()),
		Questions: generator.New(llm, slog.Default()),
		Summaries: generator.New(llm, slog.Default()),
		Logger:    slog.Default(),
	}

	// Speech collaborators (optional — typed-only deployment without them)
	if cfg.SpeechToTextURL != "" {
		deps.Transcriber = speech.NewTranscriber(cfg.SpeechToTextURL, slog.Default())
		slog.Info("transcriber ready", "url", cfg.SpeechToTextURL)
	}
	if cfg.TextToSpeechURL != "" {
		deps.Synthesizer = speech.NewSynthesizer(cfg.TextToSpeechURL, cfg.SpeechVoice, slog.Default())
		slog.Info("synthesizer ready", "url", cfg.TextToSpeechURL)
	}
	if deps.Transcriber == nil || deps.Synthesizer == nil {
		slog.Warn("speech services not fully configured — spoken modality limited")
	}

	// Archive database (optional — interviews complete without it)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.Archive = db
		slog.Info("interview archive connected")
	} else {
		slog.Warn("DATABASE_URL not set — completed interviews will not be archived")
	}

	// NATS event bus (optional)
	if cfg.NatsURL != "" {
		ev, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer ev.Close()
		deps.Events = ev
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	ctrl := interview.New(orchestratorConfig(cfg), deps)
	go ctrl.Run(ctx)

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, ctrl, db)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("viva ready", "port", cfg.Port, "topic_seconds", cfg.TopicSeconds)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("viva stopped")
}

func orchestratorConfig(cfg config.Config) interview.Config {
	c := interview.DefaultConfig()
	c.TopicSeconds = cfg.TopicSeconds
	c.GraceSeconds = cfg.GraceSeconds
	c.AnalyzeTimeout = time.Duration(cfg.AnalyzeTimeout) * time.Second
	c.GenerateTimeout = time.Duration(cfg.GenerateTimeout) * time.Second
	c.TranscribeTimeout = time.Duration(cfg.TranscribeTimeout) * time.Second
	c.SummaryTimeout = time.Duration(cfg.SummaryTimeout) * time.Second
	return c
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
