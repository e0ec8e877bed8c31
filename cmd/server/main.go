package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("create upload dir", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}
	store, err := outline.NewStore(cfg.OutputDir)
	if err != nil {
		log.Error("open outline store", "dir", cfg.OutputDir, "error", err)
		os.Exit(1)
	}

	vocab := persona.DefaultVocabulary()
	if cfg.PersonaVocabFile != "" {
		if vocab, err = persona.LoadVocabulary(cfg.PersonaVocabFile); err != nil {
			log.Error("load persona vocabulary", "error", err)
			os.Exit(1)
		}
	}

	// Initialize the semantic scorer when an endpoint is configured.
	var (
		embedder *embed.Client
		scorer   persona.Scorer
	)
	if cfg.EmbedEndpoint != "" {
		embedder = embed.NewClient(embed.Config{
			Endpoint:  cfg.EmbedEndpoint,
			Model:     cfg.EmbedModel,
			BatchSize: cfg.EmbedBatchSize,
			Timeout:   cfg.EmbedTimeout,
		})
		scorer = embedder
	} else {
		log.Warn("EMBED_ENDPOINT not set, persona ranking uses keyword overlap")
	}

	builder := outline.NewBuilder(outline.Options{
		LineTolerance:      cfg.LineTolerance,
		TitleSizeTolerance: cfg.TitleSizeTolerance,
		HeadingMinFontSize: cfg.HeadingMinFontSize,
	}, log)
	analyzer := persona.NewAnalyzer(
		persona.NewRanker(scorer, log),
		persona.NewSynthesizer(vocab),
		persona.Limits{TopSections: cfg.TopSections, TopSubsections: cfg.TopSubsections},
		log,
	)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, builder, store, log)
	orch.Start(ctx)
	resolver := pipeline.NewResolver(builder, store, cfg.UploadDir, cfg.MaxConcurrentOutline, log)

	// Initialize HTTP server.
	srv := api.NewServer(orch, resolver, analyzer, embedder, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if embedder != nil {
			embedder.Close()
		}
	}()

	log.Info("starting docoutline", "port", cfg.Port, "output_dir", cfg.OutputDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
