// Command sopforge runs the HTTP API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"sopforge/config"
	"sopforge/internal/artifacts"
	"sopforge/internal/contentcache"
	"sopforge/internal/generator"
	"sopforge/internal/logging"
	"sopforge/internal/notify"
	"sopforge/internal/pdf"
	"sopforge/internal/pipeline"
	"sopforge/internal/providers"
	"sopforge/internal/server"
	"sopforge/internal/version"

	// Provider registrations.
	_ "sopforge/internal/providers/groq"
	_ "sopforge/internal/providers/huggingface"
	_ "sopforge/internal/providers/openrouter"
	_ "sopforge/internal/providers/together"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logging.Setup(*debug)
	logger := slog.Default()

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := contentcache.New(ctx, cfg.Cache, logger)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	store, err := artifacts.NewFS(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}
	index, err := artifacts.OpenIndex(filepath.Join(cfg.OutputDir, "sopforge.db"))
	if err != nil {
		return fmt.Errorf("open artifact index: %w", err)
	}
	defer index.Close()

	chain := providers.NewChain(cfg, logger)
	assembler := generator.NewAssembler(
		generator.NewSectionGenerator(chain, cache, logger),
		cfg.Generation.Version, logger)
	renderer := pdf.NewRenderer(pdf.Options{})
	notifier := notify.FromConfig(cfg.Notify, logger)

	orch := pipeline.New(pipeline.Options{
		Assembler:   assembler,
		Renderer:    renderer,
		Store:       store,
		Index:       index,
		Cache:       cache,
		Notifier:    notifier,
		Concurrency: cfg.Batch.Concurrency,
		Logger:      logger,
	})

	srv := server.New(server.Options{
		Config:    cfg,
		Assembler: assembler,
		Renderer:  renderer,
		Store:     store,
		Index:     index,
		Orch:      orch,
		Providers: chain.AvailableProviders(),
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("sopforge started",
		"version", version.Info(),
		"port", cfg.Server.Port,
		"providers", chain.AvailableProviders(),
		"cache", cache.Backend())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
