// Command sopforge-pipeline is the batch CLI: single-document generation,
// full batch runs, the recurring scheduler, and a health probe.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sopforge/config"
	"sopforge/internal/artifacts"
	"sopforge/internal/contentcache"
	"sopforge/internal/core"
	"sopforge/internal/generator"
	"sopforge/internal/logging"
	"sopforge/internal/notify"
	"sopforge/internal/pdf"
	"sopforge/internal/pipeline"
	"sopforge/internal/providers"
	"sopforge/internal/version"

	// Provider registrations.
	_ "sopforge/internal/providers/groq"
	_ "sopforge/internal/providers/huggingface"
	_ "sopforge/internal/providers/openrouter"
	_ "sopforge/internal/providers/together"
)

var (
	flagDebug     bool
	flagOutput    string
	flagHardcoded bool
	flagForce     bool
	flagSequent   bool
)

func main() {
	root := &cobra.Command{
		Use:     "sopforge-pipeline",
		Short:   "Batch SOP template generation pipeline",
		Version: version.Info(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(flagDebug)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagOutput, "output", "", "artifact output directory (overrides LOCAL_STORAGE_PATH)")

	generateCmd := &cobra.Command{
		Use:   "generate <template-type>",
		Short: "Generate one SOP document",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	generateCmd.Flags().BoolVar(&flagHardcoded, "hardcoded", false, "use curated static content instead of providers")

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate all configured template types",
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&flagForce, "force", false, "clear cached content before generating")
	batchCmd.Flags().BoolVar(&flagSequent, "sequential", false, "run templates one at a time")

	root.AddCommand(
		generateCmd,
		batchCmd,
		&cobra.Command{
			Use:   "scheduler",
			Short: "Run recurring batch generation until interrupted",
			RunE:  runScheduler,
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check configuration and storage health",
			RunE:  runHealth,
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps is everything a pipeline command needs wired together.
type deps struct {
	cfg       *config.Config
	cache     contentcache.Store
	store     *artifacts.FS
	index     *artifacts.Index
	chain     *providers.Chain
	assembler *generator.Assembler
	orch      *pipeline.Orchestrator
	logger    *slog.Logger
}

func buildDeps(ctx context.Context) (*deps, error) {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}

	cache, err := contentcache.New(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	store, err := artifacts.NewFS(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}
	index, err := artifacts.OpenIndex(filepath.Join(cfg.OutputDir, "sopforge.db"))
	if err != nil {
		return nil, fmt.Errorf("open artifact index: %w", err)
	}

	chain := providers.NewChain(cfg, logger)
	assembler := generator.NewAssembler(
		generator.NewSectionGenerator(chain, cache, logger),
		cfg.Generation.Version, logger)

	orch := pipeline.New(pipeline.Options{
		Assembler:   assembler,
		Renderer:    pdf.NewRenderer(pdf.Options{}),
		Store:       store,
		Index:       index,
		Cache:       cache,
		Notifier:    notify.FromConfig(cfg.Notify, logger),
		Concurrency: cfg.Batch.Concurrency,
		Logger:      logger,
	})

	return &deps{
		cfg:       cfg,
		cache:     cache,
		store:     store,
		index:     index,
		chain:     chain,
		assembler: assembler,
		orch:      orch,
		logger:    logger,
	}, nil
}

func (d *deps) close() {
	if d.index != nil {
		_ = d.index.Close()
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	templateType := args[0]
	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	doc, err := d.assembler.Assemble(ctx, templateType, generator.AssembleOptions{
		Hardcoded: flagHardcoded || d.cfg.Generation.UseHardcodedContent,
		Progress: func(done, total int, section string) {
			if interactive {
				fmt.Printf("\r[%d/%d] %-40s", done, total, section)
			}
		},
	})
	if interactive {
		fmt.Println()
	}
	if err != nil {
		return err
	}

	docPath := d.store.DocumentPath(templateType, doc.Metadata.GeneratedAt)
	if err := d.store.WriteDocument(doc, docPath); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	pdfPath := d.store.PDFPath(templateType, doc.Metadata.GeneratedAt)
	if err := pdf.NewRenderer(pdf.Options{}).RenderFile(doc, pdfPath); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	stats := doc.GenerationStats
	fmt.Printf("Generated %s: %d/%d sections (%d cached, %d failed) in %.1fs\n",
		templateType, stats.SuccessfulSections, stats.TotalSections,
		stats.CachedSections, stats.FailedSections, stats.ElapsedSeconds)
	fmt.Printf("  document: %s\n  pdf:      %s\n", docPath, pdfPath)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	report, err := d.orch.Run(ctx, pipeline.RunOptions{
		TemplateTypes: d.cfg.Batch.TemplateTypes,
		Force:         flagForce,
		Sequential:    flagSequent,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Batch %s finished: %s (%d/%d successful in %.1fs)\n",
		report.BatchID, report.State,
		report.Summary.Successful, report.Summary.Total, report.Summary.TotalSeconds)
	if report.State == core.BatchFailed {
		return fmt.Errorf("all templates failed")
	}
	return nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	sched := pipeline.NewScheduler(d.orch, d.cfg.Schedule, d.cfg.Batch.TemplateTypes, d.healthCheck, d.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	sched.Stop()
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.healthCheck(ctx); err != nil {
		return err
	}

	enabled := d.chain.AvailableProviders()
	fmt.Printf("ok: %d provider(s) enabled %v, cache backend %s, output %s\n",
		len(enabled), enabled, d.cache.Backend(), d.cfg.OutputDir)
	if len(enabled) == 0 {
		fmt.Println("warning: no providers configured, content will use local fallback")
	}
	return nil
}

// healthCheck verifies the artifact store is writable and the index
// answers queries.
func (d *deps) healthCheck(ctx context.Context) error {
	probe := filepath.Join(d.cfg.OutputDir, ".health")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("output dir not writable: %w", err)
	}
	_ = os.Remove(probe)

	if _, err := d.index.ListDocuments(ctx, "", 1); err != nil {
		return fmt.Errorf("artifact index unhealthy: %w", err)
	}
	return nil
}
