// Package main is the callsift entry point: a cobra CLI with the watch
// daemon, a one-shot scanner, and the analysis worker.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/callsift/callsift/internal/analysis"
	"github.com/callsift/callsift/internal/archive"
	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/internal/database"
	"github.com/callsift/callsift/internal/dispatch"
	"github.com/callsift/callsift/internal/model"
	"github.com/callsift/callsift/internal/pipeline"
	"github.com/callsift/callsift/internal/queue"
	"github.com/callsift/callsift/internal/repository"
	"github.com/callsift/callsift/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "callsift: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callsift",
		Short: "Transcript ingestion pipeline",
		Long: `callsift watches drop folders for call transcripts and email exports,
normalizes each file into a transcript record exactly once, and queues every
new record for downstream analysis.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newWatchCmd(),
		newScanCmd(),
		newWorkerCmd(),
	)
	return cmd
}

// recordStore is the full store contract the daemon wires: the pipeline's
// dedup gate plus the worker's lookup.
type recordStore interface {
	pipeline.Store
	Get(ctx context.Context, id string) (*model.Transcript, error)
	List(ctx context.Context, limit int) ([]*model.Transcript, error)
}

// openStore connects Postgres when configured and falls back to the
// in-memory store otherwise. The cleanup func closes the pool.
func openStore(ctx context.Context, cfg *config.Config) (recordStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Printf("no database configured, records will not survive a restart")
		return store.NewMemoryStore(), func() {}, nil
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repository.NewTranscriptRepository(pool), pool.Close, nil
}

// openDispatcher picks the Redis-backed queue when configured, otherwise an
// in-process pool running the default analyzer.
func openDispatcher(ctx context.Context, cfg *config.Config) (pipeline.Dispatcher, func()) {
	if cfg.QueueEnabled() {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return queue.NewDispatcher(client), func() { _ = client.Close() }
	}
	pool := dispatch.NewPool(analysis.LogAnalyzer{}, cfg.Concurrency)
	pool.Start(ctx)
	return pool, func() {}
}

// openArchive returns nil when no S3 endpoint is configured.
func openArchive(ctx context.Context, cfg *config.Config) (pipeline.Archiver, error) {
	if !cfg.ArchiveEnabled() {
		return nil, nil
	}
	arc, err := archive.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}
	if err := arc.EnsureBuckets(ctx); err != nil {
		return nil, fmt.Errorf("ensure buckets: %w", err)
	}
	return arc, nil
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	dispatcher, closeDispatch := openDispatcher(ctx, cfg)
	arc, err := openArchive(ctx, cfg)
	if err != nil {
		closeDispatch()
		closeStore()
		return nil, nil, err
	}
	pipe := pipeline.New(st, dispatcher, pipeline.Options{
		Observer: func(recordID, path string) {
			log.Printf("new record %s (%s)", recordID, path)
		},
		Archiver:       arc,
		ExtractTimeout: cfg.ExtractTimeout,
		InlineMinBytes: cfg.InlineMinBytes,
		Concurrency:    cfg.Concurrency,
	})
	cleanup := func() {
		closeDispatch()
		closeStore()
	}
	return pipe, cleanup, nil
}
