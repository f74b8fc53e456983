package main

import (
	"fmt"
	"log"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/callsift/callsift/internal/analysis"
	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/internal/worker"
)

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the analysis worker against the Redis queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.QueueEnabled() {
				return fmt.Errorf("worker requires CALLSIFT_REDIS_ADDR")
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("worker requires CALLSIFT_DATABASE_URL")
			}

			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			server := asynq.NewServer(asynq.RedisClientOpt{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			}, asynq.Config{
				Concurrency: cfg.Concurrency,
			})
			processor := worker.NewProcessor(st, analysis.LogAnalyzer{})
			mux := processor.Handler()

			go func() {
				<-ctx.Done()
				server.Shutdown()
			}()

			log.Printf("analysis worker running (concurrency %d)", cfg.Concurrency)
			if err := server.Run(mux); err != nil {
				return fmt.Errorf("worker stopped: %w", err)
			}
			return nil
		},
	}
	return cmd
}
