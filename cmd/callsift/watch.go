package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var transcriptsDir string
	var emailDir string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch drop folders and ingest arrivals until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if transcriptsDir != "" {
				cfg.TranscriptsDir = transcriptsDir
			}
			if emailDir != "" {
				cfg.EmailDir = emailDir
			}
			if cfg.TranscriptsDir == "" {
				return fmt.Errorf("no transcripts folder configured (CALLSIFT_TRANSCRIPTS_DIR or --transcripts)")
			}

			pipe, cleanup, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			wcfg := watcher.Config{
				StabilityWindow: cfg.StabilityWindow,
				RescanInterval:  cfg.RescanInterval,
				MaxDepth:        cfg.MaxDepth,
			}
			manager := watcher.NewManager()
			defer manager.Close()
			if err := manager.Start("transcripts", cfg.TranscriptsDir, wcfg); err != nil {
				return err
			}
			if cfg.EmailDir != "" {
				if err := manager.Start("email", cfg.EmailDir, wcfg); err != nil {
					return err
				}
			}

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case err := <-manager.Errors():
						log.Printf("watch fault: %v", err)
					}
				}
			}()

			pipe.Run(ctx, manager.Events())
			return nil
		},
	}
	cmd.Flags().StringVar(&transcriptsDir, "transcripts", "", "Transcripts drop folder (overrides env)")
	cmd.Flags().StringVar(&emailDir, "email", "", "Email drop folder (overrides env)")
	return cmd
}
