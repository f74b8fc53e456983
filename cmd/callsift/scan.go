package main

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/callsift/callsift/internal/config"
	"github.com/callsift/callsift/internal/watcher"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [folder]",
		Short: "Run one ingestion pass over a folder and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			root := cfg.TranscriptsDir
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				return fmt.Errorf("no folder given and CALLSIFT_TRANSCRIPTS_DIR unset")
			}
			root = filepath.Clean(root)

			pipe, cleanup, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			var seen int
			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					log.Printf("scan fault at %s: %v", path, err)
					return nil
				}
				if d.IsDir() {
					if depthBelow(root, path) > cfg.MaxDepth {
						return fs.SkipDir
					}
					if path != root && watcher.Ignored(d.Name()) {
						return fs.SkipDir
					}
					return nil
				}
				if !watcher.Eligible(path, watcher.DefaultExtensions) {
					return nil
				}
				seen++
				pipe.HandleFile(ctx, path)
				return ctx.Err()
			})
			if err != nil {
				return fmt.Errorf("scan %s: %w", root, err)
			}
			log.Printf("scan complete: %d candidate files", seen)
			return nil
		},
	}
	return cmd
}

func depthBelow(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}
