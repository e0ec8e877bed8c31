package main

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/spf13/cobra"
)

func outlineCMD(cfg config.Config, logger func() *slog.Logger) *cobra.Command {
	var (
		inDir       string
		outDir      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Write a JSON outline for every document in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			store, err := outline.NewStore(outDir)
			if err != nil {
				return err
			}
			results, err := pipeline.OutlineDir(cmd.Context(), newBuilder(cfg, log), store, inDir, concurrency, log)
			if err != nil {
				return err
			}

			failed := 0
			for _, o := range results {
				if !o.Success {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "outlined %d documents into %s (%d failed)\n", len(results), store.Dir(), failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&inDir, "in", cfg.UploadDir, "directory of input documents")
	cmd.Flags().StringVar(&outDir, "out", cfg.OutputDir, "directory for JSON outlines")
	cmd.Flags().IntVar(&concurrency, "concurrency", cfg.MaxConcurrentOutline, "documents outlined in parallel")
	return cmd
}

func newBuilder(cfg config.Config, log *slog.Logger) *outline.Builder {
	return outline.NewBuilder(outline.Options{
		LineTolerance:      cfg.LineTolerance,
		TitleSizeTolerance: cfg.TitleSizeTolerance,
		HeadingMinFontSize: cfg.HeadingMinFontSize,
	}, log)
}
