package main

import (
	"log/slog"
	"os"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.Load()
	var verbose bool

	root := &cobra.Command{
		Use:           "docoutline",
		Short:         "Outline documents and rank their sections for a reader",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log heading decisions")

	logger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	root.AddCommand(outlineCMD(cfg, logger), analyzeCMD(cfg, logger))
	if err := root.Execute(); err != nil {
		logger().Error("command failed", "error", err)
		os.Exit(1)
	}
}
