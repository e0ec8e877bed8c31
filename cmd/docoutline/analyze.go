package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/spf13/cobra"
)

func analyzeCMD(cfg config.Config, logger func() *slog.Logger) *cobra.Command {
	var (
		requestPath string
		outPath     string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Rank document sections for a persona and job",
		Long: "Reads an analysis request (persona, job_to_be_done, documents) as JSON " +
			"from --request or stdin and writes the ranked result as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()

			data, err := readInput(requestPath, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			var req persona.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("decode request: %w", err)
			}

			vocab := persona.DefaultVocabulary()
			if cfg.PersonaVocabFile != "" {
				if vocab, err = persona.LoadVocabulary(cfg.PersonaVocabFile); err != nil {
					return err
				}
			}

			var scorer persona.Scorer
			if cfg.EmbedEndpoint != "" {
				client := embed.NewClient(embed.Config{
					Endpoint:  cfg.EmbedEndpoint,
					Model:     cfg.EmbedModel,
					BatchSize: cfg.EmbedBatchSize,
					Timeout:   cfg.EmbedTimeout,
				})
				defer client.Close()
				scorer = client
			}

			store, err := outline.NewStore(cfg.OutputDir)
			if err != nil {
				return err
			}
			resolver := pipeline.NewResolver(newBuilder(cfg, log), store, cfg.UploadDir, cfg.MaxConcurrentOutline, log)
			req.Documents = resolver.Resolve(cmd.Context(), req.Documents)

			analyzer := persona.NewAnalyzer(
				persona.NewRanker(scorer, log),
				persona.NewSynthesizer(vocab),
				persona.Limits{TopSections: cfg.TopSections, TopSubsections: cfg.TopSubsections},
				log,
			)
			resp := analyzer.Analyze(cmd.Context(), req)
			return writeOutput(outPath, cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "request JSON file (default stdin)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&cfg.OutputDir, "outlines", cfg.OutputDir, "directory of persisted outlines")
	cmd.Flags().StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "directory of source documents")
	cmd.Flags().IntVar(&cfg.TopSections, "top-sections", cfg.TopSections, "sections in the result")
	cmd.Flags().IntVar(&cfg.TopSubsections, "top-subsections", cfg.TopSubsections, "subsection analyses in the result")
	cmd.Flags().StringVar(&cfg.EmbedEndpoint, "embed-endpoint", cfg.EmbedEndpoint, "OpenAI-compatible embeddings base URL")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, stdout io.Writer, v any) (err error) {
	w := stdout
	if path != "" {
		f, cerr := os.Create(path)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", path, cerr)
			}
		}()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
