package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// BuildFiles outlines paths concurrently, at most limit at a time, and
// returns the outlines in path order. Documents not started before ctx is
// done come back as failed outlines.
func BuildFiles(ctx context.Context, b *outline.Builder, paths []string, limit int) []outline.Outline {
	if limit <= 0 {
		limit = 1
	}
	out := make([]outline.Outline, len(paths))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, path := range paths {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			out[i] = outline.Failed(filepath.Base(path), ctx.Err())
			continue
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = b.BuildFile(path)
		}(i, path)
	}
	wg.Wait()
	return out
}

// ListDocuments returns the supported documents directly inside dir, sorted
// by name.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OutlineDir outlines every supported document in dir and saves each result
// to store. Failed documents are saved too, so every input has an output
// file.
func OutlineDir(ctx context.Context, b *outline.Builder, store *outline.Store, dir string, limit int, log *slog.Logger) ([]outline.Outline, error) {
	paths, err := ListDocuments(dir)
	if err != nil {
		return nil, err
	}
	log.Info("outlining directory", "dir", dir, "documents", len(paths))

	results := BuildFiles(ctx, b, paths, limit)
	for _, o := range results {
		if err := store.Save(o); err != nil {
			return results, fmt.Errorf("save %s: %w", o.Filename, err)
		}
		log.Info("outline written",
			"filename", o.Filename,
			"path", store.PathFor(o.Filename),
			"success", o.Success,
			"headings", len(o.Outline),
		)
	}
	return results, nil
}
