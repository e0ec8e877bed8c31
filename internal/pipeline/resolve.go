package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/persona"
)

// Resolver fills in outlines for analysis requests that name documents
// without inlining their outline. A persisted outline is preferred; failing
// that, an uploaded file of the same name is outlined and persisted.
type Resolver struct {
	builder   *outline.Builder
	store     *outline.Store
	uploadDir string
	limit     int
	log       *slog.Logger
}

func NewResolver(builder *outline.Builder, store *outline.Store, uploadDir string, limit int, log *slog.Logger) *Resolver {
	return &Resolver{
		builder:   builder,
		store:     store,
		uploadDir: uploadDir,
		limit:     limit,
		log:       log,
	}
}

// Resolve returns docs with missing outlines filled in. Documents that
// cannot be resolved keep an empty outline. The input slice is not
// modified.
func (r *Resolver) Resolve(ctx context.Context, docs []persona.Document) []persona.Document {
	out := make([]persona.Document, len(docs))
	copy(out, docs)

	var (
		pending []int
		paths   []string
	)
	for i, d := range out {
		if d.Outline != nil || d.Filename == "" {
			continue
		}
		if o, ok := r.load(d.Filename); ok {
			out[i] = merge(d, o)
			continue
		}
		path, ok := r.uploadPath(d.Filename)
		if !ok {
			r.log.Warn("document not found", "filename", d.Filename)
			continue
		}
		pending = append(pending, i)
		paths = append(paths, path)
	}
	if len(pending) == 0 {
		return out
	}

	built := BuildFiles(ctx, r.builder, paths, r.limit)
	for k, i := range pending {
		o := built[k]
		o.Filename = out[i].Filename
		if r.store != nil {
			if err := r.store.Save(o); err != nil {
				r.log.Error("save outline failed", "filename", o.Filename, "error", err)
			}
		}
		out[i] = merge(out[i], o)
	}
	return out
}

func (r *Resolver) load(filename string) (outline.Outline, bool) {
	if r.store == nil {
		return outline.Outline{}, false
	}
	o, err := r.store.Load(filename)
	if err != nil {
		if !errors.Is(err, outline.ErrNotFound) {
			r.log.Warn("load outline failed", "filename", filename, "error", err)
		}
		return outline.Outline{}, false
	}
	return o, true
}

func (r *Resolver) uploadPath(filename string) (string, bool) {
	if r.uploadDir == "" {
		return "", false
	}
	path := filepath.Join(r.uploadDir, filepath.Base(filename))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// merge applies o to d, keeping the caller's filename and title.
func merge(d persona.Document, o outline.Outline) persona.Document {
	resolved := persona.FromOutline(o)
	resolved.Filename = d.Filename
	if d.Title != "" {
		resolved.Title = d.Title
	}
	return resolved
}
