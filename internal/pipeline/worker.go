package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/outline"
)

// Worker builds the outline for a single job.
type Worker struct {
	builder *outline.Builder
	store   *outline.Store
	log     *slog.Logger
}

// NewWorker returns a Worker. store may be nil, in which case outlines are
// only kept on the job.
func NewWorker(builder *outline.Builder, store *outline.Store, log *slog.Logger) *Worker {
	return &Worker{builder: builder, store: store, log: log}
}

// Process outlines the job's upload and records the result on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	if err := ctx.Err(); err != nil {
		job.Finish(outline.Failed(job.Filename, fmt.Errorf("canceled before start: %w", err)))
		return
	}

	job.SetStatus(StatusBuilding, "parsing")
	out := w.builder.BuildBytes(job.FileData(), job.Filename)
	if out.Success && job.Title != "" {
		out.Title = job.Title
	}

	if w.store != nil {
		job.SetStatus(StatusBuilding, "saving")
		if err := w.store.Save(out); err != nil {
			log.Error("save outline failed", "error", err)
			job.AddError(fmt.Sprintf("save: %s", err))
		}
	}

	job.Finish(out)
	log.Info("outline job finished",
		"success", out.Success,
		"headings", len(out.Outline),
		"pages", out.TotalPages,
	)
}
