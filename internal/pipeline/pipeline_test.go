package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/layout"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/persona"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBuilder() *outline.Builder {
	return outline.NewBuilder(outline.DefaultOptions(), quietLogger())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWorker_ProcessSavesOutline(t *testing.T) {
	store, err := outline.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	job := NewJob("guide.md", "Field Guide", []byte("# Guide\n\n## Setup\n"))

	NewWorker(newBuilder(), store, quietLogger()).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", snap.Status, snap.Errors)
	}
	if snap.Outline.Title != "Field Guide" {
		t.Errorf("expected title override, got %q", snap.Outline.Title)
	}
	saved, err := store.Load("guide.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(saved.Outline) != 2 || saved.Outline[1].Level != layout.H2 {
		t.Errorf("unexpected saved outline %+v", saved.Outline)
	}
}

func TestWorker_ProcessUnsupported(t *testing.T) {
	job := NewJob("sheet.xlsx", "", []byte("PK"))
	NewWorker(newBuilder(), nil, quietLogger()).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %s", snap.Status)
	}
	if snap.Outline == nil || snap.Outline.Success || snap.Outline.Title != "" {
		t.Errorf("expected failed outline, got %+v", snap.Outline)
	}
}

func TestWorker_ProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewJob("guide.md", "", []byte("# Guide\n"))
	NewWorker(newBuilder(), nil, quietLogger()).Process(ctx, job)
	if job.Snapshot().Status != StatusFailed {
		t.Error("expected canceled job to fail")
	}
}

func TestOrchestrator_SubmitAndComplete(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, newBuilder(), nil, quietLogger())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("notes.txt", "", []byte("1. Introduction\nbody text\n"))
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if o.GetJob(job.ID) != job {
		t.Fatal("expected submitted job to be retrievable")
	}

	deadline := time.Now().Add(5 * time.Second)
	for job.Snapshot().Status != StatusCompleted {
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete: %+v", job.Snapshot())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := job.Snapshot().Outline.Outline; len(got) != 1 || got[0].Text != "1. Introduction" {
		t.Errorf("unexpected outline %+v", got)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	o := NewOrchestrator(cfg, newBuilder(), nil, quietLogger())

	// Workers are not started, so the second job cannot be queued.
	if err := o.Submit(NewJob("a.md", "", nil)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.md", "", nil)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %s", second.Snapshot().Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestBuildFiles_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.md", "a.md", "b.md"} {
		paths = append(paths, writeFile(t, dir, name, "# "+name+"\n"))
	}
	paths = append(paths, filepath.Join(dir, "missing.md"))

	got := BuildFiles(context.Background(), newBuilder(), paths, 2)
	if len(got) != 4 {
		t.Fatalf("expected 4 outlines, got %d", len(got))
	}
	for i, name := range []string{"c.md", "a.md", "b.md"} {
		if got[i].Filename != name || got[i].Title != name {
			t.Errorf("outline %d: expected %s, got %+v", i, name, got[i])
		}
	}
	if got[3].Success {
		t.Error("expected missing file to fail")
	}
}

func TestBuildFiles_Canceled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeFile(t, dir, "a.md", "# A\n")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Both select cases are ready, so the file may or may not be built.
	got := BuildFiles(ctx, newBuilder(), paths, 1)
	if len(got) != 1 || got[0].Filename != "a.md" {
		t.Errorf("unexpected outlines %+v", got)
	}
}

func TestOutlineDir(t *testing.T) {
	in := t.TempDir()
	writeFile(t, in, "b.txt", "EXECUTIVE SUMMARY\n")
	writeFile(t, in, "a.md", "# Alpha\n")
	writeFile(t, in, "ignored.csv", "x,y\n")
	if err := os.Mkdir(filepath.Join(in, "sub.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	store, err := outline.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	results, err := OutlineDir(context.Background(), newBuilder(), store, in, 2, quietLogger())
	if err != nil {
		t.Fatalf("outline dir: %v", err)
	}
	if len(results) != 2 || results[0].Filename != "a.md" || results[1].Filename != "b.txt" {
		t.Fatalf("unexpected results %+v", results)
	}
	for _, name := range []string{"a.md.json", "b.txt.json"} {
		if _, err := os.Stat(filepath.Join(store.Dir(), name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
}

func TestOutlineDir_MissingDir(t *testing.T) {
	store, _ := outline.NewStore(t.TempDir())
	if _, err := OutlineDir(context.Background(), newBuilder(), store, filepath.Join(t.TempDir(), "nope"), 1, quietLogger()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestResolver(t *testing.T) {
	uploads := t.TempDir()
	writeFile(t, uploads, "fresh.md", "# Fresh\n\n## Methods\n")

	store, err := outline.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stored := outline.Outline{
		Filename: "stored.pdf",
		Title:    "Stored",
		Outline:  []layout.Heading{{Level: layout.H1, Text: "Results", Page: 4}},
		Success:  true,
	}
	if err := store.Save(stored); err != nil {
		t.Fatal(err)
	}

	inline := []layout.Heading{{Level: layout.H2, Text: "Inline", Page: 2}}
	docs := []persona.Document{
		{Filename: "stored.pdf", Title: "Caller Title"},
		{Filename: "fresh.md"},
		{Filename: "inline.pdf", Outline: inline},
		{Filename: "ghost.pdf"},
	}

	r := NewResolver(newBuilder(), store, uploads, 2, quietLogger())
	got := r.Resolve(context.Background(), docs)

	if got[0].Title != "Caller Title" || len(got[0].Outline) != 1 || got[0].Outline[0].Page != 4 {
		t.Errorf("expected stored outline with caller title, got %+v", got[0])
	}
	if len(got[1].Outline) != 2 || got[1].Filename != "fresh.md" {
		t.Errorf("expected fresh.md to be built, got %+v", got[1])
	}
	if _, err := store.Load("fresh.md"); err != nil {
		t.Errorf("expected built outline to be persisted: %v", err)
	}
	if len(got[2].Outline) != 1 || got[2].Outline[0].Text != "Inline" {
		t.Errorf("expected inline outline untouched, got %+v", got[2])
	}
	if got[3].Outline != nil {
		t.Errorf("expected unresolvable document to stay empty, got %+v", got[3])
	}
	if docs[1].Outline != nil {
		t.Error("expected input documents to be left unmodified")
	}
}
