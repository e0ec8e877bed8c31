package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/persona"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

const testKey = "test-key"

type testEnv struct {
	srv   *Server
	store *outline.Store
	orch  *pipeline.Orchestrator
}

func newTestEnv(t *testing.T, embedder *embed.Client) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:               testKey,
		WorkerCount:          1,
		MaxQueueSize:         4,
		MaxConcurrentOutline: 2,
		MaxUploadBytes:       1 << 20,
		JobTTL:               time.Hour,
		UploadDir:            t.TempDir(),
		OutputDir:            t.TempDir(),
	}
	store, err := outline.NewStore(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	builder := outline.NewBuilder(outline.DefaultOptions(), log)
	orch := pipeline.NewOrchestrator(cfg, builder, store, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	resolver := pipeline.NewResolver(builder, store, cfg.UploadDir, cfg.MaxConcurrentOutline, log)
	analyzer := persona.NewAnalyzer(persona.NewRanker(nil, log), nil, persona.Limits{}, log)
	return &testEnv{
		srv:   NewServer(orch, resolver, analyzer, embedder, log, cfg),
		store: store,
		orch:  orch,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, url, field string, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/health", "/metrics"} {
		rec := httptest.NewRecorder()
		env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid api key") {
		t.Errorf("expected json error body, got %q", rec.Body.String())
	}
}

func TestOutline_Sync(t *testing.T) {
	env := newTestEnv(t, nil)
	req := multipartRequest(t, "/api/outline", "file",
		map[string]string{"guide.md": "# Guide\n\n## Install\n"},
		map[string]string{"title": "Install Guide"})

	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode[outline.Outline](t, rec)
	if out.Title != "Install Guide" || len(out.Outline) != 2 || out.Filename != "guide.md" {
		t.Errorf("unexpected outline %+v", out)
	}
	if _, err := env.store.Load("guide.md"); err != nil {
		t.Errorf("expected outline to be persisted: %v", err)
	}
}

func TestOutline_CorruptPDF(t *testing.T) {
	env := newTestEnv(t, nil)
	req := multipartRequest(t, "/api/outline", "file",
		map[string]string{"broken.pdf": "%PDF-1.4 nothing here"}, nil)

	rec := env.do(t, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	out := decode[outline.Outline](t, rec)
	if out.Success || out.Error == "" || out.Title != "" {
		t.Errorf("expected failed outline, got %+v", out)
	}
}

func TestOutline_UnsupportedType(t *testing.T) {
	env := newTestEnv(t, nil)
	req := multipartRequest(t, "/api/outline", "file", map[string]string{"data.csv": "a,b"}, nil)
	if rec := env.do(t, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestOutlineJobs(t *testing.T) {
	env := newTestEnv(t, nil)
	req := multipartRequest(t, "/api/outline/jobs", "files",
		map[string]string{"notes.txt": "1. Introduction\nbody\n", "bad.csv": "x"}, nil)

	rec := env.do(t, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Jobs []map[string]any `json:"jobs"`
	}](t, rec)
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 entries, got %+v", resp.Jobs)
	}

	var jobID string
	for _, j := range resp.Jobs {
		if j["filename"] == "notes.txt" {
			jobID, _ = j["job_id"].(string)
		} else if j["error"] == nil {
			t.Errorf("expected error for unsupported file, got %+v", j)
		}
	}
	if jobID == "" {
		t.Fatalf("expected job id for notes.txt, got %+v", resp.Jobs)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/outline/jobs/"+jobID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 polling job, got %d", rec.Code)
		}
		snap := decode[pipeline.JobSnapshot](t, rec)
		if snap.Status == pipeline.StatusCompleted {
			if snap.Outline == nil || len(snap.Outline.Outline) != 1 {
				t.Errorf("unexpected job outline %+v", snap.Outline)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/outline/jobs/nope", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
}

func TestAnalyzePersona_InlineAndStored(t *testing.T) {
	env := newTestEnv(t, nil)

	upload := multipartRequest(t, "/api/outline", "file",
		map[string]string{"paper.md": "# Paper\n\n## Literature Review\n\n## Conclusion\n"}, nil)
	if rec := env.do(t, upload); rec.Code != http.StatusOK {
		t.Fatalf("upload failed: %d", rec.Code)
	}

	body := `{
		"persona": {"role": "Researcher"},
		"job_to_be_done": {"task": "conduct literature review"},
		"documents": [
			{"filename": "paper.md"},
			{"filename": "inline.pdf", "outline": [{"level": "H1", "text": "Methodology", "page": 2}]}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-persona", strings.NewReader(body))
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decode[persona.Response](t, rec)
	if resp.Metadata.TotalSectionsAnalyzed != 4 {
		t.Errorf("expected 4 sections, got %d", resp.Metadata.TotalSectionsAnalyzed)
	}
	if resp.Metadata.RankingStrategy != persona.StrategyKeyword {
		t.Errorf("expected keyword strategy, got %s", resp.Metadata.RankingStrategy)
	}
	if got := resp.ExtractedSections[0]; got.SectionTitle != "Literature Review" || got.SectionID != "paper.md_1" {
		t.Errorf("unexpected top section %+v", got)
	}
	if len(resp.SubsectionAnalysis) != 4 {
		t.Errorf("expected 4 analyses, got %d", len(resp.SubsectionAnalysis))
	}
}

func TestAnalyzePersona_BadBody(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-persona", strings.NewReader("{"))
	if rec := env.do(t, req); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDocuments(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := env.store.Save(outline.Outline{Filename: "a.pdf", Title: "A", Success: true}); err != nil {
		t.Fatal(err)
	}

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	list := decode[struct {
		Documents []outline.Summary `json:"documents"`
	}](t, rec)
	if len(list.Documents) != 1 || list.Documents[0].Filename != "a.pdf" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/a.pdf", nil))
	if got := decode[outline.Outline](t, rec); got.Title != "A" {
		t.Errorf("unexpected document %+v", got)
	}

	if rec := env.do(t, httptest.NewRequest(http.MethodDelete, "/api/documents/a.pdf", nil)); rec.Code != http.StatusOK {
		t.Errorf("expected 200 on delete, got %d", rec.Code)
	}
	if rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/documents/a.pdf", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestEmbedStats(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without embedder, got %d", rec.Code)
	}

	env = newTestEnv(t, embed.NewClient(embed.Config{Endpoint: "http://127.0.0.1:1", Model: "mini"}))
	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"model":"mini"`) {
		t.Errorf("expected model in stats, got %s", rec.Body.String())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd": "passwd",
		"a..b.pdf":         "a_b.pdf",
		"":                 "unnamed",
		"report.pdf":       "report.pdf",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("%q: expected %q, got %q", in, want, got)
		}
	}
}
