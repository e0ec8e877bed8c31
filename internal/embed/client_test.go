package embed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type embedItem struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// fakeEmbeddings answers /v1/embeddings with dim-sized vectors, returning
// items in reverse order to exercise index reordering.
func fakeEmbeddings(t *testing.T, dim func(text string) int, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if calls != nil {
			calls.Add(1)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]embedItem, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			vec := make([]float32, dim(req.Input[i]))
			for j := range vec {
				vec[j] = float32(len(req.Input[i]) + j)
			}
			data = append(data, embedItem{Embedding: vec, Index: i})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data, "model": req.Model})
	}))
}

func TestEmbedBatch_OrderAndBatching(t *testing.T) {
	var calls atomic.Int32
	srv := fakeEmbeddings(t, func(string) int { return 3 }, &calls)
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL + "/", Model: "mini", BatchSize: 2})
	defer c.Close()

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := c.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vecs))
	}
	for i, v := range vecs {
		if v[0] != float32(len(texts[i])) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 requests for batch size 2, got %d", got)
	}
	if snap := c.Stats.Snapshot(); snap.Count != 3 || snap.Errors != 0 {
		t.Errorf("expected 3 recorded calls, got %+v", snap)
	}
	if c.Model() != "mini" {
		t.Errorf("expected model %q, got %q", "mini", c.Model())
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	c := NewClient(Config{Endpoint: "http://127.0.0.1:1"})
	vecs, err := c.EmbedBatch(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", vecs, err)
	}
}

func TestEmbedBatch_NoEndpoint(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.EmbedBatch(context.Background(), []string{"x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestEmbedBatch_DimensionMismatch(t *testing.T) {
	srv := fakeEmbeddings(t, func(s string) int { return len(s) }, nil)
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.EmbedBatch(context.Background(), []string{"ab", "abc"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEmbedBatch_ZeroDimension(t *testing.T) {
	srv := fakeEmbeddings(t, func(string) int { return 0 }, nil)
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	if _, err := c.EmbedBatch(context.Background(), []string{"x"}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for empty vectors, got %v", err)
	}
}

func TestEmbedBatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	if _, err := c.EmbedBatch(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error for 503")
	}
	if snap := c.Stats.Snapshot(); snap.Errors != 1 {
		t.Errorf("expected 1 failed call recorded, got %+v", snap)
	}
}

func TestEmbedBatch_ErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"input too long"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.EmbedBatch(context.Background(), []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "input too long") {
		t.Fatalf("expected error payload to surface, got %v", err)
	}
}

func TestEmbedBatch_CanceledContext(t *testing.T) {
	srv := fakeEmbeddings(t, func(string) int { return 2 }, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(Config{Endpoint: srv.URL})
	if _, err := c.EmbedBatch(ctx, []string{"x"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
