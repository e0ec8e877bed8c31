// Package embed is the semantic similarity scorer: a client for
// OpenAI-compatible /v1/embeddings servers plus cosine similarity.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrDimensionMismatch is returned when a response mixes vector sizes.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrUnavailable is returned when no endpoint is configured.
	ErrUnavailable = errors.New("embeddings endpoint not configured")
)

// Config configures the embeddings client.
type Config struct {
	Endpoint  string        // base URL, e.g. "http://localhost:8003"
	Model     string        // model name sent with each request
	BatchSize int           // max texts per request; default 32
	Timeout   time.Duration // per request; default 30s
}

// Client calls an OpenAI-compatible embeddings endpoint.
type Client struct {
	endpoint   string
	model      string
	batchSize  int
	httpClient *http.Client

	Stats *LatencyStats
}

func NewClient(cfg Config) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		Stats:      NewLatencyStats(time.Hour),
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// EmbedBatch returns one vector per text, in input order. All vectors share
// one dimension.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if c.endpoint == "" {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		vecs, err := c.call(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch [%d:%d]: %w", start, end, err)
		}
		copy(out[start:end], vecs)
	}

	dim := len(out[0])
	for i, v := range out {
		if len(v) != dim || dim == 0 {
			return nil, fmt.Errorf("vector %d has %d dims, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Stats.RecordFailure(time.Since(start).Milliseconds())
		return nil, fmt.Errorf("embeddings api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		c.Stats.Record(time.Since(start).Milliseconds())
	} else {
		c.Stats.RecordFailure(time.Since(start).Milliseconds())
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embeddings error: %s", parsed.Error.Message)
	}

	vecs := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index >= 0 && d.Index < len(vecs) {
			vecs[d.Index] = d.Embedding
		}
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input index %d", i)
		}
	}
	return vecs, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
