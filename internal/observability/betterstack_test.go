package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/strikerlab/debutform/internal/config"
	"github.com/strikerlab/debutform/internal/platform/logging"
)

type ingestCapture struct {
	mu       sync.Mutex
	requests int
	auth     string
}

func (c *ingestCapture) record(r *http.Request) {
	c.mu.Lock()
	c.requests++
	c.auth = r.Header.Get("Authorization")
	c.mu.Unlock()
}

func (c *ingestCapture) snapshot() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests, c.auth
}

func newIngestServer(t *testing.T, capture *ingestCapture) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capture.record(r)
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)
	return server
}

func betterStackTestConfig(endpoint string) config.Config {
	return config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: endpoint,
		BetterStackToken:    "ingest-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelError,
		ServiceName:         "debutform-pipeline",
		AppEnv:              config.EnvDev,
	}
}

func TestInitBetterStackLogger_ShipsErrorRecords(t *testing.T) {
	t.Parallel()

	capture := &ingestCapture{}
	server := newIngestServer(t, capture)

	logger, shutdown, err := InitBetterStackLogger(betterStackTestConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.ErrorContext(context.Background(), "rating provider unreachable", "team", "brighton")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	requests, auth := capture.snapshot()
	if requests == 0 {
		t.Fatalf("expected at least one shipped record")
	}
	if auth != "Bearer ingest-token" {
		t.Fatalf("unexpected authorization header: %q", auth)
	}
}

func TestInitBetterStackLogger_HoldsBackBelowMinLevel(t *testing.T) {
	t.Parallel()

	capture := &ingestCapture{}
	server := newIngestServer(t, capture)

	cfg := betterStackTestConfig(server.URL)
	cfg.BetterStackToken = ""

	logger, shutdown, err := InitBetterStackLogger(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.InfoContext(context.Background(), "rating fetch pass finished")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	if requests, _ := capture.snapshot(); requests != 0 {
		t.Fatalf("expected no request for info log, got %d", requests)
	}
}

func TestInitBetterStackLogger_DisabledReturnsBaseLogger(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	logger, shutdown, err := InitBetterStackLogger(config.Config{BetterStackEnabled: false}, base)
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected base logger to be returned unchanged")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"in.logs.betterstack.com", "https://in.logs.betterstack.com"},
		{"https://in.logs.betterstack.com", "https://in.logs.betterstack.com"},
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080"},
	}
	for _, tc := range cases {
		if got := normalizeBetterStackEndpoint(tc.in); got != tc.want {
			t.Fatalf("normalize %q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}
