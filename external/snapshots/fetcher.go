package snapshots

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/strikerlab/debutform/internal/platform/logging"
	"github.com/strikerlab/debutform/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errSnapshotTransient = crerr.New("snapshot source transient failure")

const defaultMaxSnapshotBytes = 64 << 20

type FetcherConfig struct {
	BaseURL        string
	Timeout        time.Duration
	Retries        int
	MaxBodyBytes   int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Fetcher downloads snapshot files over HTTP. Snapshot bodies can run to
// tens of megabytes of CSV, so transfers go through fasthttp with a hard
// response size cap instead of the default client.
type Fetcher struct {
	client         *fasthttp.Client
	baseURL        string
	timeout        time.Duration
	retries        int
	maxBodyBytes   int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewFetcher(cfg FetcherConfig, logger *logging.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxSnapshotBytes
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Fetcher{
		client: &fasthttp.Client{
			MaxResponseBodySize: maxBodyBytes,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:        timeout,
		retries:        max(cfg.Retries, 0),
		maxBodyBytes:   maxBodyBytes,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Fetch downloads one snapshot file by its relative name and returns the
// body. The returned slice is a copy and stays valid after the next call.
func (f *Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if f.circuitEnabled {
		if err := f.breaker.Allow(); err != nil {
			f.logger.WarnContext(ctx, "snapshot source circuit breaker rejected request", "state", f.breaker.State())
			return nil, fmt.Errorf("snapshot source is temporarily unavailable: %w", err)
		}
	}

	cleaned := "/" + strings.TrimLeft(strings.TrimSpace(name), "/")
	if cleaned == "/" {
		return nil, crerr.New("snapshot name is required")
	}

	baseURL, err := validateHTTPBaseURL(f.baseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid SNAPSHOT_BASE_URL")
	}
	fullURL := baseURL + cleaned

	curlPreview := buildFetchCurlPreview(fullURL, cleaned)
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("snapshot.fetch_url", fullURL),
			attribute.String("snapshot.name", cleaned),
			attribute.String("snapshot.request_curl_preview", curlPreview),
		)
	}
	f.logger.DebugContext(ctx, "snapshot fetch request", "name", cleaned, "url", fullURL, "curl_preview", curlPreview)

	body, err := f.download(ctx, fullURL)
	f.recordCircuitResult(err)
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "snapshot fetched", "name", cleaned, "bytes", len(body))
	return body, nil
}

func (f *Fetcher) download(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := f.doOnce(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isSnapshotCircuitFailure(err) {
			return nil, err
		}

		if attempt == f.retries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("snapshot request failed")
	}
	f.logger.WarnContext(ctx, "snapshot fetch failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (f *Fetcher) doOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "text/csv, application/json")

	deadline := time.Now().Add(f.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		if stderrors.Is(err, fasthttp.ErrBodyTooLarge) {
			return nil, fmt.Errorf("snapshot body exceeds %d bytes", f.maxBodyBytes)
		}
		return nil, fmt.Errorf("%w: send request: %v", errSnapshotTransient, err)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		preview := truncateForLog(strings.TrimSpace(string(resp.Body())), 240)
		if isSnapshotRetryableStatus(status) {
			return nil, fmt.Errorf("%w: source status=%d body=%s", errSnapshotTransient, status, preview)
		}
		return nil, fmt.Errorf("source status=%d body=%s", status, preview)
	}

	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("source returned an empty snapshot body")
	}

	// fasthttp reuses response buffers after release.
	return append([]byte(nil), resp.Body()...), nil
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildFetchCurlPreview(fullURL, name string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart(shellQuote(fullURL))
	appendPart("#")
	appendPart(shellQuote("name=" + name))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func (f *Fetcher) recordCircuitResult(err error) {
	if !f.circuitEnabled || f.breaker == nil {
		return
	}
	if err == nil {
		f.breaker.RecordSuccess()
		return
	}
	if isSnapshotCircuitFailure(err) {
		f.breaker.RecordFailure()
		return
	}
	f.breaker.RecordSuccess()
}

func isSnapshotCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSnapshotTransient)
}

func isSnapshotRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}
