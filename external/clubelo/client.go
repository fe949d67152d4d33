package clubelo

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/strikerlab/debutform/internal/platform/logging"
	"github.com/strikerlab/debutform/internal/platform/resilience"
	"github.com/strikerlab/debutform/internal/usecase"
)

const (
	defaultBaseURL   = "http://api.clubelo.com"
	maxHistoryBytes  = 2 << 20
	bodyPreviewLimit = 240
)

var errClubEloTransient = crerr.New("clubelo transient failure")
var errNotTracked = crerr.New("clubelo club not tracked")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "clubelo " + r.Method
				}),
			),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchHistory downloads one club's full rating history. The provider
// answers unknown club names with a "404 page not found" body; that case
// returns found=false with no error so callers can skip the club.
func (c *Client) FetchHistory(ctx context.Context, normalizedTeam string) ([]usecase.ExternalRating, bool, error) {
	team := strings.TrimSpace(normalizedTeam)
	if team == "" {
		return nil, false, fmt.Errorf("normalized team name must not be empty")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "clubelo circuit breaker rejected request", "state", c.breaker.State())
			return nil, false, fmt.Errorf("%w: rating provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + "/" + url.PathEscape(team)
	out, err, _ := c.flight.Do(team, func() (any, error) {
		raw, reqErr := c.download(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errClubEloTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if stderrors.Is(err, errNotTracked) {
			return nil, false, nil
		}
		return nil, false, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected response payload type %T", out)
	}
	if isUntrackedBody(raw) {
		return nil, false, nil
	}

	ratings, skipped, err := parseHistoryCSV(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode rating history team=%s: %w", team, err)
	}
	if skipped > 0 {
		c.logger.WarnContext(ctx, "clubelo history rows skipped", "team", team, "skipped", skipped)
	}

	return ratings, true, nil
}

// download retries transient failures with a linear backoff. Anything not
// marked errClubEloTransient aborts the loop on the spot.
func (c *Client) download(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		raw, err := c.get(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		if !stderrors.Is(err, errClubEloTransient) {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		if err := sleepBackoff(ctx, attempt); err != nil {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "clubelo request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errClubEloTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxHistoryBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errClubEloTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotTracked
	case resp.StatusCode/100 == 2:
		return raw, nil
	case isRetryableStatus(resp.StatusCode):
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errClubEloTransient, resp.StatusCode, bodyPreview(raw))
	default:
		return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, bodyPreview(raw))
	}
}

func sleepBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(time.Duration(attempt+1) * time.Second)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func bodyPreview(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > bodyPreviewLimit {
		text = text[:bodyPreviewLimit] + "..."
	}
	return text
}
