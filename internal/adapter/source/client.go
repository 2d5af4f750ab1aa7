package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/covid-snapshot-etl/internal/domain"
	"github.com/couchcryptid/covid-snapshot-etl/internal/observability"
)

// Client fetches the dashboard page over HTTP.
// It implements pipeline.Fetcher.
type Client struct {
	url        string
	userAgent  string
	maxBytes   int64
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a dashboard fetcher for url.
func NewClient(url string, timeout time.Duration, userAgent string, maxBytes int64, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		url:       url,
		userAgent: userAgent,
		maxBytes:  maxBytes,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch downloads the page once. There is no retry; a failed fetch is
// reported to the caller, which decides whether to try a fresh cycle.
func (c *Client) Fetch(ctx context.Context) (domain.Document, error) {
	start := time.Now()
	doc, err := c.doRequest(ctx)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.Document{}, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("dashboard fetched", "url", c.url, "bytes", len(doc.Markup), "duration", time.Since(start))
	return doc, nil
}

func (c *Client) doRequest(ctx context.Context) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch dashboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Document{}, fmt.Errorf("dashboard fetch: status %d: %s", resp.StatusCode, snippet)
	}

	// Read one byte past the cap so an oversized page is detected rather
	// than silently truncated into a structural mismatch.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return domain.Document{}, fmt.Errorf("read dashboard body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return domain.Document{}, fmt.Errorf("dashboard body exceeds %d bytes", c.maxBytes)
	}

	return domain.Document{
		URL:         c.url,
		Markup:      string(body),
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   domain.Now(),
	}, nil
}
