// Package sources holds the REST connectors feeding the pipeline.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"TrackerPipeline/internal/ratelimit"
	"TrackerPipeline/internal/retry"
)

const requestTimeout = 30 * time.Second

// apiClient is the shared HTTP plumbing for all connectors: one rate-limiter
// wait per request, retries on transport errors and 5xx, no retry on 4xx.
type apiClient struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
	retryOpts  retry.Options
}

func newAPIClient(limiter *ratelimit.Limiter, logger *slog.Logger) *apiClient {
	return &apiClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		logger:     logger,
		retryOpts:  retry.Options{Logger: logger},
	}
}

// getJSON fetches rawURL with params attached and decodes the body into out.
// source names the rate-limiter bucket and the retry log entries.
func (c *apiClient) getJSON(ctx context.Context, source, rawURL string, params url.Values, headers map[string]string, out any) error {
	if err := c.limiter.Wait(ctx, source); err != nil {
		return err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	u.RawQuery = params.Encode()

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s request: %w", source, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("%s returned status %d", source, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return retry.Permanent(fmt.Errorf("%s returned status %d: %s", source, resp.StatusCode, body))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("%s decode response: %w", source, err))
		}
		return nil
	}

	return retry.Do(ctx, source, op, c.retryOpts)
}

func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
