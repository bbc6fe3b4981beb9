// Package etaapi talks to the upstream arrival-estimate service.
package etaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"etaboard/internal/domain"
)

var ErrUpstream = errors.New("upstream error")

type Options struct {
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
	}
}

type Client struct {
	baseURL    string
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, opts Options, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		opts:    opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger.With("component", "etaapi_client"),
	}
}

type apiResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Fetch returns the arrival records for one stop of one route. A successful empty
// result is returned as an empty non-nil slice.
func (c *Client) Fetch(ctx context.Context, routeID string, seq int) ([]domain.ArrivalRecord, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialInterval
	b.RandomizationFactor = 0.2
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.opts.MaxRetries), ctx)

	records, err := backoff.RetryNotifyWithData(
		func() ([]domain.ArrivalRecord, error) {
			return c.fetchOnce(ctx, routeID, seq)
		},
		policy,
		func(err error, d time.Duration) {
			c.logger.Warn("eta fetch failed, backing off",
				"route", routeID,
				"seq", seq,
				"retry_in_ms", d.Milliseconds(),
				"error", err,
			)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("fetch eta %s/%d: %w", routeID, seq, err)
	}
	return records, nil
}

func (c *Client) fetchOnce(ctx context.Context, routeID string, seq int) ([]domain.ArrivalRecord, error) {
	params := url.Values{}
	params.Set("route", routeID)
	params.Set("seq", strconv.Itoa(seq))

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	if apiResp.Error != "" {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrUpstream, apiResp.Error))
	}

	records := []domain.ArrivalRecord{}
	if len(apiResp.Result) > 0 && string(apiResp.Result) != "null" {
		if err := json.Unmarshal(apiResp.Result, &records); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decoding records: %w", err))
		}
	}
	return records, nil
}
