// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

// Package roblox implements the resilient client for the public Roblox
// web APIs. Every upstream call goes through a single fetch path that
// applies a per-call timeout, bounded retries with exponential backoff,
// rate limiting and an optional per-host circuit breaker.
//
// Failures never panic callers; each call returns a Result carrying the
// outcome, status code and duration so the orchestrator can degrade
// gracefully and surface diagnostics.
package roblox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/logging"
	"github.com/robprofile/robprofile/internal/metrics"
	"github.com/robprofile/robprofile/internal/models"
)

// Result is the outcome of a single upstream fetch. OK is true only when
// the upstream returned 2xx and the body was read fully.
type Result struct {
	OK       bool
	Data     []byte
	Status   int
	Err      error
	Duration time.Duration
}

// fatalStatusError marks a non-retryable HTTP status so the retry loop
// stops immediately.
type fatalStatusError struct {
	status int
}

func (e *fatalStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.status)
}

// Client calls the public Roblox API hosts.
type Client struct {
	cfg        config.RobloxConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breakers   map[string]*gobreaker.CircuitBreaker[[]byte]
	userAgent  string
}

// NewClient builds a Client from configuration. The http.Client carries
// no timeout of its own; per-call deadlines come from context.
func NewClient(cfg config.RobloxConfig) *Client {
	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		breakers:  make(map[string]*gobreaker.CircuitBreaker[[]byte]),
		userAgent: "robprofile/1.0 (+https://github.com/robprofile/robprofile)",
	}

	if cfg.BreakerEnabled {
		for _, base := range []string{
			cfg.UsersURL, cfg.BadgesURL, cfg.GroupsURL,
			cfg.GamesURL, cfg.ThumbnailsURL, cfg.ExploreURL,
		} {
			host := hostOf(base)
			if _, ok := c.breakers[host]; ok {
				continue
			}
			c.breakers[host] = newHostBreaker(host)
		}
	}

	return c
}

// newHostBreaker builds a circuit breaker for one upstream host.
func newHostBreaker(host string) *gobreaker.CircuitBreaker[[]byte] {
	settings := gobreaker.Settings{
		Name:        host,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("host", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](settings)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host
}

// Fetch performs a GET against rawURL with the client's full resilience
// stack. It never returns a nil-safe error pair; inspect Result.OK.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	return c.fetch(ctx, http.MethodGet, rawURL, "", nil)
}

// FetchJSON performs a POST with a JSON body. Used by the explore API.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, body []byte) Result {
	return c.fetch(ctx, http.MethodPost, rawURL, "application/json", body)
}

func (c *Client) fetch(ctx context.Context, method, rawURL, contentType string, body []byte) Result {
	start := time.Now()
	host := hostOf(rawURL)

	do := func() ([]byte, error) {
		return c.fetchWithRetries(ctx, method, rawURL, contentType, body, host)
	}

	var data []byte
	var err error
	if br, ok := c.breakers[host]; ok {
		data, err = br.Execute(do)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(host, "rejected").Inc()
		}
	} else {
		data, err = do()
	}

	duration := time.Since(start)
	result := Result{Data: data, Duration: duration}

	if err != nil {
		result.Err = err
		var fatal *fatalStatusError
		if errors.As(err, &fatal) {
			result.Status = fatal.status
		}
		metrics.RecordUpstreamRequest(host, "error", duration)
		return result
	}

	result.OK = true
	result.Status = http.StatusOK
	metrics.RecordUpstreamRequest(host, "success", duration)
	return result
}

// fetchWithRetries runs the attempt loop. Retryable failures are network
// errors, 5xx and 429; other 4xx stop immediately.
func (c *Client) fetchWithRetries(ctx context.Context, method, rawURL, contentType string, body []byte, host string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.UpstreamRequestsTotal.WithLabelValues(host, "retry").Inc()
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		data, retryAfter, err := c.attempt(ctx, method, rawURL, contentType, body)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var fatal *fatalStatusError
		if errors.As(err, &fatal) && fatal.status != http.StatusTooManyRequests {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
		if attempt == c.cfg.MaxRetries {
			break
		}

		delay := c.cfg.InitialBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 && retryAfter <= c.cfg.MaxRetryAfter {
			delay = retryAfter
			metrics.UpstreamRetryAfterHonored.Inc()
		}

		logging.Ctx(ctx).Debug().
			Str("url", rawURL).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("retrying upstream request")

		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

// attempt performs one HTTP round trip with the per-call timeout applied.
// The second return value is the parsed Retry-After on 429 responses.
func (c *Client) attempt(ctx context.Context, method, rawURL, contentType string, body []byte) ([]byte, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(callCtx, method, rawURL, reader)
	if err != nil {
		return nil, 0, &fatalStatusError{status: 0}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("read body from %s: %w", rawURL, err)
		}
		return data, 0, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.UpstreamRequestsTotal.WithLabelValues(hostOf(rawURL), "rate_limited").Inc()
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), &fatalStatusError{status: resp.StatusCode}

	case resp.StatusCode >= 500:
		return nil, 0, fmt.Errorf("upstream %s returned status %d", rawURL, resp.StatusCode)

	default:
		// Remaining 4xx are not retryable.
		return nil, 0, &fatalStatusError{status: resp.StatusCode}
	}
}

// parseRetryAfter parses a Retry-After header given in seconds. HTTP-date
// values and garbage return zero, which falls back to exponential backoff.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// classify converts a failed Result into a ClassifiedError for op.
func classify(op string, res Result) error {
	if res.Err == nil {
		return nil
	}
	if res.Status >= 400 && res.Status < 500 && res.Status != http.StatusTooManyRequests {
		return models.NewClassifiedError(models.ClassInvalidInput, op, res.Err)
	}
	return models.NewClassifiedError(models.ClassUpstreamUnavailable, op, res.Err)
}
