// Package fetch performs outbound HTTP requests with exponential-backoff
// retry and jitter for transient failures.
//
// A request is retried when the transport fails (network error, timeout)
// or when the response status is in the policy's retryable set. Any other
// response, success or not, is returned to the caller as-is; interpreting
// non-retryable status codes is the caller's job.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options carries per-request HTTP parameters passed through to the transport.
type Options struct {
	// Method defaults to GET.
	Method string

	// Header entries are set on the request. Callers may inject
	// authentication headers here; the fetcher does not manage credentials.
	Header http.Header

	// Body is the request body, replayed on every retry attempt.
	Body []byte
}

// Fetcher issues HTTP requests with retry and backoff.
type Fetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// New creates a Fetcher. A nil client falls back to a default with a
// 30 second timeout.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client: client,
		logger: log.With().Str("component", "fetcher").Logger(),
	}
}

// Do performs the request, retrying per policy. It returns the final
// response (whose status the caller must interpret) or ErrRetryExhausted
// once the retry budget is spent. The backoff sleep honors ctx.
func (f *Fetcher) Do(ctx context.Context, url string, opts Options, policy Policy) (*http.Response, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		req, err := f.buildRequest(ctx, url, opts)
		if err != nil {
			return nil, err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt >= policy.MaxRetries {
				break
			}
			RetriesTotal.WithLabelValues("network").Inc()
			f.logger.Debug().Err(err).Str("url", url).Int("attempt", attempt+1).Msg("Request failed, retrying")
			if err := f.sleep(ctx, policy, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if policy.RetryableStatuses[resp.StatusCode] {
			lastStatus = resp.StatusCode
			lastErr = nil
			resp.Body.Close()
			if attempt >= policy.MaxRetries {
				// Retryable status on the final attempt counts as exhaustion.
				break
			}
			RetriesTotal.WithLabelValues("status").Inc()
			f.logger.Debug().
				Str("url", url).
				Int("status", resp.StatusCode).
				Int("attempt", attempt+1).
				Msg("Retryable status, retrying")
			if err := f.sleep(ctx, policy, attempt); err != nil {
				return nil, err
			}
			continue
		}

		RequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		return resp, nil
	}

	RetryExhaustedTotal.Inc()
	f.logger.Warn().
		Str("url", url).
		Int("max_retries", policy.MaxRetries).
		Msg("Retry attempts exhausted")

	if lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, policy.MaxRetries+1, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts: last status %d", ErrRetryExhausted, policy.MaxRetries+1, lastStatus)
}

// buildRequest constructs a fresh request per attempt so the body can be
// replayed safely.
func (f *Fetcher) buildRequest(ctx context.Context, url string, opts Options) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, values := range opts.Header {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}

	return req, nil
}

// sleep waits out the backoff for the given attempt, aborting on context
// cancellation.
func (f *Fetcher) sleep(ctx context.Context, policy Policy, attempt int) error {
	delay := policy.backoff(attempt)
	RetryBackoffSeconds.Observe(delay.Seconds())

	select {
	case <-ctx.Done():
		f.logger.Warn().Int("attempt", attempt+1).Msg("Context cancelled during retry backoff")
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
