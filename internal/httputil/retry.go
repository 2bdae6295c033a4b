// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// Policy controls retry behavior for rate-limited requests. Callers hold
// their own Policy rather than sharing package state, so tests can run with
// a zero BaseDelay and no real sleeps.
type Policy struct {
	// BaseDelay is the first backoff duration; it doubles each attempt.
	BaseDelay time.Duration

	// MaxAttempts is the number of retries after the initial request.
	MaxAttempts int
}

// DefaultPolicy is used when callers pass the zero value: 2s, 4s, 8s, 16s, 32s.
var DefaultPolicy = Policy{BaseDelay: 2 * time.Second, MaxAttempts: 5}

func (p Policy) normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	return p
}

// backoff returns the delay before retry number attempt (0-based).
func (p Policy) backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * p.BaseDelay
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) with exponential backoff per the policy. On each 429 the
// response body is drained and closed before sleeping. If the context is
// cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last 429 response is returned so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	policy = policy.normalize()

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries, return the 429 response as-is.
		if attempt >= policy.MaxAttempts {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.backoff(attempt)):
		}
	}
}
