package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Outcome is the tri-state result of an external authorization check. Every
// Await call resolves to exactly one of these; the caller is never left
// waiting past the configured window.
type Outcome string

const (
	OutcomeGranted  Outcome = "granted"
	OutcomeDenied   Outcome = "denied"
	OutcomeTimedOut Outcome = "timed_out"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 5 * time.Minute
)

// Client talks to the external authorization service. The operator is
// directed to AuthURL out of band; Await polls the check endpoint until the
// service confirms or denies, or the window closes. Only a verified success
// response grants: there is deliberately no elapsed-time fallback.
type Client struct {
	authURL  string
	checkURL string
	interval time.Duration
	timeout  time.Duration
	http     *http.Client
}

func NewClient(authURL, checkURL string) *Client {
	return &Client{
		authURL:  authURL,
		checkURL: checkURL,
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithPolicy overrides the poll interval and overall timeout.
func NewClientWithPolicy(authURL, checkURL string, interval, timeout time.Duration) *Client {
	c := NewClient(authURL, checkURL)
	if interval > 0 {
		c.interval = interval
	}
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// AuthURL is the address the operator must visit to verify themselves.
func (c *Client) AuthURL() string {
	return c.authURL
}

// Await polls the check endpoint until it confirms (granted, with the
// service's opaque user data), explicitly refuses (denied), or the window
// times out. Cancelling the parent context also resolves as timed-out.
func (c *Client) Await(ctx context.Context) (Outcome, map[string]any) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		outcome, userData, done := c.check(ctx)
		if done {
			return outcome, userData
		}
		select {
		case <-ctx.Done():
			return OutcomeTimedOut, nil
		case <-ticker.C:
		}
	}
}

// check performs one status request. done is false when the result is not
// conclusive yet and polling should continue.
func (c *Client) check(ctx context.Context) (Outcome, map[string]any, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.checkURL, nil)
	if err != nil {
		log.Printf("auth check request build failed: %v", err)
		return "", nil, false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		// Transient network failure: keep polling until the window closes.
		return "", nil, false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		userData := map[string]any{
			"authTime": time.Now().UnixMilli(),
			"source":   c.authURL,
		}
		var payload map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			for k, v := range payload {
				userData[k] = v
			}
		}
		return OutcomeGranted, userData, true
	case http.StatusForbidden:
		return OutcomeDenied, nil, true
	default:
		return "", nil, false
	}
}
