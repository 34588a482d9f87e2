// Package license talks to the external license-verification collaborator.
// The client is deliberately paranoid: any transport error, timeout, odd
// status, or malformed payload reads as "not redeemable" upstream, and a
// circuit breaker keeps a dead verifier from stalling every redemption.
package license

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"bandcheck/internal/access"
	"bandcheck/pkg/platform/circuit"
	"bandcheck/pkg/platform/sentinel"
)

// VerifyTimeout bounds one verification call. Timeout is verification
// failure; the caller fails closed.
const VerifyTimeout = 10 * time.Second

// secretHeader authenticates this service to the verifier.
const secretHeader = "product-secret-key"

// Client implements access.Verifier against a Payhip-style verify endpoint.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the underlying HTTP client; tests use it to
// shrink timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func NewClient(baseURL, secret string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: VerifyTimeout},
		breaker:    circuit.New("license-verifier"),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// verifyResponse is the subset of the verifier's payload this core consumes.
// Uses is a pointer so an absent field is distinguishable from zero: only an
// explicit zero marks the key fresh.
type verifyResponse struct {
	Data struct {
		Uses *int `json:"uses"`
	} `json:"data"`
}

// Verify queries the collaborator for key. Every failure path returns an
// error; the access service translates all of them into the same generic
// refusal.
func (c *Client) Verify(ctx context.Context, key string) (access.Verification, error) {
	if c.breaker.IsOpen() {
		return access.Verification{}, fmt.Errorf("license verifier: %w", sentinel.ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, VerifyTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/license/verify?license_key=%s", c.baseURL, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return access.Verification{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		return access.Verification{}, fmt.Errorf("verify call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.recordFailure(ctx)
		return access.Verification{}, fmt.Errorf("verify call: unexpected status %d", resp.StatusCode)
	}

	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.recordFailure(ctx)
		return access.Verification{}, fmt.Errorf("decode verify response: %w", err)
	}
	if payload.Data.Uses == nil {
		// A well-formed refusal, not an outage: the breaker stays closed.
		return access.Verification{}, fmt.Errorf("verify response has no uses field")
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "license verifier recovered", "breaker", c.breaker.Name())
	}
	return access.Verification{Uses: *payload.Data.Uses}, nil
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.ErrorContext(ctx, "license verifier circuit opened", "breaker", c.breaker.Name())
	}
}
