// Package backend talks to the upstream API that owns business data and is
// the authority for token validity. Only auth-adjacent calls live here; this
// service does not proxy business CRUD.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"geniefy-platform/internal/config"
)

var (
	// ErrAuthRequired is the mapped form of an upstream 401. Every caller
	// treats it as "surface authentication required", never as a retryable
	// transport failure.
	ErrAuthRequired = errors.New("authentication required")

	ErrUpstream = errors.New("upstream error")
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.BackendConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// VerifyToken asks the upstream whether an access token is valid.
// A definitive "no" (401) is returned as (false, nil) so callers can cache
// the negative answer; transport and server failures are errors.
func (c *Client) VerifyToken(ctx context.Context, token string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/verify", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return false, nil
	default:
		return false, fmt.Errorf("%w: verify returned %d", ErrUpstream, resp.StatusCode)
	}
}

// FetchSubscription retrieves and normalizes the tenant's subscription.
func (c *Client) FetchSubscription(ctx context.Context, token, tenantID string) (Subscription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/billing/subscription?tenant_id="+tenantID, nil)
	if err != nil {
		return Subscription{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Subscription{}, fmt.Errorf("fetch subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Subscription{}, ErrAuthRequired
	}
	if resp.StatusCode != http.StatusOK {
		return Subscription{}, fmt.Errorf("%w: subscription returned %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Subscription{}, err
	}
	data, err := Unwrap(body)
	if err != nil {
		return Subscription{}, err
	}
	return NormalizeSubscription(data)
}
