package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"geniefy-platform/internal/auth"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate exchanges credentials for the user's identity. The upstream
// owns the credential store; bad credentials come back as ErrAuthRequired.
func (c *Client) Authenticate(ctx context.Context, username, password string) (auth.UserInfo, error) {
	payload, err := json.Marshal(credentials{Username: username, Password: password})
	if err != nil {
		return auth.UserInfo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return auth.UserInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return auth.UserInfo{}, fmt.Errorf("authenticate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return auth.UserInfo{}, ErrAuthRequired
	}
	if resp.StatusCode != http.StatusOK {
		return auth.UserInfo{}, fmt.Errorf("%w: login returned %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return auth.UserInfo{}, err
	}
	data, err := Unwrap(body)
	if err != nil {
		return auth.UserInfo{}, err
	}

	var user auth.UserInfo
	if err := json.Unmarshal(data, &user); err != nil {
		return auth.UserInfo{}, fmt.Errorf("decode identity: %w", err)
	}
	if user.UserID == "" || user.TenantID == "" {
		return auth.UserInfo{}, fmt.Errorf("%w: identity missing user_id or tenant_id", ErrUpstream)
	}
	return user, nil
}

// ResendOTP asks the upstream to re-send a one-time code. Rate limiting is
// the caller's job; the upstream call itself is fire-and-forget.
func (c *Client) ResendOTP(ctx context.Context, email string) error {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/otp/resend", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: otp resend returned %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}
