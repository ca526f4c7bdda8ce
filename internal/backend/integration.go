package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// IntegrationStatus is the connection state of a tenant's third-party
// integration as reported by the upstream.
type IntegrationStatus struct {
	IntegrationID string `json:"integration_id"`
	Status        string `json:"status"`
	Detail        string `json:"detail,omitempty"`
}

// FetchIntegrationStatus retrieves the current status of one integration.
func (c *Client) FetchIntegrationStatus(ctx context.Context, token, integrationID string) (IntegrationStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/integrations/"+integrationID+"/status", nil)
	if err != nil {
		return IntegrationStatus{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return IntegrationStatus{}, fmt.Errorf("fetch integration status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return IntegrationStatus{}, ErrAuthRequired
	}
	if resp.StatusCode != http.StatusOK {
		return IntegrationStatus{}, fmt.Errorf("%w: integration status returned %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return IntegrationStatus{}, err
	}
	data, err := Unwrap(body)
	if err != nil {
		return IntegrationStatus{}, err
	}

	var st IntegrationStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return IntegrationStatus{}, fmt.Errorf("decode integration status: %w", err)
	}
	if st.IntegrationID == "" {
		st.IntegrationID = integrationID
	}
	return st, nil
}
