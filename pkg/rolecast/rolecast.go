// Package rolecast propagates role grants to the external identity
// provider's admin API. It is fire-and-report: the caller commits its
// own state first and only logs/reports a failed grant.
package rolecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-hackathon-backend/config"
)

type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.AuthProviderURL,
		serviceKey: cfg.AuthServiceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetRole updates app metadata for the given external user so the
// provider issues tokens with the new authLevel claim.
func (c *Client) SetRole(ctx context.Context, role string, externalID string) error {
	if c.baseURL == "" || c.serviceKey == "" {
		return fmt.Errorf("rolecast: identity provider admin API not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"app_metadata": map[string]string{"authLevel": role},
	})
	if err != nil {
		return fmt.Errorf("rolecast: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("rolecast: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rolecast: set role %q for %s: %w", role, externalID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rolecast: set role %q for %s: provider returned %d", role, externalID, resp.StatusCode)
	}
	return nil
}
