package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/config"
)

// HTTPAuthClient checks caller authentication against the auth service and
// kicks off the external login flow when needed.
type HTTPAuthClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPAuthClient creates an HTTP-based auth client.
func NewHTTPAuthClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPAuthClient {
	return &HTTPAuthClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("auth-client"),
	}
}

// IsAuthenticated verifies the bearer token. An empty token is never
// authenticated and skips the network round trip.
func (c *HTTPAuthClient) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/session", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach auth service", zap.Error(err))
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}
}

// RequestLogin asks the auth service to start a login flow for the session.
func (c *HTTPAuthClient) RequestLogin(ctx context.Context, sessionID string) error {
	body, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/login-requests", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Login flow requested", zap.String("session_id", sessionID))
	return nil
}
