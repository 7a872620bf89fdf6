package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// HTTPBookingClient submits assembled service requests to the booking
// service.
type HTTPBookingClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPBookingClient creates an HTTP-based booking client.
func NewHTTPBookingClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPBookingClient {
	return &HTTPBookingClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("booking-client"),
	}
}

// SubmitServiceRequest posts the payload. A non-2xx response is an error,
// with the service's own message preserved for the user.
func (c *HTTPBookingClient) SubmitServiceRequest(ctx context.Context, serviceReq *models.ServiceRequest) error {
	body, err := json.Marshal(serviceReq)
	if err != nil {
		return err
	}

	url := c.baseURL + "/api/v1/service-requests"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach booking service", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if trimmed := strings.TrimSpace(string(msg)); trimmed != "" {
			return fmt.Errorf("booking service returned status %d: %s", resp.StatusCode, trimmed)
		}
		return fmt.Errorf("booking service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Service request submitted",
		zap.Int("items", len(serviceReq.Items)),
		zap.Int("candidates", len(serviceReq.CandidateProviderIDs)))
	return nil
}
