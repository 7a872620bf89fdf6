package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/motohub/motohub-cart-service/internal/apperrors"
	"github.com/motohub/motohub-cart-service/internal/config"
	"github.com/motohub/motohub-cart-service/internal/models"
)

// FeedClient pulls the provider offering and roster feeds.
type FeedClient interface {
	FetchOfferings(ctx context.Context) ([]models.ProviderOffering, error)
	FetchRoster(ctx context.Context) ([]models.ServiceProvider, error)
}

// HTTPFeedClient implements FeedClient against the provider service.
type HTTPFeedClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPFeedClient creates an HTTP-based feed client.
func NewHTTPFeedClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPFeedClient {
	return &HTTPFeedClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("feed-client"),
	}
}

// FetchOfferings pulls the full per-provider offering list.
func (c *HTTPFeedClient) FetchOfferings(ctx context.Context) ([]models.ProviderOffering, error) {
	var offerings []models.ProviderOffering
	if err := c.get(ctx, "/api/v1/offerings", &offerings); err != nil {
		return nil, &apperrors.FeedFetchError{Feed: "offerings", Err: err}
	}
	c.logger.Debug("Offerings feed fetched", zap.Int("count", len(offerings)))
	return offerings, nil
}

// FetchRoster pulls the full provider roster.
func (c *HTTPFeedClient) FetchRoster(ctx context.Context) ([]models.ServiceProvider, error) {
	var roster []models.ServiceProvider
	if err := c.get(ctx, "/api/v1/providers", &roster); err != nil {
		return nil, &apperrors.FeedFetchError{Feed: "roster", Err: err}
	}
	c.logger.Debug("Roster feed fetched", zap.Int("count", len(roster)))
	return roster, nil
}

func (c *HTTPFeedClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider service returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
