package pocketuniverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/dexwatch/internal/platform/http"
	"github.com/Alias1177/dexwatch/models"
)

// Client is the Pocket Universe fake-volume verdict client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Pocket Universe client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// checkResponse is the verdict payload.
type checkResponse struct {
	IsFakeVolume bool `json:"is_fake_volume"`
}

// NewClient creates a new Pocket Universe API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.pocketuniverse.app"
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "pocketuniverse_client").Logger(),
	}
}

// IsFakeVolume asks Pocket Universe whether a pair's volume looks
// manufactured. Any transport or decoding failure is reported as
// models.ErrVerdictUnavailable so the filter chain can apply its policy.
func (c *Client) IsFakeVolume(ctx context.Context, pairAddress string) (bool, error) {
	url := fmt.Sprintf("%s/v1/check-fake-volume?pair_address=%s", c.baseURL, pairAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Str("pair", pairAddress).Msg("Fake-volume check failed")
		return false, fmt.Errorf("%w: %v", models.ErrVerdictUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("%w: reading response: %v", models.ErrVerdictUnavailable, err)
	}

	var result checkResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return false, fmt.Errorf("%w: parsing response: %v", models.ErrVerdictUnavailable, err)
	}

	return result.IsFakeVolume, nil
}
