package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/dexwatch/internal/platform/http"
	"github.com/Alias1177/dexwatch/models"
)

// Client is the DexScreener API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new DexScreener client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new DexScreener API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.dexscreener.com"
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "dexscreener_client").Logger(),
	}
}

// GetPair fetches the latest stats for one trading pair.
func (c *Client) GetPair(ctx context.Context, pairAddress string) (Pair, error) {
	url := fmt.Sprintf("%s/latest/dex/pairs/%s", c.baseURL, pairAddress)

	c.logger.Debug().Str("url", url).Msg("Fetching pair")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Pair{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		var statusErr *httpClient.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return Pair{}, fmt.Errorf("%w: %s", models.ErrPairNotFound, pairAddress)
		}
		return Pair{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Pair{}, fmt.Errorf("reading response body: %w", err)
	}

	var data pairResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return Pair{}, fmt.Errorf("parsing JSON: %w", err)
	}

	switch {
	case data.Pair != nil:
		return *data.Pair, nil
	case len(data.Pairs) > 0:
		return data.Pairs[0], nil
	default:
		c.logger.Warn().Str("pair", pairAddress).Msg("No pair in response")
		return Pair{}, fmt.Errorf("%w: %s", models.ErrPairNotFound, pairAddress)
	}
}
