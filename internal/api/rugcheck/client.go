package rugcheck

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

// Client talks to the RugCheck-style token risk API: a per-token report
// with an overall status string, and a holder-distribution endpoint.
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new RugCheck client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

type reportResponse struct {
	Status string `json:"status"`
}

type holderEntry struct {
	Address string  `json:"address"`
	Pct     float64 `json:"pct"`
}

// NewClient creates a new RugCheck API client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "https://api.rugcheck.xyz/v1"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "rugcheck_client").Logger(),
	}
}

// ReportStatus returns the token's overall risk status string. Callers
// treat anything other than "good" (case-insensitively) as a negative
// verdict; that interpretation lives in the filter chain, not here.
func (c *Client) ReportStatus(ctx context.Context, tokenAddress string) (string, error) {
	url := fmt.Sprintf("%s/tokens/%s/report", c.baseURL, tokenAddress)

	body, err := c.get(ctx, url)
	if err != nil {
		c.logger.Warn().Err(err).Str("token", tokenAddress).Msg("Risk report fetch failed")
		return "", fmt.Errorf("%w: %v", models.ErrVerdictUnavailable, err)
	}

	var report reportResponse
	if err := json.Unmarshal(body, &report); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return "", fmt.Errorf("%w: parsing report: %v", models.ErrVerdictUnavailable, err)
	}

	return report.Status, nil
}

// TopHolders returns holder address -> share of supply in percent.
func (c *Client) TopHolders(ctx context.Context, tokenAddress string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/tokens/%s/holders", c.baseURL, tokenAddress)

	body, err := c.get(ctx, url)
	if err != nil {
		c.logger.Warn().Err(err).Str("token", tokenAddress).Msg("Holder distribution fetch failed")
		return nil, fmt.Errorf("%w: %v", models.ErrVerdictUnavailable, err)
	}

	var holders []holderEntry
	if err := json.Unmarshal(body, &holders); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("%w: parsing holders: %v", models.ErrVerdictUnavailable, err)
	}

	distribution := make(map[string]float64, len(holders))
	for _, h := range holders {
		distribution[h.Address] = h.Pct
	}

	return distribution, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
