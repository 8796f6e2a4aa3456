package jupiter

import (
	"bytes"
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

// Client submits buy/sell orders through a Jupiter swap execution relay.
// The relay holds the wallet and does the signing; this client only asks
// it to swap and reports the resulting transaction hash.
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new swap client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

type swapRequest struct {
	Action string  `json:"action"`
	Token  string  `json:"token"`
	Amount float64 `json:"amount"`
}

type swapResponse struct {
	TxHash string `json:"txHash"`
	Error  string `json:"error,omitempty"`
}

// NewClient creates a new swap execution client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = "http://127.0.0.1:9201"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "jupiter_client").Logger(),
	}
}

// Swap submits a trade and returns the transaction hash.
func (c *Client) Swap(ctx context.Context, action models.TradeAction, token string, amount float64) (string, error) {
	payload, err := json.Marshal(swapRequest{
		Action: string(action),
		Token:  token,
		Amount: amount,
	})
	if err != nil {
		return "", fmt.Errorf("encoding swap request: %w", err)
	}

	url := c.baseURL + "/v1/swap"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		c.logger.Error().Err(err).Str("token", token).Str("action", string(action)).Msg("Swap request failed")
		return "", fmt.Errorf("%w: %v", models.ErrTradeFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", models.ErrTradeFailed, err)
	}

	var result swapResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", models.ErrTradeFailed, err)
	}

	if result.TxHash == "" {
		return "", fmt.Errorf("%w: %s", models.ErrTradeFailed, result.Error)
	}

	c.logger.Info().Str("tx", result.TxHash).Str("token", token).Str("action", string(action)).Msg("Swap submitted")
	return result.TxHash, nil
}
