package dexscreener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Alias1177/dexwatch/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(ClientOptions{
		BaseURL:         server.URL,
		RequestTimeout:  2 * time.Second,
		RequestsPerSec:  100,
		MaxRetryTimeout: 100 * time.Millisecond,
	})
	return client, server
}

func TestGetPair(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/pairs/PAIR1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"schemaVersion": "1.0.0",
			"pair": {
				"pairAddress": "PAIR1",
				"baseToken": {"address": "MINT1", "name": "GoodCoin", "symbol": "GOOD"},
				"quoteToken": {"address": "SOLMINT", "name": "SOL", "symbol": "SOL"},
				"priceUsd": "1.23",
				"volume": {"h24": 60000},
				"liquidity": {"usd": 20000, "base": 10, "quote": 10},
				"priceChange": {"h24": 5.5},
				"fdv": 500000
			}
		}`))
	})
	defer server.Close()

	pair, err := client.GetPair(context.Background(), "PAIR1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.PairAddress != "PAIR1" {
		t.Errorf("PairAddress = %q", pair.PairAddress)
	}
	if pair.BaseToken == nil || pair.BaseToken.Name != "GoodCoin" {
		t.Errorf("BaseToken = %+v", pair.BaseToken)
	}
	if pair.Volume == nil || pair.Volume.H24 == nil || *pair.Volume.H24 != 60000 {
		t.Errorf("Volume = %+v", pair.Volume)
	}
}

func TestGetPairUsesPairsArrayFallback(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"pairAddress": "PAIR2", "priceUsd": "0.5"}]}`))
	})
	defer server.Close()

	pair, err := client.GetPair(context.Background(), "PAIR2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.PairAddress != "PAIR2" {
		t.Errorf("PairAddress = %q", pair.PairAddress)
	}
}

func TestGetPairNotFound(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	_, err := client.GetPair(context.Background(), "MISSING")
	if !errors.Is(err, models.ErrPairNotFound) {
		t.Fatalf("expected ErrPairNotFound, got %v", err)
	}
}

func TestGetPairEmptyResponse(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": []}`))
	})
	defer server.Close()

	_, err := client.GetPair(context.Background(), "EMPTY")
	if !errors.Is(err, models.ErrPairNotFound) {
		t.Fatalf("expected ErrPairNotFound, got %v", err)
	}
}
