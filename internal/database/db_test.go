package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Alias1177/dexwatch/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &DB{db}, mock
}

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		PairAddress:    "PAIR1",
		BaseToken:      "GoodCoin",
		QuoteToken:     "SOL",
		Price:          1.25,
		Volume24h:      60_000,
		LiquidityUSD:   20_000,
		MarketCap:      500_000,
		PriceChange24h: 5,
		DevAddress:     "DEV1",
		UpdatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsertSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	snap := sampleSnapshot()

	mock.ExpectExec("INSERT INTO pair_snapshots").
		WithArgs(
			snap.PairAddress, snap.BaseToken, snap.QuoteToken, snap.Price, snap.Volume24h,
			snap.LiquidityUSD, snap.MarketCap, snap.PriceChange24h, snap.DevAddress, snap.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := db.UpsertSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertSnapshotReplacesExistingRow(t *testing.T) {
	db, mock := newMockDB(t)

	first := sampleSnapshot()
	second := first
	second.Volume24h = 400_000
	second.Price = 0.9

	mock.ExpectExec("INSERT INTO pair_snapshots").
		WithArgs(
			first.PairAddress, first.BaseToken, first.QuoteToken, first.Price, first.Volume24h,
			first.LiquidityUSD, first.MarketCap, first.PriceChange24h, first.DevAddress, first.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Second upsert of the same key hits the ON CONFLICT branch: one row
	// affected, no duplicate insert.
	mock.ExpectExec("INSERT INTO pair_snapshots").
		WithArgs(
			second.PairAddress, second.BaseToken, second.QuoteToken, second.Price, second.Volume24h,
			second.LiquidityUSD, second.MarketCap, second.PriceChange24h, second.DevAddress, second.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := db.UpsertSnapshot(context.Background(), first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := db.UpsertSnapshot(context.Background(), second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertSnapshotStoreUnavailable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO pair_snapshots").
		WillReturnError(errors.New("connection refused"))

	err := db.UpsertSnapshot(context.Background(), sampleSnapshot())
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestLoadSnapshots(t *testing.T) {
	db, mock := newMockDB(t)
	snap := sampleSnapshot()

	rows := sqlmock.NewRows([]string{
		"pair_address", "base_token", "quote_token", "price", "volume_24h",
		"liquidity_usd", "market_cap", "price_change_24h", "dev_address", "updated_at",
	}).AddRow(
		snap.PairAddress, snap.BaseToken, snap.QuoteToken, snap.Price, snap.Volume24h,
		snap.LiquidityUSD, snap.MarketCap, snap.PriceChange24h, snap.DevAddress, snap.UpdatedAt,
	)

	mock.ExpectQuery("(?s)SELECT.+FROM pair_snapshots.+ORDER BY pair_address").
		WillReturnRows(rows)

	snapshots, err := db.LoadSnapshots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0] != snap {
		t.Errorf("loaded snapshot = %+v, want %+v", snapshots[0], snap)
	}
}

func TestLoadSnapshotsStoreUnavailable(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("(?s)SELECT.+FROM pair_snapshots").
		WillReturnError(errors.New("connection refused"))

	_, err := db.LoadSnapshots(context.Background())
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCountSnapshots(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := db.CountSnapshots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}
