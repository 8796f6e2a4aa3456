package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Alias1177/dexwatch/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pair_snapshots (
			pair_address TEXT PRIMARY KEY,
			base_token TEXT NOT NULL,
			quote_token TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			volume_24h DOUBLE PRECISION NOT NULL,
			liquidity_usd DOUBLE PRECISION NOT NULL,
			market_cap DOUBLE PRECISION NOT NULL,
			price_change_24h DOUBLE PRECISION NOT NULL,
			dev_address TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)

	return err
}

// UpsertSnapshot inserts or replaces the stored row for a pair. One row
// per pair: re-ingestion overwrites, never appends.
func (db *DB) UpsertSnapshot(ctx context.Context, snap models.Snapshot) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pair_snapshots (
			pair_address, base_token, quote_token, price, volume_24h,
			liquidity_usd, market_cap, price_change_24h, dev_address, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (pair_address)
		DO UPDATE SET
			base_token = EXCLUDED.base_token,
			quote_token = EXCLUDED.quote_token,
			price = EXCLUDED.price,
			volume_24h = EXCLUDED.volume_24h,
			liquidity_usd = EXCLUDED.liquidity_usd,
			market_cap = EXCLUDED.market_cap,
			price_change_24h = EXCLUDED.price_change_24h,
			dev_address = EXCLUDED.dev_address,
			updated_at = EXCLUDED.updated_at
	`,
		snap.PairAddress, snap.BaseToken, snap.QuoteToken, snap.Price, snap.Volume24h,
		snap.LiquidityUSD, snap.MarketCap, snap.PriceChange24h, snap.DevAddress, snap.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", models.ErrStoreUnavailable, snap.PairAddress, err)
	}

	return nil
}

// LoadSnapshots returns every stored snapshot. The pair-address ordering
// keeps scoring passes reproducible over the same population.
func (db *DB) LoadSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			pair_address, base_token, quote_token, price, volume_24h,
			liquidity_usd, market_cap, price_change_24h, dev_address, updated_at
		FROM pair_snapshots
		ORDER BY pair_address
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: load snapshots: %v", models.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(
			&snap.PairAddress, &snap.BaseToken, &snap.QuoteToken, &snap.Price, &snap.Volume24h,
			&snap.LiquidityUSD, &snap.MarketCap, &snap.PriceChange24h, &snap.DevAddress, &snap.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan snapshot: %v", models.ErrStoreUnavailable, err)
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read snapshots: %v", models.ErrStoreUnavailable, err)
	}

	return snapshots, nil
}

// CountSnapshots returns the number of stored pairs.
func (db *DB) CountSnapshots(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pair_snapshots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count snapshots: %v", models.ErrStoreUnavailable, err)
	}
	return count, nil
}
