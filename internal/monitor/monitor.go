package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/dexwatch/internal/api/dexscreener"
	"github.com/Alias1177/dexwatch/internal/filter"
	"github.com/Alias1177/dexwatch/internal/normalize"
	"github.com/Alias1177/dexwatch/models"
)

// Fetcher is the market-data source.
type Fetcher interface {
	GetPair(ctx context.Context, pairAddress string) (dexscreener.Pair, error)
}

// Store is the durable snapshot store.
type Store interface {
	UpsertSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshots(ctx context.Context) ([]models.Snapshot, error)
}

// Scorer flags anomalous snapshots in the stored population.
type Scorer interface {
	Score(snapshots []models.Snapshot) ([]models.AnomalyRecord, error)
}

// Notifier is the alert sink.
type Notifier interface {
	NotifySkip(pairID, reason string) error
	NotifyAnomalies(records []models.AnomalyRecord) error
}

// Monitor drives the pipeline: fetch, normalize, filter, persist, score,
// notify. One cycle covers every watched pair plus one scoring pass; the
// failure of a single pair never aborts the cycle, and the failure of a
// cycle never aborts the loop.
type Monitor struct {
	fetcher  Fetcher
	chain    *filter.Chain
	store    Store
	scorer   Scorer
	notifier Notifier
	interval time.Duration
	logger   zerolog.Logger

	mu    sync.Mutex
	pairs []string
}

// New creates a monitor over the given collaborators.
func New(fetcher Fetcher, chain *filter.Chain, store Store, scorer Scorer, notifier Notifier, pairs []string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 300 * time.Second
	}
	return &Monitor{
		fetcher:  fetcher,
		chain:    chain,
		store:    store,
		scorer:   scorer,
		notifier: notifier,
		interval: interval,
		pairs:    append([]string(nil), pairs...),
		logger:   log.With().Str("component", "monitor").Logger(),
	}
}

// Run polls until the context is cancelled. The first cycle runs
// immediately; cancellation is honored between cycles.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info().Dur("interval", m.interval).Msg("Monitor loop started")

	m.RunCycle(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Monitor loop stopped")
			return
		case <-ticker.C:
			m.RunCycle(ctx)
		}
	}
}

// RunCycle processes every watched pair, then re-scores the full store.
func (m *Monitor) RunCycle(ctx context.Context) {
	for _, pair := range m.Pairs() {
		if ctx.Err() != nil {
			return
		}

		decision, err := m.ProcessPair(ctx, pair)
		if err != nil {
			m.logger.Error().Err(err).Str("pair", pair).Msg("Pair cycle failed")
			continue
		}
		if !decision.Accepted {
			if err := m.notifier.NotifySkip(pair, decision.Reason); err != nil {
				m.logger.Error().Err(err).Str("pair", pair).Msg("Skip notification failed")
			}
		}
	}

	m.scoreAndNotify(ctx)
}

// ProcessPair runs one snapshot through the admission pipeline. A
// rejected decision is a normal outcome, not an error; accepted snapshots
// are persisted before returning.
func (m *Monitor) ProcessPair(ctx context.Context, pairAddress string) (models.Decision, error) {
	raw, err := m.fetcher.GetPair(ctx, pairAddress)
	if err != nil {
		return models.Decision{}, err
	}

	snap, err := normalize.FromPair(raw)
	if err != nil {
		return models.Decision{}, err
	}

	decision := m.chain.Evaluate(ctx, snap)
	if !decision.Accepted {
		m.logger.Debug().Str("pair", pairAddress).Str("reason", decision.Reason).Msg("Snapshot rejected")
		return decision, nil
	}

	if err := m.store.UpsertSnapshot(ctx, snap); err != nil {
		return models.Decision{}, err
	}

	m.logger.Debug().Str("pair", pairAddress).Msg("Snapshot stored")
	return decision, nil
}

// scoreAndNotify re-scores the accumulated history and pushes anomalies.
// Store and scoring failures are logged so they stay distinguishable from
// "no anomalies found".
func (m *Monitor) scoreAndNotify(ctx context.Context) {
	snapshots, err := m.store.LoadSnapshots(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Loading snapshots for scoring failed")
		return
	}

	anomalies, err := m.scorer.Score(snapshots)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			m.logger.Debug().Msg("Nothing stored yet, skipping scoring pass")
			return
		}
		m.logger.Error().Err(err).Msg("Scoring pass failed")
		return
	}

	if len(anomalies) == 0 {
		m.logger.Debug().Int("population", len(snapshots)).Msg("No anomalies this pass")
		return
	}

	m.logger.Info().Int("count", len(anomalies)).Int("population", len(snapshots)).Msg("Anomalies flagged")
	if err := m.notifier.NotifyAnomalies(anomalies); err != nil {
		m.logger.Error().Err(err).Msg("Anomaly notification failed")
	}
}

// Pairs returns a copy of the current watch list.
func (m *Monitor) Pairs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pairs...)
}

// Watch adds a pair to the watch list; duplicates are ignored.
func (m *Monitor) Watch(pairAddress string) {
	if pairAddress == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pairs {
		if p == pairAddress {
			return
		}
	}
	m.pairs = append(m.pairs, pairAddress)
}

// Unwatch removes a pair from the watch list.
func (m *Monitor) Unwatch(pairAddress string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.pairs {
		if p == pairAddress {
			m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
			return
		}
	}
}
