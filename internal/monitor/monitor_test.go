package monitor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/Alias1177/dexwatch/config"
	"github.com/Alias1177/dexwatch/internal/api/dexscreener"
	"github.com/Alias1177/dexwatch/internal/filter"
	"github.com/Alias1177/dexwatch/models"
)

func f64(v float64) *float64 { return &v }

func rawPair(pairAddress, baseToken, devAddress string, liquidity, volume, priceChange float64) dexscreener.Pair {
	return dexscreener.Pair{
		PairAddress: pairAddress,
		BaseToken:   &dexscreener.TokenInfo{Address: devAddress, Name: baseToken, Symbol: baseToken},
		QuoteToken:  &dexscreener.TokenInfo{Address: "SOLMINT", Name: "SOL", Symbol: "SOL"},
		PriceUsd:    "1.0",
		Volume:      &dexscreener.VolumeStats{H24: f64(volume)},
		Liquidity:   &dexscreener.LiquidityStats{USD: f64(liquidity)},
		PriceChange: &dexscreener.PriceChangeStats{H24: f64(priceChange)},
		Fdv:         f64(1_000_000),
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	pairs map[string]dexscreener.Pair
	errs  map[string]error
}

func (f *fakeFetcher) GetPair(ctx context.Context, pairAddress string) (dexscreener.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[pairAddress]; ok {
		return dexscreener.Pair{}, err
	}
	pair, ok := f.pairs[pairAddress]
	if !ok {
		return dexscreener.Pair{}, models.ErrPairNotFound
	}
	return pair, nil
}

func (f *fakeFetcher) set(pair dexscreener.Pair) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pairs == nil {
		f.pairs = make(map[string]dexscreener.Pair)
	}
	f.pairs[pair.PairAddress] = pair
}

type memStore struct {
	mu      sync.Mutex
	rows    map[string]models.Snapshot
	loadErr error
}

func (s *memStore) UpsertSnapshot(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[string]models.Snapshot)
	}
	s.rows[snap.PairAddress] = snap
	return nil
}

func (s *memStore) LoadSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	keys := make([]string, 0, len(s.rows))
	for k := range s.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshots := make([]models.Snapshot, 0, len(keys))
	for _, k := range keys {
		snapshots = append(snapshots, s.rows[k])
	}
	return snapshots, nil
}

type stubScorer struct {
	records []models.AnomalyRecord
	err     error
}

func (s stubScorer) Score(snapshots []models.Snapshot) ([]models.AnomalyRecord, error) {
	return s.records, s.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	skips     map[string]string
	anomalies [][]models.AnomalyRecord
}

func (n *recordingNotifier) NotifySkip(pairID, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.skips == nil {
		n.skips = make(map[string]string)
	}
	n.skips[pairID] = reason
	return nil
}

func (n *recordingNotifier) NotifyAnomalies(records []models.AnomalyRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.anomalies = append(n.anomalies, records)
	return nil
}

func testChain() *filter.Chain {
	fctx := filter.NewContext(config.FilterThresholds{
		MinLiquidity:      10_000,
		MaxPriceChange24h: 50,
		MinVolume:         1_000,
	}, config.Blacklist{})
	return filter.NewChain(fctx, filter.ChainOptions{})
}

func TestProcessPairRejectNeverReachesStore(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(rawPair("P1", "X", "D1", 5_000, 60_000, 5))
	store := &memStore{}

	m := New(fetcher, testChain(), store, stubScorer{}, &recordingNotifier{}, []string{"P1"}, 0)

	decision, err := m.ProcessPair(context.Background(), "P1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Accepted {
		t.Fatal("expected rejection")
	}
	if decision.Reason != filter.ReasonLowLiquidity {
		t.Errorf("reason = %q, want %q", decision.Reason, filter.ReasonLowLiquidity)
	}
	if len(store.rows) != 0 {
		t.Errorf("rejected snapshot reached the store: %v", store.rows)
	}
}

func TestProcessPairAcceptStores(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(rawPair("P2", "Y", "D2", 20_000, 60_000, 5))
	store := &memStore{}

	m := New(fetcher, testChain(), store, stubScorer{}, &recordingNotifier{}, []string{"P2"}, 0)

	decision, err := m.ProcessPair(context.Background(), "P2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Accepted {
		t.Fatalf("expected accept, got reject(%s)", decision.Reason)
	}

	row, ok := store.rows["P2"]
	if !ok {
		t.Fatal("accepted snapshot not stored")
	}
	if row.Volume24h != 60_000 {
		t.Errorf("stored volume = %v, want 60000", row.Volume24h)
	}
}

func TestProcessPairFakeVolumeKeepsPriorRow(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(rawPair("P2", "Y", "D2", 20_000, 60_000, 5))
	store := &memStore{}

	m := New(fetcher, testChain(), store, stubScorer{}, &recordingNotifier{}, []string{"P2"}, 0)

	if _, err := m.ProcessPair(context.Background(), "P2"); err != nil {
		t.Fatalf("first pass: %v", err)
	}

	// Next observation has a 20x volume/liquidity ratio.
	fetcher.set(rawPair("P2", "Y", "D2", 20_000, 400_000, 5))

	decision, err := m.ProcessPair(context.Background(), "P2")
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if decision.Accepted || decision.Reason != filter.ReasonFakeVolume {
		t.Fatalf("expected reject(%s), got %+v", filter.ReasonFakeVolume, decision)
	}

	// The prior accepted row stays; rejection is not retroactive removal.
	row, ok := store.rows["P2"]
	if !ok {
		t.Fatal("prior row was removed")
	}
	if row.Volume24h != 60_000 {
		t.Errorf("stored volume = %v, want the original 60000", row.Volume24h)
	}
}

func TestProcessPairMalformedRecord(t *testing.T) {
	raw := rawPair("P3", "Z", "D3", 20_000, 60_000, 5)
	raw.Liquidity = nil
	fetcher := &fakeFetcher{}
	fetcher.set(raw)

	m := New(fetcher, testChain(), &memStore{}, stubScorer{}, &recordingNotifier{}, []string{"P3"}, 0)

	_, err := m.ProcessPair(context.Background(), "P3")
	if !errors.Is(err, models.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestRunCycleNotifiesSkipsAndAnomalies(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(rawPair("P1", "X", "D1", 5_000, 60_000, 5))  // rejected
	fetcher.set(rawPair("P2", "Y", "D2", 20_000, 60_000, 5)) // accepted
	fetcher.errs = map[string]error{"P4": errors.New("boom")}

	store := &memStore{}
	notifier := &recordingNotifier{}
	scorer := stubScorer{records: []models.AnomalyRecord{
		{Snapshot: models.Snapshot{PairAddress: "P2"}, AnomalyScore: 5.4},
	}}

	m := New(fetcher, testChain(), store, scorer, notifier, []string{"P1", "P4", "P2"}, 0)
	m.RunCycle(context.Background())

	// A failing pair must not stop the rest of the cycle.
	if _, ok := store.rows["P2"]; !ok {
		t.Error("P2 should have been processed despite P4 failing")
	}

	if reason := notifier.skips["P1"]; reason != filter.ReasonLowLiquidity {
		t.Errorf("P1 skip reason = %q, want %q", reason, filter.ReasonLowLiquidity)
	}
	if _, ok := notifier.skips["P4"]; ok {
		t.Error("a fetch failure is not a filter decision, no skip expected")
	}

	if len(notifier.anomalies) != 1 {
		t.Fatalf("expected one anomaly notification, got %d", len(notifier.anomalies))
	}
	if notifier.anomalies[0][0].Snapshot.PairAddress != "P2" {
		t.Errorf("anomaly pair = %q, want P2", notifier.anomalies[0][0].Snapshot.PairAddress)
	}
}

func TestRunCycleInsufficientDataIsNotAnError(t *testing.T) {
	fetcher := &fakeFetcher{}
	notifier := &recordingNotifier{}

	m := New(fetcher, testChain(), &memStore{}, stubScorer{err: models.ErrInsufficientData}, notifier, nil, 0)
	m.RunCycle(context.Background())

	if len(notifier.anomalies) != 0 {
		t.Errorf("no anomaly notification expected, got %d", len(notifier.anomalies))
	}
}

func TestWatchUnwatch(t *testing.T) {
	m := New(&fakeFetcher{}, testChain(), &memStore{}, stubScorer{}, &recordingNotifier{}, []string{"A"}, 0)

	m.Watch("B")
	m.Watch("B") // duplicate ignored
	m.Watch("")  // empty ignored

	pairs := m.Pairs()
	if len(pairs) != 2 || pairs[0] != "A" || pairs[1] != "B" {
		t.Fatalf("pairs = %v, want [A B]", pairs)
	}

	m.Unwatch("A")
	pairs = m.Pairs()
	if len(pairs) != 1 || pairs[0] != "B" {
		t.Fatalf("pairs = %v, want [B]", pairs)
	}
}
