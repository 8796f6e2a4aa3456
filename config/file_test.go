package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := `{
		"pairs": ["PAIR1", "PAIR2"],
		"fake_volume_mode": "pocket_universe",
		"enable_rug_check": true,
		"reject_on_verdict_unavailable": true,
		"filters": {
			"min_liquidity": 10000,
			"max_price_change_24h": 50,
			"min_volume": 1000
		},
		"blacklist": {
			"coins": ["SCAM"],
			"devs": []
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	wc, err := LoadWatchConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wc.Pairs) != 2 {
		t.Errorf("pairs = %v", wc.Pairs)
	}
	if wc.PollIntervalSec != 300 {
		t.Errorf("default poll interval = %d, want 300", wc.PollIntervalSec)
	}
	if wc.FakeVolumeMode != FakeVolumeModePocketUniverse {
		t.Errorf("fake volume mode = %q", wc.FakeVolumeMode)
	}
	if wc.Filters.MinLiquidity != 10000 {
		t.Errorf("min liquidity = %v", wc.Filters.MinLiquidity)
	}
	if len(wc.Blacklist.Coins) != 1 || wc.Blacklist.Coins[0] != "SCAM" {
		t.Errorf("blacklist coins = %v", wc.Blacklist.Coins)
	}
}

func TestLoadWatchConfigDefaultsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"pairs": ["P"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	wc, err := LoadWatchConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wc.FakeVolumeMode != FakeVolumeModeLocal {
		t.Errorf("default mode = %q, want %q", wc.FakeVolumeMode, FakeVolumeModeLocal)
	}
}

func TestLoadWatchConfigRejectsUnknownMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"fake_volume_mode": "both"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWatchConfig(path); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestWatchConfigSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	wc := &WatchConfig{
		Pairs:           []string{"PAIR1"},
		PollIntervalSec: 60,
		FakeVolumeMode:  FakeVolumeModeLocal,
		Filters: FilterThresholds{
			MinLiquidity: 5000,
		},
		Blacklist: Blacklist{
			Coins: []string{"SCAM", "RUG"},
			Devs:  []string{"DEV666"},
		},
	}

	if err := wc.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadWatchConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Blacklist.Coins) != 2 || len(loaded.Blacklist.Devs) != 1 {
		t.Errorf("blacklist did not survive round trip: %+v", loaded.Blacklist)
	}
	if loaded.PollIntervalSec != 60 {
		t.Errorf("poll interval = %d, want 60", loaded.PollIntervalSec)
	}
}
