package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Fake-volume check strategies. Exactly one is active: the local
// volume/liquidity ratio heuristic, or the Pocket Universe verdict API.
const (
	FakeVolumeModeLocal          = "local"
	FakeVolumeModePocketUniverse = "pocket_universe"
)

// FilterThresholds are the numeric admission gates.
type FilterThresholds struct {
	MinLiquidity      float64 `json:"min_liquidity"`
	MaxPriceChange24h float64 `json:"max_price_change_24h"`
	MinVolume         float64 `json:"min_volume"`
}

// Blacklist holds denied token names and creator addresses. The filter
// chain appends to these on negative external verdicts, so the file is
// written back on shutdown.
type Blacklist struct {
	Coins []string `json:"coins"`
	Devs  []string `json:"devs"`
}

// WatchConfig is the JSON watch configuration: which pairs to poll, how
// often, which optional checks are on, and the filter thresholds.
type WatchConfig struct {
	Pairs           []string `json:"pairs"`
	PollIntervalSec int      `json:"poll_interval_sec"`

	FakeVolumeMode             string `json:"fake_volume_mode"`
	EnableRugCheck             bool   `json:"enable_rug_check"`
	EnableSupplyCheck          bool   `json:"enable_supply_check"`
	RejectOnVerdictUnavailable bool   `json:"reject_on_verdict_unavailable"`

	Filters   FilterThresholds `json:"filters"`
	Blacklist Blacklist        `json:"blacklist"`
}

// LoadWatchConfig reads and validates the watch configuration file.
func LoadWatchConfig(path string) (*WatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading watch config: %w", err)
	}

	var wc WatchConfig
	if err := json.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("parsing watch config: %w", err)
	}

	// Defaults
	if wc.PollIntervalSec <= 0 {
		wc.PollIntervalSec = 300
	}
	if wc.FakeVolumeMode == "" {
		wc.FakeVolumeMode = FakeVolumeModeLocal
	}

	switch wc.FakeVolumeMode {
	case FakeVolumeModeLocal, FakeVolumeModePocketUniverse:
	default:
		return nil, fmt.Errorf("unknown fake_volume_mode %q", wc.FakeVolumeMode)
	}

	return &wc, nil
}

// Save writes the watch configuration back to disk, preserving blacklist
// entries appended at runtime.
func (wc *WatchConfig) Save(path string) error {
	data, err := json.MarshalIndent(wc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding watch config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing watch config: %w", err)
	}

	return nil
}
