package filter

import (
	"sort"
	"sync"

	"github.com/Alias1177/dexwatch/config"
)

// Context is the process-lifetime filter state: numeric thresholds plus
// the two blacklist sets. The chain appends to the blacklists on negative
// external verdicts, and the command bot reads and edits them, so all
// access goes through the mutex.
type Context struct {
	mu sync.RWMutex

	minLiquidity      float64
	maxPriceChange24h float64
	minVolume         float64

	coins map[string]struct{}
	devs  map[string]struct{}
}

// NewContext builds a filter context from the watch configuration.
func NewContext(thresholds config.FilterThresholds, blacklist config.Blacklist) *Context {
	c := &Context{
		minLiquidity:      thresholds.MinLiquidity,
		maxPriceChange24h: thresholds.MaxPriceChange24h,
		minVolume:         thresholds.MinVolume,
		coins:             make(map[string]struct{}, len(blacklist.Coins)),
		devs:              make(map[string]struct{}, len(blacklist.Devs)),
	}
	for _, coin := range blacklist.Coins {
		c.coins[coin] = struct{}{}
	}
	for _, dev := range blacklist.Devs {
		c.devs[dev] = struct{}{}
	}
	return c
}

// Thresholds returns the numeric admission gates.
func (c *Context) Thresholds() config.FilterThresholds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return config.FilterThresholds{
		MinLiquidity:      c.minLiquidity,
		MaxPriceChange24h: c.maxPriceChange24h,
		MinVolume:         c.minVolume,
	}
}

// CoinBlacklisted reports whether a token name is denied.
func (c *Context) CoinBlacklisted(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.coins[name]
	return ok
}

// DevBlacklisted reports whether a creator address is denied.
func (c *Context) DevBlacklisted(address string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.devs[address]
	return ok
}

// BlacklistCoin adds a token name to the denylist.
func (c *Context) BlacklistCoin(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coins[name] = struct{}{}
}

// BlacklistDev adds a creator address to the denylist.
func (c *Context) BlacklistDev(address string) {
	if address == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devs[address] = struct{}{}
}

// Blacklist returns a sorted copy of both denylists, for display and for
// writing the watch config back to disk.
func (c *Context) Blacklist() config.Blacklist {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bl := config.Blacklist{
		Coins: make([]string, 0, len(c.coins)),
		Devs:  make([]string, 0, len(c.devs)),
	}
	for coin := range c.coins {
		bl.Coins = append(bl.Coins, coin)
	}
	for dev := range c.devs {
		bl.Devs = append(bl.Devs, dev)
	}
	sort.Strings(bl.Coins)
	sort.Strings(bl.Devs)
	return bl
}
