package daterange

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/payreg-engine/internal/pkg/clock"
)

// DefaultTTL is how long a cycle configuration read stays fresh.
const DefaultTTL = 30 * time.Second

// configCache is a single-value TTL cache with an injectable clock so expiry
// is testable without sleeping.
type configCache struct {
	mu        sync.Mutex
	value     CycleConfig
	populated bool
	expiresAt time.Time
	clk       clock.Clock
	ttl       time.Duration
}

func newConfigCache(clk clock.Clock, ttl time.Duration) *configCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &configCache{clk: clk, ttl: ttl}
}

func (c *configCache) get() (CycleConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.populated || c.clk.Now().After(c.expiresAt) {
		return CycleConfig{}, false
	}
	return c.value, true
}

func (c *configCache) put(cfg CycleConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = cfg
	c.populated = true
	c.expiresAt = c.clk.Now().Add(c.ttl)
}

func (c *configCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.populated = false
}
