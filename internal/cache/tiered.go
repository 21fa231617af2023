// Package cache implements the two-tier result cache: a bounded
// in-process LRU (L1) in front of a durable SQLite store (L2).
// Entries are immutable; TTL expiry, LRU eviction, and flush-on-write
// remove them, nothing mutates them in place.
package cache

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Config sizes the two tiers.
type Config struct {
	L1MaxEntries int           // bounded entry count, LRU eviction
	L1TTL        time.Duration // short TTL for the in-process tier
	L2Path       string        // SQLite file; empty disables the durable tier
	L2TTL        time.Duration // longer TTL for the durable tier
}

// DefaultConfig returns cache defaults suitable for a single process.
func DefaultConfig() Config {
	return Config{
		L1MaxEntries: 512,
		L1TTL:        5 * time.Minute,
		L2TTL:        time.Hour,
	}
}

// Stats is a point-in-time snapshot of cache counters.
// Counters are monotonic and never block the read or write path.
type Stats struct {
	L1Hits   uint64 `json:"l1_hits"`
	L1Misses uint64 `json:"l1_misses"`
	L2Hits   uint64 `json:"l2_hits"`
	L2Misses uint64 `json:"l2_misses"`
	Flushes  uint64 `json:"flushes"`
}

// TieredCache is the two-tier read-through cache for encoded query
// results. L1 reads of different keys proceed concurrently; flushes take
// exclusive access only for the duration of the mutation.
type TieredCache struct {
	l1 *expirable.LRU[string, []byte]
	l2 *l2Store

	l1Hits   atomic.Uint64
	l1Misses atomic.Uint64
	l2Hits   atomic.Uint64
	l2Misses atomic.Uint64
	flushes  atomic.Uint64
}

// New creates a TieredCache. If cfg.L2Path is empty the cache runs with
// the in-process tier only.
func New(cfg Config) (*TieredCache, error) {
	if cfg.L1MaxEntries <= 0 {
		cfg.L1MaxEntries = DefaultConfig().L1MaxEntries
	}
	if cfg.L1TTL <= 0 {
		cfg.L1TTL = DefaultConfig().L1TTL
	}
	if cfg.L2TTL <= 0 {
		cfg.L2TTL = DefaultConfig().L2TTL
	}

	c := &TieredCache{
		l1: expirable.NewLRU[string, []byte](cfg.L1MaxEntries, nil, cfg.L1TTL),
	}

	if cfg.L2Path != "" {
		l2, err := openL2(cfg.L2Path, cfg.L2TTL)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		c.l2 = l2
	}

	return c, nil
}

// Get returns the cached payload for key, consulting L1 first and
// promoting L2 hits into L1. A failed or corrupt L2 read counts as a
// miss and is recovered locally, never propagated.
func (c *TieredCache) Get(key string) ([]byte, bool) {
	if payload, ok := c.l1.Get(key); ok {
		c.l1Hits.Add(1)
		return payload, true
	}
	c.l1Misses.Add(1)

	if c.l2 == nil {
		return nil, false
	}

	payload, ok, err := c.l2.get(key, time.Now())
	if err != nil {
		// Unreadable entries are treated as a miss; the caller recomputes.
		log.Printf("cache: L2 read failed, treating as miss: %v", err)
		c.l2Misses.Add(1)
		return nil, false
	}
	if !ok {
		c.l2Misses.Add(1)
		return nil, false
	}

	c.l2Hits.Add(1)
	c.l1.Add(key, payload) // promote on read
	return payload, true
}

// Set writes the payload through to both tiers.
func (c *TieredCache) Set(key string, payload []byte) {
	c.l1.Add(key, payload)
	if c.l2 != nil {
		if err := c.l2.set(key, payload, time.Now()); err != nil {
			log.Printf("cache: L2 write failed: %v", err)
		}
	}
}

// Delete removes key from both tiers. Used when a caller finds a cached
// payload undecodable.
func (c *TieredCache) Delete(key string) {
	c.l1.Remove(key)
	if c.l2 != nil {
		if err := c.l2.delete(key); err != nil {
			log.Printf("cache: L2 delete failed: %v", err)
		}
	}
}

// Flush removes every entry from both tiers. Called on any skill write;
// full flush is the correctness floor since any entry's result set could
// include the written skill.
func (c *TieredCache) Flush() {
	c.flushes.Add(1)
	c.l1.Purge()
	if c.l2 != nil {
		if err := c.l2.flush(); err != nil {
			log.Printf("cache: L2 flush failed: %v", err)
		}
	}
}

// Stats returns a snapshot of hit/miss counters per tier.
func (c *TieredCache) Stats() Stats {
	return Stats{
		L1Hits:   c.l1Hits.Load(),
		L1Misses: c.l1Misses.Load(),
		L2Hits:   c.l2Hits.Load(),
		L2Misses: c.l2Misses.Load(),
		Flushes:  c.flushes.Load(),
	}
}

// Len returns the entry counts of each tier.
func (c *TieredCache) Len() (l1 int, l2 int) {
	l1 = c.l1.Len()
	if c.l2 != nil {
		n, err := c.l2.len()
		if err == nil {
			l2 = n
		}
	}
	return l1, l2
}

// Close releases the durable tier.
func (c *TieredCache) Close() error {
	if c.l2 != nil {
		return c.l2.close()
	}
	return nil
}
