// Package prices resolves current USD prices for token mints.
//
// Lookup order is override map, then a short-TTL cache, then a live
// DexScreener fetch. When none of those produce a price the caller is
// expected to fall back to Sim, which is deterministic and safe for
// offline use. Sim results are never written into the cache so they
// cannot be mistaken for market data.
package prices

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Source tags returned by Lookup.
const (
	TagOverride = "override"
	TagCache    = "dex(cache)"
	TagDex      = "dex"
	TagSim      = "sim"
)

const (
	defaultTTL = 5 * time.Second
	minTTL     = 1 * time.Second
	maxTTL     = 3600 * time.Second
)

// Quoter fetches a live quote for a mint. Implemented by the
// DexScreener client; swapped out in tests.
type Quoter interface {
	Quote(mint string) (price float64, err error)
}

type cacheEntry struct {
	price float64
	at    time.Time
}

// Source resolves prices with override, cache and live-fetch layers.
type Source struct {
	mu        sync.Mutex
	overrides map[string]float64
	cache     map[string]cacheEntry
	ttl       time.Duration
	live      bool
	quoter    Quoter
	log       zerolog.Logger
}

// NewSource creates a price source backed by the given quoter. Live
// fetching starts enabled.
func NewSource(quoter Quoter, log zerolog.Logger) *Source {
	return &Source{
		overrides: make(map[string]float64),
		cache:     make(map[string]cacheEntry),
		ttl:       defaultTTL,
		live:      true,
		quoter:    quoter,
		log:       log.With().Str("component", "prices").Logger(),
	}
}

// Lookup resolves a price for mint. ok is false when no override,
// cache entry or live quote is available; network failures are
// swallowed and reported the same way.
func (s *Source) Lookup(mint string) (price float64, source string, ok bool) {
	key := normalize(mint)

	s.mu.Lock()
	if p, found := s.overrides[key]; found {
		s.mu.Unlock()
		return p, TagOverride, true
	}
	if e, found := s.cache[key]; found && time.Since(e.at) < s.ttl {
		s.mu.Unlock()
		return e.price, TagCache, true
	}
	live := s.live
	s.mu.Unlock()

	if !live || s.quoter == nil {
		return 0, "", false
	}

	// Network call happens outside the lock.
	p, err := s.quoter.Quote(mint)
	if err != nil {
		s.log.Debug().Err(err).Str("mint", mint).Msg("live quote unavailable")
		return 0, "", false
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{price: p, at: time.Now()}
	s.mu.Unlock()
	return p, TagDex, true
}

// SetOverride pins a manual price for mint.
func (s *Source) SetOverride(mint string, price float64) {
	s.mu.Lock()
	s.overrides[normalize(mint)] = price
	s.mu.Unlock()
	s.log.Info().Str("mint", mint).Float64("price", price).Msg("price override set")
}

// ClearOverride removes a manual price. Returns whether one existed.
func (s *Source) ClearOverride(mint string) bool {
	key := normalize(mint)
	s.mu.Lock()
	_, found := s.overrides[key]
	delete(s.overrides, key)
	s.mu.Unlock()
	return found
}

// SetTTL sets the cache TTL in seconds, clamped to [1, 3600]. Returns
// the applied value.
func (s *Source) SetTTL(seconds int) int {
	if seconds < int(minTTL/time.Second) {
		seconds = int(minTTL / time.Second)
	}
	if seconds > int(maxTTL/time.Second) {
		seconds = int(maxTTL / time.Second)
	}
	s.mu.Lock()
	s.ttl = time.Duration(seconds) * time.Second
	s.mu.Unlock()
	return seconds
}

// SetLive toggles live quote fetching.
func (s *Source) SetLive(enabled bool) {
	s.mu.Lock()
	s.live = enabled
	s.mu.Unlock()
	s.log.Info().Bool("live", enabled).Msg("live price fetching toggled")
}

// ClearCache drops all cached quotes and returns how many were held.
func (s *Source) ClearCache() int {
	s.mu.Lock()
	n := len(s.cache)
	s.cache = make(map[string]cacheEntry)
	s.mu.Unlock()
	return n
}

// Config describes the current price-source settings.
type Config struct {
	TTLSeconds int
	Live       bool
	Overrides  int
	Cached     int
}

// Config reports the current settings for the admin surface.
func (s *Source) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Config{
		TTLSeconds: int(s.ttl / time.Second),
		Live:       s.live,
		Overrides:  len(s.overrides),
		Cached:     len(s.cache),
	}
}

// Mint keys are compared case-insensitively throughout the price
// layer, matching the rule store.
func normalize(mint string) string {
	return strings.ToLower(strings.TrimSpace(mint))
}
