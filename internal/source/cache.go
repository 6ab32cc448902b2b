// Package source provides draw-source plumbing shared by the storage
// backends: an invalidatable snapshot cache and content fingerprinting.
package source

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"megasena-analyzer/models"
)

// snapshot is one immutable cache generation: the draws as loaded plus the
// fingerprint they were loaded under.
type snapshot struct {
	fingerprint string
	draws       []models.Draw
}

// Cached wraps a DrawSource and memoizes its draw list keyed by the source's
// content fingerprint. The snapshot is swapped as a whole reference, never
// mutated in place, so concurrent readers always see either the old or the
// new generation. A single-flight mutex keeps concurrent misses from loading
// the underlying source more than once.
type Cached struct {
	inner  models.DrawSource
	cache  atomic.Value // *snapshot
	reload sync.Mutex
	logger zerolog.Logger
}

// NewCached wraps a DrawSource with fingerprint-keyed caching.
func NewCached(inner models.DrawSource) *Cached {
	return &Cached{
		inner:  inner,
		logger: log.With().Str("component", "draw_cache").Logger(),
	}
}

// Load returns the cached draw list when the source fingerprint is unchanged,
// reloading from the inner source otherwise.
func (c *Cached) Load() ([]models.Draw, error) {
	fp, err := c.inner.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("fingerprint draw source: %w", err)
	}

	if snap, ok := c.cache.Load().(*snapshot); ok && snap.fingerprint == fp {
		return snap.draws, nil
	}

	c.reload.Lock()
	defer c.reload.Unlock()

	// another caller may have reloaded while we waited
	if snap, ok := c.cache.Load().(*snapshot); ok && snap.fingerprint == fp {
		return snap.draws, nil
	}

	draws, err := c.inner.Load()
	if err != nil {
		return nil, fmt.Errorf("load draw source: %w", err)
	}
	c.cache.Store(&snapshot{fingerprint: fp, draws: draws})
	c.logger.Debug().Str("fingerprint", fp).Int("draws", len(draws)).Msg("Draw cache refreshed")
	return draws, nil
}

// Fingerprint delegates to the inner source.
func (c *Cached) Fingerprint() (string, error) {
	return c.inner.Fingerprint()
}

// Invalidate drops the cached snapshot regardless of fingerprint, forcing the
// next Load to hit the inner source.
func (c *Cached) Invalidate() {
	c.cache.Store(&snapshot{})
}
