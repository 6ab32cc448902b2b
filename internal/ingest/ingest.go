// Package ingest keeps the local draw store synchronized with the upstream
// lottery API.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"megasena-analyzer/internal/api/loterias"
	"megasena-analyzer/models"
)

// Fetcher is the slice of the API client the updater needs.
type Fetcher interface {
	GetLatest(ctx context.Context) (models.Draw, error)
	GetDraw(ctx context.Context, sequence uint) (models.Draw, error)
}

var _ Fetcher = (*loterias.Client)(nil)

// Updater pulls missing contests from the API into the store.
type Updater struct {
	fetcher Fetcher
	store   models.DrawStore
	logger  zerolog.Logger
}

// NewUpdater creates an updater backed by the given fetcher and store.
func NewUpdater(fetcher Fetcher, store models.DrawStore) *Updater {
	return &Updater{
		fetcher: fetcher,
		store:   store,
		logger:  log.With().Str("component", "ingest").Logger(),
	}
}

// Result reports what a sync pass did.
type Result struct {
	Inserted int
	Skipped  int
	Latest   uint
}

// Sync walks every contest after the highest stored sequence up to the
// latest published one and inserts each into the store. Individual
// contests that fail to fetch are skipped so one bad upstream record
// does not stall the whole catch-up.
func (u *Updater) Sync(ctx context.Context) (Result, error) {
	latest, err := u.fetcher.GetLatest(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch latest contest: %w", err)
	}

	last, err := u.store.LastSequence()
	if err != nil {
		return Result{}, fmt.Errorf("read last stored sequence: %w", err)
	}

	result := Result{Latest: latest.Sequence}
	if last >= latest.Sequence {
		u.logger.Info().Uint("last", last).Msg("Store already up to date")
		return result, nil
	}

	u.logger.Info().
		Uint("from", last+1).
		Uint("to", latest.Sequence).
		Msg("Syncing contests")

	for seq := last + 1; seq <= latest.Sequence; seq++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		draw := latest
		if seq != latest.Sequence {
			draw, err = u.fetcher.GetDraw(ctx, seq)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return result, err
				}
				u.logger.Warn().Uint("contest", seq).Err(err).Msg("Skipping contest")
				result.Skipped++
				continue
			}
		}

		if err := u.store.InsertDraw(draw); err != nil {
			return result, fmt.Errorf("insert contest %d: %w", seq, err)
		}
		result.Inserted++
	}

	u.logger.Info().
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("Sync complete")
	return result, nil
}
