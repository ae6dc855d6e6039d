package assets

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/farmlog-app/farmlog-backend/pkg/db/models"
	"github.com/farmlog-app/farmlog-backend/pkg/logger"
	"github.com/farmlog-app/farmlog-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const sweepJobName = "asset-sweep"

// Sweeper removes files from the asset dir that no Farm or CropLog row
// references anymore. Files younger than the grace period are skipped so an
// upload racing its row insert is never collected.
type Sweeper struct {
	store *Store
	db    *gorm.DB
	logg  *logger.Logger
	sm    *metrics.SweepMetrics
	grace time.Duration
}

// NewSweeper wires a sweeper over the given store and database handle.
func NewSweeper(store *Store, db *gorm.DB, logg *logger.Logger, sm *metrics.SweepMetrics, grace time.Duration) *Sweeper {
	return &Sweeper{store: store, db: db, logg: logg, sm: sm, grace: grace}
}

// Run performs one sweep and returns how many files were removed.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	start := time.Now()
	removed, err := s.sweep(ctx)
	s.sm.ObserveDuration(sweepJobName, time.Since(start))
	s.sm.AddRemoved(sweepJobName, removed)
	if err != nil {
		s.sm.IncFailure(sweepJobName)
		return removed, err
	}
	s.sm.IncSuccess(sweepJobName)
	return removed, nil
}

func (s *Sweeper) sweep(ctx context.Context) (int, error) {
	referenced, err := s.referencedPaths(ctx)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(s.store.Dir())
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.grace)
	removed := 0
	var errs error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		rel := path.Join(s.store.prefix, entry.Name())
		if referenced[rel] {
			continue
		}
		if err := os.Remove(filepath.Join(s.store.Dir(), entry.Name())); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "asset", rel), "removed orphaned asset")
		}
	}
	return removed, errs
}

func (s *Sweeper) referencedPaths(ctx context.Context) (map[string]bool, error) {
	referenced := map[string]bool{}

	var farmImages []string
	if err := s.db.WithContext(ctx).
		Model(&models.Farm{}).
		Where("image IS NOT NULL").
		Pluck("image", &farmImages).Error; err != nil {
		return nil, err
	}
	var logImages []string
	if err := s.db.WithContext(ctx).
		Model(&models.CropLog{}).
		Where("image IS NOT NULL").
		Pluck("image", &logImages).Error; err != nil {
		return nil, err
	}

	for _, p := range farmImages {
		referenced[p] = true
	}
	for _, p := range logImages {
		referenced[p] = true
	}
	return referenced, nil
}
