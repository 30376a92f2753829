package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
	"gorm.io/gorm"
)

type SupplierStatsJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Stats     suppliers.StatsRepository
	Suppliers cacheInvalidator
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// NewSupplierStatsJob rebuilds supplier_order_stats from the order history so
// drift from missed incremental refreshes is corrected on every cycle.
func NewSupplierStatsJob(params SupplierStatsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	return &supplierStatsJob{
		logg:      params.Logger,
		db:        params.DB,
		stats:     params.Stats,
		suppliers: params.Suppliers,
		now:       time.Now,
	}, nil
}

type supplierStatsJob struct {
	logg      *logger.Logger
	db        txRunner
	stats     suppliers.StatsRepository
	suppliers cacheInvalidator
	now       func() time.Time
}

func (j *supplierStatsJob) Name() string { return "supplier-stats-refresh" }

func (j *supplierStatsJob) Run(ctx context.Context) error {
	at := j.now().UTC()
	var refreshed int
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.stats.WithTx(tx).RefreshAll(ctx, at)
		if err != nil {
			return err
		}
		refreshed = n
		return nil
	})
	if err != nil {
		return fmt.Errorf("supplier stats refresh: %w", err)
	}

	if j.suppliers != nil {
		if err := j.suppliers.InvalidateCache(ctx); err != nil {
			j.logg.Warn(j.logg.WithField(ctx, "error", err.Error()), "supplier cache invalidation failed")
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"refreshed_at":      at,
		"suppliers_counted": refreshed,
	})
	j.logg.Info(logCtx, "supplier stats refresh complete")
	return nil
}
