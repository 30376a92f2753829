// Package app wires the matching services on top of shared infrastructure so
// every binary builds them the same way.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/internal/assignments"
	"github.com/angelmondragon/garmentz-backend/internal/orders"
	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/config"
	"github.com/angelmondragon/garmentz-backend/pkg/db"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
	"github.com/angelmondragon/garmentz-backend/pkg/metrics"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox"
	"github.com/angelmondragon/garmentz-backend/pkg/readcache"
)

type emitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Services is the set of domain services a binary can mount.
type Services struct {
	Quotes      quotes.Service
	Suppliers   suppliers.Service
	Assignments assignments.Service
	Orders      orders.Service
	Stats       suppliers.StatsRepository
	OutboxRepo  *outbox.Repository
}

// Params carries the infrastructure handles. Store may be nil to disable the
// read cache; Registerer may be nil to skip metrics.
type Params struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Store      readcache.Store
	Registerer prometheus.Registerer
}

// Build constructs the services.
func Build(p Params) (*Services, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if p.DB == nil {
		return nil, fmt.Errorf("db client required")
	}

	var cache *readcache.Cache
	if p.Store != nil {
		cache = readcache.New(p.Store, p.Config.Matching.CacheTTL, p.Logger)
	}

	quoteSvc, err := quotes.NewService(quotes.NewRepository(p.DB.DB()), cache, nil)
	if err != nil {
		return nil, fmt.Errorf("quotes service: %w", err)
	}

	source := suppliers.StatsFromScan
	if p.Config.Matching.UsesAggregate() {
		source = suppliers.StatsFromAggregate
	}
	supplierSvc, err := suppliers.NewService(suppliers.NewRepository(p.DB.DB()), cache, source)
	if err != nil {
		return nil, fmt.Errorf("suppliers service: %w", err)
	}

	outboxRepo := outbox.NewRepository()
	// left as a nil interface when disabled so services skip emission
	var publisher emitter
	if p.Config.Outbox.Enabled {
		publisher = outbox.NewService(outboxRepo, p.Logger)
	}

	deps := assignments.Deps{
		Repo:      assignments.NewRepository(p.DB.DB()),
		Tx:        p.DB,
		Quotes:    quoteSvc,
		Suppliers: supplierSvc,
		Outbox:    publisher,
		Metrics:   metrics.NewMatchingMetrics(p.Registerer),
		Logger:    p.Logger,
	}
	assignSvc, err := assignments.NewService(deps)
	if err != nil {
		return nil, fmt.Errorf("assignments service: %w", err)
	}

	stats := suppliers.NewStatsRepository(p.DB.DB())
	orderSvc, err := orders.NewService(orders.NewRepository(p.DB.DB()), p.DB, orders.StatsAdapter{Repo: stats}, publisher, supplierSvc, p.Logger)
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	return &Services{
		Quotes:      quoteSvc,
		Suppliers:   supplierSvc,
		Assignments: assignSvc,
		Orders:      orderSvc,
		Stats:       stats,
		OutboxRepo:  outboxRepo,
	}, nil
}
