package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/readcache"
)

// Service exposes the eligible supplier pool with derived statistics.
type Service interface {
	ListEligible(ctx context.Context) ([]SupplierView, error)
	GetEligible(ctx context.Context, id uuid.UUID) (*SupplierView, error)
	InvalidateCache(ctx context.Context) error
}

type service struct {
	repo   Repository
	cache  *readcache.Cache
	source StatsSource
}

// NewService wires the supply loader. An empty source defaults to a full scan.
func NewService(repo Repository, cache *readcache.Cache, source StatsSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	switch source {
	case "":
		source = StatsFromScan
	case StatsFromScan, StatsFromAggregate:
	default:
		return nil, fmt.Errorf("unknown stats source %q", source)
	}
	return &service{repo: repo, cache: cache, source: source}, nil
}

// CacheKey returns the read-model key holding the eligible pool.
func CacheKey(cache *readcache.Cache) string {
	return cache.Key("suppliers", "eligible")
}

func (s *service) ListEligible(ctx context.Context) ([]SupplierView, error) {
	views, err := readcache.Fetch(ctx, s.cache, CacheKey(s.cache), s.loadEligible)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load eligible suppliers")
	}
	return views, nil
}

func (s *service) GetEligible(ctx context.Context, id uuid.UUID) (*SupplierView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	record, err := s.repo.FindEligible(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verified supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	stats, err := s.loadStats(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier stats")
	}
	view := buildView(*record, stats)
	return &view, nil
}

func (s *service) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, CacheKey(s.cache))
}

func (s *service) loadEligible(ctx context.Context) ([]SupplierView, error) {
	var (
		records []SupplierRecord
		stats   map[uuid.UUID]Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.repo.ListEligible(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.loadStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]SupplierView, 0, len(records))
	for _, record := range records {
		views = append(views, buildView(record, stats))
	}
	return views, nil
}

func (s *service) loadStats(ctx context.Context, supplierIDs ...uuid.UUID) (map[uuid.UUID]Stats, error) {
	if s.source == StatsFromAggregate {
		rows, err := s.repo.ListAggregates(ctx, supplierIDs...)
		if err != nil {
			return nil, err
		}
		out := make(map[uuid.UUID]Stats, len(rows))
		for _, row := range rows {
			out[row.SupplierID] = StatsFrom(row.TotalOrders, row.DeliveredOrders, row.OrderValue)
		}
		return out, nil
	}
	signals, err := s.repo.ListOrderSignals(ctx, supplierIDs...)
	if err != nil {
		return nil, err
	}
	return DeriveStats(signals), nil
}

func buildView(record SupplierRecord, stats map[uuid.UUID]Stats) SupplierView {
	derived, ok := stats[record.UserID]
	if !ok {
		derived = StatsFrom(0, 0, decimal.Zero)
	}
	specialization := []string(record.Specialization)
	if specialization == nil {
		specialization = []string{}
	}
	return SupplierView{
		ID:                   record.UserID,
		CompanyName:          record.CompanyName,
		ContactName:          record.ContactName,
		ContactEmail:         record.ContactEmail,
		Specialization:       specialization,
		Location:             record.Location,
		ProductionCapacity:   record.ProductionCapacity,
		Rating:               record.Rating,
		AverageResponseTime:  record.AverageResponseTime,
		PriceCompetitiveness: record.PriceCompetitiveness,
		Stats:                derived,
	}
}
