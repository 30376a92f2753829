package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/readcache"
)

// Service exposes the unassigned quote pool to the admin surface.
type Service interface {
	ListUnassigned(ctx context.Context, params ListParams) ([]QuoteView, error)
	Get(ctx context.Context, id uuid.UUID) (*QuoteView, error)
	InvalidateCache(ctx context.Context) error
}

type service struct {
	repo  Repository
	cache *readcache.Cache
	now   func() time.Time
}

// NewService wires the demand loader. A nil cache reads straight from the store
// and a nil clock uses time.Now.
func NewService(repo Repository, cache *readcache.Cache, clock func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: repo, cache: cache, now: clock}, nil
}

// CacheKey returns the read-model key holding the unassigned pool.
func CacheKey(cache *readcache.Cache) string {
	return cache.Key("quotes", "unassigned")
}

func (s *service) ListUnassigned(ctx context.Context, params ListParams) ([]QuoteView, error) {
	records, err := readcache.Fetch(ctx, s.cache, CacheKey(s.cache), s.repo.ListUnassigned)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unassigned quotes")
	}

	now := s.now()
	search := strings.ToLower(strings.TrimSpace(params.Search))
	views := make([]QuoteView, 0, len(records))
	for _, record := range records {
		view := buildView(record, now)
		if !params.Urgency.Matches(view.Urgency) {
			continue
		}
		if search != "" && !view.matchesSearch(search) {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*QuoteView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	view := buildView(*record, s.now())
	return &view, nil
}

func (s *service) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, CacheKey(s.cache))
}

func buildView(record QuoteRecord, now time.Time) QuoteView {
	age := AgeDays(record.CreatedAt, now)
	urgency := ClassifyUrgency(age, record.Quantity)
	return QuoteView{
		ID: record.ID,
		Buyer: Buyer{
			ID:      record.BuyerID,
			Name:    deref(record.BuyerName),
			Email:   deref(record.BuyerEmail),
			Company: deref(record.BuyerCompany),
		},
		ProductType:    record.ProductType,
		Quantity:       record.Quantity,
		TargetPrice:    record.TargetPrice,
		Specifications: record.Specifications,
		Status:         record.Status,
		SupplierID:     record.SupplierID,
		AssignedAt:     record.AssignedAt,
		CreatedAt:      record.CreatedAt,
		AgeDays:        age,
		Urgency:        urgency,
		UrgencyBadge:   urgency.Badge(),
	}
}

func (q QuoteView) matchesSearch(needle string) bool {
	for _, haystack := range []string{q.Buyer.Name, q.Buyer.Company, q.Buyer.Email, q.ProductType} {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
