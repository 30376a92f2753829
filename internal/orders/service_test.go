package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox/payloads"
)

type stubOrdersRepo struct {
	order         *models.Order
	findErr       error
	updatedStatus enums.OrderStatus
	updateErr     error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s.order
	return &clone, nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, at time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedStatus = status
	s.order.Status = status
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubStats struct {
	refreshed []uuid.UUID
	err       error
}

func (s *stubStats) RefreshSupplier(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, at time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.refreshed = append(s.refreshed, supplierID)
	return nil
}

type stubInvalidator struct {
	calls int
}

func (s *stubInvalidator) InvalidateCache(ctx context.Context) error {
	s.calls++
	return nil
}

type harness struct {
	repo   *stubOrdersRepo
	outbox *stubOutbox
	stats  *stubStats
	cache  *stubInvalidator
	svc    Service
}

func newHarness(t *testing.T, order *models.Order) *harness {
	t.Helper()
	h := &harness{
		repo:   &stubOrdersRepo{order: order},
		outbox: &stubOutbox{},
		stats:  &stubStats{},
		cache:  &stubInvalidator{},
	}
	svc, err := NewService(h.repo, stubTxRunner{}, h.stats, h.outbox, h.cache, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h.svc = svc
	return h
}

func TestRecordStatusChangeDelivered(t *testing.T) {
	supplierID := uuid.New()
	order := &models.Order{ID: uuid.New(), SupplierID: &supplierID, Status: enums.OrderStatusShipped}
	h := newHarness(t, order)

	change, err := h.svc.RecordStatusChange(context.Background(), StatusChangeInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusDelivered,
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.Changed || change.From != enums.OrderStatusShipped || change.To != enums.OrderStatusDelivered {
		t.Fatalf("unexpected change %+v", change)
	}
	if h.repo.updatedStatus != enums.OrderStatusDelivered {
		t.Fatalf("expected status update, got %q", h.repo.updatedStatus)
	}
	if len(h.stats.refreshed) != 1 || h.stats.refreshed[0] != supplierID {
		t.Fatalf("expected stats refresh for supplier, got %v", h.stats.refreshed)
	}
	if h.cache.calls != 1 {
		t.Fatalf("expected supplier cache invalidation, got %d", h.cache.calls)
	}
	if len(h.outbox.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(h.outbox.events))
	}
	event := h.outbox.events[0]
	if event.EventType != enums.EventOrderStatusChanged || event.AggregateID != order.ID {
		t.Fatalf("unexpected event %+v", event)
	}
	payload, ok := event.Data.(payloads.OrderStatusChangedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.From != enums.OrderStatusShipped || payload.To != enums.OrderStatusDelivered {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if event.Actor == nil {
		t.Fatal("expected actor on event")
	}
}

func TestRecordStatusChangeIdempotent(t *testing.T) {
	supplierID := uuid.New()
	order := &models.Order{ID: uuid.New(), SupplierID: &supplierID, Status: enums.OrderStatusShipped}
	h := newHarness(t, order)

	change, err := h.svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: order.ID, Status: enums.OrderStatusShipped})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Changed {
		t.Fatal("expected no change")
	}
	if h.repo.updatedStatus != "" || len(h.outbox.events) != 0 || len(h.stats.refreshed) != 0 || h.cache.calls != 0 {
		t.Fatal("expected no side effects")
	}
}

func TestRecordStatusChangeTerminalState(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusCancelled}
	h := newHarness(t, order)

	_, err := h.svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: order.ID, Status: enums.OrderStatusShipped})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if h.repo.updatedStatus != "" {
		t.Fatal("expected no update")
	}
}

func TestRecordStatusChangeWithoutSupplierSkipsStats(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	h := newHarness(t, order)

	change, err := h.svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: order.ID, Status: enums.OrderStatusConfirmed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !change.Changed {
		t.Fatal("expected change")
	}
	if len(h.stats.refreshed) != 0 || h.cache.calls != 0 {
		t.Fatal("expected no stats work for unattributed order")
	}
}

func TestRecordStatusChangeValidation(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.svc.RecordStatusChange(context.Background(), StatusChangeInput{Status: enums.OrderStatusShipped})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = h.svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: uuid.New(), Status: "lost"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = h.svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: uuid.New(), Status: enums.OrderStatusShipped})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordStatusChangeStatsFailureRollsBack(t *testing.T) {
	supplierID := uuid.New()
	order := &models.Order{ID: uuid.New(), SupplierID: &supplierID, Status: enums.OrderStatusShipped}
	h := newHarness(t, order)
	h.stats.err = errors.New("deadlock detected")

	_, err := h.svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: order.ID, Status: enums.OrderStatusDelivered})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(h.outbox.events) != 0 || h.cache.calls != 0 {
		t.Fatal("expected no event or invalidation after failure")
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, stubTxRunner{}, &stubStats{}, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing repo")
	}
	if _, err := NewService(&stubOrdersRepo{}, nil, &stubStats{}, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing tx runner")
	}
	if _, err := NewService(&stubOrdersRepo{}, stubTxRunner{}, nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing stats maintainer")
	}
}
