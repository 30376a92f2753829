package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service accepts order status notifications from the order workflow.
type Service interface {
	RecordStatusChange(ctx context.Context, input StatusChangeInput) (*StatusChange, error)
}

// StatusChangeInput is one status notification.
type StatusChangeInput struct {
	OrderID   uuid.UUID
	Status    enums.OrderStatus
	ActorID   uuid.UUID
	ActorRole string
}

// StatusChange reports what the notification did.
type StatusChange struct {
	OrderID    uuid.UUID         `json:"order_id"`
	SupplierID *uuid.UUID        `json:"supplier_id,omitempty"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
	Changed    bool              `json:"changed"`
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	stats     StatsMaintainer
	suppliers CacheInvalidator
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order status service. Outbox, invalidator and logger
// may be nil.
func NewService(repo Repository, tx txRunner, stats StatsMaintainer, publisher outboxPublisher, invalidator CacheInvalidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if stats == nil {
		return nil, fmt.Errorf("stats maintainer required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    publisher,
		stats:     stats,
		suppliers: invalidator,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) RecordStatusChange(ctx context.Context, input StatusChangeInput) (*StatusChange, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": string(input.Status)})
	}

	now := s.now().UTC()
	var change StatusChange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		change = StatusChange{OrderID: order.ID, SupplierID: order.SupplierID, From: order.Status, To: input.Status}
		if order.Status == input.Status {
			return nil
		}
		if isTerminal(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already reached a terminal status").
				WithDetails(map[string]any{"status": string(order.Status)})
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Status, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if order.SupplierID != nil {
			if err := s.stats.RefreshSupplier(ctx, tx, *order.SupplierID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh supplier stats")
			}
		}
		change.Changed = true

		if s.outbox == nil {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			OccurredAt:    now,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    order.ID,
				SupplierID: order.SupplierID,
				From:       order.Status,
				To:         input.Status,
			},
		}
		if input.ActorID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: input.ActorID, Role: input.ActorRole}
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	if change.Changed && change.SupplierID != nil && s.suppliers != nil {
		if err := s.suppliers.InvalidateCache(ctx); err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "supplier cache invalidation failed")
		}
	}
	return &change, nil
}

func isTerminal(status enums.OrderStatus) bool {
	return status == enums.OrderStatusDelivered || status == enums.OrderStatusCancelled
}

// StatsAdapter lets the suppliers aggregate repository run inside a caller's transaction.
type StatsAdapter struct {
	Repo suppliers.StatsRepository
}

func (a StatsAdapter) RefreshSupplier(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, at time.Time) error {
	return a.Repo.WithTx(tx).RefreshSupplier(ctx, supplierID, at)
}
