package assignments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/internal/matching"
	"github.com/angelmondragon/garmentz-backend/internal/quotes"
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
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Recorder receives assignment metrics.
type Recorder interface {
	IncAssignment(mode, outcome string)
	ObserveScore(mode string, score int)
	SetPoolSize(size int)
}

// Service writes supplier assignments onto quotes.
type Service interface {
	Assign(ctx context.Context, input AssignInput) (*Result, error)
	QuickAssign(ctx context.Context, input QuickAssignInput) (*Result, error)
	AutoAssign(ctx context.Context, input AutoAssignInput) (*BatchResult, error)
}

// Deps groups the collaborators of the assignment service. Outbox, Metrics,
// Logger and Clock are optional.
type Deps struct {
	Repo      Repository
	Tx        txRunner
	Quotes    quotes.Service
	Suppliers suppliers.Service
	Outbox    outboxPublisher
	Metrics   Recorder
	Logger    *logger.Logger
	Clock     func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	quotes    quotes.Service
	suppliers suppliers.Service
	outbox    outboxPublisher
	metrics   Recorder
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the assignment writer.
func NewService(deps Deps) (Service, error) {
	if deps.Repo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Quotes == nil {
		return nil, fmt.Errorf("quotes service required")
	}
	if deps.Suppliers == nil {
		return nil, fmt.Errorf("suppliers service required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:      deps.Repo,
		tx:        deps.Tx,
		quotes:    deps.Quotes,
		suppliers: deps.Suppliers,
		outbox:    deps.Outbox,
		metrics:   deps.Metrics,
		logg:      deps.Logger,
		now:       clock,
	}, nil
}

type actor struct {
	id   uuid.UUID
	role string
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*Result, error) {
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	mode := input.Mode
	if mode == "" {
		mode = enums.AssignmentModeManual
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment mode")
	}

	var (
		quote    *quotes.QuoteView
		supplier *suppliers.SupplierView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.quotes.Get(gctx, input.QuoteID)
		return err
	})
	g.Go(func() error {
		var err error
		supplier, err = s.suppliers.GetEligible(gctx, input.SupplierID)
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "supplier is not eligible for assignment").
				WithDetails(map[string]any{"supplier_id": input.SupplierID})
		}
		return err
	})
	if err := g.Wait(); err != nil {
		s.recordFailure(mode, err)
		return nil, err
	}
	if quote.IsAssigned() {
		s.recordOutcome(mode, OutcomeConflict)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "quote already assigned")
	}

	match := matching.Score(*quote, *supplier)
	result, err := s.commit(ctx, actor{id: input.ActorID, role: input.ActorRole}, mode, *quote, match)
	if err != nil {
		s.recordFailure(mode, err)
		return nil, err
	}
	s.recordSuccess(mode, match.Score)
	s.invalidate(ctx)
	return result, nil
}

func (s *service) QuickAssign(ctx context.Context, input QuickAssignInput) (*Result, error) {
	mode := enums.AssignmentModeQuick
	if input.QuoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id required")
	}

	var (
		quote *quotes.QuoteView
		pool  []suppliers.SupplierView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, err = s.quotes.Get(gctx, input.QuoteID)
		return err
	})
	g.Go(func() error {
		var err error
		pool, err = s.suppliers.ListEligible(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.recordFailure(mode, err)
		return nil, err
	}
	if quote.IsAssigned() {
		s.recordOutcome(mode, OutcomeConflict)
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "quote already assigned")
	}

	s.setPoolSize(len(pool))
	best, err := matching.Best(*quote, pool)
	if errors.Is(err, matching.ErrNoCandidates) {
		s.recordOutcome(mode, OutcomeNoCandidates)
		return nil, pkgerrors.Wrap(pkgerrors.CodeNoCandidates, err, "no suitable suppliers found").
			WithDetails(map[string]any{"quote_id": input.QuoteID})
	}

	result, err := s.commit(ctx, actor{id: input.ActorID, role: input.ActorRole}, mode, *quote, best)
	if err != nil {
		s.recordFailure(mode, err)
		return nil, err
	}
	s.recordSuccess(mode, best.Score)
	s.invalidate(ctx)
	return result, nil
}

func (s *service) AutoAssign(ctx context.Context, input AutoAssignInput) (*BatchResult, error) {
	mode := enums.AssignmentModeAuto

	var (
		demand []quotes.QuoteView
		pool   []suppliers.SupplierView
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		demand, err = s.quotes.ListUnassigned(gctx, quotes.ListParams{Urgency: input.Urgency})
		return err
	})
	g.Go(func() error {
		var err error
		pool, err = s.suppliers.ListEligible(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	demand = Prioritize(demand)
	if input.Limit > 0 && len(demand) > input.Limit {
		demand = demand[:input.Limit]
	}
	s.setPoolSize(len(pool))

	who := actor{id: input.ActorID, role: input.ActorRole}
	result := &BatchResult{
		DryRun:   input.DryRun,
		Outcomes: make([]Outcome, 0, len(demand)),
		Counts:   make(map[OutcomeStatus]int),
	}
	assigned := 0
	for _, allocation := range matching.Plan(demand, pool) {
		outcome := Outcome{QuoteID: allocation.Quote.ID, Urgency: allocation.Quote.Urgency}
		switch {
		case allocation.Match == nil:
			outcome.Status = OutcomeNoCandidates
		case input.DryRun:
			outcome.Status = OutcomePlanned
			outcome.SupplierID = &allocation.Match.Supplier.ID
			outcome.Score = &allocation.Match.Score
		default:
			outcome.SupplierID = &allocation.Match.Supplier.ID
			outcome.Score = &allocation.Match.Score
			_, err := s.commit(ctx, who, mode, allocation.Quote, *allocation.Match)
			switch {
			case err == nil:
				outcome.Status = OutcomeAssigned
				assigned++
				s.observeScore(mode, allocation.Match.Score)
			case pkgerrors.HasCode(err, pkgerrors.CodeConflict), pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
				outcome.Status = OutcomeConflict
				outcome.Error = err.Error()
			default:
				outcome.Status = OutcomeFailed
				outcome.Error = err.Error()
			}
		}
		if !input.DryRun {
			s.recordOutcome(mode, outcome.Status)
		}
		result.Counts[outcome.Status]++
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if assigned > 0 {
		s.invalidate(ctx)
	}
	return result, nil
}

// Prioritize orders quotes for a batch pass: most urgent first, then the
// longest waiting. The input slice is not modified.
func Prioritize(demand []quotes.QuoteView) []quotes.QuoteView {
	ordered := make([]quotes.QuoteView, len(demand))
	copy(ordered, demand)
	sort.SliceStable(ordered, func(i, j int) bool {
		wi, wj := ordered[i].Urgency.Weight(), ordered[j].Urgency.Weight()
		if wi != wj {
			return wi > wj
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}

// commit runs the guarded update and queues the outbox event in one transaction.
func (s *service) commit(ctx context.Context, who actor, mode enums.AssignmentMode, quote quotes.QuoteView, match matching.Match) (*Result, error) {
	now := s.now().UTC()
	supplierID := match.Supplier.ID
	score := match.Score

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.AssignIfUnassigned(ctx, quote.ID, supplierID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign quote")
		}
		if !ok {
			if _, err := repo.FindQuote(ctx, quote.ID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload quote")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "quote already assigned")
		}
		if s.outbox == nil {
			return nil
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteAssigned,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			OccurredAt:    now,
			Data: payloads.QuoteAssignedEvent{
				QuoteID:     quote.ID,
				SupplierID:  supplierID,
				BuyerID:     quote.Buyer.ID,
				ProductType: quote.ProductType,
				Quantity:    quote.Quantity,
				Mode:        mode,
				Score:       &score,
				AssignedAt:  now,
			},
		}
		if who.id != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: who.id, Role: who.role}
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue assignment event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithQuoteID(ctx, quote.ID.String())
		logCtx = s.logg.WithSupplierID(logCtx, supplierID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"mode": string(mode), "score": score})
		s.logg.Info(logCtx, "quote assigned")
	}

	picked := match
	return &Result{
		QuoteID:    quote.ID,
		SupplierID: supplierID,
		Mode:       mode,
		Score:      &score,
		AssignedAt: now,
		Match:      &picked,
	}, nil
}

// invalidate drops both loader read models. The write already committed, so
// failures are only logged.
func (s *service) invalidate(ctx context.Context) {
	err := multierr.Combine(
		s.quotes.InvalidateCache(ctx),
		s.suppliers.InvalidateCache(ctx),
	)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cache invalidation failed")
	}
}

func (s *service) recordSuccess(mode enums.AssignmentMode, score int) {
	s.recordOutcome(mode, OutcomeAssigned)
	s.observeScore(mode, score)
}

func (s *service) recordFailure(mode enums.AssignmentMode, err error) {
	status := OutcomeFailed
	if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		status = OutcomeConflict
	}
	s.recordOutcome(mode, status)
}

func (s *service) recordOutcome(mode enums.AssignmentMode, status OutcomeStatus) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncAssignment(string(mode), string(status))
}

func (s *service) observeScore(mode enums.AssignmentMode, score int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveScore(string(mode), score)
}

func (s *service) setPoolSize(size int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SetPoolSize(size)
}
