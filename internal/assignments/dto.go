package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/internal/matching"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// AssignInput carries a manual or automatic supplier pick for one quote.
type AssignInput struct {
	QuoteID    uuid.UUID
	SupplierID uuid.UUID
	ActorID    uuid.UUID
	ActorRole  string
	Mode       enums.AssignmentMode
}

// QuickAssignInput asks for the rank-1 supplier of one quote.
type QuickAssignInput struct {
	QuoteID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole string
}

// AutoAssignInput runs the batch planner over the unassigned pool.
type AutoAssignInput struct {
	Urgency   enums.UrgencyFilter
	Limit     int
	DryRun    bool
	ActorID   uuid.UUID
	ActorRole string
}

// Result describes a committed assignment.
type Result struct {
	QuoteID    uuid.UUID            `json:"quote_id"`
	SupplierID uuid.UUID            `json:"supplier_id"`
	Mode       enums.AssignmentMode `json:"mode"`
	Score      *int                 `json:"score,omitempty"`
	AssignedAt time.Time            `json:"assigned_at"`
	Match      *matching.Match      `json:"match,omitempty"`
}

// OutcomeStatus is the per-quote result of a batch run.
type OutcomeStatus string

const (
	OutcomeAssigned     OutcomeStatus = "assigned"
	OutcomePlanned      OutcomeStatus = "planned"
	OutcomeNoCandidates OutcomeStatus = "no_candidates"
	OutcomeConflict     OutcomeStatus = "conflict"
	OutcomeFailed       OutcomeStatus = "failed"
)

// Outcome is one quote's line in a batch result.
type Outcome struct {
	QuoteID    uuid.UUID     `json:"quote_id"`
	Urgency    enums.Urgency `json:"urgency"`
	Status     OutcomeStatus `json:"status"`
	SupplierID *uuid.UUID    `json:"supplier_id,omitempty"`
	Score      *int          `json:"score,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// BatchResult summarizes an auto-assign run.
type BatchResult struct {
	DryRun   bool                  `json:"dry_run"`
	Outcomes []Outcome             `json:"outcomes"`
	Counts   map[OutcomeStatus]int `json:"counts"`
}
