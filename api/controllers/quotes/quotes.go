package quotes

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/api/middleware"
	"github.com/angelmondragon/garmentz-backend/api/responses"
	"github.com/angelmondragon/garmentz-backend/api/validators"
	"github.com/angelmondragon/garmentz-backend/internal/assignments"
	"github.com/angelmondragon/garmentz-backend/internal/matching"
	internalquotes "github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
)

const (
	maxSearchLen = 120
	maxMatches   = 50
	maxBatch     = 500
)

// MatchPreview is the rank-1 supplier shown next to each quote row.
type MatchPreview struct {
	SupplierID  uuid.UUID `json:"supplier_id"`
	CompanyName string    `json:"company_name"`
	Score       int       `json:"score"`
}

// QuoteRow is one line of the unassigned quotes table.
type QuoteRow struct {
	internalquotes.QuoteView
	TopMatch *MatchPreview `json:"top_match"`
}

// QuoteList is the unassigned quotes table payload.
type QuoteList struct {
	Quotes   []QuoteRow            `json:"quotes"`
	Total    int                   `json:"total"`
	Urgency  string                `json:"urgency"`
	Counts   map[enums.Urgency]int `json:"counts"`
	PoolSize int                   `json:"pool_size"`
}

// QuoteMatches is the detail view of one quote with its ranked candidates.
type QuoteMatches struct {
	Quote    internalquotes.QuoteView `json:"quote"`
	Matches  []matching.Match         `json:"matches"`
	PoolSize int                      `json:"pool_size"`
}

// List returns the unassigned quotes filtered by urgency and search text, each
// with a preview of its best supplier.
func List(quoteSvc internalquotes.Service, supplierSvc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if quoteSvc == nil || supplierSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "matching services unavailable"))
			return
		}

		filter, err := enums.ParseUrgencyFilter(r.URL.Query().Get("urgency"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency"))
			return
		}
		search := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLen)

		views, err := quoteSvc.ListUnassigned(r.Context(), internalquotes.ListParams{Urgency: filter, Search: search})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pool, err := supplierSvc.ListEligible(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list := QuoteList{
			Quotes:   make([]QuoteRow, 0, len(views)),
			Total:    len(views),
			Urgency:  filter.String(),
			Counts:   map[enums.Urgency]int{enums.UrgencyHigh: 0, enums.UrgencyMedium: 0, enums.UrgencyLow: 0},
			PoolSize: len(pool),
		}
		for _, view := range views {
			list.Counts[view.Urgency]++
			row := QuoteRow{QuoteView: view}
			if best, err := matching.Best(view, pool); err == nil {
				row.TopMatch = &MatchPreview{
					SupplierID:  best.Supplier.ID,
					CompanyName: best.Supplier.CompanyName,
					Score:       best.Score,
				}
			}
			list.Quotes = append(list.Quotes, row)
		}
		responses.WriteSuccess(w, list)
	}
}

// Matches returns the quote detail and its ranked top candidates.
func Matches(quoteSvc internalquotes.Service, supplierSvc suppliers.Service, topK int, logg *logger.Logger) http.HandlerFunc {
	if topK <= 0 {
		topK = matching.DefaultTopK
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if quoteSvc == nil || supplierSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "matching services unavailable"))
			return
		}

		quoteID, err := validators.ParseUUIDParam(r, "quoteId", "quote id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", topK, 1, maxMatches)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := quoteSvc.Get(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pool, err := supplierSvc.ListEligible(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, QuoteMatches{
			Quote:    *quote,
			Matches:  matching.Top(*quote, pool, limit),
			PoolSize: len(pool),
		})
	}
}

type assignRequest struct {
	SupplierID string `json:"supplier_id" validate:"required,uuid"`
}

// Assign commits an admin-chosen supplier for the quote.
func Assign(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		quoteID, err := validators.ParseUUIDParam(r, "quoteId", "quote id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req assignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := uuid.Parse(strings.TrimSpace(req.SupplierID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id"))
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Assign(r.Context(), assignments.AssignInput{
			QuoteID:    quoteID,
			SupplierID: supplierID,
			ActorID:    actorID,
			ActorRole:  middleware.RoleFromContext(r.Context()),
			Mode:       enums.AssignmentModeManual,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// QuickAssign commits the rank-1 supplier for the quote.
func QuickAssign(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		quoteID, err := validators.ParseUUIDParam(r, "quoteId", "quote id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.QuickAssign(r.Context(), assignments.QuickAssignInput{
			QuoteID:   quoteID,
			ActorID:   actorID,
			ActorRole: middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AutoAssign runs the batch planner over the unassigned pool.
func AutoAssign(svc assignments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		filter, err := enums.ParseUrgencyFilter(r.URL.Query().Get("urgency"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxBatch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dryRun, err := validators.ParseQueryBool(r, "dry_run")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AutoAssign(r.Context(), assignments.AutoAssignInput{
			Urgency:   filter,
			Limit:     limit,
			DryRun:    dryRun,
			ActorID:   actorID,
			ActorRole: middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func actorFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}
