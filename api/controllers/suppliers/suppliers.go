package suppliers

import (
	"net/http"

	"github.com/angelmondragon/garmentz-backend/api/responses"
	internalsuppliers "github.com/angelmondragon/garmentz-backend/internal/suppliers"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
)

// SupplierList is the eligible supplier pool payload.
type SupplierList struct {
	Suppliers []internalsuppliers.SupplierView `json:"suppliers"`
	Total     int                              `json:"total"`
}

// List returns the verified suppliers with their derived order statistics.
func List(svc internalsuppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suppliers service unavailable"))
			return
		}
		pool, err := svc.ListEligible(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if pool == nil {
			pool = []internalsuppliers.SupplierView{}
		}
		responses.WriteSuccess(w, SupplierList{Suppliers: pool, Total: len(pool)})
	}
}
