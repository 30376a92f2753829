package orders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/api/middleware"
	"github.com/angelmondragon/garmentz-backend/api/responses"
	"github.com/angelmondragon/garmentz-backend/api/validators"
	internalorders "github.com/angelmondragon/garmentz-backend/internal/orders"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/logger"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus records an order status notification and refreshes the
// supplier's derived statistics.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDParam(r, "orderId", "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		var actorID uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			actorID, _ = uuid.Parse(raw)
		}

		change, err := svc.RecordStatusChange(r.Context(), internalorders.StatusChangeInput{
			OrderID:   orderID,
			Status:    status,
			ActorID:   actorID,
			ActorRole: middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, change)
	}
}
