package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// QuoteAssignedEvent signals that a supplier now owns a quote.
type QuoteAssignedEvent struct {
	QuoteID     uuid.UUID            `json:"quote_id"`
	SupplierID  uuid.UUID            `json:"supplier_id"`
	BuyerID     uuid.UUID            `json:"buyer_id"`
	ProductType string               `json:"product_type"`
	Quantity    int                  `json:"quantity"`
	Mode        enums.AssignmentMode `json:"mode"`
	Score       *int                 `json:"score,omitempty"`
	AssignedAt  time.Time            `json:"assigned_at"`
}

// OrderStatusChangedEvent is emitted when an order moves between production states.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	SupplierID *uuid.UUID        `json:"supplier_id,omitempty"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
}
