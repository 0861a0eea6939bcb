package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	"github.com/tiimbooktu/artmarket-backend/pkg/types"
)

// CreateOrderInput captures the checkout payload turned into an order snapshot.
type CreateOrderInput struct {
	ShippingDetails types.ShippingDetails
	Contact         string
	ShippingMethod  enums.ShippingMethod
}

// OrderSummary exposes the aggregated fields returned in the order list.
type OrderSummary struct {
	ID            uuid.UUID            `json:"id"`
	Status        enums.OrderStatus    `json:"status"`
	PaymentStatus enums.PaymentStatus  `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	TotalItems    int                  `json:"total_items"`
	Method        enums.ShippingMethod `json:"shipping_method"`
	CreatedAt     time.Time            `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func summarize(order *models.Order) OrderSummary {
	totalItems := 0
	for i := range order.Items {
		totalItems += order.Items[i].Quantity
	}
	return OrderSummary{
		ID:            order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		TotalItems:    totalItems,
		Method:        order.ShippingMethod,
		CreatedAt:     order.CreatedAt,
	}
}
