package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tiimbooktu/artmarket-backend/api/middleware"
	"github.com/tiimbooktu/artmarket-backend/api/responses"
	"github.com/tiimbooktu/artmarket-backend/api/validators"
	internalorders "github.com/tiimbooktu/artmarket-backend/internal/orders"
	"github.com/tiimbooktu/artmarket-backend/internal/payments"
	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
	"github.com/tiimbooktu/artmarket-backend/pkg/types"
)

type createOrderRequest struct {
	ShippingDetails types.ShippingDetails `json:"shipping_details" validate:"required"`
	Contact         string                `json:"contact" validate:"required"`
	ShippingMethod  string                `json:"shipping_method"`
	Recurring       bool                  `json:"recurring"`
	Metadata        map[string]any        `json:"metadata"`
}

type createOrderResponse struct {
	Message     string    `json:"message"`
	OrderID     uuid.UUID `json:"order_id"`
	Reference   string    `json:"reference"`
	CheckoutURL string    `json:"checkout_url,omitempty"`
	Charged     bool      `json:"charged"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderCreate freezes the authenticated user's cart into a pending order and
// starts payment for it. On gateway failure the order survives in pending so
// the client can re-initiate via the checkout endpoint.
func OrderCreate(svc internalorders.Service, paymentsSvc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || paymentsSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := internalorders.CreateOrderInput{
			ShippingDetails: payload.ShippingDetails,
			Contact:         payload.Contact,
		}
		if raw := strings.TrimSpace(payload.ShippingMethod); raw != "" {
			method, err := enums.ParseShippingMethod(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping method"))
				return
			}
			input.ShippingMethod = method
		}

		order, err := svc.CreateOrder(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		initiation, err := paymentsSvc.InitiatePayment(ctx, userID, order.ID, payments.InitiateInput{
			SaveCard: payload.Recurring,
			Metadata: payload.Metadata,
		})
		if err != nil {
			if logg != nil {
				logg.Error(logg.WithField(ctx, "order_id", order.ID.String()), "payment initiation failed after order creation", err)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		message := "payment initialized"
		if initiation.Charged {
			message = "stored card charged"
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createOrderResponse{
			Message:     message,
			OrderID:     order.ID,
			Reference:   initiation.Reference,
			CheckoutURL: initiation.AuthorizationURL,
			Charged:     initiation.Charged,
		})
	}
}

// OrderList returns the user's orders, newest first.
func OrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		var filter internalorders.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
				return
			}
			filter.Status = status
		}

		list, err := svc.ListOrders(ctx, userID, filter, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns a full order with items. Admins can read any order.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		isAdmin := middleware.RoleFromContext(ctx) == string(enums.UserRoleAdmin)
		order, err := svc.GetOrder(ctx, userID, orderID, isAdmin)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderDetailResponse(order))
	}
}

// OrderCancel cancels a pending or processing order owned by the user.
func OrderCancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Cancel(ctx, userID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderDetailResponse(order))
	}
}

// AdminOrderStatus moves an order through the fulfilment lifecycle.
func AdminOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		order, err := svc.UpdateStatus(ctx, orderID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderDetailResponse(order))
	}
}

type orderDetailResponse struct {
	ID              uuid.UUID             `json:"id"`
	Status          enums.OrderStatus     `json:"status"`
	PaymentStatus   enums.PaymentStatus   `json:"payment_status"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	ShippingDetails types.ShippingDetails `json:"shipping_details"`
	Contact         string                `json:"contact"`
	ShippingMethod  enums.ShippingMethod  `json:"shipping_method"`
	ReferenceCode   *string               `json:"reference_code,omitempty"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	Items           []orderItemResponse   `json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type orderItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ArtworkID      uuid.UUID       `json:"artwork_id"`
	ColorVariantID *uuid.UUID      `json:"color_variant_id,omitempty"`
	SizeVariantID  *uuid.UUID      `json:"size_variant_id,omitempty"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

func newOrderDetailResponse(order *models.Order) orderDetailResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:             item.ID,
			ArtworkID:      item.ArtworkID,
			ColorVariantID: item.ColorVariantID,
			SizeVariantID:  item.SizeVariantID,
			Quantity:       item.Quantity,
			Price:          item.Price,
		})
	}
	return orderDetailResponse{
		ID:              order.ID,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		TotalAmount:     order.TotalAmount,
		ShippingDetails: order.ShippingInfo,
		Contact:         order.Contact,
		ShippingMethod:  order.ShippingMethod,
		ReferenceCode:   order.ReferenceCode,
		DeliveredAt:     order.DeliveredAt,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
