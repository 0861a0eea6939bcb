package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	DeleteAllForUserTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type cartCache interface {
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

// StockRestorer returns consumed stock when a paid order is cancelled.
type StockRestorer interface {
	Restore(ctx context.Context, tx *gorm.DB, artworkID uuid.UUID, colorVariantID, sizeVariantID *uuid.UUID, qty int) error
}

// TransactionReader exposes the gateway charges recorded against an order.
type TransactionReader interface {
	ListByOrder(ctx context.Context, orderID string) ([]models.PaymentTransaction, error)
}

// Service defines the order engine operations.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo  Repository
	cart  cartStore
	cache cartCache
	stock StockRestorer
	txns  TransactionReader
	tx    txRunner
	logg  *logger.Logger
}

// NewService builds the order engine with the required dependencies. The cart
// cache is optional; a nil cache skips snapshot invalidation.
func NewService(repo Repository, cart cartStore, cache cartCache, stock StockRestorer, txns TransactionReader, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock restorer required")
	}
	if txns == nil {
		return nil, fmt.Errorf("transaction reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cart: cart, cache: cache, stock: stock, txns: txns, tx: tx, logg: logg}, nil
}

// CreateOrder freezes the cart into an order snapshot. Stock is verified but
// not reserved; the webhook reconciler decrements it once payment confirms.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(input.Contact) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact is required")
	}
	method := input.ShippingMethod
	if method == "" {
		method = enums.ShippingMethodStandard
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown shipping method %q", method))
	}

	lines, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := &models.Order{
		UserID:         userID,
		Status:         enums.OrderStatusPending,
		PaymentStatus:  enums.PaymentStatusPending,
		ShippingInfo:   input.ShippingDetails,
		Contact:        input.Contact,
		ShippingMethod: method,
	}

	for i := range lines {
		line := &lines[i]
		if line.Artwork == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart line missing artwork")
		}
		if err := checkLineStock(line); err != nil {
			return nil, err
		}
		lineTotal := line.LineTotal()
		order.TotalAmount = order.TotalAmount.Add(lineTotal)
		order.Items = append(order.Items, models.OrderItem{
			ArtworkID:      line.ArtworkID,
			ColorVariantID: line.ColorVariantID,
			SizeVariantID:  line.SizeVariantID,
			Quantity:       line.Quantity,
			Price:          lineTotal,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}
		if err := s.cart.DeleteAllForUserTx(ctx, tx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order transaction")
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.CartKey(userID.String())); err != nil {
			s.logg.Warn(ctx, "cart cache invalidation failed")
		}
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"items":    len(order.Items),
	}), "order created")

	return order, nil
}

// GetOrder loads an order, enforcing ownership for non-admin callers.
func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order *models.Order
	var err error
	if isAdmin {
		order, err = s.repo.FindByID(ctx, orderID)
	} else {
		order, err = s.repo.FindByIDForUser(ctx, orderID, userID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

// ListOrders returns the user's order history, newest first.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) (*OrderList, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", filter.Status))
	}
	orders, next, err := s.repo.ListByUser(ctx, userID, filter, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	list := &OrderList{NextCursor: next, Orders: make([]OrderSummary, 0, len(orders))}
	for i := range orders {
		list.Orders = append(list.Orders, summarize(&orders[i]))
	}
	return list, nil
}

// UpdateStatus advances an order along the fulfillment lifecycle. Moving to
// cancelled goes through the same stock-restore path as a user cancellation.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", next))
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, next))
	}

	if next == enums.OrderStatusCancelled {
		return s.cancel(ctx, order)
	}

	updates := map[string]any{"status": next}
	if next == enums.OrderStatusDelivered {
		updates["delivered_at"] = time.Now().UTC()
	}
	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}

	return s.repo.FindByID(ctx, order.ID)
}

// Cancel lets the owner abort an order that has not shipped. Stock is only
// restored when a verified charge consumed it; unpaid orders and disputed
// charges never moved inventory.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel order in status %s", order.Status))
	}
	return s.cancel(ctx, order)
}

func (s *service) cancel(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return err
		}
		if order.PaymentStatus != enums.PaymentStatusSuccess {
			return nil
		}
		consumed, err := s.stockConsumed(ctx, order.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return nil
		}
		var restoreErr error
		for i := range order.Items {
			item := &order.Items[i]
			restoreErr = multierr.Append(restoreErr,
				s.stock.Restore(ctx, tx, item.ArtworkID, item.ColorVariantID, item.SizeVariantID, item.Quantity))
		}
		return restoreErr
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling order")
	}

	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID), "order cancelled")
	return s.repo.FindByID(ctx, order.ID)
}

// stockConsumed reports whether a verified charge was recorded for the order.
// A disputed charge records the payment without a stock movement.
func (s *service) stockConsumed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	txns, err := s.txns.ListByOrder(ctx, orderID.String())
	if err != nil {
		return false, err
	}
	for i := range txns {
		if txns[i].Status == enums.TransactionStatusVerified {
			return true, nil
		}
	}
	return false, nil
}

func checkLineStock(line *models.CartItem) error {
	if line.Artwork.Stock < line.Quantity {
		return insufficientStock(line, line.Artwork.Stock)
	}
	if line.ColorVariant != nil && line.ColorVariant.Stock < line.Quantity {
		return insufficientStock(line, line.ColorVariant.Stock)
	}
	if line.SizeVariant != nil && line.SizeVariant.Stock < line.Quantity {
		return insufficientStock(line, line.SizeVariant.Stock)
	}
	return nil
}

func insufficientStock(line *models.CartItem, available int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock for cart item").
		WithDetails(map[string]any{
			"artwork_id": line.ArtworkID,
			"available":  available,
			"requested":  line.Quantity,
		})
}
