package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders map[uuid.UUID]*models.Order

	created     *models.Order
	updates     map[string]any
	updatedID   uuid.UUID
	updateCount int
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = order
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubOrdersRepo) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.ReferenceCode != nil && *order.ReferenceCode == reference {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	var out []models.Order
	for _, order := range s.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, "", nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updatedID = id
	s.updates = updates
	s.updateCount++
	if order, ok := s.orders[id]; ok {
		if status, ok := updates["status"].(enums.OrderStatus); ok {
			order.Status = status
		}
	}
	return nil
}

func (s *stubOrdersRepo) SetReference(ctx context.Context, id uuid.UUID, reference string) error {
	if order, ok := s.orders[id]; ok {
		order.ReferenceCode = &reference
	}
	return nil
}

type stubCartStore struct {
	lines   []models.CartItem
	cleared bool
}

func (s *stubCartStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.lines, nil
}

func (s *stubCartStore) DeleteAllForUserTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	s.cleared = true
	return nil
}

type stubCartCache struct {
	deleted []string
}

func (s *stubCartCache) Del(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func (s *stubCartCache) CartKey(userID string) string {
	return "am:cart:" + userID
}

type restoredCall struct {
	artworkID uuid.UUID
	qty       int
}

type stubStock struct {
	restored []restoredCall
}

func (s *stubStock) Restore(ctx context.Context, tx *gorm.DB, artworkID uuid.UUID, colorVariantID, sizeVariantID *uuid.UUID, qty int) error {
	s.restored = append(s.restored, restoredCall{artworkID: artworkID, qty: qty})
	return nil
}

type stubTxns struct {
	statuses []enums.TransactionStatus
}

func (s *stubTxns) ListByOrder(ctx context.Context, orderID string) ([]models.PaymentTransaction, error) {
	txns := make([]models.PaymentTransaction, 0, len(s.statuses))
	for _, status := range s.statuses {
		txns = append(txns, models.PaymentTransaction{ID: uuid.New(), Status: status})
	}
	return txns, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func cartLine(qty, stock int, price string) models.CartItem {
	return models.CartItem{
		ID:        uuid.New(),
		ArtworkID: uuid.New(),
		Quantity:  qty,
		Artwork: &models.Artwork{
			ID:        uuid.New(),
			Name:      "Dusk over Lagos",
			Artist:    "A. Okafor",
			BasePrice: decimal.RequireFromString(price),
			Stock:     stock,
		},
	}
}

func newTestService(t *testing.T, repo Repository, cart *stubCartStore, cache *stubCartCache, stock *stubStock) Service {
	t.Helper()
	return newTestServiceWithTxns(t, repo, cart, cache, stock,
		&stubTxns{statuses: []enums.TransactionStatus{enums.TransactionStatusVerified}})
}

func newTestServiceWithTxns(t *testing.T, repo Repository, cart *stubCartStore, cache *stubCartCache, stock *stubStock, txns TransactionReader) Service {
	t.Helper()
	var c cartCache
	if cache != nil {
		c = cache
	}
	svc, err := NewService(repo, cart, c, stock, txns, stubTxRunner{}, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubCartStore{}, nil, &stubStock{})

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{Contact: "buyer@example.com"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderRejectsMissingContact(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubCartStore{}, nil, &stubStock{})

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	cart := &stubCartStore{lines: []models.CartItem{cartLine(5, 2, "100.00")}}
	svc := newTestService(t, newStubOrdersRepo(), cart, nil, &stubStock{})

	_, err := svc.CreateOrder(context.Background(), uuid.New(), CreateOrderInput{Contact: "buyer@example.com"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["available"] != 2 || details["requested"] != 5 {
		t.Fatalf("expected stock details, got %v", typed.Details())
	}
}

func TestCreateOrderFreezesPricesAndClearsCart(t *testing.T) {
	repo := newStubOrdersRepo()
	cart := &stubCartStore{lines: []models.CartItem{
		cartLine(2, 10, "150.00"),
		cartLine(1, 3, "99.50"),
	}}
	cache := &stubCartCache{}
	svc := newTestService(t, repo, cart, cache, &stubStock{})

	userID := uuid.New()
	order, err := svc.CreateOrder(context.Background(), userID, CreateOrderInput{Contact: "buyer@example.com"})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment status, got %s", order.PaymentStatus)
	}
	if order.ShippingMethod != enums.ShippingMethodStandard {
		t.Fatalf("expected default shipping method, got %s", order.ShippingMethod)
	}
	want := decimal.RequireFromString("399.50")
	if !order.TotalAmount.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.TotalAmount)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if !order.Items[0].Price.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("expected frozen line total 300.00, got %s", order.Items[0].Price)
	}
	if !cart.cleared {
		t.Fatal("expected cart cleared inside the transaction")
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != "am:cart:"+userID.String() {
		t.Fatalf("expected cart cache invalidated, got %v", cache.deleted)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	repo := newStubOrdersRepo()
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusDelivered}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubCartStore{}, nil, &stubStock{})

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusDeliveredStampsTimestamp(t *testing.T) {
	repo := newStubOrdersRepo()
	order := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusShipped}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubCartStore{}, nil, &stubStock{})

	if _, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if _, ok := repo.updates["delivered_at"]; !ok {
		t.Fatalf("expected delivered_at in updates, got %v", repo.updates)
	}
}

func TestCancelUnpaidOrderSkipsStockRestore(t *testing.T) {
	repo := newStubOrdersRepo()
	stock := &stubStock{}
	userID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Items:         []models.OrderItem{{ArtworkID: uuid.New(), Quantity: 2}},
	}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubCartStore{}, nil, stock)

	cancelled, err := svc.Cancel(context.Background(), userID, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if len(stock.restored) != 0 {
		t.Fatalf("expected no stock restore for unpaid order, got %v", stock.restored)
	}
}

func TestCancelPaidOrderRestoresStock(t *testing.T) {
	repo := newStubOrdersRepo()
	stock := &stubStock{}
	userID := uuid.New()
	artworkID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        enums.OrderStatusProcessing,
		PaymentStatus: enums.PaymentStatusSuccess,
		Items:         []models.OrderItem{{ArtworkID: artworkID, Quantity: 3}},
	}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubCartStore{}, nil, stock)

	if _, err := svc.Cancel(context.Background(), userID, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(stock.restored) != 1 || stock.restored[0].artworkID != artworkID || stock.restored[0].qty != 3 {
		t.Fatalf("expected stock restored for paid order, got %v", stock.restored)
	}
}

func TestCancelDisputedOrderSkipsStockRestore(t *testing.T) {
	repo := newStubOrdersRepo()
	stock := &stubStock{}
	userID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        enums.OrderStatusProcessing,
		PaymentStatus: enums.PaymentStatusSuccess,
		Items:         []models.OrderItem{{ArtworkID: uuid.New(), Quantity: 2}},
	}
	repo.orders[order.ID] = order
	svc := newTestServiceWithTxns(t, repo, &stubCartStore{}, nil, stock,
		&stubTxns{statuses: []enums.TransactionStatus{enums.TransactionStatusDisputed}})

	cancelled, err := svc.Cancel(context.Background(), userID, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if len(stock.restored) != 0 {
		t.Fatalf("expected no restore without a verified charge, got %v", stock.restored)
	}
}

func TestCancelRejectsShippedOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	userID := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusShipped}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubCartStore{}, nil, &stubStock{})

	_, err := svc.Cancel(context.Background(), userID, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	repo := newStubOrdersRepo()
	owner := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: owner, Status: enums.OrderStatusPending}
	repo.orders[order.ID] = order
	svc := newTestService(t, repo, &stubCartStore{}, nil, &stubStock{})

	_, err := svc.GetOrder(context.Background(), uuid.New(), order.ID, false)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	if _, err := svc.GetOrder(context.Background(), uuid.New(), order.ID, true); err != nil {
		t.Fatalf("admin read should succeed: %v", err)
	}
}
