package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiimbooktu/artmarket-backend/api/middleware"
	internalorders "github.com/tiimbooktu/artmarket-backend/internal/orders"
	"github.com/tiimbooktu/artmarket-backend/internal/payments"
	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/pagination"
)

type stubOrdersService struct {
	created   *internalorders.CreateOrderInput
	order     *models.Order
	err       error
	gotStatus enums.OrderStatus
}

func (s *stubOrdersService) CreateOrder(_ context.Context, _ uuid.UUID, input internalorders.CreateOrderInput) (*models.Order, error) {
	s.created = &input
	return s.order, s.err
}

func (s *stubOrdersService) GetOrder(_ context.Context, _, _ uuid.UUID, _ bool) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersService) ListOrders(_ context.Context, _ uuid.UUID, _ internalorders.ListFilter, _ pagination.Params) (*internalorders.OrderList, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.OrderList{}, nil
}

func (s *stubOrdersService) UpdateStatus(_ context.Context, _ uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	s.gotStatus = next
	return s.order, s.err
}

func (s *stubOrdersService) Cancel(_ context.Context, _, _ uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

type stubPaymentsService struct {
	input        *payments.InitiateInput
	initiation   *payments.Initiation
	verification *payments.Verification
	err          error
}

func (s *stubPaymentsService) InitiatePayment(_ context.Context, _, _ uuid.UUID, input payments.InitiateInput) (*payments.Initiation, error) {
	s.input = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.initiation, nil
}

func (s *stubPaymentsService) VerifyPayment(_ context.Context, _, _ uuid.UUID) (*payments.Verification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.verification, nil
}

func (s *stubPaymentsService) DisableRecurring(_ context.Context, _ uuid.UUID) error {
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func testOrder() *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Status:      enums.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("120.00"),
		Contact:     "buyer@example.com",
	}
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func withOrderParam(req *http.Request, orderID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderCreateInitiatesPayment(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	pay := &stubPaymentsService{initiation: &payments.Initiation{
		Reference:        "Tiimbooktu_abc123def456",
		AuthorizationURL: "https://checkout.paystack.com/ref",
	}}
	handler := OrderCreate(svc, pay, testLogger())

	body := `{"shipping_details":{"name":"Ada","line1":"12 Marina Rd","city":"Lagos","state":"LA","postal_code":"100001","country":"NG"},"contact":"buyer@example.com","shipping_method":"express","recurring":true,"metadata":{"source":"web"}}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, enums.ShippingMethodExpress, svc.created.ShippingMethod)
	assert.Equal(t, "buyer@example.com", svc.created.Contact)
	require.NotNil(t, pay.input)
	assert.True(t, pay.input.SaveCard)
	assert.Equal(t, "web", pay.input.Metadata["source"])

	var envelope struct {
		Data createOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, svc.order.ID, envelope.Data.OrderID)
	assert.Equal(t, "https://checkout.paystack.com/ref", envelope.Data.CheckoutURL)
	assert.False(t, envelope.Data.Charged)
}

func TestOrderCreateSurfacesGatewayFailure(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	pay := &stubPaymentsService{err: pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable")}
	handler := OrderCreate(svc, pay, testLogger())

	body := `{"shipping_details":{"name":"Ada","line1":"12 Marina Rd","city":"Lagos","state":"LA","postal_code":"100001","country":"NG"},"contact":"buyer@example.com"}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, svc.created, "order creation happens before payment")
}

func TestOrderCreateRejectsUnknownShippingMethod(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	pay := &stubPaymentsService{initiation: &payments.Initiation{Reference: "ref"}}
	handler := OrderCreate(svc, pay, testLogger())

	body := `{"shipping_details":{"name":"Ada","line1":"12 Marina Rd","city":"Lagos","state":"LA","postal_code":"100001","country":"NG"},"contact":"buyer@example.com","shipping_method":"teleport"}`
	rec := httptest.NewRecorder()
	handler(rec, authedRequest(http.MethodPost, "/api/v1/orders", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.created, "service must not be called on invalid input")
}

func TestOrderCreateRequiresAuthentication(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	pay := &stubPaymentsService{initiation: &payments.Initiation{Reference: "ref"}}
	handler := OrderCreate(svc, pay, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderDetailRejectsBadID(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	handler := OrderDetail(svc, testLogger())

	req := withOrderParam(authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", ""), "not-a-uuid")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderCancelSurfacesStateConflict(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order already shipped")}
	handler := OrderCancel(svc, testLogger())

	orderID := uuid.NewString()
	req := withOrderParam(authedRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", ""), orderID)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminOrderStatusParsesTarget(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	handler := AdminOrderStatus(svc, testLogger())

	orderID := uuid.NewString()
	req := withOrderParam(authedRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", `{"status":"shipped"}`), orderID)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.OrderStatusShipped, svc.gotStatus)
}

func TestAdminOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc := &stubOrdersService{order: testOrder()}
	handler := AdminOrderStatus(svc, testLogger())

	orderID := uuid.NewString()
	req := withOrderParam(authedRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", `{"status":"lost"}`), orderID)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
