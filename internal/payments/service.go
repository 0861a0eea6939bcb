package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/config"
	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/paystack"
)

type gateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	ChargeAuthorization(ctx context.Context, req paystack.ChargeRequest) (*paystack.ChargeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

type orderStore interface {
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	SetReference(ctx context.Context, id uuid.UUID, reference string) error
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetRecurring(ctx context.Context, id uuid.UUID, enabled bool) error
}

// Service starts gateway charges and manages the stored-card opt-in.
type Service interface {
	InitiatePayment(ctx context.Context, userID, orderID uuid.UUID, input InitiateInput) (*Initiation, error)
	VerifyPayment(ctx context.Context, userID, orderID uuid.UUID) (*Verification, error)
	DisableRecurring(ctx context.Context, userID uuid.UUID) error
}

// InitiateInput carries the checkout-time payment options.
type InitiateInput struct {
	// SaveCard opts the user into stored-card charges. The reusable
	// authorization itself arrives later via the gateway webhook.
	SaveCard bool
	// Metadata is forwarded to the gateway alongside the order id.
	Metadata map[string]any
}

// Initiation is the handle a client needs to complete payment.
type Initiation struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	// Charged is true when a stored authorization was billed directly and
	// no checkout redirect is needed. The order still flips to paid only
	// when the gateway webhook lands.
	Charged bool `json:"charged"`
}

// Verification reports the gateway's view of an order's latest charge next to
// the state the webhook has already applied locally.
type Verification struct {
	Reference     string              `json:"reference"`
	GatewayStatus string              `json:"gateway_status"`
	Amount        decimal.Decimal     `json:"amount"`
	Channel       string              `json:"channel,omitempty"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}

type service struct {
	gateway gateway
	orders  orderStore
	users   userStore
	cfg     config.PaystackConfig
	logg    *logger.Logger
}

// NewService wires the payment initiation flow.
func NewService(gw gateway, orders orderStore, users userStore, cfg config.PaystackConfig, logg *logger.Logger) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{gateway: gw, orders: orders, users: users, cfg: cfg, logg: logg}, nil
}

// InitiatePayment mints a fresh reference for the order and either charges a
// stored authorization directly or opens a hosted checkout session.
func (s *service) InitiatePayment(ctx context.Context, userID, orderID uuid.UUID, input InitiateInput) (*Initiation, error) {
	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.PaymentStatus == enums.PaymentStatusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	if input.SaveCard && !user.RecurringTransaction {
		if err := s.users.SetRecurring(ctx, userID, true); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving recurring opt-in")
		}
		user.RecurringTransaction = true
	}

	reference, err := MintReference(s.cfg.ReferencePrefix)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting reference")
	}
	if err := s.orders.SetReference(ctx, order.ID, reference); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing reference")
	}

	ctx = s.logg.WithReference(ctx, reference)
	amountMinor := order.TotalAmount.Shift(2).IntPart()
	metadata := gatewayMetadata(order.ID, input.Metadata)

	if user.RecurringTransaction && user.AuthorizationCode != nil {
		result, err := s.gateway.ChargeAuthorization(ctx, paystack.ChargeRequest{
			Email:             user.Email,
			Amount:            amountMinor,
			Reference:         reference,
			AuthorizationCode: *user.AuthorizationCode,
			Metadata:          metadata,
		})
		if err != nil {
			return nil, err
		}
		if !result.Charged() {
			return nil, pkgerrors.New(pkgerrors.CodeDependency,
				fmt.Sprintf("stored card charge was not accepted: %s", result.Status))
		}
		s.logg.Info(ctx, "stored authorization charged")
		return &Initiation{Reference: reference, Charged: true}, nil
	}

	result, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       user.Email,
		Amount:      amountMinor,
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "hosted checkout session opened")
	return &Initiation{Reference: reference, AuthorizationURL: result.AuthorizationURL}, nil
}

// gatewayMetadata merges client-supplied metadata with the order id.
// order_id always takes precedence over client entries.
func gatewayMetadata(orderID uuid.UUID, extra map[string]any) map[string]any {
	metadata := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		metadata[k] = v
	}
	metadata["order_id"] = orderID.String()
	return metadata
}

// VerifyPayment asks the gateway for the current state of the order's latest
// reference. It never mutates the order; the webhook stays the only writer.
func (s *service) VerifyPayment(ctx context.Context, userID, orderID uuid.UUID) (*Verification, error) {
	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.ReferenceCode == nil || *order.ReferenceCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no payment to verify")
	}

	ctx = s.logg.WithReference(ctx, *order.ReferenceCode)
	result, err := s.gateway.VerifyTransaction(ctx, *order.ReferenceCode)
	if err != nil {
		return nil, err
	}

	return &Verification{
		Reference:     result.Reference,
		GatewayStatus: result.Status,
		Amount:        decimal.NewFromInt(result.Amount).Shift(-2),
		Channel:       result.Channel,
		PaymentStatus: order.PaymentStatus,
	}, nil
}

// DisableRecurring turns off stored-card charges and drops the saved authorization.
func (s *service) DisableRecurring(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetRecurring(ctx, userID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "disabling recurring charges")
	}
	return nil
}
