package paystackwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/internal/catalog"
	"github.com/tiimbooktu/artmarket-backend/internal/orders"
	"github.com/tiimbooktu/artmarket-backend/internal/payments"
	"github.com/tiimbooktu/artmarket-backend/internal/users"
	"github.com/tiimbooktu/artmarket-backend/pkg/db"
	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
	"github.com/tiimbooktu/artmarket-backend/pkg/enums"
	pkgerrors "github.com/tiimbooktu/artmarket-backend/pkg/errors"
	"github.com/tiimbooktu/artmarket-backend/pkg/logger"
	"github.com/tiimbooktu/artmarket-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the reconciler dependencies.
type ServiceParams struct {
	Orders            orders.Repository
	Transactions      *payments.TransactionRepository
	Users             *users.Repository
	Inventory         *catalog.Inventory
	TransactionRunner txRunner
	Metrics           *metrics.WebhookMetrics
	Logger            *logger.Logger
}

// Service reconciles gateway webhook events with order state. Finalization is
// idempotent per reference: the first confirmed charge wins, replays are
// acknowledged without side effects.
type Service struct {
	orders    orders.Repository
	txns      *payments.TransactionRepository
	users     *users.Repository
	inventory *catalog.Inventory
	tx        txRunner
	metrics   *metrics.WebhookMetrics
	logg      *logger.Logger
}

// NewService builds the webhook reconciler.
func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.Transactions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transactions repo required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "inventory required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:    params.Orders,
		txns:      params.Transactions,
		users:     params.Users,
		inventory: params.Inventory,
		tx:        params.TransactionRunner,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// HandleEvent routes a verified webhook envelope. Unrecognized events are
// acknowledged and dropped.
func (s *Service) HandleEvent(ctx context.Context, event Event) error {
	switch event.Event {
	case EventChargeSuccess:
		var data ChargeData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode charge.success payload")
		}
		return s.HandleChargeSuccess(ctx, data)
	default:
		s.logg.Info(s.logg.WithField(ctx, "event", event.Event), "ignoring webhook event")
		return nil
	}
}

// HandleChargeSuccess finalizes the order matched by the charge reference:
// payment flips to success, fulfillment begins, stock is consumed, and the
// charge is recorded. A reference with no matching order is logged and
// acknowledged so the gateway stops retrying.
func (s *Service) HandleChargeSuccess(ctx context.Context, data ChargeData) error {
	if data.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge reference is required")
	}
	ctx = s.logg.WithReference(ctx, data.Reference)
	started := time.Now()

	outcome, err := s.finalize(ctx, data, true)
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
		// Payment landed but stock ran out between order creation and
		// confirmation. The money is real: record the charge as disputed
		// and leave inventory untouched for manual resolution.
		s.logg.Error(ctx, "stock exhausted at finalization, recording disputed charge", err)
		outcome, err = s.finalize(ctx, data, false)
	}
	if err != nil {
		return err
	}

	s.metrics.ObserveDuration(EventChargeSuccess, time.Since(started))
	switch outcome {
	case outcomeProcessed:
		s.metrics.IncProcessed(EventChargeSuccess)
		s.logg.Info(ctx, "charge finalized")
	case outcomeReplay:
		s.metrics.IncReplayed(EventChargeSuccess)
		s.logg.Info(ctx, "charge already finalized, replay ignored")
	case outcomeOrphan:
		s.metrics.IncRejected("unknown_reference")
		s.logg.Warn(ctx, "no order matches charge reference")
	}
	return nil
}

type finalizeOutcome int

const (
	outcomeProcessed finalizeOutcome = iota
	outcomeReplay
	outcomeOrphan
)

func (s *Service) finalize(ctx context.Context, data ChargeData, consumeStock bool) (finalizeOutcome, error) {
	outcome := outcomeProcessed

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		txns := s.txns.WithTx(tx)

		if _, err := txns.FindByReference(ctx, data.Reference); err == nil {
			outcome = outcomeReplay
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		order, err := ordersRepo.FindByReference(ctx, data.Reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = outcomeOrphan
				return nil
			}
			return err
		}

		if order.PaymentStatus == enums.PaymentStatusSuccess {
			outcome = outcomeReplay
			return nil
		}

		updates := map[string]any{"payment_status": enums.PaymentStatusSuccess}
		if order.Status == enums.OrderStatusPending {
			updates["status"] = enums.OrderStatusProcessing
		}
		if err := ordersRepo.Update(ctx, order.ID, updates); err != nil {
			return err
		}

		txnStatus := enums.TransactionStatusVerified
		if consumeStock && order.Status != enums.OrderStatusCancelled {
			for i := range order.Items {
				item := &order.Items[i]
				if err := s.inventory.Consume(ctx, tx, item.ArtworkID, item.ColorVariantID, item.SizeVariantID, item.Quantity); err != nil {
					return err
				}
			}
		} else if !consumeStock {
			txnStatus = enums.TransactionStatusDisputed
		}

		if err := s.captureAuthorization(ctx, tx, order, data); err != nil {
			return err
		}

		_, err = txns.Create(ctx, &models.PaymentTransaction{
			OrderID:   order.ID,
			Reference: data.Reference,
			Amount:    decimal.NewFromInt(data.Amount).Shift(-2),
			Status:    txnStatus,
			Metadata:  chargeMetadata(data),
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				outcome = outcomeReplay
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return outcome, typed
		}
		return outcome, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalizing charge")
	}
	return outcome, nil
}

// captureAuthorization stores the reusable card token for opted-in users so
// later checkouts can charge directly.
func (s *Service) captureAuthorization(ctx context.Context, tx *gorm.DB, order *models.Order, data ChargeData) error {
	if data.Authorization == nil || !data.Authorization.Reusable || data.Authorization.AuthorizationCode == "" {
		return nil
	}

	usersRepo := s.users.WithTx(tx)
	user, err := usersRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("loading user for authorization capture: %w", err)
	}
	if !user.RecurringTransaction {
		return nil
	}

	blob, err := authorizationBlob(data.Authorization)
	if err != nil {
		return err
	}
	return usersRepo.SaveAuthorization(ctx, user.ID, data.Authorization.AuthorizationCode, blob)
}
