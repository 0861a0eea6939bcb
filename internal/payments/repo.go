package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/tiimbooktu/artmarket-backend/pkg/db/models"
)

// TransactionRepository persists the audit records of confirmed charges.
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository constructs a transactions repo bound to the provided GORM DB.
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx rebinds the repository to the supplied transaction handle.
func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	if tx == nil {
		return r
	}
	return &TransactionRepository{db: tx}
}

// Create inserts the transaction record. The unique reference index rejects
// duplicate finalizations racing past the existence check.
func (r *TransactionRepository) Create(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// FindByReference loads the transaction recorded for a gateway reference.
func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListByOrder returns all transactions recorded for an order.
func (r *TransactionRepository) ListByOrder(ctx context.Context, orderID string) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
