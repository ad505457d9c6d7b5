package repositories

import (
	"context"
	"errors"

	"microloan/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository handles payment data access
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// CreateIfAbsent relies on the unique index on transaction_id instead of a
// read-then-write check, so concurrent confirmations insert at most one row.
func (r *paymentRepository) CreateIfAbsent(ctx context.Context, p *models.Payment) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetByTransactionID gets a payment by transaction id
func (r *paymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByEmail lists a customer's payments newest first
func (r *paymentRepository) ListByEmail(ctx context.Context, email string) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("paid_at DESC").
		Find(&payments).Error
	return payments, err
}

// List lists all payments with pagination
func (r *paymentRepository) List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("paid_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}
