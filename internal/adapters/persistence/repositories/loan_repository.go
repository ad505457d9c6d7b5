package repositories

import (
	"context"

	"microloan/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository handles loan data access
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByLoanID gets a loan by its public id
func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// Delete deletes a loan. Applications referencing it are left in place.
func (r *loanRepository) Delete(ctx context.Context, loanID string) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&models.Loan{}).Error
}

// List lists loans newest first
func (r *loanRepository) List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	filtered := func(db *gorm.DB) *gorm.DB {
		if filter.OwnerEmail != "" {
			db = models.OwnedBy(filter.OwnerEmail)(db)
		}
		if filter.Search != "" {
			db = db.Where("loans.loan_title LIKE ?", "%"+filter.Search+"%")
		}
		if filter.Category != "" {
			db = db.Where("loans.category = ?", filter.Category)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&models.Loan{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Scopes(filtered).
		Order("loans.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListHome lists loans flagged for the home page
func (r *loanRepository) ListHome(ctx context.Context, limit int) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("show_on_home = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&loans).Error
	return loans, err
}
