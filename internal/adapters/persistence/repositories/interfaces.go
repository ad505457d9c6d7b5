package repositories

import (
	"context"

	"microloan/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// LoanFilter narrows loan listings. Empty fields are ignored.
type LoanFilter struct {
	OwnerEmail string
	Search     string
	Category   string
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, loanID string) error
	List(ctx context.Context, filter LoanFilter, offset, limit int) ([]*models.Loan, int64, error)
	ListHome(ctx context.Context, limit int) ([]*models.Loan, error)
}

// ApplicationFilter narrows application listings. Empty fields are ignored.
type ApplicationFilter struct {
	Email      string
	Status     string
	OwnerEmail string
}

// ApplicationRepository defines application repository interface
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, applicationID string) error
	List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]*models.Application, int64, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	// CreateIfAbsent inserts p unless a payment with the same transaction id
	// exists. created is false when the row was already there.
	CreateIfAbsent(ctx context.Context, p *models.Payment) (created bool, err error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Payment, error)
	List(ctx context.Context, offset, limit int) ([]*models.Payment, int64, error)
}
