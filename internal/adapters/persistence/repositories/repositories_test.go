package repositories

import (
	"context"
	"testing"
	"time"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepository_CreateIfAbsent(t *testing.T) {
	db := testdb.New(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	first := &models.Payment{
		TransactionID: "pi_123",
		ApplicationID: "app-1",
		Amount:        decimal.NewFromInt(10),
		Currency:      "usd",
		CustomerEmail: "b@x.io",
		PaidAt:        time.Now().UTC(),
	}
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	require.True(t, created)

	dup := &models.Payment{TransactionID: "pi_123", ApplicationID: "app-other", Amount: decimal.NewFromInt(99)}
	created, err = repo.CreateIfAbsent(ctx, dup)
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	stored, err := repo.GetByTransactionID(ctx, "pi_123")
	require.NoError(t, err)
	require.Equal(t, "app-1", stored.ApplicationID)
	require.True(t, decimal.NewFromInt(10).Equal(stored.Amount))
}

func TestLoanRepository_ListOwnerUnion(t *testing.T) {
	db := testdb.New(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	m := "m@loans.io"

	testdb.MustCreate(t, db,
		&models.Loan{LoanID: "L1", LoanTitle: "A", ManagerEmail: m},
		&models.Loan{LoanID: "L2", LoanTitle: "B", Email: m},
		&models.Loan{LoanID: "L3", LoanTitle: "C", CreatedBy: m},
		&models.Loan{LoanID: "L4", LoanTitle: "D", ManagerEmail: "other@loans.io"},
	)

	loans, total, err := repo.List(ctx, LoanFilter{OwnerEmail: m}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	ids := map[string]bool{}
	for _, l := range loans {
		ids[l.LoanID] = true
	}
	require.Equal(t, map[string]bool{"L1": true, "L2": true, "L3": true}, ids)

	_, total, err = repo.List(ctx, LoanFilter{}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
}

func TestApplicationRepository_ListFilters(t *testing.T) {
	db := testdb.New(t)
	repo := NewApplicationRepository(db)
	ctx := context.Background()
	m := "m@loans.io"

	testdb.MustCreate(t, db,
		&models.Loan{LoanID: "L1", LoanTitle: "A", ManagerEmail: m},
		&models.Application{ApplicationID: "a1", LoanID: "L1", Email: "x@b.io", Status: "pending"},
		&models.Application{ApplicationID: "a2", LoanID: "L1", Email: "y@b.io", Status: "approved"},
		&models.Application{ApplicationID: "a3", LoanID: "L9", Email: "x@b.io", Status: "pending"},
	)

	apps, total, err := repo.List(ctx, ApplicationFilter{OwnerEmail: m}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, apps, 2)

	_, total, err = repo.List(ctx, ApplicationFilter{OwnerEmail: m, Status: "pending"}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	_, total, err = repo.List(ctx, ApplicationFilter{Email: "x@b.io"}, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
}

func TestUserRepository_ListSearch(t *testing.T) {
	db := testdb.New(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testdb.MustCreate(t, db,
		&models.User{Email: "alice@x.io", DisplayName: "Alice", Role: "user"},
		&models.User{Email: "bob@x.io", DisplayName: "Bob", Role: "manager"},
	)

	users, total, err := repo.List(ctx, "ali", 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "alice@x.io", users[0].Email)

	exists, err := repo.ExistsByEmail(ctx, "bob@x.io")
	require.NoError(t, err)
	require.True(t, exists)
}
