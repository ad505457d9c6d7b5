package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"microloan/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User represents users table
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password        string    `gorm:"size:255" json:"-"`
	Role            string    `gorm:"size:20;not null;default:'user';index" json:"role"`
	DisplayName     string    `gorm:"size:100" json:"displayName"`
	PhotoURL        string    `gorm:"size:500" json:"photoURL"`
	SuspendReason   string    `gorm:"type:text" json:"suspendReason,omitempty"`
	SuspendFeedback string    `gorm:"type:text" json:"suspendFeedback,omitempty"`
	CreatedAt       time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// RoleValue returns the stored role as the closed enum; unknown text maps to
// an invalid Role that no RoleSet contains.
func (u *User) RoleValue() domain.Role {
	return domain.Role(u.Role)
}

// ============================================================
// Loans
// ============================================================

// Loan represents a loan product offered by a manager
type Loan struct {
	ID                uint     `gorm:"primaryKey" json:"-"`
	LoanID            string   `gorm:"uniqueIndex;size:64;not null" json:"loanId"`
	LoanTitle         string   `gorm:"size:200;not null" json:"loanTitle"`
	Description       string   `gorm:"type:text" json:"description"`
	Category          string   `gorm:"size:100;index" json:"category"`
	InterestRate      *float64 `json:"interestRate"`
	MaxLoanLimit      *float64 `json:"maxLoanLimit"`
	RequiredDocuments string   `gorm:"type:text" json:"requiredDocuments"`
	EMIPlans          string   `gorm:"type:text" json:"emiPlans"`
	ImageURL          string   `gorm:"size:500" json:"imageUrl"`
	ShowOnHome        *bool    `json:"showOnHome"`

	// Three historical ownership fields; see OwnedBy.
	ManagerEmail string `gorm:"size:191;index" json:"managerEmail,omitempty"`
	Email        string `gorm:"size:191;index" json:"email,omitempty"`
	CreatedBy    string `gorm:"size:191;index" json:"createdBy,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsOwnedBy reports whether managerEmail owns the loan. Ownership is the union
// of managerEmail, email and createdBy because older records set only one of them.
func (l *Loan) IsOwnedBy(managerEmail string) bool {
	if managerEmail == "" {
		return false
	}
	return l.ManagerEmail == managerEmail || l.Email == managerEmail || l.CreatedBy == managerEmail
}

// OwnedBy is the query form of IsOwnedBy. Use it on a loans query.
func OwnedBy(managerEmail string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(loans.manager_email = ? OR loans.email = ? OR loans.created_by = ?)",
			managerEmail, managerEmail, managerEmail)
	}
}

// OwnedLoanIDs returns a subquery selecting the loan_id of every loan owned by managerEmail
func OwnedLoanIDs(db *gorm.DB, managerEmail string) *gorm.DB {
	q := db.Session(&gorm.Session{NewDB: true}).Model(&Loan{}).Select("loans.loan_id")
	return OwnedBy(managerEmail)(q)
}

// ============================================================
// Applications
// ============================================================

// Application represents a borrower's application against a loan
type Application struct {
	ID                   uint       `gorm:"primaryKey" json:"-"`
	ApplicationID        string     `gorm:"uniqueIndex;size:64;not null" json:"applicationId"`
	LoanID               string     `gorm:"size:64;index" json:"loanId"`
	LoanTitle            string     `gorm:"size:200;index" json:"loanTitle"`
	Email                string     `gorm:"size:191;index" json:"email"`
	FirstName            string     `gorm:"size:100" json:"firstName"`
	LastName             string     `gorm:"size:100" json:"lastName"`
	ContactNumber        string     `gorm:"size:50" json:"contactNumber"`
	NationalID           string     `gorm:"size:50" json:"nationalId"`
	IncomeSource         string     `gorm:"size:100" json:"incomeSource"`
	MonthlyIncome        string     `gorm:"size:50" json:"monthlyIncome"`
	LoanAmount           TextAmount `gorm:"type:varchar(64)" json:"loanAmount"`
	Reason               string     `gorm:"type:text" json:"reason"`
	Address              string     `gorm:"type:text" json:"address"`
	ExtraNotes           string     `gorm:"type:text" json:"extraNotes"`
	Status               string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ApplicationFeeStatus string     `gorm:"size:20;not null;default:'unpaid'" json:"applicationFeeStatus"`
	CreatedAt            time.Time  `gorm:"index" json:"createdAt"`
	StatusUpdatedAt      *time.Time `json:"statusUpdatedAt,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// TextAmount is a money value stored as text. Clients send it either as a
// JSON number or a JSON string; both are kept verbatim.
type TextAmount string

// UnmarshalJSON accepts numbers and strings
func (a *TextAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = TextAmount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = TextAmount(n.String())
	return nil
}

// ============================================================
// Payments
// ============================================================

// Payment records a confirmed application-fee payment. TransactionID is the
// idempotency key and is unique at the store level.
type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	TransactionID string          `gorm:"uniqueIndex;size:191;not null" json:"transactionId"`
	ApplicationID string          `gorm:"size:64;index" json:"applicationId"`
	LoanID        string          `gorm:"size:64" json:"loanId"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Currency      string          `gorm:"size:10" json:"currency"`
	CustomerEmail string          `gorm:"size:191;index" json:"customerEmail"`
	PaidAt        time.Time       `json:"paidAt"`
}

func (Payment) TableName() string {
	return "payments"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Loan{},
		&Application{},
		&Payment{},
	)
}
