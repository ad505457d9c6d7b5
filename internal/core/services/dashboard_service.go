package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/core/domain"
	"microloan/internal/pkg/amount"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Dashboard bounds
const (
	RecentUsersLimit        = 5
	RecentApplicationsLimit = 5
	RecentLoansLimit        = 5
	TopLoansLimit           = 5
	TrendMonths             = 6
)

// DashboardService builds the read-only admin and manager dashboards.
// Every call reads fresh from the store; nothing is cached.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

// RoleCount is the number of users holding a role
type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

// StatusCount is the number of applications in a status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CategoryCount is the number of applications per loan category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// MonthlyCount is one point of an application trend line
type MonthlyCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// UserSummary is the projection used for recent users
type UserSummary struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApplicationSummary is the fixed projection used for recent applications
type ApplicationSummary struct {
	ApplicationID        string    `json:"applicationId"`
	LoanID               string    `json:"loanId"`
	LoanTitle            string    `json:"loanTitle"`
	Email                string    `json:"email"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	LoanAmount           string    `json:"loanAmount"`
	Status               string    `json:"status"`
	ApplicationFeeStatus string    `json:"applicationFeeStatus"`
	CreatedAt            time.Time `json:"createdAt"`
}

// LoanSummary is a field-reduced loan with optional values defaulted
type LoanSummary struct {
	LoanID       string    `json:"loanId"`
	LoanTitle    string    `json:"loanTitle"`
	Category     string    `json:"category"`
	InterestRate float64   `json:"interestRate"`
	MaxLoanLimit float64   `json:"maxLoanLimit"`
	ShowOnHome   bool      `json:"showOnHome"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TopLoan ranks a loan title by application count with its monthly trend
type TopLoan struct {
	LoanTitle        string         `json:"loanTitle"`
	ApplicationCount int64          `json:"applicationCount"`
	Monthly          []MonthlyCount `json:"monthly"`
}

// ManagerTopLoan ranks an owned loan title by application count
type ManagerTopLoan struct {
	LoanTitle        string  `json:"loanTitle"`
	ApplicationCount int64   `json:"applicationCount"`
	TotalAmount      float64 `json:"totalAmount"`
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	TotalUsers  int64         `json:"totalUsers"`
	UsersByRole []RoleCount   `json:"usersByRole"`
	RecentUsers []UserSummary `json:"recentUsers"`

	TotalLoans int64 `json:"totalLoans"`

	TotalApplications    int64         `json:"totalApplications"`
	ApplicationsByStatus []StatusCount `json:"applicationsByStatus"`

	TotalApplicationAmount float64 `json:"totalApplicationAmount"`
	ApprovedAmount         float64 `json:"approvedAmount"`

	RecentApplications []ApplicationSummary `json:"recentApplications"`
	TopLoans           []TopLoan            `json:"topLoans"`
}

// GetAdminDashboard aggregates the whole dataset
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	db := s.db.WithContext(ctx)
	data := &AdminDashboardData{}

	// Users by role
	data.UsersByRole = []RoleCount{}
	if err := db.Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Order("role ASC").
		Scan(&data.UsersByRole).Error; err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	for _, rc := range data.UsersByRole {
		data.TotalUsers += rc.Count
	}

	// Recent users
	data.RecentUsers = []UserSummary{}
	if err := db.Model(&models.User{}).
		Select("email, display_name, photo_url, role, created_at").
		Order("created_at DESC").
		Limit(RecentUsersLimit).
		Scan(&data.RecentUsers).Error; err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}

	if err := db.Model(&models.Loan{}).Count(&data.TotalLoans).Error; err != nil {
		return nil, fmt.Errorf("total loans: %w", err)
	}

	// Applications by status
	byStatus, err := s.applicationsByStatus(db, nil)
	if err != nil {
		return nil, err
	}
	data.ApplicationsByStatus = byStatus
	for _, sc := range byStatus {
		data.TotalApplications += sc.Count
	}

	// Amounts. loan_amount is text, so coercion happens here rather than in SQL.
	var amounts []struct {
		Status     string
		LoanAmount *string
	}
	if err := db.Model(&models.Application{}).
		Select("status, loan_amount").
		Scan(&amounts).Error; err != nil {
		return nil, fmt.Errorf("application amounts: %w", err)
	}
	total, approved := decimal.Zero, decimal.Zero
	for _, a := range amounts {
		v := amount.Parse(deref(a.LoanAmount))
		total = total.Add(v)
		if a.Status == string(domain.StatusApproved) {
			approved = approved.Add(v)
		}
	}
	data.TotalApplicationAmount = total.InexactFloat64()
	data.ApprovedAmount = approved.InexactFloat64()

	// Recent applications
	recent, err := s.recentApplications(db, nil)
	if err != nil {
		return nil, err
	}
	data.RecentApplications = recent

	// Top loans with monthly trend
	ranked, err := s.topLoanTitles(db, nil)
	if err != nil {
		return nil, err
	}
	data.TopLoans = make([]TopLoan, 0, len(ranked))
	for _, r := range ranked {
		var created []time.Time
		if err := db.Model(&models.Application{}).
			Where("loan_title = ?", r.LoanTitle).
			Pluck("created_at", &created).Error; err != nil {
			return nil, fmt.Errorf("monthly trend for %q: %w", r.LoanTitle, err)
		}
		data.TopLoans = append(data.TopLoans, TopLoan{
			LoanTitle:        r.LoanTitle,
			ApplicationCount: r.ApplicationCount,
			Monthly:          bucketByMonth(created),
		})
	}

	return data, nil
}

// ============================================================
// Manager Dashboard
// ============================================================

// ManagerDashboardData represents manager dashboard data. Every figure is
// restricted to loans owned by the manager.
type ManagerDashboardData struct {
	TotalLoans int64 `json:"totalLoans"`

	TotalApplications    int64         `json:"totalApplications"`
	PendingApplications  int64         `json:"pendingApplications"`
	ApprovedApplications int64         `json:"approvedApplications"`
	RejectedApplications int64         `json:"rejectedApplications"`
	ApplicationsByStatus []StatusCount `json:"applicationsByStatus"`

	TotalApplicationAmount float64 `json:"totalApplicationAmount"`

	ApplicationsByCategory []CategoryCount      `json:"applicationsByCategory"`
	RecentApplications     []ApplicationSummary `json:"recentApplications"`
	RecentLoans            []LoanSummary        `json:"recentLoans"`
	MonthlyTrend           []MonthlyCount       `json:"monthlyTrend"`
	TopLoans               []ManagerTopLoan     `json:"topLoans"`
}

// GetManagerDashboard aggregates the loans owned by managerEmail
func (s *DashboardService) GetManagerDashboard(ctx context.Context, managerEmail string) (*ManagerDashboardData, error) {
	db := s.db.WithContext(ctx)
	data := &ManagerDashboardData{}
	owned := func(q *gorm.DB) *gorm.DB {
		return q.Where("applications.loan_id IN (?)", models.OwnedLoanIDs(s.db, managerEmail))
	}

	if err := models.OwnedBy(managerEmail)(db.Model(&models.Loan{})).Count(&data.TotalLoans).Error; err != nil {
		return nil, fmt.Errorf("owned loans: %w", err)
	}

	// Status counts
	byStatus, err := s.applicationsByStatus(db, owned)
	if err != nil {
		return nil, err
	}
	data.ApplicationsByStatus = byStatus
	for _, sc := range byStatus {
		data.TotalApplications += sc.Count
		switch domain.ApplicationStatus(sc.Status) {
		case domain.StatusPending:
			data.PendingApplications = sc.Count
		case domain.StatusApproved:
			data.ApprovedApplications = sc.Count
		case domain.StatusRejected:
			data.RejectedApplications = sc.Count
		}
	}

	// Total amount
	var raw []string
	if err := owned(db.Model(&models.Application{})).Pluck(loanAmountText, &raw).Error; err != nil {
		return nil, fmt.Errorf("owned application amounts: %w", err)
	}
	data.TotalApplicationAmount = amount.Sum(raw).InexactFloat64()

	// Applications by category (join back to the loan)
	var byCategory []struct {
		Category *string
		Count    int64
	}
	if err := owned(db.Model(&models.Application{})).
		Select("loans.category AS category, COUNT(*) AS count").
		Joins("LEFT JOIN loans ON loans.loan_id = applications.loan_id").
		Group("loans.category").
		Scan(&byCategory).Error; err != nil {
		return nil, fmt.Errorf("applications by category: %w", err)
	}
	merged := map[string]int64{}
	for _, c := range byCategory {
		merged[categoryOrDefault(deref(c.Category))] += c.Count
	}
	data.ApplicationsByCategory = make([]CategoryCount, 0, len(merged))
	for cat, n := range merged {
		data.ApplicationsByCategory = append(data.ApplicationsByCategory, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(data.ApplicationsByCategory, func(i, j int) bool {
		a, b := data.ApplicationsByCategory[i], data.ApplicationsByCategory[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	// Recent applications
	recent, err := s.recentApplications(db, owned)
	if err != nil {
		return nil, err
	}
	data.RecentApplications = recent

	// Recent owned loans
	var loans []models.Loan
	if err := models.OwnedBy(managerEmail)(db.Model(&models.Loan{})).
		Order("loans.created_at DESC").
		Limit(RecentLoansLimit).
		Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("recent loans: %w", err)
	}
	data.RecentLoans = make([]LoanSummary, 0, len(loans))
	for i := range loans {
		data.RecentLoans = append(data.RecentLoans, summarizeLoan(&loans[i]))
	}

	// Trailing trend
	cutoff := s.now().UTC().AddDate(0, -TrendMonths, 0)
	var created []time.Time
	if err := owned(db.Model(&models.Application{})).
		Where("applications.created_at >= ?", cutoff).
		Pluck("applications.created_at", &created).Error; err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	data.MonthlyTrend = bucketByMonth(created)

	// Top owned loans with total amount
	ranked, err := s.topLoanTitles(db, owned)
	if err != nil {
		return nil, err
	}
	data.TopLoans = make([]ManagerTopLoan, 0, len(ranked))
	for _, r := range ranked {
		var titleAmounts []string
		if err := owned(db.Model(&models.Application{})).
			Where("applications.loan_title = ?", r.LoanTitle).
			Pluck(loanAmountText, &titleAmounts).Error; err != nil {
			return nil, fmt.Errorf("amount for %q: %w", r.LoanTitle, err)
		}
		data.TopLoans = append(data.TopLoans, ManagerTopLoan{
			LoanTitle:        r.LoanTitle,
			ApplicationCount: r.ApplicationCount,
			TotalAmount:      amount.Sum(titleAmounts).InexactFloat64(),
		})
	}

	return data, nil
}

// ============================================================
// Shared stages
// ============================================================

// loanAmountText reads loan_amount with NULL as empty text
const loanAmountText = "COALESCE(applications.loan_amount, '')"

type scope func(*gorm.DB) *gorm.DB

func applyScope(q *gorm.DB, sc scope) *gorm.DB {
	if sc == nil {
		return q
	}
	return sc(q)
}

func (s *DashboardService) applicationsByStatus(db *gorm.DB, sc scope) ([]StatusCount, error) {
	rows := []StatusCount{}
	if err := applyScope(db.Model(&models.Application{}), sc).
		Select("applications.status AS status, COUNT(*) AS count").
		Group("applications.status").
		Order("status ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("applications by status: %w", err)
	}
	return rows, nil
}

func (s *DashboardService) recentApplications(db *gorm.DB, sc scope) ([]ApplicationSummary, error) {
	rows := []ApplicationSummary{}
	if err := applyScope(db.Model(&models.Application{}), sc).
		Select("applications.application_id, applications.loan_id, applications.loan_title, " +
			"applications.email, applications.first_name, applications.last_name, " +
			loanAmountText + " AS loan_amount, applications.status, " +
			"applications.application_fee_status, applications.created_at").
		Order("applications.created_at DESC").
		Limit(RecentApplicationsLimit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}
	return rows, nil
}

type rankedTitle struct {
	LoanTitle        string
	ApplicationCount int64
}

// topLoanTitles ranks by application count. Ties fall in store order.
func (s *DashboardService) topLoanTitles(db *gorm.DB, sc scope) ([]rankedTitle, error) {
	var rows []rankedTitle
	if err := applyScope(db.Model(&models.Application{}), sc).
		Select("applications.loan_title AS loan_title, COUNT(*) AS application_count").
		Group("applications.loan_title").
		Order("application_count DESC").
		Limit(TopLoansLimit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("top loans: %w", err)
	}
	return rows, nil
}

// bucketByMonth groups timestamps by calendar year and month, ascending
func bucketByMonth(times []time.Time) []MonthlyCount {
	type ym struct{ y, m int }
	counts := map[ym]int64{}
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		u := t.UTC()
		counts[ym{u.Year(), int(u.Month())}]++
	}

	out := make([]MonthlyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, MonthlyCount{Year: k.y, Month: k.m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func summarizeLoan(l *models.Loan) LoanSummary {
	ls := LoanSummary{
		LoanID:    l.LoanID,
		LoanTitle: l.LoanTitle,
		Category:  categoryOrDefault(l.Category),
		CreatedAt: l.CreatedAt,
	}
	if l.InterestRate != nil {
		ls.InterestRate = *l.InterestRate
	}
	if l.MaxLoanLimit != nil {
		ls.MaxLoanLimit = *l.MaxLoanLimit
	}
	if l.ShowOnHome != nil {
		ls.ShowOnHome = *l.ShowOnHome
	}
	return ls
}

func categoryOrDefault(c string) string {
	if c == "" {
		return domain.UncategorizedLabel
	}
	return c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
