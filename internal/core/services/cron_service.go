package services

import (
	"context"
	"fmt"

	"microloan/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService runs scheduled background jobs
type CronService struct {
	cron      *cron.Cron
	dashboard *DashboardService
}

// NewCronService creates a cron service that logs the admin dashboard on spec
func NewCronService(dashboard *DashboardService, spec string) (*CronService, error) {
	s := &CronService{
		cron:      cron.New(),
		dashboard: dashboard,
	}
	if _, err := s.cron.AddFunc(spec, func() {
		_ = s.RunDailyReport(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("schedule daily report %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	logger.Info(context.Background(), "cron service started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(context.Background(), "cron service stopped")
}

// RunDailyReport computes the admin dashboard and logs a one-line summary
func (s *CronService) RunDailyReport(ctx context.Context) error {
	data, err := s.dashboard.GetAdminDashboard(ctx)
	if err != nil {
		logger.Error(ctx, "daily report failed", zap.Error(err))
		return err
	}

	logger.Info(ctx, "daily report",
		zap.Int64("users", data.TotalUsers),
		zap.Int64("loans", data.TotalLoans),
		zap.Int64("applications", data.TotalApplications),
		zap.Float64("totalApplicationAmount", data.TotalApplicationAmount),
		zap.Float64("approvedAmount", data.ApprovedAmount),
	)
	return nil
}
