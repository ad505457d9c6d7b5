package services

import (
	"context"
	"testing"

	"microloan/internal/adapters/persistence/models"
	"microloan/internal/adapters/persistence/testdb"
	"microloan/internal/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCronService_RunDailyReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })

	db := testdb.New(t)
	testdb.MustCreate(t, db, &models.User{Email: "a@x.io", Role: "admin"})

	s, err := NewCronService(NewDashboardService(db), "30 8 * * *")
	require.NoError(t, err)
	require.NoError(t, s.RunDailyReport(context.Background()))

	entries := logs.FilterMessage("daily report").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(1), entries[0].ContextMap()["users"])
}

func TestCronService_InvalidSpec(t *testing.T) {
	_, err := NewCronService(nil, "not a spec")
	require.Error(t, err)
}
