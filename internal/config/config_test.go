package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DEV_DB_NAME", "loans_test")
	t.Setenv("APPLICATION_FEE_CENTS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsDev())
	require.Equal(t, "loans_test", cfg.Database.DBName)
	require.Equal(t, int64(1000), cfg.Stripe.FeeCents)
	require.Equal(t, "usd", cfg.Stripe.FeeCurrency)
	require.Equal(t, "30 8 * * *", cfg.Cron.DailyReportSpec)
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ProdNeedsSecret(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("PROD_JWT_SECRET", "real-secret")
	t.Setenv("PROD_DB_HOST", "db.internal")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.True(t, cfg.IsProd())
}

func TestLoad_InvalidFee(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("APPLICATION_FEE_CENTS", "ten")
	_, err := Load()
	require.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(DatabaseConfig{Host: "h", Port: "3306", User: "u", Password: "p", DBName: "d"})
	require.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}
