// Package testdb opens an isolated in-memory SQLite database with the
// production schema migrated. Only tests import it.
package testdb

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"microloan/internal/adapters/persistence/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated database private to t
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, models.AutoMigrate(db), "migrate")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// MustCreate inserts every value or fails the test
func MustCreate(t *testing.T, db *gorm.DB, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, db.Create(v).Error)
	}
}
