// Package testutil holds fixtures shared by repository, service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/database"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewSQLiteDB(dsn, gormlogger.Discard, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// ShopContext returns a context scoped to a fresh shop id.
func ShopContext() (context.Context, uuid.UUID) {
	shopID := uuid.New()
	return repository.WithShop(context.Background(), shopID), shopID
}
