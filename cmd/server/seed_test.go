package main

import (
	"testing"

	"bezs/internal/database"
	"bezs/internal/models"
	"bezs/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestCreateDefaultAdmin_Idempotent(t *testing.T) {
	db, err := database.Open(sqlite.Open(":memory:"), "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.MigrateDB(db))

	seed := config.SeedConfig{AdminUsername: "admin", AdminPassword: "Admin@123", AdminEmail: "admin@bezs.local"}
	require.NoError(t, createDefaultAdmin(db, seed))
	require.NoError(t, createDefaultAdmin(db, seed))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsPlatformAdmin())
	assert.True(t, users[0].CheckPassword("Admin@123"))

	// 未配置用户名时不创建
	require.NoError(t, createDefaultAdmin(db, config.SeedConfig{}))
}
