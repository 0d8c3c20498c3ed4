package database

import (
	"bezs/internal/models"
	"bezs/pkg/logger"

	"gorm.io/gorm"
)

// Migrate 执行数据库迁移
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB 对指定连接执行迁移
func MigrateDB(db *gorm.DB) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	// 父表在前，关联表在后
	err := db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Role{},
		&models.App{},
		&models.AppMenuItem{},
		&models.AppAction{},
		&models.AppOrganization{},
		&models.RBAC{},
		&models.MenuPermission{},
		&models.ActionPermission{},
		&models.AuditLog{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
