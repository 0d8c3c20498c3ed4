package main

import (
	"errors"
	"fmt"

	"bezs/internal/database"
	"bezs/internal/models"
	"bezs/pkg/config"
	"bezs/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData(cfg *config.Config) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	if err := createDefaultAdmin(database.GetDB(), cfg.Seed); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultAdmin 创建平台管理员，已存在则跳过
func createDefaultAdmin(db *gorm.DB, seed config.SeedConfig) error {
	if seed.AdminUsername == "" {
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", seed.AdminUsername).First(&existing).Error
	if err == nil {
		logger.GetLogger().Info("默认管理员已存在，跳过创建")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &models.User{
		Username: seed.AdminUsername,
		Email:    seed.AdminEmail,
		Name:     "平台管理员",
		Role:     models.PlatformRoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := admin.SetPassword(seed.AdminPassword); err != nil {
		return err
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.GetLogger().Infof("默认管理员创建成功: %s", admin.Username)
	return nil
}
