package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型，身份由认证模块创建，这里只关心平台角色
type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"unique;not null;size:50;index"`
	Email        string     `json:"email" gorm:"size:100;index"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Name         string     `json:"name" gorm:"not null;size:100"`
	Role         string     `json:"role" gorm:"not null;default:'user';size:20"` // 平台级角色
	Status       string     `json:"status" gorm:"default:'active';size:20"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 平台角色常量
const (
	PlatformRoleAdmin = "admin"
	PlatformRoleGuest = "guest"
	PlatformRoleUser  = "user"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsPlatformAdmin 是否平台管理员
func (u *User) IsPlatformAdmin() bool {
	return u.Role == PlatformRoleAdmin
}
