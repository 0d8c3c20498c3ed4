package models

import (
	"time"
)

// BaseModel 实体表公共字段
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JoinModel 关联表公共字段，关联行只增删不更新，没有 updated_at
type JoinModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
}
