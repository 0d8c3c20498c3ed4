package models

// Organization 组织（租户边界）
type Organization struct {
	BaseModel
	Name string `json:"name" gorm:"not null;size:100"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null;size:50"` // 全小写
}

// TableName 表名
func (o *Organization) TableName() string {
	return "organizations"
}
