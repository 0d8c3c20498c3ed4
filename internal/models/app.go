package models

// App 平台注册的子应用，如 telemedicine、filenest
type App struct {
	BaseModel
	Name        string `json:"name" gorm:"not null;size:100"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null;size:50"`
	Type        string `json:"type" gorm:"not null;default:'custom';size:20"`
	Description string `json:"description" gorm:"size:255"`

	MenuItems []AppMenuItem `json:"menu_items,omitempty" gorm:"foreignKey:AppID"`
	Actions   []AppAction   `json:"actions,omitempty" gorm:"foreignKey:AppID"`
}

// TableName 表名
func (a *App) TableName() string {
	return "apps"
}

// 应用类型常量
const (
	AppTypePlatform = "platform"
	AppTypeCustom   = "custom"
)

// AppMenuItem 应用菜单项
type AppMenuItem struct {
	BaseModel
	AppID       uint   `json:"app_id" gorm:"not null;uniqueIndex:idx_app_menu_slug"`
	Name        string `json:"name" gorm:"not null;size:100"`
	Slug        string `json:"slug" gorm:"not null;size:100;uniqueIndex:idx_app_menu_slug"`
	Description string `json:"description" gorm:"size:255"`
	Icon        string `json:"icon" gorm:"size:100"`
}

// TableName 表名
func (m *AppMenuItem) TableName() string {
	return "app_menu_items"
}

// AppAction 应用操作
type AppAction struct {
	BaseModel
	AppID       uint   `json:"app_id" gorm:"not null;uniqueIndex:idx_app_action_name"`
	ActionName  string `json:"action_name" gorm:"not null;size:100;uniqueIndex:idx_app_action_name"`
	Description string `json:"description" gorm:"size:255"`
	Icon        string `json:"icon" gorm:"size:100"`
	ActionType  string `json:"action_type" gorm:"not null;default:'button';size:20"`
}

// TableName 表名
func (a *AppAction) TableName() string {
	return "app_actions"
}

// 操作类型常量
const (
	ActionTypeButton = "button"
	ActionTypeLink   = "link"
)
