package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 分页配置
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams 分页参数
type PageParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// PageInfo 分页信息
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Normalize 非法值退回默认值，page_size 不超过 MaxPageSize
func Normalize(page, pageSize int) PageParams {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageParams{Page: page, PageSize: pageSize}
}

// ParsePageParams 从查询参数解析分页，无法解析时使用默认值
func ParsePageParams(c *gin.Context) *PageParams {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	p := Normalize(page, pageSize)
	return &p
}

// Offset 当前页的起始偏移
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Paginate gorm 分页 scope，调用方负责排序以保证翻页稳定
func Paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	p := Normalize(page, pageSize)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// NewPageInfo 计算分页信息
func NewPageInfo(page, pageSize int, total int64) *PageInfo {
	p := Normalize(page, pageSize)
	totalPages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))

	return &PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
