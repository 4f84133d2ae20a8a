package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 分页默认值：列表接口（发货单、包裹、用户等）统一使用
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100 // 单页上限，防止一次拉取整个租户的数据
)

// PageParams 列表查询的分页参数，由请求解析得到
type PageParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// PageInfo 返回给调用方的分页元信息
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`       // 过滤条件下的总记录数
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParsePageParams 解析page/page_size查询参数，非法值回退到默认值并夹取上限
func ParsePageParams(c *gin.Context) *PageParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &PageParams{Page: page, PageSize: pageSize}
}

// GetOffset 转换为SQL偏移量，供列表查询的Offset使用
func (p *PageParams) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit 转换为SQL行数上限，供列表查询的Limit使用
func (p *PageParams) GetLimit() int {
	return p.PageSize
}

// NewPageInfo 根据总记录数计算分页元信息
func NewPageInfo(params *PageParams, total int64) *PageInfo {
	totalPages := int(math.Ceil(float64(total) / float64(params.PageSize)))

	return &PageInfo{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
