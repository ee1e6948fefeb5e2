// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type PaginationResult struct {
	Items    interface{} `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int64       `json:"total"`
}

// GetPaginationParams reads page and page_size. Non-numeric values become 0
// so the caller's range check rejects them instead of silently defaulting.
func GetPaginationParams(c *gin.Context, defaultPageSize int) PaginationParams {
	return PaginationParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", defaultPageSize),
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Offset is (page-1)*page_size. ok is false when page or page_size is below
// 1 or the offset does not fit in an int.
func (p PaginationParams) Offset() (offset int, ok bool) {
	if p.Page < 1 || p.PageSize < 1 {
		return 0, false
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return 0, false
	}
	return (p.Page - 1) * p.PageSize, true
}

// ApplyPagination expects params that passed Offset.
func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	offset, _ := params.Offset()
	return db.Offset(offset).Limit(params.PageSize)
}

func CreatePaginationResult(items interface{}, total int64, params PaginationParams) PaginationResult {
	return PaginationResult{
		Items:    items,
		Page:     params.Page,
		PageSize: params.PageSize,
		Total:    total,
	}
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.PageSize))
}
