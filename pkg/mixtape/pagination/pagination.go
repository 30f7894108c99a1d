// Package pagination implements the shared page/per_page envelope used
// by every list endpoint.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params are the sanitized paging inputs for a request
type Params struct {
	Page    int
	PerPage int
}

// Meta describes one page of a paginated collection
type Meta struct {
	TotalCount  int64 `json:"total_count"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
}

// Parse reads page and per_page from the query string. Page is at
// least 1; per_page defaults to 20 and is clamped to [1, 100].
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}

	perPage, err := strconv.Atoi(c.Query("per_page"))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	return Params{Page: page, PerPage: perPage}
}

// Apply adds the offset/limit for p to a query
func Apply(db *gorm.DB, p Params) *gorm.DB {
	return db.Offset((p.Page - 1) * p.PerPage).Limit(p.PerPage)
}

// BuildMeta computes the page metadata for a total row count
func BuildMeta(total int64, p Params) Meta {
	totalPages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return Meta{
		TotalCount:  total,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		TotalPages:  totalPages,
	}
}

// Slice pages an in-memory list, for collections that are assembled
// before paging (ordered playlist tracks).
func Slice[T any](items []T, p Params) []T {
	start := (p.Page - 1) * p.PerPage
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
