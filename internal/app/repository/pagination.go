package repository

import (
	"gorm.io/gorm"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageInfo describes one page of a paginated result set.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NormalizePage clamps out-of-range paging parameters instead of
// rejecting them: page below 1 becomes 1, page_size outside [1,100]
// becomes 10.
func NormalizePage(page, pageSize int) (int, int) {
	if page < defaultPage {
		page = defaultPage
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

// Paginate counts query, then loads the requested page into dest.
// The count runs on a fresh session so ORDER BY and preloads on query
// do not leak into it.
func Paginate(query *gorm.DB, page, pageSize int, dest interface{}) (*PageInfo, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	if err := query.Limit(pageSize).Offset((page - 1) * pageSize).Find(dest).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
