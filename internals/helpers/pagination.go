package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

type Paging struct {
	Page   int
	Limit  int
	Offset int
}

// ResolvePaging reads ?page= and ?limit= (alias ?per_page=).
// maxLimit 0 means unbounded.
func ResolvePaging(c *fiber.Ctx, defaultLimit, maxLimit int) Paging {
	limitStr := strings.TrimSpace(c.Query("limit"))
	if limitStr == "" {
		limitStr = strings.TrimSpace(c.Query("per_page"))
	}
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page", "1")))
	limit, _ := strconv.Atoi(limitStr)
	return NewPaging(page, limit, defaultLimit, maxLimit)
}

func NewPaging(page, limit, defaultLimit, maxLimit int) Paging {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Paging{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func BuildPaginationFromPage(total int64, page, limit int) Pagination {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit)) // ceil
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
