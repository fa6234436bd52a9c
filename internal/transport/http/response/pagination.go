package response

// Pagination 列表响应的分页信息，totalPages = ceil(total / limit)
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
