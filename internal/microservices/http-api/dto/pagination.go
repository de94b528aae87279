package dto

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery binds ?page=&page_size= on list endpoints.
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills defaults and clamps the page size.
func (q PageQuery) Normalize() (page, pageSize int) {
	page, pageSize = q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Paginated is the envelope returned by every list endpoint
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a paginated response
func NewPaginated[T any](data []T, total int64, page, pageSize int) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &Paginated[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// MapPage converts a page of models into a page of responses
func MapPage[M any, T any](list []M, total int64, page, pageSize int, convert func(*M) T) *Paginated[T] {
	data := make([]T, 0, len(list))
	for i := range list {
		data = append(data, convert(&list[i]))
	}
	return NewPaginated(data, total, page, pageSize)
}
