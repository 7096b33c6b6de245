package dto

// ListQuery is the pagination shared by list endpoints
type ListQuery struct {
	Limit  int `form:"limit" binding:"omitempty,gte=0,lte=1000"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

// ListResponse wraps a page of items
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse maps every element with fn
func NewListResponse[E any, T any](items []E, q ListQuery, fn func(E) T) ListResponse[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return ListResponse[T]{Items: out, Limit: q.Limit, Offset: q.Offset}
}
