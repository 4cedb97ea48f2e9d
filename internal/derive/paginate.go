package derive

import (
	"github.com/draze/draze-cli/internal/common/apperrors"
)

var ErrInvalidPage apperrors.Error = apperrors.New("page and page size must be at least 1")

// Page is one slice of a list together with its position.
type Page[T any] struct {
	Items      []T `json:"items"`
	PageNum    int `json:"pageNum"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PageCount returns ceil(n/size). An empty list has zero pages.
func PageCount(n, size int) int {
	if size < 1 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns list[(page-1)*size : page*size], clamped to the list. Pages past the
// end are empty.
func Paginate[T any](list []T, page, size int) (Page[T], error) {
	if page < 1 || size < 1 {
		return Page[T]{}, ErrInvalidPage
	}
	p := Page[T]{
		Items:      []T{},
		PageNum:    page,
		PageSize:   size,
		Total:      len(list),
		TotalPages: PageCount(len(list), size),
	}
	start := (page - 1) * size
	if start >= len(list) {
		return p, nil
	}
	end := min(start+size, len(list))
	p.Items = append(p.Items, list[start:end]...)
	return p, nil
}

func (p Page[T]) HasNext() bool {
	return p.PageNum < p.TotalPages
}

func (p Page[T]) HasPrev() bool {
	return p.PageNum > 1
}
