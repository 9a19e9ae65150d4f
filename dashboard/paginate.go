package dashboard

const PageSize = 6

type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// Paginate returns page number (1-based) of items. Out of range numbers are
// clamped to the first or last page.
func Paginate[T any](items []T, number int, size int) Page[T] {
	totalPages := (len(items) + size - 1) / size
	if totalPages == 0 {
		return Page[T]{Items: []T{}, Number: 1, TotalPages: 0}
	}

	number = max(1, min(number, totalPages))

	start := (number - 1) * size
	end := min(start+size, len(items))

	return Page[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		TotalItems: len(items),
	}
}
