package util

import "math"

// MaxPage bounds page numbers so offsets stay well inside int64.
const MaxPage = math.MaxInt32

func clampPage(page int) int {
	switch {
	case page < 1:
		return 1
	case page > MaxPage:
		return MaxPage
	}
	return page
}

// Calculate turns a 1-based page number into the clamped page and its row offset.
func Calculate(page, size int) (current, from int) {
	page = clampPage(page)
	return page, int(int64(page-1) * int64(size))
}

// Meta places a page among total items split into pages of size.
type Meta struct {
	Current     int
	Next        int
	Previous    int
	Last        int
	HasNext     bool
	HasPrevious bool
}

func PageMeta(page, size int, total int64) Meta {
	page = clampPage(page)
	last := (total + int64(size) - 1) / int64(size)
	return Meta{
		Current:     page,
		Next:        page + 1,
		Previous:    page - 1,
		Last:        int(last),
		HasNext:     int64(page) < last,
		HasPrevious: page > 1,
	}
}
