// Package pagination normalizes page and size query parameters into a
// deterministic window. Inputs may be absent, non-numeric, negative or huge.
package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultSize = 10
	MaxSize     = 10

	// MaxPage caps the page index so the computed row offset stays inside
	// the positive int range on every platform.
	MaxPage = math.MaxInt32 / MaxSize
)

type Page struct {
	Page int
	Size int
}

// Normalize clamps raw query values: a non-numeric or negative page becomes 0,
// a page beyond MaxPage becomes MaxPage, and a non-numeric, zero, negative or
// out-of-range size becomes DefaultSize.
func Normalize(rawPage, rawSize string) Page {
	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}

	size, err := strconv.Atoi(rawSize)
	if err != nil || size < 1 || size > MaxSize {
		size = DefaultSize
	}

	return Page{Page: page, Size: size}
}

// Offset is the row offset of the window start.
func (p Page) Offset() int { return p.Page * p.Size }

// TotalPages is ceil(count / size).
func (p Page) TotalPages(count int64) int {
	return int((count + int64(p.Size) - 1) / int64(p.Size))
}
