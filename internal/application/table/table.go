// Package table shapes an in-memory list for display: search, per-column filters,
// single-column sort, pagination, responsive column tiers, swipe actions and spreadsheet
// export. The displayed page is a pure function of the full list and the view state.
package table

import (
	"slices"
	"strings"
)

type Tier string

const (
	TierAlways   Tier = "always"
	TierDesktop  Tier = "desktop"
	TierExpanded Tier = "expanded"
)

type Column[T any] struct {
	Key    string
	Header string
	// Value extracts the text used for search, filter and sort.
	Value func(T) string
	// Render produces the display and export text; Value is used when nil.
	Render     func(T) string
	Searchable bool
	Tier       Tier
}

func (c Column[T]) Text(row T) string {
	if c.Render != nil {
		return c.Render(row)
	}
	return c.Value(row)
}

type Direction string

const (
	DirNone Direction = ""
	DirAsc  Direction = "asc"
	DirDesc Direction = "desc"
)

type Sort struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Toggle advances the sort for a header click: the same column cycles
// none -> asc -> desc -> none, a different column starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key != key || s.Direction == DirNone {
		return Sort{Key: key, Direction: DirAsc}
	}
	if s.Direction == DirAsc {
		return Sort{Key: key, Direction: DirDesc}
	}
	return Sort{}
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Filter keeps rows matching the global search on any searchable column and every
// non-empty per-column filter. Matching is case-insensitive substring. When no column is
// marked searchable, all columns are.
func Filter[T any](rows []T, cols []Column[T], search string, filters map[string]string) []T {
	search = strings.ToLower(strings.TrimSpace(search))
	searchCols := searchable(cols)
	active := activeFilters(cols, filters)
	if search == "" && len(active) == 0 {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if search != "" && !anyContains(row, searchCols, search) {
			continue
		}
		if !allMatch(row, active) {
			continue
		}
		out = append(out, row)
	}
	return out
}

type columnFilter[T any] struct {
	col    Column[T]
	needle string
}

func activeFilters[T any](cols []Column[T], filters map[string]string) []columnFilter[T] {
	var out []columnFilter[T]
	for _, c := range cols {
		v := strings.ToLower(strings.TrimSpace(filters[c.Key]))
		if v != "" {
			out = append(out, columnFilter[T]{col: c, needle: v})
		}
	}
	return out
}

func searchable[T any](cols []Column[T]) []Column[T] {
	var out []Column[T]
	for _, c := range cols {
		if c.Searchable {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cols
	}
	return out
}

func anyContains[T any](row T, cols []Column[T], needle string) bool {
	for _, c := range cols {
		if strings.Contains(strings.ToLower(c.Value(row)), needle) {
			return true
		}
	}
	return false
}

func allMatch[T any](row T, filters []columnFilter[T]) bool {
	for _, f := range filters {
		if !strings.Contains(strings.ToLower(f.col.Value(row)), f.needle) {
			return false
		}
	}
	return true
}

// SortRows returns a sorted copy. Comparison is lexicographic on the extracted text, so
// numeric columns sort as strings. An unsorted state returns rows untouched.
func SortRows[T any](rows []T, cols []Column[T], s Sort) []T {
	if s.Direction == DirNone {
		return rows
	}
	idx := slices.IndexFunc(cols, func(c Column[T]) bool { return c.Key == s.Key })
	if idx < 0 {
		return rows
	}
	col := cols[idx]
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		cmp := strings.Compare(col.Value(a), col.Value(b))
		if s.Direction == DirDesc {
			return -cmp
		}
		return cmp
	})
	return out
}

// Paginate slices rows into 1-based pages; an out-of-range page is clamped.
func Paginate[T any](rows []T, page, size int) Page[T] {
	if size <= 0 {
		size = len(rows)
		if size == 0 {
			size = 1
		}
	}
	total := len(rows)
	pages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := min(start+size, total)
	items := []T{}
	if start < total {
		items = slices.Clone(rows[start:end])
	}
	return Page[T]{Items: items, Page: page, PageSize: size, TotalItems: total, TotalPages: pages}
}

// Rows is the filtered and sorted dataset before pagination.
func Rows[T any](rows []T, cols []Column[T], st State) []T {
	return SortRows(Filter(rows, cols, st.Search, st.Filters), cols, st.Sort)
}

func Apply[T any](rows []T, cols []Column[T], st State) Page[T] {
	return Paginate(Rows(rows, cols, st), st.Page, st.PageSize)
}
