package table

import (
	"errors"
	"maps"
	"slices"
	"sync"
)

var ErrPageSize = errors.New("page size not offered")

var DefaultPageSizes = []int{10, 25, 50, 100}

// State is the derived, never persisted view state of one table.
type State struct {
	Search    string            `json:"search"`
	Filters   map[string]string `json:"filters"`
	Sort      Sort              `json:"sort"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
	PageSizes []int             `json:"page_sizes"`
}

func NewState(pageSizes ...int) State {
	if len(pageSizes) == 0 {
		pageSizes = DefaultPageSizes
	}
	return State{
		Filters:   map[string]string{},
		Page:      1,
		PageSize:  pageSizes[0],
		PageSizes: slices.Clone(pageSizes),
	}
}

func (s *State) SetSearch(q string) {
	if q != s.Search {
		s.Search = q
		s.Page = 1
	}
}

// SetFilter sets one column filter; an empty value removes it.
func (s *State) SetFilter(key, value string) {
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if s.Filters[key] == value {
		return
	}
	if value == "" {
		delete(s.Filters, key)
	} else {
		s.Filters[key] = value
	}
	s.Page = 1
}

func (s *State) ClearFilters() {
	if len(s.Filters) == 0 && s.Search == "" {
		return
	}
	s.Filters = map[string]string{}
	s.Search = ""
	s.Page = 1
}

func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

func (s *State) SetPageSize(size int) error {
	if !slices.Contains(s.PageSizes, size) {
		return ErrPageSize
	}
	if size != s.PageSize {
		s.PageSize = size
		s.Page = 1
	}
	return nil
}

func (s *State) ToggleSort(key string) {
	s.Sort = s.Sort.Toggle(key)
}

func (s State) clone() State {
	s.Filters = maps.Clone(s.Filters)
	s.PageSizes = slices.Clone(s.PageSizes)
	return s
}

// View guards one table's State for a session that may serve overlapping requests.
type View struct {
	mu    sync.Mutex
	state State
}

func NewView(pageSizes ...int) *View {
	return &View{state: NewState(pageSizes...)}
}

func (v *View) Update(fn func(*State) error) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.state.clone()
	if err := fn(&next); err != nil {
		return v.state.clone(), err
	}
	v.state = next
	return next.clone(), nil
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}
