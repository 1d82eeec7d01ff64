// Package listview implements the client-side search, sort and paginate
// pipeline shared by the company and contract lists.
package listview

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction int

const (
	Desc Direction = iota
	Asc
)

func (d Direction) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortKey extracts a comparable value from an item. Exactly one of Number
// and Text is set.
type SortKey[T any] struct {
	Number func(T) float64
	Text   func(T) string
}

// Numeric builds a numeric sort key.
func Numeric[T any](f func(T) float64) SortKey[T] { return SortKey[T]{Number: f} }

// Textual builds a text sort key compared by collation.
func Textual[T any](f func(T) string) SortKey[T] { return SortKey[T]{Text: f} }

// Schema describes how a list of T is searched and sorted.
type Schema[T any] struct {
	// Fields returns the searchable text of an item.
	Fields []func(T) string
	Keys   map[string]SortKey[T]
	// Locale selects the collation for text keys. Empty means Chinese.
	Locale string

	once     sync.Once
	collator *collate.Collator
	mu       sync.Mutex
}

// Search keeps items where any field contains query, ignoring case. A blank
// query returns items unchanged.
func (s *Schema[T]) Search(items []T, query string) []T {
	q := strings.TrimSpace(query)
	if q == "" {
		return items
	}
	// a Caser keeps state, so each search gets its own
	folder := cases.Fold()
	q = folder.String(q)
	out := make([]T, 0, len(items))
	for _, it := range items {
		for _, f := range s.Fields {
			if strings.Contains(folder.String(f(it)), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of items. An unknown key returns a copy
// in the original order.
func (s *Schema[T]) Sort(items []T, key string, dir Direction) []T {
	out := slices.Clone(items)
	k, ok := s.Keys[key]
	if !ok {
		return out
	}
	var compare func(a, b T) int
	switch {
	case k.Number != nil:
		compare = func(a, b T) int { return cmp.Compare(k.Number(a), k.Number(b)) }
	case k.Text != nil:
		col := s.collatorFor()
		compare = func(a, b T) int {
			s.mu.Lock()
			defer s.mu.Unlock()
			return col.CompareString(k.Text(a), k.Text(b))
		}
	default:
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := compare(a, b)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// collate.Collator is not safe for concurrent use, hence the mutex in Sort.
func (s *Schema[T]) collatorFor() *collate.Collator {
	s.once.Do(func() {
		tag := language.Chinese
		if s.Locale != "" {
			if t, err := language.Parse(s.Locale); err == nil {
				tag = t
			}
		}
		s.collator = collate.New(tag)
	})
	return s.collator
}

// Page is one page of a list.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Paginate cuts the 1-based page out of items. A page past the end clamps
// to the last page and a page below 1 becomes 1.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// SortState is the active sort column and direction.
type SortState struct {
	Key string
	Dir Direction
}

// Select applies a click on a column header: the active key flips
// direction, a new key starts descending.
func (s SortState) Select(key string) SortState {
	if key == s.Key {
		return SortState{Key: key, Dir: s.Dir.Toggle()}
	}
	return SortState{Key: key, Dir: Desc}
}

// View holds the query, sort and page of a list screen.
type View struct {
	Query    string
	Sort     SortState
	Page     int
	PageSize int
}

// Apply runs search, sort and paginate, in that order. It also clamps v.Page
// so a narrowed result set never shows an empty page.
func Apply[T any](s *Schema[T], v *View, items []T) Page[T] {
	matched := s.Search(items, v.Query)
	sorted := s.Sort(matched, v.Sort.Key, v.Sort.Dir)
	p := Paginate(sorted, v.Page, v.PageSize)
	v.Page = p.Page
	return p
}

// SetQuery changes the query and returns to the first page.
func (v *View) SetQuery(q string) {
	v.Query = q
	v.Page = 1
}

// SelectSort applies a column click and returns to the first page.
func (v *View) SelectSort(key string) {
	v.Sort = v.Sort.Select(key)
	v.Page = 1
}

// PageWindow returns the page numbers shown in a pagination bar: at most
// visible pages, centred on current where possible.
func PageWindow(current, totalPages, visible int) []int {
	if totalPages <= 0 || visible <= 0 {
		return nil
	}
	current = max(1, min(totalPages, current))
	start := max(1, current-visible/2)
	end := min(totalPages, start+visible-1)
	start = max(1, end-visible+1)
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}
