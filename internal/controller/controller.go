// Package controller holds the state behind each list page: what was
// loaded, the current query, sort and page, and the banners raised by
// failed calls. Controllers are safe for concurrent use; the TUI calls them
// from tea commands and the CLI calls them directly.
package controller

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/notify"
)

// DefaultPageSize is the client-side page size of the company and contract
// lists.
const DefaultPageSize = 15

// SortUpdatedAt is the default sort key of every local list.
const SortUpdatedAt = "updatedAt"

type options struct {
	board    *notify.Board
	logger   *zap.Logger
	pageSize int
	locale   string
}

// Option configures a controller.
type Option func(*options)

// WithBoard sends failures and confirmations to b.
func WithBoard(b *notify.Board) Option {
	return func(o *options) { o.board = b }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPageSize overrides the page size.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithLocale sets the collation locale of text sort keys.
func WithLocale(locale string) Option {
	return func(o *options) { o.locale = locale }
}

func buildOptions(defaultPageSize int, opts []Option) options {
	o := options{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.board == nil {
		o.board = notify.New()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// local is a fully loaded list filtered, sorted and paged in memory.
type local[T any] struct {
	mu     sync.Mutex
	items  []T
	loaded bool
	view   listview.View
	schema *listview.Schema[T]
}

func newLocal[T any](schema *listview.Schema[T], pageSize int) *local[T] {
	return &local[T]{
		schema: schema,
		view: listview.View{
			Sort:     listview.SortState{Key: SortUpdatedAt, Dir: listview.Desc},
			Page:     1,
			PageSize: pageSize,
		},
	}
}

// apply stores a load result when fresh reports true, and reports whether
// it did. fresh runs under the list lock, so a newer load that checks after
// it also writes after it.
func (l *local[T]) apply(fresh func() bool, items []T, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !fresh() {
		return false
	}
	if err == nil {
		l.items = items
		l.loaded = true
	}
	return true
}

func (l *local[T]) page(filter func(T) bool) listview.Page[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := l.items
	if filter != nil {
		items = make([]T, 0, len(l.items))
		for _, it := range l.items {
			if filter(it) {
				items = append(items, it)
			}
		}
	}
	return listview.Apply(l.schema, &l.view, items)
}

func (l *local[T]) snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

func (l *local[T]) find(match func(T) bool) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// patch replaces the first item matching match, or prepends v when none does.
func (l *local[T]) patch(match func(T) bool, v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if match(it) {
			l.items[i] = v
			return
		}
	}
	l.items = append([]T{v}, l.items...)
}

func (l *local[T]) remove(match func(T) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	for _, it := range l.items {
		if !match(it) {
			kept = append(kept, it)
		}
	}
	l.items = kept
}

func (l *local[T]) setQuery(q string) {
	l.mu.Lock()
	l.view.SetQuery(q)
	l.mu.Unlock()
}

func (l *local[T]) selectSort(key string) {
	l.mu.Lock()
	l.view.SelectSort(key)
	l.mu.Unlock()
}

func (l *local[T]) setSort(s listview.SortState) {
	l.mu.Lock()
	l.view.Sort = s
	l.view.Page = 1
	l.mu.Unlock()
}

func (l *local[T]) setPage(p int) {
	l.mu.Lock()
	l.view.Page = p
	l.mu.Unlock()
}

func (l *local[T]) viewState() listview.View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view
}
