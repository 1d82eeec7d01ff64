package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/service"
)

// FileList pages through files on the server. Changing a filter returns to
// the first page and refetches.
type FileList struct {
	svc    *service.Files
	board  *notify.Board
	logger *zap.Logger
	seq    api.Sequencer

	mu    sync.Mutex
	query service.FileQuery
	page  model.FilePage
	stats model.FileStats
}

// NewFileList creates a list backed by svc. opts may set the page size;
// the default is service.FilePageSize.
func NewFileList(svc *service.Files, opts ...Option) *FileList {
	o := buildOptions(service.FilePageSize, opts)
	return &FileList{
		svc:    svc,
		board:  o.board,
		logger: o.logger,
		query:  service.FileQuery{Page: 1, PageSize: o.pageSize},
	}
}

// Board returns the banner board failures are reported to.
func (f *FileList) Board() *notify.Board { return f.board }

// Query returns the active filters and page.
func (f *FileList) Query() service.FileQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Page returns the last applied server page.
func (f *FileList) Page() model.FilePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// Stats returns the last applied per-type counts.
func (f *FileList) Stats() model.FileStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// Window returns the page numbers for a pagination bar.
func (f *FileList) Window(visible int) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return listview.PageWindow(f.page.Page, f.page.TotalPages, visible)
}

// Refresh fetches the current page and the stats concurrently. If another
// Refresh was issued meanwhile, this one's results are dropped.
func (f *FileList) Refresh(ctx context.Context) error {
	seq := f.seq.Next()
	q := f.Query()

	var page model.FilePage
	var stats model.FileStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = f.svc.List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = f.svc.Stats(gctx)
		return err
	})
	err := g.Wait()

	// The check and the write share the lock so an older response cannot
	// land after a newer one.
	f.mu.Lock()
	fresh := f.seq.Apply(seq)
	if fresh && err == nil {
		f.page = page
		f.stats = stats
		if page.Page > 0 {
			f.query.Page = page.Page
		}
	}
	f.mu.Unlock()

	if !fresh {
		f.logger.Debug("dropping stale file page", zap.Uint64("seq", seq), zap.Uint64("newest", f.seq.Current()), zap.Int("page", q.Page))
		return nil
	}
	if err != nil {
		f.board.Fail(err)
		return err
	}
	f.logger.Debug("files loaded", zap.Int("page", page.Page), zap.Int("total", page.Total))
	return nil
}

func (f *FileList) update(ctx context.Context, change func(q *service.FileQuery)) error {
	f.mu.Lock()
	change(&f.query)
	f.mu.Unlock()
	return f.Refresh(ctx)
}

// SetPage moves to page p.
func (f *FileList) SetPage(ctx context.Context, p int) error {
	return f.update(ctx, func(q *service.FileQuery) { q.Page = max(p, 1) })
}

// SetType filters by file type; 0 shows every type.
func (f *FileList) SetType(ctx context.Context, t model.FileType) error {
	return f.update(ctx, func(q *service.FileQuery) { q.Type, q.Page = t, 1 })
}

// SetSearch filters by file name.
func (f *FileList) SetSearch(ctx context.Context, s string) error {
	return f.update(ctx, func(q *service.FileQuery) { q.Search, q.Page = s, 1 })
}

// SetCompany filters by company; "" shows every company.
func (f *FileList) SetCompany(ctx context.Context, id string) error {
	return f.update(ctx, func(q *service.FileQuery) { q.CompanyID, q.Page = id, 1 })
}

// SetQuery replaces every filter and the page at once, then refetches.
func (f *FileList) SetQuery(ctx context.Context, q service.FileQuery) error {
	return f.update(ctx, func(cur *service.FileQuery) {
		size := cur.PageSize
		*cur = q
		cur.Page = max(q.Page, 1)
		if cur.PageSize <= 0 {
			cur.PageSize = size
		}
	})
}

// Delete removes a file and refreshes. When it was the last file on a page
// past the first, the previous page is shown.
func (f *FileList) Delete(ctx context.Context, id string) error {
	if err := f.svc.Delete(ctx, id); err != nil {
		f.board.Fail(err)
		return err
	}
	f.board.Success("file deleted")
	f.mu.Lock()
	if len(f.page.Items) == 1 && f.query.Page > 1 {
		f.query.Page--
	}
	f.mu.Unlock()
	return f.Refresh(ctx)
}
