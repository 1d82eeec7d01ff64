package controller

import (
	"context"

	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/service"
)

// SortCompanyName orders companies by name.
const SortCompanyName = "companyName"

// CompanySchema searches the visible company columns and sorts by update
// time or name.
func CompanySchema(locale string) *listview.Schema[model.Company] {
	return &listview.Schema[model.Company]{
		Fields: []func(model.Company) string{
			func(c model.Company) string { return c.CompanyName },
			func(c model.Company) string { return c.Address },
			func(c model.Company) string { return c.Contact1 },
			func(c model.Company) string { return c.Phone1 },
			func(c model.Company) string { return c.Contact2 },
			func(c model.Company) string { return c.Phone2 },
			func(c model.Company) string { return c.Remarks },
		},
		Keys: map[string]listview.SortKey[model.Company]{
			SortUpdatedAt:   listview.Numeric(func(c model.Company) float64 { return float64(c.UpdatedAt.UnixMilli()) }),
			SortCompanyName: listview.Textual(func(c model.Company) string { return c.CompanyName }),
		},
		Locale: locale,
	}
}

// CompanyList loads every company once and pages through them locally.
type CompanyList struct {
	svc    *service.Companies
	board  *notify.Board
	logger *zap.Logger
	seq    api.Sequencer
	list   *local[model.Company]
}

// NewCompanyList creates an empty list backed by svc.
func NewCompanyList(svc *service.Companies, opts ...Option) *CompanyList {
	o := buildOptions(DefaultPageSize, opts)
	return &CompanyList{
		svc:    svc,
		board:  o.board,
		logger: o.logger,
		list:   newLocal(CompanySchema(o.locale), o.pageSize),
	}
}

// Board returns the banner board failures are reported to.
func (c *CompanyList) Board() *notify.Board { return c.board }

// Load fetches every company. A response overtaken by a newer Load is
// dropped without touching the list.
func (c *CompanyList) Load(ctx context.Context) error {
	seq := c.seq.Next()
	all, err := c.svc.All(ctx)
	if !c.list.apply(func() bool { return c.seq.Apply(seq) }, all, err) {
		c.logger.Debug("dropping stale company list", zap.Uint64("seq", seq), zap.Uint64("newest", c.seq.Current()))
		return nil
	}
	if err != nil {
		c.board.Fail(err)
		return err
	}
	c.logger.Debug("companies loaded", zap.Int("count", len(all)))
	return nil
}

// Page returns the current page after search and sort.
func (c *CompanyList) Page() listview.Page[model.Company] {
	return c.list.page(nil)
}

// View returns the current query, sort and page.
func (c *CompanyList) View() listview.View { return c.list.viewState() }

// Search filters by q and returns to the first page.
func (c *CompanyList) Search(q string) { c.list.setQuery(q) }

// SortBy applies a column click.
func (c *CompanyList) SortBy(key string) { c.list.selectSort(key) }

// SetSort sets key and direction explicitly.
func (c *CompanyList) SetSort(key string, dir listview.Direction) {
	c.list.setSort(listview.SortState{Key: key, Dir: dir})
}

// SetPage moves to page p. Out of range pages are clamped on the next Page.
func (c *CompanyList) SetPage(p int) { c.list.setPage(p) }

// All returns every loaded company in load order.
func (c *CompanyList) All() []model.Company { return c.list.snapshot() }

// Find returns the loaded copy of a company.
func (c *CompanyList) Find(id string) (model.Company, bool) {
	return c.list.find(func(x model.Company) bool { return x.ID == id })
}

// Detail fetches a company. When the call fails the loaded copy is returned
// instead and a warning is raised.
func (c *CompanyList) Detail(ctx context.Context, id string) (model.Company, error) {
	company, err := c.svc.Get(ctx, id)
	if err == nil {
		return company, nil
	}
	if cached, ok := c.Find(id); ok {
		c.logger.Warn("company detail failed, using list copy", zap.String("id", id), zap.Error(err))
		c.board.Warn("showing cached company details: " + service.Message(err))
		return cached, nil
	}
	c.board.Fail(err)
	return model.Company{}, err
}

// Update saves in and patches the loaded copy.
func (c *CompanyList) Update(ctx context.Context, id string, in model.CompanyInput) (model.Company, error) {
	updated, err := c.svc.Update(ctx, id, in)
	if err != nil {
		c.board.Fail(err)
		return model.Company{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	c.list.patch(func(x model.Company) bool { return x.ID == id }, updated)
	c.board.Success("company updated")
	return updated, nil
}

// Register submits the registration form and adds the new company to the
// loaded list.
func (c *CompanyList) Register(ctx context.Context, r model.Registration) (model.Company, error) {
	created, err := c.svc.Register(ctx, r)
	if err != nil {
		c.board.Fail(err)
		return model.Company{}, err
	}
	c.list.patch(func(x model.Company) bool { return x.ID == created.ID }, created)
	c.board.Success("company registered")
	return created, nil
}

// Delete removes a company and drops it from the loaded list.
func (c *CompanyList) Delete(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		c.board.Fail(err)
		return err
	}
	c.list.remove(func(x model.Company) bool { return x.ID == id })
	c.board.Success("company deleted")
	return nil
}
