package controller

import (
	"context"

	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/service"
	"github.com/sadopc/bizdesk/internal/validate"
)

// Contract sort keys.
const (
	SortAmount = "amount"
	SortTitle  = "title"
)

// ContractSchema searches the descriptive contract fields.
func ContractSchema(locale string) *listview.Schema[model.Contract] {
	return &listview.Schema[model.Contract]{
		Fields: []func(model.Contract) string{
			func(c model.Contract) string { return c.ContractTitle },
			func(c model.Contract) string { return c.MainContent },
			func(c model.Contract) string { return c.Memo },
			func(c model.Contract) string { return c.FileName },
			func(c model.Contract) string { return c.CompanyName },
		},
		Keys: map[string]listview.SortKey[model.Contract]{
			SortUpdatedAt: listview.Numeric(func(c model.Contract) float64 { return float64(c.UpdatedAt.UnixMilli()) }),
			SortAmount:    listview.Numeric(func(c model.Contract) float64 { return c.ContractAmount }),
			SortTitle:     listview.Textual(func(c model.Contract) string { return c.ContractTitle }),
		},
		Locale: locale,
	}
}

// Totals sums the contracts currently matching the company filter.
type Totals struct {
	Count       int     `json:"count"`
	Amount      float64 `json:"amount"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
}

// ContractList loads every contract and filters by company locally.
type ContractList struct {
	svc    *service.Contracts
	board  *notify.Board
	logger *zap.Logger
	seq    api.Sequencer
	list   *local[model.Contract]

	companyID string
}

// NewContractList creates an empty list backed by svc.
func NewContractList(svc *service.Contracts, opts ...Option) *ContractList {
	o := buildOptions(DefaultPageSize, opts)
	return &ContractList{
		svc:    svc,
		board:  o.board,
		logger: o.logger,
		list:   newLocal(ContractSchema(o.locale), o.pageSize),
	}
}

// Board returns the banner board failures are reported to.
func (c *ContractList) Board() *notify.Board { return c.board }

// Load fetches every contract. Stale responses are dropped.
func (c *ContractList) Load(ctx context.Context) error {
	seq := c.seq.Next()
	all, err := c.svc.List(ctx, "")
	if !c.list.apply(func() bool { return c.seq.Apply(seq) }, all, err) {
		c.logger.Debug("dropping stale contract list", zap.Uint64("seq", seq), zap.Uint64("newest", c.seq.Current()))
		return nil
	}
	if err != nil {
		c.board.Fail(err)
		return err
	}
	return nil
}

// SetCompany restricts the list to one company; "" shows every contract.
// The page is kept and clamped to the narrowed result.
func (c *ContractList) SetCompany(id string) {
	c.list.mu.Lock()
	c.companyID = id
	c.list.mu.Unlock()
}

// Company returns the active company filter.
func (c *ContractList) Company() string {
	c.list.mu.Lock()
	defer c.list.mu.Unlock()
	return c.companyID
}

func (c *ContractList) filter() func(model.Contract) bool {
	id := c.Company()
	if id == "" {
		return nil
	}
	return func(x model.Contract) bool { return string(x.CompanyID) == id }
}

// Page returns the current page after filter, search and sort.
func (c *ContractList) Page() listview.Page[model.Contract] {
	return c.list.page(c.filter())
}

// View returns the current query, sort and page.
func (c *ContractList) View() listview.View { return c.list.viewState() }

func (c *ContractList) Search(q string)   { c.list.setQuery(q) }
func (c *ContractList) SortBy(key string) { c.list.selectSort(key) }
func (c *ContractList) SetPage(p int)     { c.list.setPage(p) }

// SetSort sets key and direction explicitly.
func (c *ContractList) SetSort(key string, dir listview.Direction) {
	c.list.setSort(listview.SortState{Key: key, Dir: dir})
}

// Find returns the loaded copy of a contract.
func (c *ContractList) Find(id string) (model.Contract, bool) {
	return c.list.find(func(x model.Contract) bool { return string(x.ID) == id })
}

// Totals sums the contracts that pass the company filter.
func (c *ContractList) Totals() Totals {
	keep := c.filter()
	var t Totals
	for _, x := range c.list.snapshot() {
		if keep != nil && !keep(x) {
			continue
		}
		t.Count++
		t.Amount += x.ContractAmount
		t.Paid += x.PaidAmount
	}
	t.Outstanding = t.Amount - t.Paid
	return t
}

// Create stores a new contract and adds it to the loaded list.
func (c *ContractList) Create(ctx context.Context, in model.ContractInput) (model.Contract, error) {
	created, err := c.svc.Create(ctx, in)
	if err != nil {
		c.board.Fail(err)
		return model.Contract{}, err
	}
	c.list.patch(func(x model.Contract) bool { return x.ID == created.ID }, created)
	c.board.Success("contract created")
	return created, nil
}

// SaveRow validates an edited row and saves it over existing. Invalid rows
// never reach the server.
func (c *ContractList) SaveRow(ctx context.Context, existing model.Contract, title string, row validate.ContractRow) (model.Contract, error) {
	amount, paid, final, err := validate.Contract(row)
	if err != nil {
		c.board.Fail(err)
		return model.Contract{}, err
	}
	in := model.ContractInput{
		CompanyID:          string(existing.CompanyID),
		ContractTitle:      title,
		ContractAmount:     amount,
		PaidAmount:         paid,
		StartDate:          row.StartDate,
		EndDate:            row.EndDate,
		FinalPaymentAmount: final,
		FinalPaymentDate:   row.FinalPaymentDate,
		MainContent:        existing.MainContent,
		Memo:               existing.Memo,
		FileID:             existing.FileID,
	}
	return c.Update(ctx, string(existing.ID), in)
}

// Update replaces a contract and patches the loaded copy.
func (c *ContractList) Update(ctx context.Context, id string, in model.ContractInput) (model.Contract, error) {
	updated, err := c.svc.Update(ctx, id, in)
	if err != nil {
		c.board.Fail(err)
		return model.Contract{}, err
	}
	if updated.ID == "" {
		updated.ID = model.FlexString(id)
	}
	c.list.patch(func(x model.Contract) bool { return string(x.ID) == id }, updated)
	c.board.Success("contract saved")
	return updated, nil
}

// Delete removes a contract.
func (c *ContractList) Delete(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		c.board.Fail(err)
		return err
	}
	c.list.remove(func(x model.Contract) bool { return string(x.ID) == id })
	c.board.Success("contract deleted")
	return nil
}
