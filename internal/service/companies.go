package service

import (
	"context"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/validate"
)

// AllPageSize is the page size used to fetch every company at once.
const AllPageSize = 1000

// Companies calls the /companies endpoints.
type Companies struct {
	c *api.Client
}

// List fetches one server page.
func (s *Companies) List(ctx context.Context, page, pageSize int) (model.CompanyPage, error) {
	return get[model.CompanyPage](ctx, s.c, "list companies", "/companies", api.P("page", page, "pageSize", pageSize))
}

// All fetches every company in one request.
func (s *Companies) All(ctx context.Context) ([]model.Company, error) {
	p, err := s.List(ctx, 1, AllPageSize)
	if err != nil {
		return nil, err
	}
	return p.Companies, nil
}

// Get fetches one company.
func (s *Companies) Get(ctx context.Context, id string) (model.Company, error) {
	d, err := get[model.CompanyDetail](ctx, s.c, "get company", path("/companies", id), nil)
	return d.Company, err
}

// Search asks the backend for companies matching q.
func (s *Companies) Search(ctx context.Context, q string) ([]model.Company, error) {
	p, err := get[model.CompanyPage](ctx, s.c, "search companies", "/companies/search", api.P("q", q))
	return p.Companies, err
}

// Register validates and submits the registration form.
func (s *Companies) Register(ctx context.Context, r model.Registration) (model.Company, error) {
	r = r.Trimmed()
	if err := validate.Registration(r); err != nil {
		return model.Company{}, err
	}
	return post[model.Company](ctx, s.c, "register company", "/companies", r)
}

// Update replaces the editable fields of a company.
func (s *Companies) Update(ctx context.Context, id string, in model.CompanyInput) (model.Company, error) {
	return put[model.Company](ctx, s.c, "update company", path("/companies", id), in)
}

// Delete removes a company.
func (s *Companies) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, "delete company", path("/companies", id))
}
