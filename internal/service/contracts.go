package service

import (
	"context"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/model"
)

// Contracts calls the /contracts endpoints.
type Contracts struct {
	c *api.Client
}

// List fetches every contract, or those of one company when companyID is set.
func (s *Contracts) List(ctx context.Context, companyID string) ([]model.Contract, error) {
	l, err := get[model.ContractList](ctx, s.c, "list contracts", "/contracts", api.P("companyId", optional(companyID)))
	return l.Contracts, err
}

// Get fetches one contract.
func (s *Contracts) Get(ctx context.Context, id string) (model.Contract, error) {
	return get[model.Contract](ctx, s.c, "get contract", path("/contracts", id), nil)
}

// Create stores a new contract.
func (s *Contracts) Create(ctx context.Context, in model.ContractInput) (model.Contract, error) {
	return post[model.Contract](ctx, s.c, "create contract", "/contracts", in)
}

// Update replaces a contract.
func (s *Contracts) Update(ctx context.Context, id string, in model.ContractInput) (model.Contract, error) {
	return put[model.Contract](ctx, s.c, "update contract", path("/contracts", id), in)
}

// Delete removes a contract.
func (s *Contracts) Delete(ctx context.Context, id string) error {
	return del(ctx, s.c, "delete contract", path("/contracts", id))
}
