package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sadopc/bizdesk/internal/model"
)

// Session keys.
const (
	KeySelectedCompany = "selectedCompanyId"
	KeyCompanyInfo     = "companyInfo"
	KeyContractInfo    = "contractInfo"
)

// Session gives the stored keys names and types. Each key is read and
// written independently.
type Session struct {
	kv KV
}

// NewSession wraps kv.
func NewSession(kv KV) *Session {
	return &Session{kv: kv}
}

// KV returns the underlying store.
func (s *Session) KV() KV { return s.kv }

// SelectCompany remembers the company the user works with.
func (s *Session) SelectCompany(ctx context.Context, id string) error {
	if id == "" {
		return s.kv.Delete(ctx, KeySelectedCompany)
	}
	return s.kv.Set(ctx, KeySelectedCompany, id)
}

// SelectedCompany returns the remembered company id.
func (s *Session) SelectedCompany(ctx context.Context) (string, bool, error) {
	id, ok, err := s.kv.Get(ctx, KeySelectedCompany)
	if err != nil || !ok || id == "" {
		return "", false, err
	}
	return id, true, nil
}

// ClearSelection forgets the selected company.
func (s *Session) ClearSelection(ctx context.Context) error {
	return s.kv.Delete(ctx, KeySelectedCompany)
}

// SaveCompany stores the company shown on the company info page.
func (s *Session) SaveCompany(ctx context.Context, c model.Company) error {
	return s.setJSON(ctx, KeyCompanyInfo, c)
}

// Company returns the stored company, if any.
func (s *Session) Company(ctx context.Context) (*model.Company, error) {
	var c model.Company
	ok, err := s.getJSON(ctx, KeyCompanyInfo, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// ClearCompany removes the stored company.
func (s *Session) ClearCompany(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyCompanyInfo)
}

// SaveContract stores the contract being edited.
func (s *Session) SaveContract(ctx context.Context, c model.Contract) error {
	return s.setJSON(ctx, KeyContractInfo, c)
}

// Contract returns the stored contract, if any.
func (s *Session) Contract(ctx context.Context) (*model.Contract, error) {
	var c model.Contract
	ok, err := s.getJSON(ctx, KeyContractInfo, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// ClearContract removes the stored contract.
func (s *Session) ClearContract(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyContractInfo)
}

// Clear removes every session key.
func (s *Session) Clear(ctx context.Context) error {
	for _, k := range []string{KeySelectedCompany, KeyCompanyInfo, KeyContractInfo} {
		if err := s.kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(data))
}

// getJSON decodes key into v. A value that no longer decodes is dropped and
// reported as absent.
func (s *Session) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, s.kv.Delete(ctx, key)
	}
	return true, nil
}
