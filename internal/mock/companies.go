package mock

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
)

// AddCompany stores c, assigning an id and timestamps when missing.
func (s *Server) AddCompany(c model.Company) model.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = model.Timestamp{Time: now}
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.companies = append(s.companies, c)
	return c
}

func (s *Server) findCompany(id string) int {
	for i, c := range s.companies {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func intParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	page := intParam(r, "page", 1)
	size := intParam(r, "pageSize", 10)

	s.mu.Lock()
	all := append([]model.Company(nil), s.companies...)
	s.mu.Unlock()

	p := listview.Paginate(all, page, size)
	writeData(w, http.StatusOK, "", model.CompanyPage{
		Companies:   p.Items,
		Total:       p.Total,
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages,
		PageSize:    p.PageSize,
	})
}

func (s *Server) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	s.mu.Lock()
	var out []model.Company
	for _, c := range s.companies {
		if q == "" || strings.Contains(strings.ToLower(c.CompanyName), q) {
			out = append(out, c)
		}
	}
	s.mu.Unlock()

	writeData(w, http.StatusOK, "", model.CompanyPage{Companies: out, Total: len(out), CurrentPage: 1, TotalPages: 1})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	i := s.findCompany(id)
	var c model.Company
	if i >= 0 {
		c = s.companies[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	writeData(w, http.StatusOK, "", model.CompanyDetail{Company: c})
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := decodeJSON(r, &reg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reg = reg.Trimmed()
	if reg.CompanyName == "" || reg.TaxID == "" {
		writeError(w, http.StatusBadRequest, "company name and tax id are required")
		return
	}

	s.mu.Lock()
	for _, c := range s.companies {
		if strings.EqualFold(c.CompanyName, reg.CompanyName) {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "company already exists")
			return
		}
	}
	s.mu.Unlock()

	c := s.AddCompany(model.Company{
		CompanyName: reg.CompanyName,
		Address:     reg.CompanyAddress,
		Contact1:    reg.ContactPerson,
		Phone1:      reg.Phone,
		Remarks:     strings.TrimSpace(reg.BankName + " " + reg.BankAccount),
	})
	writeData(w, http.StatusCreated, "company registered", c)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in model.CompanyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		writeError(w, http.StatusBadRequest, "company name is required")
		return
	}

	s.mu.Lock()
	i := s.findCompany(id)
	if i < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	c := s.companies[i]
	c.CompanyName = in.CompanyName
	c.Address = in.Address
	c.Contact1 = in.Contact1
	c.Phone1 = in.Phone1
	c.Contact2 = in.Contact2
	c.Phone2 = in.Phone2
	c.Remarks = in.Remarks
	c.UpdatedAt = model.Timestamp{Time: s.now()}
	s.companies[i] = c
	s.mu.Unlock()

	writeData(w, http.StatusOK, "company updated", c)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	i := s.findCompany(id)
	if i >= 0 {
		s.companies = append(s.companies[:i], s.companies[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	writeData(w, http.StatusOK, "company deleted", nil)
}
