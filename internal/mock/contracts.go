package mock

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sadopc/bizdesk/internal/model"
)

// AddContract stores c, assigning a numeric id and timestamps when missing.
func (s *Server) AddContract(c model.Contract) model.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addContractLocked(c)
}

func (s *Server) addContractLocked(c model.Contract) model.Contract {
	if c.ID == "" {
		c.ID = model.FlexString(strconv.Itoa(s.nextID))
		s.nextID++
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = model.Timestamp{Time: now}
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.CompanyName == "" {
		if i := s.findCompany(string(c.CompanyID)); i >= 0 {
			c.CompanyName = s.companies[i].CompanyName
		}
	}
	s.contracts = append(s.contracts, c)
	return c
}

func (s *Server) findContract(id string) int {
	for i, c := range s.contracts {
		if string(c.ID) == id {
			return i
		}
	}
	return -1
}

func applyContractInput(c *model.Contract, in model.ContractInput) {
	c.CompanyID = model.FlexString(in.CompanyID)
	c.ContractTitle = in.ContractTitle
	c.ContractAmount = in.ContractAmount
	c.PaidAmount = in.PaidAmount
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	c.FinalPaymentAmount = in.FinalPaymentAmount
	c.FinalPaymentDate = in.FinalPaymentDate
	c.MainContent = in.MainContent
	c.Memo = in.Memo
	if in.FileID != "" {
		c.FileID = in.FileID
	}
}

func validContractInput(in model.ContractInput) string {
	switch {
	case in.StartDate == "" || in.EndDate == "":
		return "start date and end date are required"
	case in.ContractAmount < 0 || in.PaidAmount < 0:
		return "amounts must not be negative"
	}
	return ""
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("companyId")

	s.mu.Lock()
	out := make([]model.Contract, 0, len(s.contracts))
	for _, c := range s.contracts {
		if companyID == "" || string(c.CompanyID) == companyID {
			out = append(out, c)
		}
	}
	s.mu.Unlock()

	writeData(w, http.StatusOK, "", model.ContractList{Contracts: out, Total: len(out)})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.findContract(chi.URLParam(r, "id"))
	var c model.Contract
	if i >= 0 {
		c = s.contracts[i]
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	writeData(w, http.StatusOK, "", c)
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var in model.ContractInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validContractInput(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var c model.Contract
	applyContractInput(&c, in)
	s.mu.Lock()
	c = s.addContractLocked(c)
	s.mu.Unlock()

	writeData(w, http.StatusCreated, "contract created", c)
}

func (s *Server) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	var in model.ContractInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validContractInput(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	i := s.findContract(chi.URLParam(r, "id"))
	if i < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	c := s.contracts[i]
	applyContractInput(&c, in)
	c.UpdatedAt = model.Timestamp{Time: s.now()}
	s.contracts[i] = c
	s.mu.Unlock()

	writeData(w, http.StatusOK, "contract updated", c)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.findContract(chi.URLParam(r, "id"))
	if i >= 0 {
		s.contracts = append(s.contracts[:i], s.contracts[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	writeData(w, http.StatusOK, "contract deleted", nil)
}
