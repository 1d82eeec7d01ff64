package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Envelope is the wrapper the backend puts around every payload.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// OK reports whether the backend marked the envelope as successful.
// Some endpoints set status, others only set success.
func (e Envelope[T]) OK() bool {
	if e.Success != nil {
		return *e.Success
	}
	return e.Status == "success"
}

// Company is a customer record.
type Company struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Address     string    `json:"address"`
	Contact1    string    `json:"contact1"`
	Phone1      string    `json:"phone1"`
	Contact2    string    `json:"contact2,omitempty"`
	Phone2      string    `json:"phone2,omitempty"`
	Remarks     string    `json:"remarks,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// CompanyInput is the editable subset of a company sent on update.
type CompanyInput struct {
	CompanyName string `json:"companyName"`
	Address     string `json:"address"`
	Contact1    string `json:"contact1"`
	Phone1      string `json:"phone1"`
	Contact2    string `json:"contact2"`
	Phone2      string `json:"phone2"`
	Remarks     string `json:"remarks"`
}

// Input returns the editable fields of c.
func (c Company) Input() CompanyInput {
	return CompanyInput{
		CompanyName: c.CompanyName,
		Address:     c.Address,
		Contact1:    c.Contact1,
		Phone1:      c.Phone1,
		Contact2:    c.Contact2,
		Phone2:      c.Phone2,
		Remarks:     c.Remarks,
	}
}

// Registration is the payload of the company registration form.
type Registration struct {
	CompanyName    string `json:"company_name"`
	TaxID          string `json:"tax_id"`
	CompanyAddress string `json:"company_address"`
	ContactPerson  string `json:"contact_person"`
	Phone          string `json:"phone"`
	BankName       string `json:"bank_name"`
	BankAccount    string `json:"bank_account"`
	BankCode       string `json:"bank_code"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Registration) Trimmed() Registration {
	return Registration{
		CompanyName:    strings.TrimSpace(r.CompanyName),
		TaxID:          strings.TrimSpace(r.TaxID),
		CompanyAddress: strings.TrimSpace(r.CompanyAddress),
		ContactPerson:  strings.TrimSpace(r.ContactPerson),
		Phone:          strings.TrimSpace(r.Phone),
		BankName:       strings.TrimSpace(r.BankName),
		BankAccount:    strings.TrimSpace(r.BankAccount),
		BankCode:       strings.TrimSpace(r.BankCode),
	}
}

// CompanyDetail is the payload of GET /companies/{id}.
type CompanyDetail struct {
	Company Company `json:"company"`
}

// CompanyPage is the payload of GET /companies.
type CompanyPage struct {
	Companies   []Company `json:"companies"`
	Total       int       `json:"total"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	PageSize    int       `json:"pageSize,omitempty"`
}

// Contract is a contract record.
type Contract struct {
	ID                 FlexString `json:"id"`
	FileID             string     `json:"fileId"`
	CompanyID          FlexString `json:"companyId"`
	ContractTitle      string     `json:"contractTitle,omitempty"`
	ContractAmount     float64    `json:"contractAmount"`
	PaidAmount         float64    `json:"paidAmount"`
	StartDate          string     `json:"startDate"`
	EndDate            string     `json:"endDate"`
	FinalPaymentDate   string     `json:"finalPaymentDate,omitempty"`
	FinalPaymentAmount *float64   `json:"finalPaymentAmount,omitempty"`
	FileURL            string     `json:"fileUrl,omitempty"`
	FileName           string     `json:"fileName,omitempty"`
	MainContent        string     `json:"mainContent,omitempty"`
	Memo               string     `json:"memo,omitempty"`
	CreatedAt          Timestamp  `json:"createdAt"`
	UpdatedAt          Timestamp  `json:"updatedAt"`
	CompanyName        string     `json:"companyName,omitempty"`
}

// Outstanding returns the unpaid part of the contract amount.
func (c Contract) Outstanding() float64 {
	return c.ContractAmount - c.PaidAmount
}

// ContractInput is sent when creating or updating a contract.
type ContractInput struct {
	CompanyID          string   `json:"companyId"`
	ContractTitle      string   `json:"contractTitle"`
	ContractAmount     float64  `json:"contractAmount"`
	PaidAmount         float64  `json:"paidAmount"`
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
	FinalPaymentAmount *float64 `json:"finalPaymentAmount,omitempty"`
	FinalPaymentDate   string   `json:"finalPaymentDate,omitempty"`
	MainContent        string   `json:"mainContent,omitempty"`
	Memo               string   `json:"memo,omitempty"`
	FileID             string   `json:"fileId,omitempty"`
}

// ContractList is the payload of GET /contracts.
type ContractList struct {
	Contracts []Contract `json:"contracts"`
	Total     int        `json:"total"`
}

// FileItem is an uploaded file as listed by GET /files.
type FileItem struct {
	ID           FlexString `json:"id"`
	CompanyID    string     `json:"companyId"`
	OriginalName string     `json:"originalName"`
	FileType     FlexString `json:"fileType"`
	Size         FlexString `json:"size"`
	UploadTime   Timestamp  `json:"uploadTime"`
	URL          string     `json:"url,omitempty"`
	MimeType     string     `json:"mimeType,omitempty"`
	PageCount    int        `json:"pageCount,omitempty"`
	HasContent   bool       `json:"hasContent,omitempty"`
}

// Type resolves the item's file type code. Unknown values map to 0.
func (f FileItem) Type() FileType {
	t, err := ParseFileType(string(f.FileType))
	if err != nil {
		return 0
	}
	return t
}

// FilePage is the payload of GET /files.
type FilePage struct {
	Items      []FileItem `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// FileStats is the payload of GET /files/stats.
type FileStats struct {
	Total     int `json:"total"`
	Contracts int `json:"contracts"`
	Drawings  int `json:"drawings"`
}

// FilePreview is the payload of GET /files/{id}/preview.
type FilePreview struct {
	FileID    string `json:"fileId"`
	FilePath  string `json:"filePath"`
	FileName  string `json:"fileName"`
	FileSize  int64  `json:"fileSize"`
	MimeType  string `json:"mimeType"`
	CompanyID string `json:"companyId"`
}

// Timestamp accepts the handful of time layouts the backend emits.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or a non-string leaves the zero time
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// String renders the time as yyyy-MM-dd HH:mm:ss, or "" for the zero time.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// FlexString decodes a JSON string or number into a string. The backend
// is inconsistent about ids and codes.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }
