// Package validate holds the checks run before anything reaches the
// network: upload candidates, the company registration form and contract
// rows edited in the preview table.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sadopc/bizdesk/internal/model"
)

// Error is a single failed check.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errors collects every failed check of one form.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err returns es as an error, or nil when it is empty.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// Field returns the first error for field, if any.
func (es Errors) Field(field string) *Error {
	for _, e := range es {
		if e.Field == field {
			return e
		}
	}
	return nil
}

// IsValidation reports whether err came from this package.
func IsValidation(err error) bool {
	var e *Error
	var es Errors
	return errors.As(err, &e) || errors.As(err, &es)
}

const (
	DefaultMaxFiles = 10
	DefaultMaxBytes = 100 * 1024 * 1024
)

// Limits bounds a pending upload list.
type Limits struct {
	MaxFiles int
	MaxBytes int64
}

// DefaultLimits returns the limits the upload page uses.
func DefaultLimits() Limits {
	return Limits{MaxFiles: DefaultMaxFiles, MaxBytes: DefaultMaxBytes}
}

func (l Limits) withDefaults() Limits {
	if l.MaxFiles <= 0 {
		l.MaxFiles = DefaultMaxFiles
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	return l
}

// Candidate is a file offered for upload.
type Candidate struct {
	Name string
	Size int64
}

// File checks a single candidate against the file type and size limit.
func File(name string, size int64, t model.FileType, maxBytes int64) error {
	if !t.Accepts(name) {
		ext := model.Ext(name)
		if ext == "" {
			ext = "(none)"
		}
		return &Error{Field: name, Message: fmt.Sprintf("unsupported file format: %s", ext)}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if size > maxBytes {
		return &Error{Field: name, Message: fmt.Sprintf("file too large: limit is %d MB", maxBytes/(1024*1024))}
	}
	return nil
}

// Files filters incoming against what is already pending. It returns the
// indexes of accepted files in order; every rejected file gets one entry in
// problems.
func Files(pending, incoming []Candidate, t model.FileType, limits Limits) (accepted []int, problems Errors) {
	limits = limits.withDefaults()
	seen := make(map[string]bool, len(pending)+len(incoming))
	for _, p := range pending {
		seen[dupKey(p)] = true
	}
	count := len(pending)
	for i, c := range incoming {
		if err := File(c.Name, c.Size, t, limits.MaxBytes); err != nil {
			problems = append(problems, err.(*Error))
			continue
		}
		key := dupKey(c)
		if seen[key] {
			problems = append(problems, &Error{Field: c.Name, Message: "file already added"})
			continue
		}
		if count >= limits.MaxFiles {
			problems = append(problems, &Error{Field: c.Name, Message: fmt.Sprintf("at most %d files can be uploaded at once", limits.MaxFiles)})
			continue
		}
		seen[key] = true
		count++
		accepted = append(accepted, i)
	}
	return accepted, problems
}

func dupKey(c Candidate) string {
	return strings.ToLower(strings.TrimSpace(c.Name)) + "\x00" + strconv.FormatInt(c.Size, 10)
}

var (
	phonePattern       = regexp.MustCompile(`^1[3-9]\d{9}$`)
	bankAccountPattern = regexp.MustCompile(`^\d{1,30}$`)
	bankCodePattern    = regexp.MustCompile(`^\d{12}$`)
)

// Registration checks the company registration form. r should already be
// trimmed.
func Registration(r model.Registration) error {
	var es Errors
	required := []struct{ field, value, label string }{
		{"company_name", r.CompanyName, "company name"},
		{"tax_id", r.TaxID, "tax id"},
		{"company_address", r.CompanyAddress, "company address"},
		{"contact_person", r.ContactPerson, "contact person"},
		{"phone", r.Phone, "phone"},
		{"bank_name", r.BankName, "bank name"},
		{"bank_account", r.BankAccount, "bank account"},
		{"bank_code", r.BankCode, "bank code"},
	}
	for _, f := range required {
		if f.value == "" {
			es = append(es, &Error{Field: f.field, Message: f.label + " is required"})
		}
	}
	if r.Phone != "" && !phonePattern.MatchString(r.Phone) {
		es = append(es, &Error{Field: "phone", Message: "invalid mobile number"})
	}
	if r.BankAccount != "" && !bankAccountPattern.MatchString(r.BankAccount) {
		es = append(es, &Error{Field: "bank_account", Message: "bank account must be up to 30 digits"})
	}
	if r.BankCode != "" && !bankCodePattern.MatchString(r.BankCode) {
		es = append(es, &Error{Field: "bank_code", Message: "bank code must be 12 digits"})
	}
	return es.Err()
}

// ContractRow holds the editable cells of a contract row as typed text.
type ContractRow struct {
	ContractAmount     string
	PaidAmount         string
	StartDate          string
	EndDate            string
	FinalPaymentAmount string
	FinalPaymentDate   string
}

// Contract checks an edited row and converts it into amounts. Amount, start
// date and end date are required.
func Contract(row ContractRow) (amount, paid float64, final *float64, err error) {
	var es Errors
	if strings.TrimSpace(row.ContractAmount) == "" {
		es = append(es, &Error{Field: "contractAmount", Message: "contract amount is required"})
	}
	if strings.TrimSpace(row.StartDate) == "" {
		es = append(es, &Error{Field: "startDate", Message: "start date is required"})
	}
	if strings.TrimSpace(row.EndDate) == "" {
		es = append(es, &Error{Field: "endDate", Message: "end date is required"})
	}
	amount, amountErr := parseAmount("contractAmount", row.ContractAmount)
	paid, paidErr := parseAmount("paidAmount", row.PaidAmount)
	for _, e := range []*Error{amountErr, paidErr} {
		if e != nil {
			es = append(es, e)
		}
	}
	if s := strings.TrimSpace(row.FinalPaymentAmount); s != "" {
		v, e := parseAmount("finalPaymentAmount", s)
		if e != nil {
			es = append(es, e)
		} else {
			final = &v
		}
	}
	if err := es.Err(); err != nil {
		return 0, 0, nil, err
	}
	return amount, paid, final, nil
}

func parseAmount(field, s string) (float64, *Error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, &Error{Field: field, Message: "must be a number"}
	}
	return v, nil
}
