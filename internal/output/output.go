// Package output renders command results for the terminal, as aligned text
// or as JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/bizdesk/internal/core/history"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/upload"
)

// Format selects text or JSON output.
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat accepts "text" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return Text, nil
	case "json":
		return JSON, nil
	}
	return Text, fmt.Errorf("unknown output format %q (use text or json)", s)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Companies prints one page of companies.
func Companies(w io.Writer, p listview.Page[model.Company]) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No companies.")
		return
	}
	row(w, []int{36, 24, 12, 13, 19}, "ID", "NAME", "CONTACT", "PHONE", "UPDATED")
	for _, c := range p.Items {
		row(w, []int{36, 24, 12, 13, 19}, c.ID, c.CompanyName, c.Contact1, c.Phone1, c.UpdatedAt.String())
	}
	pageFooter(w, p.Page, p.TotalPages, p.Total, "companies")
}

// Company prints every field of one company.
func Company(w io.Writer, c model.Company) {
	fields := [][2]string{
		{"ID", c.ID},
		{"Name", c.CompanyName},
		{"Address", c.Address},
		{"Contact", c.Contact1},
		{"Phone", c.Phone1},
		{"Contact 2", c.Contact2},
		{"Phone 2", c.Phone2},
		{"Remarks", c.Remarks},
		{"Created", c.CreatedAt.String()},
		{"Updated", c.UpdatedAt.String()},
	}
	details(w, fields)
}

// Contracts prints one page of contracts.
func Contracts(w io.Writer, p listview.Page[model.Contract]) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No contracts.")
		return
	}
	widths := []int{6, 28, 14, 14, 10, 10}
	row(w, widths, "ID", "TITLE", "AMOUNT", "PAID", "START", "END")
	for _, c := range p.Items {
		row(w, widths, string(c.ID), c.ContractTitle, Money(c.ContractAmount), Money(c.PaidAmount), c.StartDate, c.EndDate)
	}
	pageFooter(w, p.Page, p.TotalPages, p.Total, "contracts")
}

// Contract prints every field of one contract.
func Contract(w io.Writer, c model.Contract) {
	final := ""
	if c.FinalPaymentAmount != nil {
		final = Money(*c.FinalPaymentAmount)
	}
	details(w, [][2]string{
		{"ID", string(c.ID)},
		{"Title", c.ContractTitle},
		{"Company", firstNonEmpty(c.CompanyName, string(c.CompanyID))},
		{"Amount", Money(c.ContractAmount)},
		{"Paid", Money(c.PaidAmount)},
		{"Outstanding", Money(c.Outstanding())},
		{"Start", c.StartDate},
		{"End", c.EndDate},
		{"Final payment", strings.TrimSpace(final + " " + c.FinalPaymentDate)},
		{"Content", c.MainContent},
		{"Memo", c.Memo},
		{"File", c.FileName},
		{"Updated", c.UpdatedAt.String()},
	})
}

// Files prints one server page of files.
func Files(w io.Writer, p model.FilePage) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No files.")
		return
	}
	widths := []int{36, 32, 9, 10, 19}
	row(w, widths, "ID", "NAME", "TYPE", "SIZE", "UPLOADED")
	for _, f := range p.Items {
		row(w, widths, string(f.ID), f.OriginalName, f.Type().Label(), Size(string(f.Size)), f.UploadTime.String())
	}
	pageFooter(w, p.Page, p.TotalPages, p.Total, "files")
}

// FilePreview prints the preview metadata of one file.
func FilePreview(w io.Writer, p model.FilePreview) {
	details(w, [][2]string{
		{"ID", p.FileID},
		{"Name", p.FileName},
		{"Size", Size(fmt.Sprint(p.FileSize))},
		{"Type", p.MimeType},
		{"Company", p.CompanyID},
		{"Path", p.FilePath},
	})
}

// Stats prints the per-type file counts.
func Stats(w io.Writer, s model.FileStats) {
	fmt.Fprintf(w, "Total:     %d\n", s.Total)
	fmt.Fprintf(w, "Contracts: %d\n", s.Contracts)
	fmt.Fprintf(w, "Drawings:  %d\n", s.Drawings)
}

// Batch prints the outcome of an upload batch.
func Batch(w io.Writer, r upload.BatchResult) {
	for _, f := range r.Failed {
		fmt.Fprintf(w, "✗ %s\n  └ %s\n", f.Name, f.Reason)
	}
	fmt.Fprintf(w, "Uploaded %d, failed %d\n", r.Succeeded, len(r.Failed))
}

// History prints upload history entries, newest first.
func History(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No uploads recorded.")
		return
	}
	widths := []int{1, 32, 9, 10, 8, 16}
	for _, e := range entries {
		icon := "✓"
		if !e.Success {
			icon = "✗"
		}
		row(w, widths, icon, e.FileName, model.FileType(e.FileType).Label(),
			humanize.IBytes(uint64(max(e.Size, 0))), Duration(e.Duration), humanize.Time(e.Timestamp))
		if e.Error != "" {
			fmt.Fprintf(w, "  └ %s\n", e.Error)
		}
	}
}

// Size renders a size reported by the backend. Plain byte counts are
// formatted; anything else is shown as given.
func Size(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "0 B"
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return s
	}
	return humanize.IBytes(uint64(n))
}

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// Duration renders d at a readable precision.
func Duration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Truncate shortens s to width display cells, CJK aware.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

func row(w io.Writer, widths []int, cols ...string) {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(cols)-1 {
			b.WriteString(Truncate(c, widths[i]))
			continue
		}
		b.WriteString(runewidth.FillRight(Truncate(c, widths[i]), widths[i]))
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
}

func details(w io.Writer, fields [][2]string) {
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%-14s %s\n", f[0]+":", f[1])
	}
}

func pageFooter(w io.Writer, page, totalPages, total int, noun string) {
	fmt.Fprintf(w, "\nPage %d/%d, %d %s\n", page, max(totalPages, 1), total, noun)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
