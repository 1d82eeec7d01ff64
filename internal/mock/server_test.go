package mock

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/bizdesk/internal/model"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return rec, env
}

func TestRouteMatching(t *testing.T) {
	srv := New()
	c := srv.AddCompany(model.Company{CompanyName: "Acme"})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"list companies", "GET", "/api/companies", http.StatusOK},
		{"get company", "GET", "/api/companies/" + c.ID, http.StatusOK},
		{"missing company", "GET", "/api/companies/nope", http.StatusNotFound},
		{"list contracts", "GET", "/api/contracts", http.StatusOK},
		{"file stats", "GET", "/api/files/stats", http.StatusOK},
		{"unmatched path", "GET", "/api/nonexistent", http.StatusNotFound},
		{"wrong method", "PATCH", "/api/companies", http.StatusMethodNotAllowed},
	}

	handler := srv.Handler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := do(t, handler, tt.method, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestCompanyLifecycle(t *testing.T) {
	handler := New().Handler()

	reg := `{"company_name":"Acme","tax_id":"T1","company_address":"Shanghai","contact_person":"Li","phone":"13800138000","bank_name":"ICBC","bank_account":"1","bank_code":"123456789012"}`
	rec, env := do(t, handler, "POST", "/api/companies", reg)
	if rec.Code != http.StatusCreated || env.Status != "success" {
		t.Fatalf("register = %d %+v", rec.Code, env)
	}
	var created model.Company
	json.Unmarshal(env.Data, &created)
	if created.ID == "" || created.Contact1 != "Li" {
		t.Fatalf("created = %+v", created)
	}

	rec, env = do(t, handler, "POST", "/api/companies", reg)
	if rec.Code != http.StatusConflict || env.Message != "company already exists" {
		t.Fatalf("duplicate register = %d %+v", rec.Code, env)
	}

	rec, env = do(t, handler, "PUT", "/api/companies/"+created.ID, `{"companyName":"Acme Group","phone1":"13900000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d %+v", rec.Code, env)
	}

	_, env = do(t, handler, "GET", "/api/companies/"+created.ID, "")
	var detail model.CompanyDetail
	json.Unmarshal(env.Data, &detail)
	if detail.Company.CompanyName != "Acme Group" {
		t.Fatalf("detail = %+v", detail)
	}

	rec, _ = do(t, handler, "DELETE", "/api/companies/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d", rec.Code)
	}
	_, env = do(t, handler, "GET", "/api/companies?page=1&pageSize=1000", "")
	var page model.CompanyPage
	json.Unmarshal(env.Data, &page)
	if page.Total != 0 {
		t.Fatalf("total after delete = %d", page.Total)
	}
}

func TestCompanyPagination(t *testing.T) {
	srv := New()
	for i := 0; i < 25; i++ {
		srv.AddCompany(model.Company{CompanyName: strings.Repeat("x", i+1)})
	}
	_, env := do(t, srv.Handler(), "GET", "/api/companies?page=3&pageSize=10", "")
	var page model.CompanyPage
	json.Unmarshal(env.Data, &page)
	if len(page.Companies) != 5 || page.TotalPages != 3 || page.CurrentPage != 3 {
		t.Fatalf("page = %d items, %d pages, current %d", len(page.Companies), page.TotalPages, page.CurrentPage)
	}
}

func TestContractsFilterByCompany(t *testing.T) {
	srv := New()
	a := srv.AddCompany(model.Company{CompanyName: "A"})
	srv.AddContract(model.Contract{CompanyID: model.FlexString(a.ID), ContractTitle: "one"})
	srv.AddContract(model.Contract{CompanyID: "other", ContractTitle: "two"})

	_, env := do(t, srv.Handler(), "GET", "/api/contracts?companyId="+a.ID, "")
	var list model.ContractList
	json.Unmarshal(env.Data, &list)
	if list.Total != 1 || list.Contracts[0].CompanyName != "A" {
		t.Fatalf("list = %+v", list)
	}

	rec, env := do(t, srv.Handler(), "POST", "/api/contracts", `{"companyId":"x","contractAmount":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create without dates = %d %+v", rec.Code, env)
	}
}

func TestUploadAndListFiles(t *testing.T) {
	srv := New()
	handler := srv.Handler()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "deal.pdf")
	fw.Write([]byte("%PDF-1.4"))
	mw.WriteField("fileType", "1")
	mw.WriteField("fileName", "deal.pdf")
	mw.WriteField("uploadTime", "2024-03-01T08:00:00.000Z")
	mw.WriteField("companyId", "c1")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d %s", rec.Code, rec.Body.String())
	}

	srv.AddFile("plan.png", model.FileTypeDrawing, "c2", []byte("png"))

	_, env := do(t, handler, "GET", "/api/files?page=1&pageSize=10&type=1", "")
	var page model.FilePage
	json.Unmarshal(env.Data, &page)
	if page.Total != 1 || page.Items[0].OriginalName != "deal.pdf" {
		t.Fatalf("filtered files = %+v", page)
	}
	if !page.Items[0].UploadTime.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("upload time = %v", page.Items[0].UploadTime)
	}

	_, env = do(t, handler, "GET", "/api/files/stats", "")
	var stats model.FileStats
	json.Unmarshal(env.Data, &stats)
	if stats != (model.FileStats{Total: 2, Contracts: 1, Drawings: 1}) {
		t.Fatalf("stats = %+v", stats)
	}

	id := string(page.Items[0].ID)
	rec, _ = do(t, handler, "GET", "/api/files/"+id+"/download", "")
	if rec.Body.String() != "%PDF-1.4" {
		t.Errorf("download body = %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "deal.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestUploadRejectsWrongType(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "photo.png")
	fw.Write([]byte("png"))
	mw.WriteField("fileType", "1")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	New().Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	handler := New(WithCORSOrigin("https://app.example.com")).Handler()

	req := httptest.NewRequest("OPTIONS", "/api/companies", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestLatencySimulation(t *testing.T) {
	latency := 50 * time.Millisecond
	handler := New(WithLatency(latency)).Handler()

	start := time.Now()
	do(t, handler, "GET", "/api/companies", "")
	if elapsed := time.Since(start); elapsed < latency {
		t.Errorf("request took %v, expected at least %v", elapsed, latency)
	}
}

func TestErrorRateSimulation(t *testing.T) {
	handler := New(WithErrorRate(1.0)).Handler()

	rec, env := do(t, handler, "GET", "/api/companies", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want 500 with error rate 1.0", rec.Code)
	}
	if env.Message != "simulated server error" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestSeed(t *testing.T) {
	srv := New()
	srv.Seed()
	_, env := do(t, srv.Handler(), "GET", "/api/files/stats", "")
	var stats model.FileStats
	json.Unmarshal(env.Data, &stats)
	if stats.Contracts != 8 || stats.Drawings != 4 {
		t.Fatalf("seed stats = %+v", stats)
	}
}
