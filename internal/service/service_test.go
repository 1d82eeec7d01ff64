package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/mock"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/upload"
	"github.com/sadopc/bizdesk/internal/validate"
)

func newTestClient(t *testing.T, h http.Handler) *api.Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	client := api.New(server.URL + "/api")
	client.SetTransport(server.Client().Transport)
	return client
}

func newTestServices(t *testing.T, h http.Handler) *Services {
	t.Helper()
	return New(newTestClient(t, h))
}

func validRegistration() model.Registration {
	return model.Registration{
		CompanyName:    " Acme ",
		TaxID:          "91310000MA1K",
		CompanyAddress: "Shanghai",
		ContactPerson:  "Li",
		Phone:          "13800138000",
		BankName:       "ICBC",
		BankAccount:    "6222020000000000",
		BankCode:       "102100099996",
	}
}

func TestCompanies_RegisterGetUpdateDelete(t *testing.T) {
	svc := newTestServices(t, mock.New().Handler())
	ctx := context.Background()

	created, err := svc.Companies.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.CompanyName, "registration fields are trimmed")

	got, err := svc.Companies.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	in := got.Input()
	in.Remarks = "key account"
	updated, err := svc.Companies.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "key account", updated.Remarks)

	all, err := svc.Companies.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	found, err := svc.Companies.Search(ctx, "acm")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, svc.Companies.Delete(ctx, created.ID))
	_, err = svc.Companies.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, api.IsServer(err), "transport error survives wrapping: %v", err)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	assert.Equal(t, "company not found", Message(err))
}

func TestCompanies_RegisterValidationNeverCallsServer(t *testing.T) {
	var hits atomic.Int32
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	reg := validRegistration()
	reg.Phone = "12345"
	reg.BankCode = "1"
	_, err := svc.Companies.Register(context.Background(), reg)
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))

	var problems validate.Errors
	require.True(t, errors.As(err, &problems))
	assert.NotNil(t, problems.Field("phone"))
	assert.NotNil(t, problems.Field("bank_code"))
	assert.Zero(t, hits.Load())
}

func TestRejectedEnvelope(t *testing.T) {
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"error","message":"token expired","data":null}`))
	}))

	_, err := svc.Contracts.List(context.Background(), "")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Equal(t, "token expired", Message(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "list contracts", se.Op)
}

func TestSuccessFlagWithoutStatus(t *testing.T) {
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"total":3,"contracts":2,"drawings":1}}`))
	}))

	stats, err := svc.Files.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.FileStats{Total: 3, Contracts: 2, Drawings: 1}, stats)
}

func TestContracts_CompanyFilter(t *testing.T) {
	srv := mock.New()
	a := srv.AddCompany(model.Company{CompanyName: "A"})
	srv.AddContract(model.Contract{CompanyID: model.FlexString(a.ID), ContractTitle: "mine", StartDate: "2024-01-01", EndDate: "2024-12-31"})
	srv.AddContract(model.Contract{CompanyID: "other", ContractTitle: "theirs"})
	svc := newTestServices(t, srv.Handler())
	ctx := context.Background()

	list, err := svc.Contracts.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].ContractTitle)

	list, err = svc.Contracts.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	created, err := svc.Contracts.Create(ctx, model.ContractInput{
		CompanyID: a.ID, ContractTitle: "new", ContractAmount: 1000, StartDate: "2024-02-01", EndDate: "2025-02-01",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := svc.Contracts.Get(ctx, string(created.ID))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.ContractAmount)
	require.NoError(t, svc.Contracts.Delete(ctx, string(created.ID)))
}

func TestFileQueryParams(t *testing.T) {
	assert.Equal(t, "page=1&pageSize=10", FileQuery{}.Params().Encode())
	assert.Equal(t, "page=3&pageSize=10&type=2&search=plan&companyId=c1",
		FileQuery{Page: 3, Type: model.FileTypeDrawing, Search: "plan", CompanyID: "c1"}.Params().Encode())
}

func TestFiles_UploadListDownload(t *testing.T) {
	client := newTestClient(t, mock.New().Handler())
	svc := New(client)
	ctx := context.Background()

	form := upload.NewFileForm(upload.BytesFile("deal.pdf", []byte("%PDF-1.4")), model.FileTypeContract, "c1", time.Now())
	_, err := upload.NewTransport(client).Upload(ctx, upload.DefaultPath, form, nil)
	require.NoError(t, err)

	page, err := svc.Files.List(ctx, FileQuery{Type: model.FileTypeContract, CompanyID: "c1"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	id := string(page.Items[0].ID)

	data, name, err := svc.Files.Download(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "deal.pdf", name)

	content, err := svc.Files.Content(ctx, id, "c1")
	require.NoError(t, err)
	assert.Equal(t, data, content)

	preview, err := svc.Files.Preview(ctx, id, "c1")
	require.NoError(t, err)
	assert.Equal(t, "deal.pdf", preview.FileName)
	assert.Contains(t, svc.Files.DownloadURL(id), "/api/files/"+id+"/download")

	require.NoError(t, svc.Files.Delete(ctx, id))
	stats, err := svc.Files.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestFiles_UploadRejectedByServer(t *testing.T) {
	client := newTestClient(t, mock.New().Handler())
	form := upload.NewFileForm(upload.BytesFile("deal.pdf", []byte("x")), model.FileTypeDrawing, "", time.Now())
	_, err := upload.NewTransport(client).Upload(context.Background(), upload.DefaultPath, form, nil)
	require.Error(t, err)
	assert.True(t, api.IsServer(err))
	assert.Equal(t, "upload failed: 400 Bad Request", Message(err))
}

func TestFiles_DownloadNameStaysLocal(t *testing.T) {
	var disposition atomic.Value
	svc := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Disposition", disposition.Load().(string))
		w.Write([]byte("hello"))
	}))

	tests := []struct {
		header string
		want   string
	}{
		{`attachment; filename="../escaped.txt"`, "escaped.txt"},
		{`attachment; filename="/etc/passwd"`, "passwd"},
		{`attachment; filename="..\\..\\win.ini"`, "win.ini"},
		{`attachment; filename=".."`, ""},
		{`attachment; filename="deal.pdf"`, "deal.pdf"},
	}
	for _, tt := range tests {
		disposition.Store(tt.header)
		data, name, err := svc.Files.Download(context.Background(), "7")
		require.NoError(t, err, tt.header)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, tt.want, name, tt.header)
	}
}
