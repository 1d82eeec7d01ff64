package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/listview"
	"github.com/sadopc/bizdesk/internal/mock"
	"github.com/sadopc/bizdesk/internal/model"
	"github.com/sadopc/bizdesk/internal/notify"
	"github.com/sadopc/bizdesk/internal/service"
	"github.com/sadopc/bizdesk/internal/validate"
)

func newServices(t *testing.T, h http.Handler) *service.Services {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	client := api.New(server.URL + "/api")
	client.SetTransport(server.Client().Transport)
	return service.New(client)
}

func TestCompanyList_SearchSortPage(t *testing.T) {
	srv := mock.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 19; i++ {
		srv.AddCompany(model.Company{
			CompanyName: fmt.Sprintf("Company %02d", i),
			UpdatedAt:   model.Timestamp{Time: base.Add(time.Duration(i) * time.Hour)},
		})
	}
	srv.AddCompany(model.Company{CompanyName: "Acme Corp", UpdatedAt: model.Timestamp{Time: base.Add(-time.Hour)}})

	list := NewCompanyList(newServices(t, srv.Handler()).Companies)
	require.NoError(t, list.Load(context.Background()))

	page := list.Page()
	assert.Equal(t, 20, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, DefaultPageSize)
	assert.Equal(t, "Company 18", page.Items[0].CompanyName, "newest update first")

	list.SetPage(9)
	page = list.Page()
	assert.Equal(t, 2, page.Page, "page past the end clamps")
	assert.Equal(t, "Acme Corp", page.Items[len(page.Items)-1].CompanyName)

	list.Search("ACME")
	page = list.Page()
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Acme Corp", page.Items[0].CompanyName)
	assert.Equal(t, 1, list.View().Page)

	list.Search("  ")
	assert.Equal(t, 20, list.Page().Total)

	list.SortBy(SortUpdatedAt)
	assert.Equal(t, listview.Asc, list.View().Sort.Dir)
	assert.Equal(t, "Acme Corp", list.Page().Items[0].CompanyName)
}

func TestCompanyList_UpdateDeleteAndDetailFallback(t *testing.T) {
	srv := mock.New()
	c := srv.AddCompany(model.Company{CompanyName: "Acme", Contact1: "Li"})
	var failDetail atomic.Bool
	handler := srv.Handler()
	svc := newServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failDetail.Load() && r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/companies/") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		handler.ServeHTTP(w, r)
	}))

	board := notify.New()
	list := NewCompanyList(svc.Companies, WithBoard(board))
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))

	in := c.Input()
	in.Contact1 = "Wang"
	_, err := list.Update(ctx, c.ID, in)
	require.NoError(t, err)
	got, ok := list.Find(c.ID)
	require.True(t, ok)
	assert.Equal(t, "Wang", got.Contact1)

	failDetail.Store(true)
	detail, err := list.Detail(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wang", detail.Contact1)

	_, err = list.Detail(ctx, "unknown")
	assert.Error(t, err)

	require.NoError(t, list.Delete(ctx, c.ID))
	assert.Empty(t, list.All())

	var kinds []notify.Kind
	for _, b := range board.Current() {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []notify.Kind{notify.Success, notify.Warning, notify.Error, notify.Success}, kinds)
}

func TestCompanyList_LoadFailureRaisesBanner(t *testing.T) {
	svc := newServices(t, mock.New(mock.WithErrorRate(1)).Handler())
	board := notify.New()
	list := NewCompanyList(svc.Companies, WithBoard(board))

	err := list.Load(context.Background())
	require.Error(t, err)
	banners := board.Current()
	require.Len(t, banners, 1)
	assert.Equal(t, "simulated server error", banners[0].Text)
}

func TestContractList_FilterClampsAndTotals(t *testing.T) {
	srv := mock.New()
	for i := 0; i < 20; i++ {
		srv.AddContract(model.Contract{CompanyID: "a", ContractTitle: fmt.Sprintf("A-%02d", i), ContractAmount: 100, PaidAmount: 40})
	}
	for i := 0; i < 3; i++ {
		srv.AddContract(model.Contract{CompanyID: "b", ContractTitle: fmt.Sprintf("B-%d", i), ContractAmount: 1000})
	}
	list := NewContractList(newServices(t, srv.Handler()).Contracts)
	require.NoError(t, list.Load(context.Background()))

	list.SetCompany("a")
	list.SetPage(2)
	page := list.Page()
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 5)

	totals := list.Totals()
	assert.Equal(t, Totals{Count: 20, Amount: 2000, Paid: 800, Outstanding: 1200}, totals)

	list.SetCompany("b")
	page = list.Page()
	assert.Equal(t, 1, page.Page, "narrowed filter clamps the page")
	assert.Len(t, page.Items, 3)

	list.SetCompany("")
	list.SetSort(SortAmount, listview.Desc)
	assert.Equal(t, 1000.0, list.Page().Items[0].ContractAmount)

	list.Search("b-1")
	require.Len(t, list.Page().Items, 1)
}

func TestContractList_SaveRow(t *testing.T) {
	srv := mock.New()
	c := srv.AddContract(model.Contract{CompanyID: "a", ContractTitle: "Supply", ContractAmount: 10, StartDate: "2024-01-01", EndDate: "2024-12-31"})

	var puts atomic.Int32
	handler := srv.Handler()
	svc := newServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			puts.Add(1)
		}
		handler.ServeHTTP(w, r)
	}))
	board := notify.New()
	list := NewContractList(svc.Contracts, WithBoard(board))
	ctx := context.Background()
	require.NoError(t, list.Load(ctx))

	_, err := list.SaveRow(ctx, c, "Supply", validate.ContractRow{ContractAmount: "", StartDate: "2024-01-01"})
	require.Error(t, err)
	assert.True(t, validate.IsValidation(err))
	assert.Zero(t, puts.Load(), "invalid rows never reach the server")

	saved, err := list.SaveRow(ctx, c, "Supply v2", validate.ContractRow{
		ContractAmount: "1,500.50", PaidAmount: "500", StartDate: "2024-01-01", EndDate: "2025-01-01", FinalPaymentAmount: "1000.5",
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.50, saved.ContractAmount)
	require.NotNil(t, saved.FinalPaymentAmount)
	assert.Equal(t, 1000.5, *saved.FinalPaymentAmount)

	got, ok := list.Find(string(c.ID))
	require.True(t, ok)
	assert.Equal(t, "Supply v2", got.ContractTitle)
	assert.Equal(t, int32(1), puts.Load())
}

func TestFileList_RefreshAndFilters(t *testing.T) {
	srv := mock.New()
	for i := 0; i < 12; i++ {
		srv.AddFile(fmt.Sprintf("deal-%02d.pdf", i), model.FileTypeContract, "c1", []byte("pdf"))
	}
	srv.AddFile("plan.png", model.FileTypeDrawing, "c2", []byte("png"))

	list := NewFileList(newServices(t, srv.Handler()).Files)
	ctx := context.Background()
	require.NoError(t, list.Refresh(ctx))

	assert.Equal(t, model.FileStats{Total: 13, Contracts: 12, Drawings: 1}, list.Stats())
	assert.Equal(t, 2, list.Page().TotalPages)
	assert.Len(t, list.Page().Items, service.FilePageSize)

	require.NoError(t, list.SetPage(ctx, 2))
	assert.Len(t, list.Page().Items, 3)
	assert.Equal(t, []int{1, 2}, list.Window(5))

	require.NoError(t, list.SetType(ctx, model.FileTypeDrawing))
	assert.Equal(t, 1, list.Query().Page)
	require.Len(t, list.Page().Items, 1)
	assert.Equal(t, "plan.png", list.Page().Items[0].OriginalName)

	require.NoError(t, list.SetType(ctx, 0))
	require.NoError(t, list.SetSearch(ctx, "deal-0"))
	assert.Equal(t, 10, list.Page().Total)

	require.NoError(t, list.SetSearch(ctx, ""))
	require.NoError(t, list.SetCompany(ctx, "c2"))
	require.Len(t, list.Page().Items, 1)
	require.NoError(t, list.Delete(ctx, string(list.Page().Items[0].ID)))
	assert.Zero(t, list.Page().Total)
	assert.Equal(t, 12, list.Stats().Total)
}

func TestFileList_DropsStaleResponse(t *testing.T) {
	srv := mock.New()
	for i := 0; i < 15; i++ {
		srv.AddFile(fmt.Sprintf("f%02d.pdf", i), model.FileTypeContract, "c1", []byte("x"))
	}
	handler := srv.Handler()
	arrived := make(chan struct{})
	release := make(chan struct{})
	svc := newServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/files" && r.URL.Query().Get("page") == "1" {
			close(arrived)
			<-release
		}
		handler.ServeHTTP(w, r)
	}))
	list := NewFileList(svc.Files)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- list.SetPage(ctx, 1) }()
	<-arrived

	require.NoError(t, list.SetPage(ctx, 2))
	assert.Equal(t, 2, list.Page().Page)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, list.Page().Page, "the overtaken page-1 response is dropped")
	assert.Len(t, list.Page().Items, 5)
}

func TestLocalApply_NewerWriteLandsLast(t *testing.T) {
	var seq api.Sequencer
	list := newLocal(CompanySchema(""), DefaultPageSize)
	older := []model.Company{{ID: "old"}}
	newer := []model.Company{{ID: "new"}}

	first := seq.Next()
	done := make(chan bool, 1)
	applied := list.apply(func() bool {
		ok := seq.Apply(first)
		// a newer load finishes while the older one is between check and write
		second := seq.Next()
		go func() {
			done <- list.apply(func() bool { return seq.Apply(second) }, newer, nil)
		}()
		time.Sleep(20 * time.Millisecond)
		return ok
	}, older, nil)

	assert.True(t, applied)
	assert.True(t, <-done)
	got := list.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestLocalApply_StaleKeepsItems(t *testing.T) {
	var seq api.Sequencer
	list := newLocal(CompanySchema(""), DefaultPageSize)
	first := seq.Next()
	second := seq.Next()

	assert.True(t, list.apply(func() bool { return seq.Apply(second) }, []model.Company{{ID: "new"}}, nil))
	assert.False(t, list.apply(func() bool { return seq.Apply(first) }, []model.Company{{ID: "old"}}, nil))
	assert.Equal(t, uint64(2), seq.Current())
	assert.Equal(t, "new", list.snapshot()[0].ID)
}
