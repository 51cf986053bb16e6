package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/internal/sessionstore"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/go-chi/chi/v5"
)

type backend struct {
	mu      sync.Mutex
	queries []url.Values
}

func (b *backend) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/orders", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.queries = append(b.queries, req.URL.Query())
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders":[{"id":11,"order_number":"#1001","financial_status":"paid","total_price":"42.00"}],"totalPages":2}`))
	})
	return r
}

func (b *backend) requests() []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]url.Values(nil), b.queries...)
}

func newController(t *testing.T, now time.Time) (*Controller, *backend, *notify.Recorder) {
	t.Helper()
	be := &backend{}
	srv := httptest.NewServer(be.handler())
	t.Cleanup(srv.Close)

	store, err := sessionstore.New(sessionstore.NewMemory(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	client, err := apiclient.NewClient(srv.URL+"/api", store)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	rec := notify.NewRecorder()
	ctrl, err := NewController(client, 20, now, rec, nil)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl, be, rec
}

func TestReversedRangeSendsNoRequest(t *testing.T) {
	ctx := context.Background()
	ctrl, be, rec := newController(t, time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC))
	if err := ctrl.SetTenant(ctx, &models.Tenant{ID: "3"}); err != nil {
		t.Fatalf("set tenant: %v", err)
	}
	before := len(be.requests())

	reversed := Filters{
		Range:  types.DateRange{Start: types.NewDate(2024, 2, 1), End: types.NewDate(2024, 1, 1)},
		Status: StatusAll,
	}
	err := ctrl.ApplyFilters(ctx, reversed)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := len(be.requests()); got != before {
		t.Fatalf("expected no new requests, got %d", got-before)
	}
	if msgs := rec.Messages(notify.LevelError); len(msgs) != 1 || msgs[0] != "End date cannot be before start date" {
		t.Fatalf("unexpected notices %v", msgs)
	}
}

func TestDefaultFiltersAreSent(t *testing.T) {
	ctx := context.Background()
	ctrl, be, _ := newController(t, time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC))
	if err := ctrl.SetTenant(ctx, &models.Tenant{ID: "3"}); err != nil {
		t.Fatalf("set tenant: %v", err)
	}

	reqs := be.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	q := reqs[0]
	want := map[string]string{
		"tenant_id": "3",
		"page":      "1",
		"limit":     "20",
		"startDate": "2024-03-01",
		"endDate":   "2024-03-31",
		"status":    "all",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Fatalf("query %s = %q, want %q", k, q.Get(k), v)
		}
	}

	state := ctrl.State()
	if len(state.Items) != 1 || state.Items[0].OrderNumber != "#1001" || state.TotalPages != 2 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestStatusFilterApplied(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	ctrl, be, _ := newController(t, now)
	_ = ctrl.SetTenant(ctx, &models.Tenant{ID: "3"})
	_ = ctrl.SetPage(ctx, 2)

	f := DefaultFilters(now)
	f.Status = "refunded"
	if err := ctrl.ApplyFilters(ctx, f); err != nil {
		t.Fatalf("apply filters: %v", err)
	}
	reqs := be.requests()
	last := reqs[len(reqs)-1]
	if last.Get("status") != "refunded" || last.Get("page") != "1" {
		t.Fatalf("unexpected query %v", last)
	}
}

func TestFiltersValidate(t *testing.T) {
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if err := DefaultFilters(now).Validate(); err != nil {
		t.Fatalf("default filters invalid: %v", err)
	}
	f := DefaultFilters(now)
	f.Status = "shipped"
	if err := f.Validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestBadgeClass(t *testing.T) {
	if BadgeClass("PAID") != "green" || BadgeClass("voided") != "gray" || BadgeClass("") != "gray" {
		t.Fatal("unexpected badge classes")
	}
}
