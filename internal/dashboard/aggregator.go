// Package dashboard gathers the overview cards, daily series and top
// customers shown for the selected tenant.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/types"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRangeDays    = 30
	DefaultTopCustomers = 5

	msgLoadFailed = "Failed to load dashboard data"
	msgSynced     = "Data synced successfully!"
	msgSyncFailed = "Sync failed"
)

// API is the backend surface the aggregator reads from.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// State is a copy of the dashboard fields. Overview is nil until it loads.
type State struct {
	TenantID      types.ID
	Range         types.DateRange
	Overview      *models.Overview
	RevenueSeries []models.SeriesPoint
	OrdersSeries  []models.SeriesPoint
	TopCustomers  []models.TopCustomer
	Loading       bool
}

// Params bundles the aggregator dependencies.
type Params struct {
	API          API
	Notifier     notify.Notifier
	Logger       *logger.Logger
	TopCustomers int
	RangeDays    int
	Now          func() time.Time
}

type Aggregator struct {
	api      API
	notifier notify.Notifier
	logg     *logger.Logger
	topLimit int

	mu         sync.Mutex
	state      State
	generation uint64
}

func New(p Params) (*Aggregator, error) {
	if p.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.TopCustomers <= 0 {
		p.TopCustomers = DefaultTopCustomers
	}
	if p.RangeDays <= 0 {
		p.RangeDays = DefaultRangeDays
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Aggregator{
		api:      p.API,
		notifier: p.Notifier,
		logg:     p.Logger,
		topLimit: p.TopCustomers,
		state:    State{Range: types.LastNDays(p.Now(), p.RangeDays)},
	}, nil
}

func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	if s.Overview != nil {
		overview := *s.Overview
		s.Overview = &overview
	}
	s.RevenueSeries = append([]models.SeriesPoint(nil), s.RevenueSeries...)
	s.OrdersSeries = append([]models.SeriesPoint(nil), s.OrdersSeries...)
	s.TopCustomers = append([]models.TopCustomer(nil), s.TopCustomers...)
	return s
}

// SetTenant clears every field and reloads for tenant; nil just clears.
func (a *Aggregator) SetTenant(ctx context.Context, tenant *models.Tenant) error {
	a.mu.Lock()
	a.generation++
	a.clearLocked()
	if tenant == nil {
		a.state.TenantID = ""
		a.mu.Unlock()
		return nil
	}
	a.state.TenantID = tenant.ID
	a.mu.Unlock()
	return a.Refresh(ctx)
}

// SetDateRange validates r, then reloads with it.
func (a *Aggregator) SetDateRange(ctx context.Context, r types.DateRange) error {
	if err := r.Validate(); err != nil {
		msg := err.Error()
		if typed := pkgerrors.As(err); typed != nil {
			msg = typed.Message()
		}
		notify.Error(ctx, a.notifier, msg)
		return err
	}
	a.mu.Lock()
	a.generation++
	a.state.Range = r
	a.mu.Unlock()
	return a.Refresh(ctx)
}

type refreshTag struct {
	tenant     types.ID
	rng        types.DateRange
	generation uint64
}

// Refresh fetches all four panels concurrently. Panels that load are shown
// even if others fail; any failure raises a single notice.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if a.state.TenantID == "" {
		a.mu.Unlock()
		return nil
	}
	a.generation++
	a.clearLocked()
	a.state.Loading = true
	tag := refreshTag{tenant: a.state.TenantID, rng: a.state.Range, generation: a.generation}
	a.mu.Unlock()

	ctx = a.logg.WithTenantID(ctx, tag.tenant.String())
	base := url.Values{"tenant_id": {tag.tenant.String()}}
	ranged := url.Values{
		"tenant_id":  {tag.tenant.String()},
		"start_date": {tag.rng.Start.String()},
		"end_date":   {tag.rng.End.String()},
	}
	top := url.Values{
		"tenant_id": {tag.tenant.String()},
		"limit":     {strconv.Itoa(a.topLimit)},
	}

	var (
		overview     models.Overview
		revenue      []models.SeriesPoint
		orders       []models.SeriesPoint
		topCustomers []models.TopCustomer
		errs         [4]error
		g            errgroup.Group
	)
	g.Go(func() error {
		errs[0] = a.fetch(ctx, "analytics/overview", base, &overview)
		return nil
	})
	g.Go(func() error {
		errs[1] = a.fetch(ctx, "analytics/revenue", ranged, &revenue)
		return nil
	})
	g.Go(func() error {
		errs[2] = a.fetch(ctx, "analytics/orders-by-date", ranged, &orders)
		return nil
	})
	g.Go(func() error {
		errs[3] = a.fetch(ctx, "analytics/top-customers", top, &topCustomers)
		return nil
	})
	_ = g.Wait()

	a.mu.Lock()
	if a.generation != tag.generation || a.state.TenantID != tag.tenant || !a.state.Range.Equal(tag.rng) {
		a.mu.Unlock()
		a.logg.Debug(ctx, "discarding stale dashboard response")
		return nil
	}
	if errs[0] == nil {
		a.state.Overview = &overview
	}
	if errs[1] == nil {
		a.state.RevenueSeries = nonNil(revenue)
	}
	if errs[2] == nil {
		a.state.OrdersSeries = nonNil(orders)
	}
	if errs[3] == nil {
		a.state.TopCustomers = nonNil(topCustomers)
	}
	a.state.Loading = false
	a.mu.Unlock()

	if err := multierr.Combine(errs[:]...); err != nil {
		a.logg.Error(ctx, "dashboard refresh incomplete", err)
		notify.Error(ctx, a.notifier, msgLoadFailed)
		return err
	}
	return nil
}

// Sync asks the backend to pull fresh data for the tenant, then refreshes.
func (a *Aggregator) Sync(ctx context.Context) error {
	a.mu.Lock()
	tenantID := a.state.TenantID
	a.mu.Unlock()
	if tenantID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "no store selected")
	}

	path := fmt.Sprintf("tenants/%s/sync", url.PathEscape(tenantID.String()))
	if err := a.api.Post(ctx, path, nil, nil); err != nil {
		a.logg.Error(a.logg.WithTenantID(ctx, tenantID.String()), "syncing tenant", err)
		notify.Error(ctx, a.notifier, msgSyncFailed)
		return err
	}
	notify.Success(ctx, a.notifier, msgSynced)
	return a.Refresh(ctx)
}

func (a *Aggregator) fetch(ctx context.Context, path string, query url.Values, out any) error {
	if err := a.api.Get(ctx, path, query, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (a *Aggregator) clearLocked() {
	a.state.Overview = nil
	a.state.RevenueSeries = nil
	a.state.OrdersSeries = nil
	a.state.TopCustomers = nil
	a.state.Loading = false
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
