// Package app wires the session store, backend client, session manager and
// the tenant-scoped views into one object per process.
package app

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shopdash/api"
	"github.com/angelmondragon/shopdash/api/routes"
	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/customers"
	"github.com/angelmondragon/shopdash/internal/dashboard"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/internal/orders"
	"github.com/angelmondragon/shopdash/internal/products"
	"github.com/angelmondragon/shopdash/internal/session"
	"github.com/angelmondragon/shopdash/internal/sessionstore"
	"github.com/angelmondragon/shopdash/internal/tenants"
	"github.com/angelmondragon/shopdash/pkg/config"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/metrics"
)

// View is a tenant-scoped screen that refetches when the selection changes.
type View interface {
	SetTenant(ctx context.Context, tenant *models.Tenant) error
}

// Options overrides pieces of the wiring, mostly for tests.
type Options struct {
	Backend    sessionstore.Backend
	HTTPClient *http.Client
	Now        func() time.Time
}

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Notices  *notify.Recorder

	Store     *sessionstore.Store
	Client    *apiclient.Client
	Session   *session.Manager
	Stores    *tenants.Directory
	Customers *customers.Controller
	Orders    *orders.Controller
	Products  *products.Controller
	Dashboard *dashboard.Aggregator

	expired atomic.Bool
	closer  io.Closer

	mu      sync.Mutex
	mounted []View
}

// New builds the object graph and hydrates the session.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "config required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &App{
		Config:   cfg,
		Logger:   logg,
		Registry: prometheus.NewRegistry(),
		Notices:  notify.NewRecorder(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector())

	backend := opts.Backend
	a.closer = nopCloser{}
	if backend == nil {
		var err error
		backend, a.closer, err = sessionstore.Open(ctx, cfg, logg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session store")
		}
	}

	var err error
	if a.Store, err = sessionstore.New(backend, logg); err != nil {
		return nil, a.fail(err)
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithMetrics(metrics.NewAPIMetrics(a.Registry)),
		apiclient.WithLogger(logg),
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(opts.HTTPClient))
	}
	if a.Client, err = apiclient.NewClient(cfg.API.BaseURL, a.Store, clientOpts...); err != nil {
		return nil, a.fail(err)
	}

	a.Session, err = session.NewManager(session.Params{
		Store:      a.Store,
		API:        a.Client,
		Redirector: session.RedirectFunc(a.redirectToLogin),
		Logger:     logg,
	})
	if err != nil {
		return nil, a.fail(err)
	}
	a.Client.OnUnauthorized(a.Session.Expire)

	notifier := notify.Multi{a.Notices, notify.NewLogNotifier(logg)}

	if a.Stores, err = tenants.NewDirectory(a.Client, a.Session, notifier, logg); err != nil {
		return nil, a.fail(err)
	}

	pageSize := cfg.API.PageSize
	if a.Customers, err = customers.NewController(a.Client, pageSize, notifier, logg); err != nil {
		return nil, a.fail(err)
	}
	if a.Orders, err = orders.NewController(a.Client, pageSize, opts.Now(), notifier, logg); err != nil {
		return nil, a.fail(err)
	}
	if a.Products, err = products.NewController(a.Client, pageSize, notifier, logg); err != nil {
		return nil, a.fail(err)
	}
	a.Dashboard, err = dashboard.New(dashboard.Params{
		API:          a.Client,
		Notifier:     notifier,
		Logger:       logg,
		TopCustomers: cfg.Dashboard.TopCustomers,
		RangeDays:    cfg.Dashboard.RangeDays,
		Now:          opts.Now,
	})
	if err != nil {
		return nil, a.fail(err)
	}

	a.Session.OnTenantChange(a.propagateTenant)
	a.Session.Hydrate(ctx)
	return a, nil
}

// Mount makes v follow the selected tenant for the rest of the process.
func (a *App) Mount(v View) {
	if v == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mounted = append(a.mounted, v)
}

func (a *App) propagateTenant(ctx context.Context, tenant *models.Tenant) {
	a.mu.Lock()
	views := make([]View, len(a.mounted))
	copy(views, a.mounted)
	a.mu.Unlock()

	if tenant != nil {
		ctx = a.Logger.WithTenantID(ctx, tenant.ID.String())
	}
	for _, v := range views {
		// failures already surfaced a notice
		if err := v.SetTenant(ctx, tenant); err != nil {
			a.Logger.Warn(a.Logger.WithField(ctx, "error", err.Error()), "view refresh after tenant change failed")
		}
	}
}

func (a *App) redirectToLogin(ctx context.Context) {
	a.expired.Store(true)
	a.Logger.Warn(ctx, "session expired, login required")
}

// SessionExpired reports whether the backend rejected the session during
// this process.
func (a *App) SessionExpired() bool {
	return a.expired.Load()
}

// CallbackServer builds the local OAuth-return and metrics listener.
func (a *App) CallbackServer(onReturn func(connected bool)) *api.Server {
	return api.NewServer(a.Config.Callback.Addr, routes.Params{
		Config:   a.Config,
		Logger:   a.Logger,
		Stores:   a.Stores,
		Gatherer: a.Registry,
		OnReturn: onReturn,
	})
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) fail(err error) error {
	return multierr.Append(err, a.Close())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
