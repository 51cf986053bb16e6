// Package listing drives a paginated, tenant-scoped resource listing: page
// navigation, filters, free-text search and discarding of stale responses.
package listing

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/pagination"
	"github.com/angelmondragon/shopdash/pkg/types"
)

type Status string

const (
	StatusNeedsTenant Status = "needs_tenant"
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusLoaded      Status = "loaded"
	StatusError       Status = "error"
)

// PageRequest is what a Fetcher is asked for.
type PageRequest[F any] struct {
	TenantID types.ID
	Page     int
	Limit    int
	Filters  F
}

// Fetcher loads one page of the listing.
type Fetcher[T, F any] func(ctx context.Context, req PageRequest[F]) (apiclient.Page[T], error)

// Searcher runs a free-text search; results are a single page.
type Searcher[T any] func(ctx context.Context, tenantID types.ID, query string) ([]T, error)

// Config wires a Controller. Fetch is required.
type Config[T any, F comparable] struct {
	Resource            string
	Fetch               Fetcher[T, F]
	Search              Searcher[T]
	Validate            func(F) error
	Filters             F
	PageSize            int
	LoadFailedMessage   string
	SearchFailedMessage string
	Notifier            notify.Notifier
	Logger              *logger.Logger
}

// State is a copy of the controller's view.
type State[T any, F comparable] struct {
	TenantID    types.ID
	Items       []T
	CurrentPage int
	TotalPages  int
	Filters     F
	Query       string
	Status      Status
}

// requestTag identifies the view a response was requested for.
type requestTag[F comparable] struct {
	tenant     types.ID
	page       int
	filters    F
	query      string
	generation uint64
}

type Controller[T any, F comparable] struct {
	cfg Config[T, F]

	mu         sync.Mutex
	tenant     types.ID
	items      []T
	page       int
	totalPages int
	filters    F
	query      string
	status     Status
	generation uint64
}

func New[T any, F comparable](cfg Config[T, F]) (*Controller[T, F], error) {
	if cfg.Fetch == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing fetcher required")
	}
	if cfg.Resource == "" {
		cfg.Resource = "items"
	}
	if cfg.LoadFailedMessage == "" {
		cfg.LoadFailedMessage = "Failed to load " + cfg.Resource
	}
	if cfg.SearchFailedMessage == "" {
		cfg.SearchFailedMessage = "Search failed"
	}
	cfg.PageSize = pagination.NormalizeLimit(cfg.PageSize)
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Controller[T, F]{
		cfg:        cfg,
		items:      []T{},
		page:       1,
		totalPages: 1,
		filters:    cfg.Filters,
		status:     StatusNeedsTenant,
	}, nil
}

func (c *Controller[T, F]) State() State[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T, F]{
		TenantID:    c.tenant,
		Items:       items,
		CurrentPage: c.page,
		TotalPages:  c.totalPages,
		Filters:     c.filters,
		Query:       c.query,
		Status:      c.status,
	}
}

// SetTenant scopes the listing. A new tenant id drops the previous tenant's
// rows, resets to page 1 without a search and fetches; nil empties the listing.
func (c *Controller[T, F]) SetTenant(ctx context.Context, tenant *models.Tenant) error {
	c.mu.Lock()
	if tenant == nil || tenant.ID.IsZero() {
		c.tenant = ""
		c.items = []T{}
		c.page, c.totalPages = 1, 1
		c.query = ""
		c.status = StatusNeedsTenant
		c.generation++
		c.mu.Unlock()
		return nil
	}
	if tenant.ID == c.tenant && c.status != StatusNeedsTenant {
		c.mu.Unlock()
		return nil
	}
	c.tenant = tenant.ID
	c.items = []T{}
	c.page, c.totalPages = 1, 1
	c.query = ""
	tag := c.beginLocked()
	c.mu.Unlock()
	return c.load(ctx, tag)
}

// Prepare scopes the listing to tenant without requesting anything. The
// controller is idle until the next navigation, and the page range is not
// known yet, so the next SetPage is only clamped from below.
func (c *Controller[T, F]) Prepare(tenant *models.Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.items = []T{}
	c.page, c.totalPages = 1, 1
	c.query = ""
	if tenant == nil || tenant.ID.IsZero() {
		c.tenant = ""
		c.status = StatusNeedsTenant
		return
	}
	c.tenant = tenant.ID
	c.status = StatusIdle
}

// Refresh re-requests the current view.
func (c *Controller[T, F]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.tenant == "" {
		c.mu.Unlock()
		return nil
	}
	tag := c.beginLocked()
	c.mu.Unlock()
	return c.load(ctx, tag)
}

// SetPage moves to page n, clamped to the known page range. Filters are kept.
func (c *Controller[T, F]) SetPage(ctx context.Context, n int) error {
	c.mu.Lock()
	if c.tenant == "" {
		c.mu.Unlock()
		return nil
	}
	if c.status == StatusIdle {
		c.page = max(n, 1)
	} else {
		c.page = pagination.ClampPage(n, c.totalPages)
	}
	tag := c.beginLocked()
	c.mu.Unlock()
	return c.load(ctx, tag)
}

func (c *Controller[T, F]) Next(ctx context.Context) error {
	return c.SetPage(ctx, c.State().CurrentPage+1)
}

func (c *Controller[T, F]) Prev(ctx context.Context) error {
	return c.SetPage(ctx, c.State().CurrentPage-1)
}

// ApplyFilters validates f before anything is requested, then lists page 1.
func (c *Controller[T, F]) ApplyFilters(ctx context.Context, f F) error {
	if c.cfg.Validate != nil {
		if err := c.cfg.Validate(f); err != nil {
			msg := err.Error()
			if typed := pkgerrors.As(err); typed != nil {
				msg = typed.Message()
			}
			notify.Error(ctx, c.cfg.Notifier, msg)
			return err
		}
	}

	c.mu.Lock()
	c.filters = f
	c.page = 1
	c.query = ""
	if c.tenant == "" {
		c.mu.Unlock()
		return nil
	}
	tag := c.beginLocked()
	c.mu.Unlock()
	return c.load(ctx, tag)
}

// Search replaces the listing with search results. A blank query goes back
// to page 1 of the plain listing.
func (c *Controller[T, F]) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query != "" && c.cfg.Search == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, c.cfg.Resource+" do not support search")
	}

	c.mu.Lock()
	c.query = query
	c.page = 1
	if c.tenant == "" {
		c.mu.Unlock()
		return nil
	}
	tag := c.beginLocked()
	c.mu.Unlock()
	return c.load(ctx, tag)
}

func (c *Controller[T, F]) beginLocked() requestTag[F] {
	c.generation++
	c.status = StatusLoading
	return c.currentTagLocked()
}

func (c *Controller[T, F]) currentTagLocked() requestTag[F] {
	return requestTag[F]{
		tenant:     c.tenant,
		page:       c.page,
		filters:    c.filters,
		query:      c.query,
		generation: c.generation,
	}
}

func (c *Controller[T, F]) load(ctx context.Context, tag requestTag[F]) error {
	ctx = c.cfg.Logger.WithFields(ctx, map[string]any{
		"tenant_id": tag.tenant.String(),
		"resource":  c.cfg.Resource,
		"page":      tag.page,
	})

	var (
		page       apiclient.Page[T]
		err        error
		failureMsg = c.cfg.LoadFailedMessage
	)
	if tag.query != "" {
		failureMsg = c.cfg.SearchFailedMessage
		var items []T
		items, err = c.cfg.Search(ctx, tag.tenant, tag.query)
		page = apiclient.Page[T]{Items: items, TotalPages: 1}
	} else {
		page, err = c.cfg.Fetch(ctx, PageRequest[F]{
			TenantID: tag.tenant,
			Page:     tag.page,
			Limit:    c.cfg.PageSize,
			Filters:  tag.filters,
		})
	}

	c.mu.Lock()
	if c.currentTagLocked() != tag {
		c.mu.Unlock()
		c.cfg.Logger.Debug(ctx, "discarding stale listing response")
		return nil
	}
	if err != nil {
		c.status = StatusError
		c.mu.Unlock()
		c.cfg.Logger.Error(ctx, "listing request failed", err)
		notify.Error(ctx, c.cfg.Notifier, failureMsg)
		return err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	c.items = page.Items
	c.totalPages = pagination.NormalizeTotal(page.TotalPages)
	c.page = pagination.ClampPage(tag.page, c.totalPages)
	if tag.query != "" {
		c.page, c.totalPages = 1, 1
	}
	c.status = StatusLoaded
	c.mu.Unlock()
	return nil
}
