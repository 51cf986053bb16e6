// Package session owns the in-memory authentication state and keeps it in
// step with the persisted session store.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/sessionstore"
	"github.com/angelmondragon/shopdash/pkg/auth"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

// ErrNotHydrated is returned when a mutator gives up waiting for hydration.
var ErrNotHydrated = errors.New("session not hydrated")

type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Store is the persisted session the manager mirrors.
type Store interface {
	Load(ctx context.Context) sessionstore.Snapshot
	SaveToken(ctx context.Context, token string) error
	SaveUser(ctx context.Context, user models.User) error
	SaveTenant(ctx context.Context, tenant *models.Tenant) error
	Clear(ctx context.Context, fields ...sessionstore.Field) error
}

// API is the backend surface used for login and registration.
type API interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Redirector sends the user back to the login entry point.
type Redirector interface {
	RedirectToLogin(ctx context.Context)
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context)

func (f RedirectFunc) RedirectToLogin(ctx context.Context) { f(ctx) }

// TenantListener is told about every change of the selected tenant id.
type TenantListener func(ctx context.Context, tenant *models.Tenant)

// Result is the outcome of Login and Register.
type Result struct {
	Success bool
	Message string
}

// Snapshot is a copy of the in-memory session.
type Snapshot struct {
	Token          string
	User           *models.User
	SelectedTenant *models.Tenant
	Loading        bool
}

type Manager struct {
	store      Store
	api        API
	redirector Redirector
	logg       *logger.Logger

	hydrateOnce sync.Once
	ready       chan struct{}

	mu        sync.RWMutex
	state     State
	token     string
	user      *models.User
	tenant    *models.Tenant
	listeners []TenantListener
}

// Params bundles the manager dependencies.
type Params struct {
	Store      Store
	API        API
	Redirector Redirector
	Logger     *logger.Logger
}

func NewManager(p Params) (*Manager, error) {
	if p.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session store required")
	}
	if p.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	if p.Redirector == nil {
		p.Redirector = RedirectFunc(func(context.Context) {})
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Manager{
		store:      p.Store,
		api:        p.API,
		redirector: p.Redirector,
		logg:       p.Logger,
		ready:      make(chan struct{}),
	}, nil
}

// Hydrate restores the persisted session. Only the first call does any work.
func (m *Manager) Hydrate(ctx context.Context) {
	m.hydrateOnce.Do(func() {
		m.mu.Lock()
		m.state = StateHydrating
		m.mu.Unlock()

		snap := m.store.Load(ctx)

		m.mu.Lock()
		if snap.Token != "" && snap.User != nil {
			m.token = snap.Token
			m.user = cloneUser(snap.User)
		}
		m.tenant = cloneTenant(snap.SelectedTenant)
		m.state = StateReady
		m.mu.Unlock()
		close(m.ready)

		m.logg.Debug(ctx, "session hydrated")
	})
}

// WaitReady blocks until Hydrate has completed or ctx ends.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ErrNotHydrated
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Loading is true until hydration completes.
func (m *Manager) Loading() bool {
	return m.State() != StateReady
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Token:          m.token,
		User:           cloneUser(m.user),
		SelectedTenant: cloneTenant(m.tenant),
		Loading:        m.state != StateReady,
	}
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

func (m *Manager) SelectedTenant() *models.Tenant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTenant(m.tenant)
}

// TokenExpiry reports the exp claim of the current token without verifying it.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	token := m.Token()
	if token == "" {
		return time.Time{}, false
	}
	return auth.Expiry(token)
}

// OnTenantChange registers a listener for selected tenant changes.
func (m *Manager) OnTenantChange(fn TenantListener) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Logout clears every session field. Calling it twice is harmless.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.WaitReady(ctx); err != nil {
		return err
	}
	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	changed := m.tenant != nil
	m.token = ""
	m.user = nil
	m.tenant = nil
	m.mu.Unlock()

	if changed {
		m.notifyTenant(ctx, nil)
	}
	return nil
}

// SelectTenant persists the selection, then updates memory; nil clears it.
func (m *Manager) SelectTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := m.WaitReady(ctx); err != nil {
		return err
	}
	next := cloneTenant(tenant)
	if err := m.store.SaveTenant(ctx, next); err != nil {
		return err
	}

	m.mu.Lock()
	changed := tenantID(m.tenant) != tenantID(next) || (m.tenant == nil) != (next == nil)
	m.tenant = next
	m.mu.Unlock()

	if changed {
		m.notifyTenant(ctx, cloneTenant(next))
	}
	return nil
}

// Expire handles a 401 from the backend: credentials are dropped, the
// selected tenant stays, and the user is sent to the login entry point.
func (m *Manager) Expire(ctx context.Context) {
	if err := m.WaitReady(ctx); err != nil {
		m.logg.Warn(ctx, "session expired before hydration")
	}
	if err := m.store.Clear(ctx, sessionstore.FieldToken, sessionstore.FieldUser); err != nil {
		m.logg.Error(ctx, "clearing expired credentials", err)
	}

	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	m.logg.Info(ctx, "session expired")
	m.redirector.RedirectToLogin(ctx)
}

func (m *Manager) notifyTenant(ctx context.Context, tenant *models.Tenant) {
	m.mu.RLock()
	listeners := make([]TenantListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, cloneTenant(tenant))
	}
}

func tenantID(t *models.Tenant) string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.ID.String())
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneTenant(t *models.Tenant) *models.Tenant {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
