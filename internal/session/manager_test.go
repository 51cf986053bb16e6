package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/sessionstore"
	"github.com/angelmondragon/shopdash/pkg/auth"
	"github.com/golang-jwt/jwt/v5"
)

type fakeAPI struct {
	calls   []string
	respond func(path string, body any) (any, error)
}

func (f *fakeAPI) Post(_ context.Context, path string, body, out any) error {
	f.calls = append(f.calls, path)
	if f.respond == nil {
		return errors.New("no responder")
	}
	resp, err := f.respond(path, body)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type recordingRedirector struct {
	count int
}

func (r *recordingRedirector) RedirectToLogin(context.Context) { r.count++ }

func newStore(t *testing.T) *sessionstore.Store {
	t.Helper()
	store, err := sessionstore.New(sessionstore.NewMemory(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func newManager(t *testing.T, store *sessionstore.Store, api *fakeAPI, redirector Redirector) *Manager {
	t.Helper()
	m, err := NewManager(Params{Store: store, API: api, Redirector: redirector})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.Hydrate(context.Background())
	return m
}

func successfulLogin(token string) func(string, any) (any, error) {
	return func(string, any) (any, error) {
		return map[string]any{
			"token": token,
			"user":  map[string]any{"id": 7, "name": "Ada", "email": "ada@example.com"},
		}, nil
	}
}

func TestLoginPersistsAndSurvivesRehydration(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := &fakeAPI{respond: successfulLogin("tok-1")}
	m := newManager(t, store, api, nil)

	res := m.Login(ctx, "ada@example.com", "secret")
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if !m.IsAuthenticated() || m.User().Email != "ada@example.com" {
		t.Fatalf("unexpected session %+v", m.Snapshot())
	}

	reloaded := newManager(t, store, &fakeAPI{}, nil)
	if reloaded.Token() != "tok-1" || reloaded.User() == nil || reloaded.User().ID != "7" {
		t.Fatalf("expected rehydrated session, got %+v", reloaded.Snapshot())
	}
}

func TestLoginFailureKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	api := &fakeAPI{respond: successfulLogin("first")}
	m := newManager(t, store, api, nil)
	if res := m.Login(ctx, "ada@example.com", "secret"); !res.Success {
		t.Fatalf("first login failed: %+v", res)
	}

	api.respond = func(string, any) (any, error) {
		return nil, &apiclient.Error{Status: http.StatusBadRequest, Message: "Bad Request"}
	}
	res := m.Login(ctx, "ada@example.com", "wrong")
	if res.Success || res.Message != "Login failed" {
		t.Fatalf("expected fallback failure, got %+v", res)
	}
	if m.Token() != "first" || store.Token(ctx) != "first" {
		t.Fatalf("expected prior token kept, memory=%q store=%q", m.Token(), store.Token(ctx))
	}
}

func TestLoginValidationMakesNoRequest(t *testing.T) {
	api := &fakeAPI{respond: successfulLogin("tok")}
	m := newManager(t, newStore(t), api, nil)

	res := m.Login(context.Background(), "not-an-email", "")
	if res.Success {
		t.Fatal("expected validation failure")
	}
	if res.Message != "email must be a valid email; password is required" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if len(api.calls) != 0 {
		t.Fatalf("expected no requests, got %v", api.calls)
	}
}

func TestRegisterFallsBackWithoutPayloadMessage(t *testing.T) {
	api := &fakeAPI{respond: func(path string, body any) (any, error) {
		if path != "auth/register" {
			t.Fatalf("unexpected path %q", path)
		}
		req := body.(registerRequest)
		if req.Name != "Ada" {
			t.Fatalf("expected sanitized name, got %q", req.Name)
		}
		return nil, &apiclient.Error{Status: http.StatusConflict, Message: "Email already registered"}
	}}
	m := newManager(t, newStore(t), api, nil)

	res := m.Register(context.Background(), "  Ada ", "ada@example.com", "secret1")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != "Registration failed" {
		t.Fatalf("expected fallback without payload message, got %q", res.Message)
	}
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := newManager(t, store, &fakeAPI{respond: successfulLogin("tok")}, nil)
	_ = m.Login(ctx, "ada@example.com", "secret")
	_ = m.SelectTenant(ctx, &models.Tenant{ID: "3"})

	var notified []*models.Tenant
	m.OnTenantChange(func(_ context.Context, tenant *models.Tenant) { notified = append(notified, tenant) })

	for i := 0; i < 2; i++ {
		if err := m.Logout(ctx); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
	}
	if m.IsAuthenticated() || m.User() != nil || m.SelectedTenant() != nil {
		t.Fatalf("expected cleared memory, got %+v", m.Snapshot())
	}
	snap := store.Load(ctx)
	if snap.Token != "" || snap.User != nil || snap.SelectedTenant != nil {
		t.Fatalf("expected cleared store, got %+v", snap)
	}
	if len(notified) != 1 || notified[0] != nil {
		t.Fatalf("expected one nil tenant notification, got %v", notified)
	}
}

func TestHydrateRequiresTokenAndUser(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	_ = store.SaveToken(ctx, "orphan")
	_ = store.SaveTenant(ctx, &models.Tenant{ID: "9"})

	m := newManager(t, store, &fakeAPI{}, nil)
	if m.IsAuthenticated() {
		t.Fatal("expected token without user to be ignored")
	}
	if m.SelectedTenant() == nil || m.SelectedTenant().ID != "9" {
		t.Fatalf("expected tenant restored independently, got %+v", m.SelectedTenant())
	}
	if m.Loading() || m.State() != StateReady {
		t.Fatalf("expected ready state, got %s", m.State())
	}
}

func TestHydrateRunsOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := newManager(t, store, &fakeAPI{}, nil)

	_ = store.SaveToken(ctx, "late")
	_ = store.SaveUser(ctx, models.User{ID: "1"})
	m.Hydrate(ctx)
	if m.IsAuthenticated() {
		t.Fatal("expected second hydrate to be a no-op")
	}
}

func TestMutatorsWaitForHydration(t *testing.T) {
	m, err := NewManager(Params{Store: newStore(t), API: &fakeAPI{}})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if !m.Loading() || m.State() != StateUninitialized {
		t.Fatalf("expected uninitialized manager, got %s", m.State())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.SelectTenant(ctx, &models.Tenant{ID: "1"}); !errors.Is(err, ErrNotHydrated) {
		t.Fatalf("expected ErrNotHydrated, got %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- m.SelectTenant(context.Background(), &models.Tenant{ID: "1"}) }()
	m.Hydrate(context.Background())
	if err := <-done; err != nil {
		t.Fatalf("select after hydrate: %v", err)
	}
	if m.SelectedTenant() == nil || m.SelectedTenant().ID != "1" {
		t.Fatal("expected selection to apply after hydration")
	}
}

func TestSelectTenantNotifiesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := newManager(t, store, &fakeAPI{}, nil)

	var ids []string
	m.OnTenantChange(func(_ context.Context, tenant *models.Tenant) {
		if tenant == nil {
			ids = append(ids, "")
			return
		}
		ids = append(ids, tenant.ID.String())
	})

	_ = m.SelectTenant(ctx, &models.Tenant{ID: "1", StoreName: "A"})
	_ = m.SelectTenant(ctx, &models.Tenant{ID: "1", StoreName: "A renamed"})
	_ = m.SelectTenant(ctx, &models.Tenant{ID: "2"})
	_ = m.SelectTenant(ctx, nil)

	if len(ids) != 3 || ids[0] != "1" || ids[1] != "2" || ids[2] != "" {
		t.Fatalf("unexpected notifications %v", ids)
	}
	if store.Load(ctx).SelectedTenant != nil {
		t.Fatal("expected nil selection to be persisted")
	}
}

func TestExpireClearsCredentialsAndRedirects(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	redirect := &recordingRedirector{}
	m := newManager(t, store, &fakeAPI{respond: successfulLogin("tok")}, redirect)
	_ = m.Login(ctx, "ada@example.com", "secret")
	_ = m.SelectTenant(ctx, &models.Tenant{ID: "5"})

	m.Expire(ctx)

	if m.IsAuthenticated() || m.User() != nil {
		t.Fatalf("expected credentials cleared, got %+v", m.Snapshot())
	}
	if m.SelectedTenant() == nil {
		t.Fatal("expected tenant kept after expiry")
	}
	if redirect.count != 1 {
		t.Fatalf("expected one redirect, got %d", redirect.count)
	}

	fresh := newManager(t, store, &fakeAPI{}, nil)
	if fresh.IsAuthenticated() || fresh.SelectedTenant() == nil {
		t.Fatalf("expected store to match memory, got %+v", fresh.Snapshot())
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.AccessTokenClaims{
		UserID:           "7",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	m := newManager(t, newStore(t), &fakeAPI{respond: successfulLogin(token)}, nil)
	if _, ok := m.TokenExpiry(); ok {
		t.Fatal("expected no expiry without a token")
	}
	_ = m.Login(context.Background(), "ada@example.com", "secret")

	exp, ok := m.TokenExpiry()
	if !ok || !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v ok=%v", exp, ok)
	}
}

func TestNewManagerRequiresDependencies(t *testing.T) {
	if _, err := NewManager(Params{API: &fakeAPI{}}); err == nil {
		t.Fatal("expected store requirement")
	}
	if _, err := NewManager(Params{Store: newStore(t)}); err == nil {
		t.Fatal("expected api requirement")
	}
}
