package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdash/internal/app"
	"github.com/angelmondragon/shopdash/internal/sessionstore"
	"github.com/angelmondragon/shopdash/pkg/config"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

type backend struct {
	mu     sync.Mutex
	paths  []string
	reject bool
}

func (b *backend) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.mu.Lock()
			b.paths = append(b.paths, req.URL.Path)
			reject := b.reject
			b.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			if reject {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":7,"name":"Ada","email":"ada@example.com"}}`))
	})
	r.Get("/api/tenants", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"store_name":"Old"},{"id":2,"store_name":"New"}]`))
	})
	r.Get("/api/customers", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"customers":[{"id":5,"first_name":"Grace","last_name":"Hopper"}],"totalPages":3}`))
	})
	r.Get("/api/orders", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"orders":[],"totalPages":1}`))
	})
	return r
}

func (b *backend) hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.paths {
		if p == path {
			n++
		}
	}
	return n
}

type harness struct {
	cfg     *config.Config
	be      *backend
	session *sessionstore.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := &backend{}
	srv := httptest.NewServer(be.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.App.Profile = "default"
	cfg.API.BaseURL = srv.URL + "/api"
	cfg.API.Timeout = 5 * time.Second
	cfg.API.PageSize = 20
	cfg.Session.Backend = config.SessionBackendMemory
	cfg.Dashboard.TopCustomers = 5
	cfg.Dashboard.RangeDays = 30
	cfg.Callback.Addr = "127.0.0.1:0"
	cfg.Callback.Path = "/settings"

	return &harness{cfg: cfg, be: be, session: sessionstore.NewMemory()}
}

func (h *harness) run(args ...string) (int, string) {
	var out bytes.Buffer
	code := runWith(context.Background(), h.cfg, logger.Nop(), app.Options{
		Backend: h.session,
		Now:     func() time.Time { return time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC) },
	}, args, strings.NewReader(""), &out)
	return code, out.String()
}

func TestNoArgsPrintsUsage(t *testing.T) {
	h := newHarness(t)
	code, out := h.run()
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "usage: shopdash")
	assert.Contains(t, out, "customers [--page N]")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	code, out := h.run("refund")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, `unknown command "refund"`)
}

func TestLoginSelectsNewestStore(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("login", "--email", "ada@example.com", "--password", "secret")
	require.Equal(t, exitOK, code, out)
	assert.Contains(t, out, "Signed in as Ada <ada@example.com>")
	assert.Contains(t, out, "Current store: New")

	code, out = h.run("whoami")
	require.Equal(t, exitOK, code, out)
	assert.Contains(t, out, "Ada <ada@example.com>")
	assert.Contains(t, out, "Store: New")
}

func TestLoginValidationFailsWithoutRequest(t *testing.T) {
	h := newHarness(t)

	code, _ := h.run("login", "--email", "not-an-email", "--password", "secret")
	assert.Equal(t, exitFailure, code)
	assert.Zero(t, h.be.hits("/api/auth/login"))
}

func TestCustomersRequiresSignIn(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("customers")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "Not signed in")
	assert.Zero(t, h.be.hits("/api/customers"))
}

func TestCustomersListsSelectedStore(t *testing.T) {
	h := newHarness(t)
	code, out := h.run("login", "--email", "ada@example.com", "--password", "secret")
	require.Equal(t, exitOK, code, out)

	code, out = h.run("customers", "--page", "2")
	require.Equal(t, exitOK, code, out)
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "Page 2 of 3")
	assert.Equal(t, 1, h.be.hits("/api/customers"))
}

func TestOrdersRejectsReversedRangeBeforeRequesting(t *testing.T) {
	h := newHarness(t)
	code, out := h.run("login", "--email", "ada@example.com", "--password", "secret")
	require.Equal(t, exitOK, code, out)

	code, out = h.run("orders", "--start", "2024-02-01", "--end", "2024-01-01")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "[error] End date cannot be before start date")
	assert.Zero(t, h.be.hits("/api/orders"))
}

func TestExpiredSessionExitsWithLoginHint(t *testing.T) {
	h := newHarness(t)
	code, out := h.run("login", "--email", "ada@example.com", "--password", "secret")
	require.Equal(t, exitOK, code, out)

	h.be.mu.Lock()
	h.be.reject = true
	h.be.mu.Unlock()

	code, out = h.run("customers")
	assert.Equal(t, exitLoggedOut, code)
	assert.Contains(t, out, sessionExpiredMessage)

	code, out = h.run("whoami")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, out, "Not signed in")
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	code, out := h.run("login", "--email", "ada@example.com", "--password", "secret")
	require.Equal(t, exitOK, code, out)

	code, out = h.run("logout")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Signed out")

	code, _ = h.run("whoami")
	assert.Equal(t, exitFailure, code)
}
