package session

import (
	"context"
	"strings"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/sessionstore"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/validators"
)

const (
	loginFailedMessage    = "Login failed"
	registerFailedMessage = "Registration failed"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates against auth/login. It never returns an error; failures
// are reported in the Result and leave the prior session untouched.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	req := loginRequest{Email: strings.TrimSpace(email), Password: password}
	return m.authenticate(ctx, "auth/login", req, loginFailedMessage)
}

// Register creates an account through auth/register and signs it in.
func (m *Manager) Register(ctx context.Context, name, email, password string) Result {
	req := registerRequest{
		Name:     validators.SanitizeString(name, 255),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	return m.authenticate(ctx, "auth/register", req, registerFailedMessage)
}

func (m *Manager) authenticate(ctx context.Context, path string, req any, fallback string) Result {
	if err := validators.Struct(req); err != nil {
		return Result{Message: validationMessage(err, fallback)}
	}
	if err := m.WaitReady(ctx); err != nil {
		return Result{Message: fallback}
	}

	var resp authResponse
	if err := m.api.Post(ctx, path, req, &resp); err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "path", path), "authentication failed")
		return Result{Message: apiclient.MessageOf(err, fallback)}
	}
	if strings.TrimSpace(resp.Token) == "" || resp.User == nil {
		return Result{Message: fallback}
	}

	if err := m.store.SaveToken(ctx, resp.Token); err != nil {
		m.logg.Error(ctx, "persisting token", err)
		return Result{Message: fallback}
	}
	if err := m.store.SaveUser(ctx, *resp.User); err != nil {
		m.logg.Error(ctx, "persisting user", err)
		m.restoreToken(ctx)
		return Result{Message: fallback}
	}

	m.mu.Lock()
	m.token = resp.Token
	m.user = cloneUser(resp.User)
	m.mu.Unlock()

	m.logg.Info(m.logg.WithUserID(ctx, resp.User.ID.String()), "signed in")
	return Result{Success: true}
}

// restoreToken puts back the token memory still holds after a half-written login.
func (m *Manager) restoreToken(ctx context.Context) {
	previous := m.Token()
	var err error
	if previous == "" {
		err = m.store.Clear(ctx, sessionstore.FieldToken)
	} else {
		err = m.store.SaveToken(ctx, previous)
	}
	if err != nil {
		m.logg.Error(ctx, "restoring previous token", err)
	}
}

func validationMessage(err error, fallback string) string {
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return fallback
}
