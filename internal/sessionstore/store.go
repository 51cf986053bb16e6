// Package sessionstore persists the session fields (token, user, selected
// tenant) across runs of the client.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopdash/internal/models"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
)

// Field names one persisted session value.
type Field string

const (
	FieldToken          Field = "token"
	FieldUser           Field = "user"
	FieldSelectedTenant Field = "selectedTenant"
)

// AllFields lists every persisted field.
var AllFields = []Field{FieldToken, FieldUser, FieldSelectedTenant}

// Backend is the key/value surface each storage implementation provides.
// Get reports ok=false when the key has never been written or was deleted.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Snapshot is the persisted session as last written.
type Snapshot struct {
	Token          string
	User           *models.User
	SelectedTenant *models.Tenant
}

// Store reads and writes session fields through a Backend.
type Store struct {
	backend Backend
	logg    *logger.Logger
}

func New(backend Backend, logg *logger.Logger) (*Store, error) {
	if backend == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session backend required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{backend: backend, logg: logg}, nil
}

// Load returns whatever can be read. Malformed or unreadable fields load as absent.
func (s *Store) Load(ctx context.Context) Snapshot {
	var snap Snapshot
	snap.Token = s.Token(ctx)

	var user models.User
	if s.decode(ctx, FieldUser, &user) {
		snap.User = &user
	}
	var tenant models.Tenant
	if s.decode(ctx, FieldSelectedTenant, &tenant) {
		snap.SelectedTenant = &tenant
	}
	return snap
}

// Token returns the stored bearer token or an empty string.
func (s *Store) Token(ctx context.Context) string {
	raw, ok := s.read(ctx, FieldToken)
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return s.Clear(ctx, FieldToken)
	}
	return s.write(ctx, FieldToken, token)
}

func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session user")
	}
	return s.write(ctx, FieldUser, string(payload))
}

// SaveTenant persists the selected tenant; nil removes it.
func (s *Store) SaveTenant(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return s.Clear(ctx, FieldSelectedTenant)
	}
	payload, err := json.Marshal(tenant)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode selected tenant")
	}
	return s.write(ctx, FieldSelectedTenant, string(payload))
}

// Clear removes the given fields, or every field when none are named.
func (s *Store) Clear(ctx context.Context, fields ...Field) error {
	if len(fields) == 0 {
		fields = AllFields
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, string(f))
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session fields")
	}
	return nil
}

func (s *Store) write(ctx context.Context, field Field, value string) error {
	if err := s.backend.Set(ctx, string(field), value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("persist session %s", field))
	}
	return nil
}

func (s *Store) read(ctx context.Context, field Field) (string, bool) {
	raw, ok, err := s.backend.Get(ctx, string(field))
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "field", string(field)), fmt.Sprintf("read session field: %v", err))
		return "", false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}
	return raw, true
}

func (s *Store) decode(ctx context.Context, field Field, dest any) bool {
	raw, ok := s.read(ctx, field)
	if !ok || strings.TrimSpace(raw) == "null" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "field", string(field)), "discarding malformed session value")
		return false
	}
	return true
}
