// Package tenants keeps the list of storefronts connected to the signed-in
// user and the automatic selection of one of them.
package tenants

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/angelmondragon/shopdash/pkg/validators"
)

const (
	msgLoadFailed       = "Failed to load stores"
	msgRemoved          = "Store removed successfully"
	msgRemoveFailed     = "Failed to remove store"
	msgSyncing          = "Syncing data..."
	msgSynced           = "Data synced successfully!"
	msgSyncFailed       = "Sync failed"
	msgConnected        = "Shopify store connected successfully!"
	msgInvalidShop      = "Invalid shop domain"
	msgLoginRequired    = "You must be logged in"
	msgSelectionMissing = "Selected store is no longer connected"

	connectedMarker = "connected"
)

// API is the backend surface the directory uses.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	URL(path string, query url.Values) string
}

// Session holds the selected tenant and the signed-in user.
type Session interface {
	User() *models.User
	SelectedTenant() *models.Tenant
	SelectTenant(ctx context.Context, tenant *models.Tenant) error
}

type Directory struct {
	api      API
	session  Session
	notifier notify.Notifier
	logg     *logger.Logger

	mu               sync.RWMutex
	tenants          []models.Tenant
	selectionMissing bool
}

func NewDirectory(api API, session Session, notifier notify.Notifier, logg *logger.Logger) (*Directory, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "api client required")
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Directory{api: api, session: session, notifier: notifier, logg: logg}, nil
}

// Tenants returns a copy of the last fetched list.
func (d *Directory) Tenants() []models.Tenant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Tenant, len(d.tenants))
	copy(out, d.tenants)
	return out
}

// SelectionMissing reports whether the selected tenant was absent from the last fetch.
func (d *Directory) SelectionMissing() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selectionMissing
}

// Find returns the tenant with id from the last fetched list.
func (d *Directory) Find(id types.ID) (models.Tenant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.tenants {
		if t.ID == id {
			return t, true
		}
	}
	return models.Tenant{}, false
}

// Fetch reloads the list and selects the newest tenant when nothing is selected.
// An existing selection is never replaced.
func (d *Directory) Fetch(ctx context.Context) error {
	var list tenantList
	if err := d.api.Get(ctx, "tenants", nil, &list); err != nil {
		d.logg.Error(ctx, "fetching tenants", err)
		notify.Error(ctx, d.notifier, msgLoadFailed)
		return err
	}

	selected := d.session.SelectedTenant()
	missing := selected != nil && !contains(list, selected.ID)

	d.mu.Lock()
	d.tenants = list
	d.selectionMissing = missing
	d.mu.Unlock()

	if missing {
		d.logg.Warn(d.logg.WithTenantID(ctx, selected.ID.String()), "selected tenant missing from directory")
		notify.Warning(ctx, d.notifier, msgSelectionMissing)
	}

	if selected == nil && len(list) > 0 {
		newest := Newest(list)
		if err := d.session.SelectTenant(ctx, &newest); err != nil {
			return err
		}
		d.logg.Info(d.logg.WithTenantID(ctx, newest.ID.String()), "auto-selected tenant")
	}
	return nil
}

// Delete removes the tenant and clears the selection only if it pointed at it.
func (d *Directory) Delete(ctx context.Context, id types.ID) error {
	if id.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if err := d.api.Delete(ctx, "tenants/"+url.PathEscape(id.String()), nil); err != nil {
		d.logg.Error(d.logg.WithTenantID(ctx, id.String()), "deleting tenant", err)
		notify.Error(ctx, d.notifier, msgRemoveFailed)
		return err
	}
	notify.Success(ctx, d.notifier, msgRemoved)

	d.mu.Lock()
	kept := make([]models.Tenant, 0, len(d.tenants))
	for _, t := range d.tenants {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	d.tenants = kept
	d.mu.Unlock()

	if selected := d.session.SelectedTenant(); selected != nil && selected.ID == id {
		return d.session.SelectTenant(ctx, nil)
	}
	return nil
}

// Sync asks the backend to pull fresh data for the tenant, then reloads the list.
func (d *Directory) Sync(ctx context.Context, id types.ID) error {
	if id.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	notify.Info(ctx, d.notifier, msgSyncing)
	if err := d.api.Post(ctx, fmt.Sprintf("tenants/%s/sync", url.PathEscape(id.String())), nil, nil); err != nil {
		d.logg.Error(d.logg.WithTenantID(ctx, id.String()), "syncing tenant", err)
		notify.Error(ctx, d.notifier, msgSyncFailed)
		return err
	}
	notify.Success(ctx, d.notifier, msgSynced)
	return d.Fetch(ctx)
}

// ConnectURL builds the backend OAuth entry point for shop. Nothing is
// requested; the caller opens the URL in a browser.
func (d *Directory) ConnectURL(ctx context.Context, shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if !validators.IsShopDomain(shop) {
		notify.Error(ctx, d.notifier, msgInvalidShop)
		return "", pkgerrors.New(pkgerrors.CodeValidation, msgInvalidShop)
	}
	user := d.session.User()
	if user == nil || user.ID.IsZero() {
		notify.Error(ctx, d.notifier, msgLoginRequired)
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, msgLoginRequired)
	}
	return d.api.URL("shopify/auth", url.Values{
		"shop":    {shop},
		"user_id": {user.ID.String()},
	}), nil
}

// HandleReturn reacts to the OAuth return URL. It reports whether the
// connected marker was present.
func (d *Directory) HandleReturn(ctx context.Context, returnURL string) (bool, error) {
	parsed, err := url.Parse(returnURL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid return url")
	}
	if parsed.Query().Get(connectedMarker) != "true" {
		return false, nil
	}
	notify.Success(ctx, d.notifier, msgConnected)
	return true, d.Fetch(ctx)
}

func contains(list []models.Tenant, id types.ID) bool {
	for _, t := range list {
		if t.ID == id {
			return true
		}
	}
	return false
}

// tenantList accepts the bare array the backend sends as well as a
// {"tenants": [...]} envelope.
type tenantList []models.Tenant

func (l *tenantList) UnmarshalJSON(data []byte) error {
	page, err := apiclient.DecodeList[models.Tenant](data, "tenants")
	if err != nil {
		return err
	}
	*l = page.Items
	return nil
}
