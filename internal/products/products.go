// Package products lists a tenant's products with an optional title search.
package products

import (
	"context"
	"net/url"
	"strings"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/listing"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/pagination"
	"github.com/angelmondragon/shopdash/pkg/validators"
)

const (
	resource        = "products"
	maxSearchLength = 255
)

// Filters narrows the paginated listing; a blank Search lists everything.
type Filters struct {
	Search string
}

type Controller = listing.Controller[models.Product, Filters]

func NewController(api apiclient.RawDoer, pageSize int, notifier notify.Notifier, logg *logger.Logger) (*Controller, error) {
	return listing.New(listing.Config[models.Product, Filters]{
		Resource:          resource,
		Fetch:             fetchPage(api),
		PageSize:          pageSize,
		LoadFailedMessage: "Failed to load products",
		Notifier:          notifier,
		Logger:            logg,
	})
}

// SearchFilters builds filters for a user-typed search term.
func SearchFilters(term string) Filters {
	return Filters{Search: validators.SanitizeString(term, maxSearchLength)}
}

func fetchPage(api apiclient.RawDoer) listing.Fetcher[models.Product, Filters] {
	return func(ctx context.Context, req listing.PageRequest[Filters]) (apiclient.Page[models.Product], error) {
		query := url.Values{"tenant_id": {req.TenantID.String()}}
		for k, v := range (pagination.Params{Page: req.Page, Limit: req.Limit}).Query() {
			query.Set(k, v)
		}
		if term := strings.TrimSpace(req.Filters.Search); term != "" {
			query.Set("search", term)
		}
		return apiclient.GetList[models.Product](ctx, api, resource, query, resource)
	}
}
