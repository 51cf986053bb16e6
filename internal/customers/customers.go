// Package customers lists and searches a tenant's customers.
package customers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/listing"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/pagination"
	"github.com/angelmondragon/shopdash/pkg/types"
)

const resource = "customers"

// Filters is empty; the customers listing only pages and searches.
type Filters struct{}

type Controller = listing.Controller[models.Customer, Filters]

func NewController(api apiclient.RawDoer, pageSize int, notifier notify.Notifier, logg *logger.Logger) (*Controller, error) {
	return listing.New(listing.Config[models.Customer, Filters]{
		Resource:            resource,
		Fetch:               fetchPage(api),
		Search:              search(api),
		PageSize:            pageSize,
		LoadFailedMessage:   "Failed to load customers",
		SearchFailedMessage: "Search failed",
		Notifier:            notifier,
		Logger:              logg,
	})
}

func fetchPage(api apiclient.RawDoer) listing.Fetcher[models.Customer, Filters] {
	return func(ctx context.Context, req listing.PageRequest[Filters]) (apiclient.Page[models.Customer], error) {
		query := url.Values{"tenant_id": {req.TenantID.String()}}
		for k, v := range (pagination.Params{Page: req.Page, Limit: req.Limit}).Query() {
			query.Set(k, v)
		}
		return apiclient.GetList[models.Customer](ctx, api, resource, query, resource)
	}
}

func search(api apiclient.RawDoer) listing.Searcher[models.Customer] {
	return func(ctx context.Context, tenantID types.ID, q string) ([]models.Customer, error) {
		query := url.Values{"tenant_id": {tenantID.String()}, "q": {q}}
		raw, err := api.DoRaw(ctx, http.MethodGet, resource+"/search", query, nil)
		if err != nil {
			return nil, err
		}
		page, err := apiclient.DecodeList[models.Customer](raw, resource)
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	}
}
