// Package orders lists a tenant's orders filtered by date range and
// financial status.
package orders

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/shopdash/internal/apiclient"
	"github.com/angelmondragon/shopdash/internal/listing"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/pkg/enums"
	"github.com/angelmondragon/shopdash/pkg/logger"
	"github.com/angelmondragon/shopdash/pkg/pagination"
	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/angelmondragon/shopdash/pkg/validators"
)

const (
	resource = "orders"

	StatusAll = "all"

	// DefaultRangeDays is how far back the listing looks by default.
	DefaultRangeDays = 30
)

// Statuses are the values the status filter accepts.
var Statuses = statusFilterValues()

func statusFilterValues() []string {
	out := []string{StatusAll}
	for _, s := range enums.FinancialStatuses() {
		out = append(out, s.String())
	}
	return out
}

type Filters struct {
	Range  types.DateRange
	Status string
}

// DefaultFilters covers the last 30 days in every status.
func DefaultFilters(now time.Time) Filters {
	return Filters{Range: types.LastNDays(now, DefaultRangeDays), Status: StatusAll}
}

// Validate rejects reversed ranges and unknown statuses.
func (f Filters) Validate() error {
	if err := f.Range.Validate(); err != nil {
		return err
	}
	return validators.Var("status", f.Status, "required,oneof="+strings.Join(Statuses, " "))
}

func (f Filters) apply(query url.Values) {
	query.Set("startDate", f.Range.Start.String())
	query.Set("endDate", f.Range.End.String())
	query.Set("status", f.Status)
}

type Controller = listing.Controller[models.Order, Filters]

func NewController(api apiclient.RawDoer, pageSize int, now time.Time, notifier notify.Notifier, logg *logger.Logger) (*Controller, error) {
	return listing.New(listing.Config[models.Order, Filters]{
		Resource:          resource,
		Fetch:             fetchPage(api),
		Validate:          Filters.Validate,
		Filters:           DefaultFilters(now),
		PageSize:          pageSize,
		LoadFailedMessage: "Failed to load orders",
		Notifier:          notifier,
		Logger:            logg,
	})
}

func fetchPage(api apiclient.RawDoer) listing.Fetcher[models.Order, Filters] {
	return func(ctx context.Context, req listing.PageRequest[Filters]) (apiclient.Page[models.Order], error) {
		query := url.Values{"tenant_id": {req.TenantID.String()}}
		for k, v := range (pagination.Params{Page: req.Page, Limit: req.Limit}).Query() {
			query.Set(k, v)
		}
		req.Filters.apply(query)
		return apiclient.GetList[models.Order](ctx, api, resource, query, resource)
	}
}

// BadgeClass maps a financial status to the colour the renderer uses.
func BadgeClass(status string) string {
	parsed, err := enums.ParseFinancialStatus(status)
	if err != nil {
		return enums.FinancialStatus("").Badge()
	}
	return parsed.Badge()
}
