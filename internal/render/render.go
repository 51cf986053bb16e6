// Package render writes the terminal views: tables, dashboard cards and
// series, empty states and notices.
package render

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/angelmondragon/shopdash/internal/dashboard"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/internal/orders"
	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	NoStoreSelected = "No store selected. Connect or select a store with `shopdash stores`."
	seriesBarWidth  = 30
)

type Renderer struct {
	w io.Writer
}

func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) table(header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func (r *Renderer) Line(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

// NoStore is the prompt shown when a view needs a tenant.
func (r *Renderer) NoStore() {
	r.Line(NoStoreSelected)
}

// Notices prints notices as "[level] message" lines.
func (r *Renderer) Notices(notices []notify.Notice) {
	for _, n := range notices {
		r.Line("[%s] %s", n.Level, n.Message)
	}
}

func (r *Renderer) Pager(current, total int) {
	r.Line("Page %d of %d", current, total)
}

func (r *Renderer) Tenants(list []models.Tenant, selected types.ID) {
	if len(list) == 0 {
		r.Line("No stores connected")
		return
	}
	r.table("\tID\tSTORE\tDOMAIN\tSTATUS\tLAST SYNC", func(tw *tabwriter.Writer) {
		for _, t := range list {
			marker := ""
			if t.ID == selected {
				marker = "*"
			}
			status := "Inactive"
			if t.IsActive {
				status = "Active"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				marker, t.ID, orPlaceholder(t.StoreName), t.ShopDomain, status, DateTime(t.LastSyncAt))
		}
	})
}

func (r *Renderer) Customers(items []models.Customer, page, totalPages int) {
	if len(items) == 0 {
		r.Line("No customers found")
		return
	}
	r.table("NAME\tEMAIL\tPHONE\tORDERS\tTOTAL SPENT\tJOINED", func(tw *tabwriter.Writer) {
		for _, c := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				orPlaceholder(c.FullName()), orPlaceholder(c.Email), orPlaceholder(c.Phone),
				c.OrdersCount, Money(c.TotalSpent), Date(c.CreatedAt))
		}
	})
	r.Pager(page, totalPages)
}

func (r *Renderer) Orders(items []models.Order, page, totalPages int) {
	if len(items) == 0 {
		r.Line("No orders found")
		return
	}
	r.table("ORDER\tEMAIL\tSTATUS\tITEMS\tTOTAL\tDATE", func(tw *tabwriter.Writer) {
		for _, o := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				orPlaceholder(o.OrderNumber.String()), orPlaceholder(o.Email), statusBadge(o.FinancialStatus),
				len(o.LineItems), Money(o.TotalPrice), Date(o.CreatedAt))
		}
	})
	r.Pager(page, totalPages)
}

func (r *Renderer) Products(items []models.Product, page, totalPages int) {
	if len(items) == 0 {
		r.Line("No products found")
		return
	}
	r.table("TITLE\tVENDOR\tSTATUS\tVARIANTS\tPRICE", func(tw *tabwriter.Writer) {
		for _, p := range items {
			price := placeholder
			if d, ok := p.DisplayPrice(); ok {
				price = Money(d)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				orPlaceholder(p.Title), orPlaceholder(p.Vendor), orPlaceholder(p.Status), len(p.Variants), price)
		}
	})
	r.Pager(page, totalPages)
}

// Dashboard prints the overview cards, both series and the top customers.
func (r *Renderer) Dashboard(state dashboard.State) {
	r.Line("Dashboard %s to %s", state.Range.Start, state.Range.End)
	r.Line("")

	overview := models.Overview{}
	if state.Overview != nil {
		overview = *state.Overview
	}
	r.table("REVENUE\tORDERS\tCUSTOMERS\tPRODUCTS", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", Money(overview.Revenue), overview.Orders, overview.Customers, overview.Products)
	})

	r.Line("")
	r.Line("Revenue")
	r.series(state.RevenueSeries, Money)
	r.Line("")
	r.Line("Orders")
	r.series(state.OrdersSeries, func(d decimal.Decimal) string { return strconv.FormatInt(d.IntPart(), 10) })
	r.Line("")
	r.Line("Top customers")
	if len(state.TopCustomers) == 0 {
		r.Line("No data available")
		return
	}
	r.table("#\tNAME\tTOTAL SPENT", func(tw *tabwriter.Writer) {
		for i, c := range state.TopCustomers {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, orPlaceholder(c.Name), Money(c.TotalSpent))
		}
	})
}

func (r *Renderer) series(points []models.SeriesPoint, format func(decimal.Decimal) string) {
	if len(points) == 0 {
		r.Line("No data available")
		return
	}
	peak := decimal.Zero
	for _, p := range points {
		if p.Value.GreaterThan(peak) {
			peak = p.Value
		}
	}
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	for _, p := range points {
		label := placeholder
		if !p.Date.IsZero() {
			label = p.Date.Time().Format(seriesLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", label, format(p.Value), bar(p.Value, peak, seriesBarWidth))
	}
	_ = tw.Flush()
}

func statusBadge(status string) string {
	if status == "" {
		return placeholder
	}
	return fmt.Sprintf("%s (%s)", status, orders.BadgeClass(status))
}
