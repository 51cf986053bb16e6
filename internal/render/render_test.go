package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shopdash/internal/dashboard"
	"github.com/angelmondragon/shopdash/internal/models"
	"github.com/angelmondragon/shopdash/internal/notify"
	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/shopspring/decimal"
)

func TestMoneyAndDate(t *testing.T) {
	if got := Money(decimal.RequireFromString("12.5")); got != "$12.50" {
		t.Fatalf("unexpected money %q", got)
	}
	ts := time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)
	if got := Date(&ts); got != "Jan 05, 2024" {
		t.Fatalf("unexpected date %q", got)
	}
	if Date(nil) != "-" || DateTime(nil) != "Never" {
		t.Fatal("unexpected placeholders")
	}
}

func TestEmptyStates(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Customers(nil, 1, 1)
	r.Orders(nil, 1, 1)
	r.Products(nil, 1, 1)
	r.Tenants(nil, "")
	r.NoStore()

	out := buf.String()
	for _, want := range []string{"No customers found", "No orders found", "No products found", "No stores connected", "No store selected"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTablesAndPager(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	r.Customers([]models.Customer{{FirstName: "Ada", LastName: "Lovelace", TotalSpent: decimal.NewFromInt(10), CreatedAt: &created}}, 2, 5)
	r.Orders([]models.Order{{OrderNumber: "#1001", FinancialStatus: "paid", TotalPrice: decimal.RequireFromString("42")}}, 1, 1)
	r.Tenants([]models.Tenant{{ID: "1", StoreName: "One", IsActive: true}, {ID: "2", ShopDomain: "two.myshopify.com"}}, "2")

	out := buf.String()
	for _, want := range []string{"Ada Lovelace", "$10.00", "Feb 01, 2024", "Page 2 of 5", "paid (green)", "$42.00", "* "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Dashboard(dashboard.State{
		Range:    types.DateRange{Start: types.NewDate(2024, 3, 1), End: types.NewDate(2024, 3, 31)},
		Overview: &models.Overview{Revenue: decimal.RequireFromString("1250.5"), Orders: 15},
		RevenueSeries: []models.SeriesPoint{
			{Date: types.NewDate(2024, 3, 1), Value: decimal.NewFromInt(100)},
			{Date: types.NewDate(2024, 3, 2), Value: decimal.NewFromInt(50)},
		},
		TopCustomers: []models.TopCustomer{{Name: "Ada", TotalSpent: decimal.NewFromInt(900)}},
	})

	out := buf.String()
	for _, want := range []string{"2024-03-01 to 2024-03-31", "$1250.50", "Mar 01", strings.Repeat("#", seriesBarWidth), "No data available", "Ada"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestNotices(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Notices([]notify.Notice{notify.NewNotice(notify.LevelError, "Sync failed")})
	if strings.TrimSpace(buf.String()) != "[error] Sync failed" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
