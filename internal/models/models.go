// Package models holds the records exchanged with the analytics backend.
package models

import (
	"strings"
	"time"

	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/shopspring/decimal"
)

type User struct {
	ID    types.ID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// Tenant is one connected storefront owned by the session's user.
type Tenant struct {
	ID         types.ID   `json:"id"`
	StoreName  string     `json:"store_name"`
	ShopDomain string     `json:"shop_domain"`
	IsActive   bool       `json:"is_active"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// DisplayName prefers the store name and falls back to the shop domain.
func (t Tenant) DisplayName() string {
	if strings.TrimSpace(t.StoreName) != "" {
		return t.StoreName
	}
	return t.ShopDomain
}

type Customer struct {
	ID          types.ID        `json:"id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	OrdersCount types.Count     `json:"orders_count"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	CreatedAt   *time.Time      `json:"created_at_shopify,omitempty"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type LineItem struct {
	ID       types.ID        `json:"id"`
	Title    string          `json:"title"`
	Quantity types.Count     `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID              types.ID        `json:"id"`
	OrderNumber     types.ID        `json:"order_number"`
	Email           string          `json:"email"`
	FinancialStatus string          `json:"financial_status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	LineItems       []LineItem      `json:"line_items"`
	CreatedAt       *time.Time      `json:"created_at_shopify,omitempty"`
}

type Variant struct {
	ID    types.ID        `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

type Image struct {
	Src string `json:"src"`
}

type Product struct {
	ID       types.ID  `json:"id"`
	Title    string    `json:"title"`
	Vendor   string    `json:"vendor"`
	Status   string    `json:"status"`
	Variants []Variant `json:"variants"`
	Images   []Image   `json:"images"`
}

// DisplayPrice is the first variant's price; products without variants report false.
func (p Product) DisplayPrice() (decimal.Decimal, bool) {
	if len(p.Variants) == 0 {
		return decimal.Zero, false
	}
	return p.Variants[0].Price, true
}
