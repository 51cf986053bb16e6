package models

import (
	"encoding/json"
	"strings"

	"github.com/angelmondragon/shopdash/pkg/types"
	"github.com/shopspring/decimal"
)

// Overview carries the four headline dashboard figures.
type Overview struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Orders    types.Count     `json:"orders"`
	Customers types.Count     `json:"customers"`
	Products  types.Count     `json:"products"`
}

// SeriesPoint is one day of a revenue or order-count series.
type SeriesPoint struct {
	Date  types.Date      `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// seriesValueKeys lists the keys the backend uses for a series value, in priority order.
var seriesValueKeys = []string{"value", "revenue", "total", "count", "orders"}

// UnmarshalJSON accepts any of the value keys the analytics endpoints emit.
func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var point SeriesPoint
	if rawDate, ok := raw["date"]; ok {
		if err := json.Unmarshal(rawDate, &point.Date); err != nil {
			return err
		}
	}
	for _, key := range seriesValueKeys {
		rawValue, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(rawValue, &point.Value); err != nil {
			return err
		}
		break
	}
	*p = point
	return nil
}

type TopCustomer struct {
	Name       string          `json:"name"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// UnmarshalJSON composes Name from first_name and last_name when the row has no name.
func (c *TopCustomer) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string          `json:"name"`
		FirstName  string          `json:"first_name"`
		LastName   string          `json:"last_name"`
		TotalSpent decimal.Decimal `json:"total_spent"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = strings.TrimSpace(raw.FirstName + " " + raw.LastName)
	}
	*c = TopCustomer{Name: name, TotalSpent: raw.TotalSpent}
	return nil
}
