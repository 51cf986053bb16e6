package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/shopdash/pkg/errors"
)

// Date is a calendar day exchanged with the backend as YYYY-MM-DD.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day in the timestamp's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp (its date part is kept).
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return Date{t: t}, nil
	}
	if len(value) >= len(time.DateOnly) {
		if t, err := time.Parse(time.DateOnly, value[:len(time.DateOnly)]); err == nil {
			return Date{t: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", value)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(time.DateOnly)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive span of days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// LastNDays returns the range ending on now's day and starting n days earlier.
func LastNDays(now time.Time, n int) DateRange {
	end := DateOf(now)
	return DateRange{Start: end.AddDays(-n), End: end}
}

// Validate rejects incomplete ranges and ranges whose end precedes their start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Start and end dates are required")
	}
	if r.End.Before(r.Start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "End date cannot be before start date")
	}
	return nil
}

func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End)
}
