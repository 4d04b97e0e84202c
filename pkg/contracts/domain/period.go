package domain

import (
	"fmt"
	"time"
)

// PeriodType identifies how a PeriodFilter resolves to a date window.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
	PeriodCustom  PeriodType = "custom"
	PeriodRange   PeriodType = "range"
	PeriodAll     PeriodType = "all"
)

// PeriodFilter defines a query window: a period kind plus the
// parameters needed to resolve it, and an optional store filter.
// It is constructed per query and never persisted.
type PeriodFilter struct {
	Type    PeriodType `json:"type" validate:"required,oneof=month quarter year custom range all"`
	Year    int        `json:"year,omitempty" validate:"omitempty,min=2000,max=2100"`
	Month   int        `json:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Quarter int        `json:"quarter,omitempty" validate:"omitempty,min=1,max=4"`

	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`

	// Range fields for multi-month windows.
	StartYear  int `json:"start_year,omitempty" validate:"omitempty,min=2000,max=2100"`
	StartMonth int `json:"start_month,omitempty" validate:"omitempty,min=1,max=12"`
	EndYear    int `json:"end_year,omitempty" validate:"omitempty,min=2000,max=2100"`
	EndMonth   int `json:"end_month,omitempty" validate:"omitempty,min=1,max=12"`

	// Store, when set, restricts results to one store (exact match on
	// the cleaned store name).
	Store string `json:"store,omitempty"`
}

// AllTime returns a filter matching the entire dataset.
func AllTime() PeriodFilter {
	return PeriodFilter{Type: PeriodAll}
}

// MonthOf returns a whole-month filter.
func MonthOf(year, month int) PeriodFilter {
	return PeriodFilter{Type: PeriodMonth, Year: year, Month: month}
}

func monthEnd(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// Resolve returns the inclusive [start, end] date window for the
// filter. A zero time on either side means unbounded on that side;
// PeriodAll resolves to fully unbounded.
func (f PeriodFilter) Resolve() (start, end time.Time) {
	switch f.Type {
	case PeriodAll:
		return time.Time{}, time.Time{}

	case PeriodMonth:
		if f.Year == 0 || f.Month == 0 {
			return time.Time{}, time.Time{}
		}
		return time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC), monthEnd(f.Year, f.Month)

	case PeriodQuarter:
		if f.Year == 0 || f.Quarter == 0 {
			return time.Time{}, time.Time{}
		}
		startMonth := (f.Quarter-1)*3 + 1
		return time.Date(f.Year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC), monthEnd(f.Year, startMonth+2)

	case PeriodYear:
		if f.Year == 0 {
			return time.Time{}, time.Time{}
		}
		return time.Date(f.Year, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(f.Year, 12, 31, 0, 0, 0, 0, time.UTC)

	case PeriodRange:
		if f.StartYear == 0 || f.StartMonth == 0 || f.EndYear == 0 || f.EndMonth == 0 {
			return time.Time{}, time.Time{}
		}
		return time.Date(f.StartYear, time.Month(f.StartMonth), 1, 0, 0, 0, 0, time.UTC), monthEnd(f.EndYear, f.EndMonth)

	case PeriodCustom:
		return f.StartDate, f.EndDate
	}
	return time.Time{}, time.Time{}
}

// QuarterMonths returns the three months covered by a quarter filter.
func (f PeriodFilter) QuarterMonths() [3]int {
	start := (f.Quarter-1)*3 + 1
	return [3]int{start, start + 1, start + 2}
}

// Label returns a human-readable name for the period.
func (f PeriodFilter) Label() string {
	switch f.Type {
	case PeriodAll:
		return "All Time"
	case PeriodMonth:
		if f.Year != 0 && f.Month != 0 {
			return fmt.Sprintf("%s %d", time.Month(f.Month), f.Year)
		}
	case PeriodQuarter:
		if f.Year != 0 && f.Quarter != 0 {
			return fmt.Sprintf("Q%d %d", f.Quarter, f.Year)
		}
	case PeriodYear:
		if f.Year != 0 {
			return fmt.Sprintf("%d", f.Year)
		}
	case PeriodRange:
		if f.StartYear != 0 && f.StartMonth != 0 && f.EndYear != 0 && f.EndMonth != 0 {
			return fmt.Sprintf("%s %d to %s %d",
				time.Month(f.StartMonth).String()[:3], f.StartYear,
				time.Month(f.EndMonth).String()[:3], f.EndYear)
		}
		return "Range"
	case PeriodCustom:
		s, e := "?", "?"
		if !f.StartDate.IsZero() {
			s = f.StartDate.Format("2006-01-02")
		}
		if !f.EndDate.IsZero() {
			e = f.EndDate.Format("2006-01-02")
		}
		return s + " to " + e
	}
	return "Unknown"
}

// Previous returns the immediately preceding period of the same type.
// Filters that have no natural predecessor fall back to PeriodAll.
func (f PeriodFilter) Previous() PeriodFilter {
	switch f.Type {
	case PeriodMonth:
		if f.Year != 0 && f.Month != 0 {
			if f.Month == 1 {
				return PeriodFilter{Type: PeriodMonth, Year: f.Year - 1, Month: 12, Store: f.Store}
			}
			return PeriodFilter{Type: PeriodMonth, Year: f.Year, Month: f.Month - 1, Store: f.Store}
		}
	case PeriodQuarter:
		if f.Year != 0 && f.Quarter != 0 {
			if f.Quarter == 1 {
				return PeriodFilter{Type: PeriodQuarter, Year: f.Year - 1, Quarter: 4, Store: f.Store}
			}
			return PeriodFilter{Type: PeriodQuarter, Year: f.Year, Quarter: f.Quarter - 1, Store: f.Store}
		}
	case PeriodYear:
		if f.Year != 0 {
			return PeriodFilter{Type: PeriodYear, Year: f.Year - 1, Store: f.Store}
		}
	case PeriodCustom:
		if !f.StartDate.IsZero() && !f.EndDate.IsZero() {
			duration := f.EndDate.Sub(f.StartDate)
			newEnd := f.StartDate.AddDate(0, 0, -1)
			return PeriodFilter{
				Type:      PeriodCustom,
				StartDate: newEnd.Add(-duration),
				EndDate:   newEnd,
				Store:     f.Store,
			}
		}
	}
	return PeriodFilter{Type: PeriodAll, Store: f.Store}
}
