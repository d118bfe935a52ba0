package cgtpool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaxYear identifies a UK fiscal year by the calendar year in which it
// starts. TaxYear(2023) runs from 6 April 2023 to 5 April 2024 inclusive.
type TaxYear int

// TaxYearOf returns the tax year a date belongs to. A date of 5 April belongs
// to the year ending on that date, 6 April to the year starting on it.
func TaxYearOf(d Date) TaxYear {
	start := NewDate(d.Year(), time.April, 6)
	if d.Before(start) {
		return TaxYear(d.Year() - 1)
	}
	return TaxYear(d.Year())
}

// Start returns the first day of the tax year (6 April).
func (y TaxYear) Start() Date { return NewDate(int(y), time.April, 6) }

// End returns the last day of the tax year (5 April of the next calendar year).
func (y TaxYear) End() Date { return NewDate(int(y)+1, time.April, 5) }

// Contains reports whether the date falls within the tax year.
func (y TaxYear) Contains(d Date) bool { return TaxYearOf(d) == y }

// String formats the tax year in the usual UK notation, e.g. "2023/24".
func (y TaxYear) String() string {
	return fmt.Sprintf("%d/%02d", int(y), (int(y)+1)%100)
}

// ParseTaxYear parses "2023/24", "2023-24" or a plain starting year "2023".
func ParseTaxYear(str string) (TaxYear, error) {
	str = strings.TrimSpace(str)
	head, _, split := strings.Cut(strings.ReplaceAll(str, "-", "/"), "/")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid tax year %q: %w", str, err)
	}
	if !split && len(head) != 4 {
		return 0, fmt.Errorf("invalid tax year %q: want a 4-digit starting year", str)
	}
	return TaxYear(year), nil
}

// MarshalJSON implements the json.Marshaler interface for TaxYear.
func (y TaxYear) MarshalJSON() ([]byte, error) {
	return json.Marshal(y.String())
}
