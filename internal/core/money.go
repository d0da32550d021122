// Package core provides the tracker's domain value types.
//
// This file contains helpers for converting between cents and rupee
// representations. Amounts are stored as integer cents to keep arithmetic
// exact; floats appear only at the parsing and display boundaries.
package core

import (
	"fmt"
	"math"
	"strconv"
)

// FromRupees converts a decimal rupee amount to Money with half-up rounding
// on the third decimal place.
func FromRupees(v float64) Money {
	cents := math.Round(v * 100)
	return Money{Cents: int64(cents)}
}

// Rupees returns the rupee value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Rupees() float64 {
	return float64(m.Cents) / 100.0
}

// FormatRupees formats cents as a rupee string, e.g. "₹1200" or "₹12.50".
// Whole-rupee amounts omit the fraction so spoken replies read naturally.
func FormatRupees(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	var s string
	if cents%100 == 0 {
		s = strconv.FormatInt(cents/100, 10)
	} else {
		s = fmt.Sprintf("%d.%02d", cents/100, cents%100)
	}
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return FormatRupees(m.Cents)
}

// MarshalJSON emits the amount as a decimal rupee number, which is what
// API clients expect to chart and display.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Rupees(), 'f', -1, 64)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = FromRupees(v)
	return nil
}
