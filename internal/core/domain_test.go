package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.ISO() != "2025-06-05" {
		t.Fatalf("round trip mismatch: %s", d.ISO())
	}
	if _, err := ParseDate("05/06/2025"); err == nil {
		t.Fatalf("expected error for non-ISO input")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:     NewDate(2025, 1, 1),
		Amount:   Money{Cents: 100},
		Category: "food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Amount: Money{Cents: 1}, Category: "food"}, // zero date
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 0}, Category: "food"},
		{Date: NewDate(2025, 1, 1), Amount: Money{Cents: 1}, Category: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFormatRupees(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{120000, "₹1200"},
		{1250, "₹12.50"},
		{-50000, "-₹500"},
		{5, "₹0.05"},
	}
	for _, tc := range cases {
		if got := FormatRupees(tc.cents); got != tc.want {
			t.Errorf("FormatRupees(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestFromRupees(t *testing.T) {
	if got := FromRupees(12.345); got.Cents != 1235 {
		t.Errorf("FromRupees(12.345) = %d cents, want 1235", got.Cents)
	}
	if got := FromRupees(5000); got.Cents != 500000 {
		t.Errorf("FromRupees(5000) = %d cents, want 500000", got.Cents)
	}
}
