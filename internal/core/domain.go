package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single logged spend. Category is one of the canonical
	// tracker categories (or "uncategorized"); Description is optional
	// free text recovered from the user's utterance.
	Expense struct {
		ID          int64  `json:"id"`
		Date        Date   `json:"date"`
		TimeOfDay   string `json:"time"` // HH:MM:SS, local clock at logging time
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description,omitempty"`
	}

	// CategoryTotal aggregates spend for one category.
	CategoryTotal struct {
		Category string `json:"category"`
		Total    Money  `json:"total"`
	}

	// DayTotal aggregates spend for one calendar day.
	DayTotal struct {
		Date  Date  `json:"date"`
		Total Money `json:"total"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
)

const ISODate = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(ISODate)
}

// IsEmpty reports whether the date is unset (caller should default to today).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MarshalJSON renders the date as a bare YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
