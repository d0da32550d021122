package budget

import (
	"context"
	"fmt"
	"sort"
	"time"

	"khata/internal/core"
	"khata/internal/storage"
)

// Level grades how close a category is to its limit.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Status is the assessment of one category's month against its limit.
type Status struct {
	Category   string  `json:"category"`
	Limit      float64 `json:"limit"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	Level      Level   `json:"level"`
	Message    string  `json:"message"`
}

// Assess grades spent rupees against one limit.
func Assess(spent float64, limit Limit) Status {
	var percentage float64
	if limit.Limit > 0 {
		percentage = spent / limit.Limit
	}
	remaining := limit.Limit - spent
	if remaining < 0 {
		remaining = 0
	}

	var level Level
	var message string
	switch {
	case spent >= limit.Limit:
		level = LevelCritical
		message = fmt.Sprintf("Budget for %s exceeded. Spent ₹%.0f out of ₹%.0f.", limit.Category, spent, limit.Limit)
	case spent >= limit.WarnAmount():
		level = LevelWarning
		message = fmt.Sprintf("Budget for %s close to limit: ₹%.0f used, ₹%.0f remaining.", limit.Category, spent, remaining)
	default:
		level = LevelOK
		message = fmt.Sprintf("Budget for %s is healthy with ₹%.0f remaining.", limit.Category, remaining)
	}

	return Status{
		Category:   limit.Category,
		Limit:      limit.Limit,
		Spent:      spent,
		Remaining:  remaining,
		Percentage: percentage,
		Level:      level,
		Message:    message,
	}
}

// Evaluator grades monthly spending from the store against configured limits.
type Evaluator struct {
	limits *FileStore
	store  storage.Store
}

func NewEvaluator(limits *FileStore, store storage.Store) *Evaluator {
	return &Evaluator{limits: limits, store: store}
}

// MonthRange returns the first and last day of a month.
func MonthRange(year int, month time.Month) (core.Date, core.Date) {
	first := core.NewDate(year, int(month), 1)
	last := core.Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// EvaluateMonth grades every configured category for the given month.
// Categories with no spending evaluate against zero.
func (e *Evaluator) EvaluateMonth(ctx context.Context, year int, month time.Month) ([]Status, error) {
	limits := e.limits.Limits()
	if len(limits) == 0 {
		return nil, nil
	}

	from, to := MonthRange(year, month)
	totals, err := e.store.CategoryTotalsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("month totals: %w", err)
	}
	spent := make(map[string]float64, len(totals))
	for _, ct := range totals {
		spent[ct.Category] = ct.Total.Rupees()
	}

	categories := make([]string, 0, len(limits))
	for category := range limits {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	statuses := make([]Status, 0, len(categories))
	for _, category := range categories {
		statuses = append(statuses, Assess(spent[category], limits[category]))
	}
	return statuses, nil
}

// StatusFor grades a single category, or returns nil when it has no limit.
func (e *Evaluator) StatusFor(ctx context.Context, category string, year int, month time.Month) (*Status, error) {
	limits := e.limits.Limits()
	limit, ok := limits[category]
	if !ok {
		return nil, nil
	}

	from, to := MonthRange(year, month)
	totals, err := e.store.CategoryTotalsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("month totals: %w", err)
	}
	var spent float64
	for _, ct := range totals {
		if ct.Category == category {
			spent = ct.Total.Rupees()
			break
		}
	}
	status := Assess(spent, limit)
	return &status, nil
}

// AlertFor returns the category's status only when it warrants an alert.
func (e *Evaluator) AlertFor(ctx context.Context, category string, year int, month time.Month) (*Status, error) {
	status, err := e.StatusFor(ctx, category, year, month)
	if err != nil || status == nil {
		return nil, err
	}
	if status.Level == LevelOK {
		return nil, nil
	}
	return status, nil
}

// SummarizeAlerts extracts the messages worth speaking aloud.
func SummarizeAlerts(statuses []Status) []string {
	var messages []string
	for _, status := range statuses {
		if status.Level == LevelWarning || status.Level == LevelCritical {
			messages = append(messages, status.Message)
		}
	}
	return messages
}
