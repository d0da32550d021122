// Package storage persists expenses and serves the aggregate queries the
// summary and budget layers are built on.
package storage

import (
	"context"
	"errors"

	"khata/internal/core"
)

// ErrNoExpenses is returned by DeleteLast when the ledger is empty.
var ErrNoExpenses = errors.New("no expenses recorded")

// Store is the persistence boundary for expenses.
type Store interface {
	// Add inserts an expense and returns its ID.
	Add(ctx context.Context, e core.Expense) (int64, error)
	// Recent returns up to limit expenses, newest first.
	Recent(ctx context.Context, limit int) ([]core.Expense, error)
	// TotalForDate sums spend on one calendar day.
	TotalForDate(ctx context.Context, date core.Date) (core.Money, error)
	// TotalsByCategory sums all-time spend per category, largest first.
	TotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error)
	// CategoryTotalsBetween sums per-category spend over [from, to].
	CategoryTotalsBetween(ctx context.Context, from, to core.Date) ([]core.CategoryTotal, error)
	// DailyTotals sums per-day spend over [from, to], oldest first.
	DailyTotals(ctx context.Context, from, to core.Date) ([]core.DayTotal, error)
	// DeleteLast removes the newest expense and returns it.
	DeleteLast(ctx context.Context) (core.Expense, error)
	// Delete removes one expense by ID; false when nothing matched.
	Delete(ctx context.Context, id int64) (bool, error)
	Close() error
}

// Exporter extends Store with the export bookkeeping the worker drives.
type Exporter interface {
	// PendingExport returns up to limit expenses not yet exported.
	PendingExport(ctx context.Context, limit int) ([]core.Expense, error)
	// MarkExported records a successful export of one expense.
	MarkExported(ctx context.Context, id int64) error
	// MarkExportError flags an expense whose export failed.
	MarkExportError(ctx context.Context, id int64) error
}
