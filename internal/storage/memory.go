package storage

import (
	"context"
	"sort"
	"sync"

	"khata/internal/core"
)

// MemoryRepository is an in-memory Store and Exporter. It backs unit tests
// and lets the service run without a database file.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	expenses []memoryExpense
}

type memoryExpense struct {
	core.Expense
	exportState string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) Add(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	r.expenses = append(r.expenses, memoryExpense{Expense: e, exportState: "pending"})
	return e.ID, nil
}

// sortedNewestFirst returns a copy ordered by date, time, then ID descending,
// matching the SQLite ordering.
func (r *MemoryRepository) sortedNewestFirst() []memoryExpense {
	out := make([]memoryExpense, len(r.expenses))
	copy(out, r.expenses)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if out[i].TimeOfDay != out[j].TimeOfDay {
			return out[i].TimeOfDay > out[j].TimeOfDay
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := r.sortedNewestFirst()
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	out := make([]core.Expense, len(sorted))
	for i, e := range sorted {
		out[i] = e.Expense
	}
	return out, nil
}

func (r *MemoryRepository) TotalForDate(_ context.Context, date core.Date) (core.Money, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cents int64
	for _, e := range r.expenses {
		if e.Date.ISO() == date.ISO() {
			cents += e.Amount.Cents
		}
	}
	return core.Money{Cents: cents}, nil
}

func (r *MemoryRepository) TotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	return r.categoryTotals(func(memoryExpense) bool { return true })
}

func (r *MemoryRepository) CategoryTotalsBetween(_ context.Context, from, to core.Date) ([]core.CategoryTotal, error) {
	return r.categoryTotals(func(e memoryExpense) bool {
		iso := e.Date.ISO()
		return iso >= from.ISO() && iso <= to.ISO()
	})
}

func (r *MemoryRepository) categoryTotals(keep func(memoryExpense) bool) ([]core.CategoryTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCategory := make(map[string]int64)
	for _, e := range r.expenses {
		if keep(e) {
			byCategory[e.Category] += e.Amount.Cents
		}
	}
	totals := make([]core.CategoryTotal, 0, len(byCategory))
	for category, cents := range byCategory {
		totals = append(totals, core.CategoryTotal{Category: category, Total: core.Money{Cents: cents}})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Cents != totals[j].Total.Cents {
			return totals[i].Total.Cents > totals[j].Total.Cents
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

func (r *MemoryRepository) DailyTotals(_ context.Context, from, to core.Date) ([]core.DayTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDay := make(map[string]int64)
	for _, e := range r.expenses {
		iso := e.Date.ISO()
		if iso >= from.ISO() && iso <= to.ISO() {
			byDay[iso] += e.Amount.Cents
		}
	}
	days := make([]string, 0, len(byDay))
	for iso := range byDay {
		days = append(days, iso)
	}
	sort.Strings(days)
	totals := make([]core.DayTotal, 0, len(days))
	for _, iso := range days {
		date, err := core.ParseDate(iso)
		if err != nil {
			return nil, err
		}
		totals = append(totals, core.DayTotal{Date: date, Total: core.Money{Cents: byDay[iso]}})
	}
	return totals, nil
}

func (r *MemoryRepository) DeleteLast(_ context.Context) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.expenses) == 0 {
		return core.Expense{}, ErrNoExpenses
	}
	last := r.sortedNewestFirst()[0]
	r.deleteByID(last.ID)
	return last.Expense, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteByID(id), nil
}

func (r *MemoryRepository) deleteByID(id int64) bool {
	for i, e := range r.expenses {
		if e.ID == id {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return true
		}
	}
	return false
}

func (r *MemoryRepository) PendingExport(_ context.Context, limit int) ([]core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Expense
	for _, e := range r.expenses {
		if e.exportState == "pending" {
			out = append(out, e.Expense)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkExported(_ context.Context, id int64) error {
	return r.setExportState(id, "exported")
}

func (r *MemoryRepository) MarkExportError(_ context.Context, id int64) error {
	return r.setExportState(id, "error")
}

func (r *MemoryRepository) setExportState(id int64, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.expenses {
		if r.expenses[i].ID == id {
			r.expenses[i].exportState = state
			return nil
		}
	}
	return nil
}
