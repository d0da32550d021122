// Package memory is an in-process ExpenseAppender for tests and for
// running without a configured spreadsheet.
package memory

import (
	"context"
	"fmt"
	"sync"

	"khata/internal/core"
	ports "khata/internal/sheets"
)

type Appender struct {
	mu   sync.Mutex
	rows []core.Expense

	// FailNext makes the next Append call fail, for error-path tests.
	FailNext bool
}

var _ ports.ExpenseAppender = (*Appender)(nil)

func NewAppender() *Appender {
	return &Appender{}
}

func (a *Appender) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailNext {
		a.FailNext = false
		return "", fmt.Errorf("append failed: injected error")
	}

	a.rows = append(a.rows, e)
	return fmt.Sprintf("memory!A%d:E%d", len(a.rows), len(a.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (a *Appender) Rows() []core.Expense {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]core.Expense, len(a.rows))
	copy(out, a.rows)
	return out
}
