// Package sheets defines the export boundary. Adapters live in the
// subpackages; the worker only sees these interfaces.
package sheets

import (
	"context"

	"khata/internal/core"
)

type ExpenseAppender interface {
	// Append writes one expense row and returns a reference to it.
	Append(ctx context.Context, e core.Expense) (rowRef string, err error)
}
