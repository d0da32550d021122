// Package worker drains recorded expenses to the spreadsheet and raises
// budget alerts in the background.
package worker

import (
	"context"
	"fmt"
	"time"

	"khata/internal/amqp"
	"khata/internal/budget"
	"khata/internal/log"
	"khata/internal/sheets"
	"khata/internal/storage"
)

// Ledger is the storage surface the worker needs: reads plus export
// bookkeeping.
type Ledger interface {
	storage.Store
	storage.Exporter
}

type ExportWorker struct {
	ledger    Ledger
	appender  sheets.ExpenseAppender
	evaluator *budget.Evaluator
	logger    *log.Logger
	batchSize int
	interval  time.Duration
	now       func() time.Time
}

func NewExportWorker(ledger Ledger, appender sheets.ExpenseAppender, evaluator *budget.Evaluator, logger *log.Logger, batchSize int, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		ledger:    ledger,
		appender:  appender,
		evaluator: evaluator,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
		interval:  interval,
		now:       time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (w *ExportWorker) WithClock(now func() time.Time) *ExportWorker {
	w.now = now
	return w
}

// ProcessPending exports one batch of unexported expenses. Failures are
// marked on the row and do not stop the batch. Returns how many rows were
// exported.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.ledger.PendingExport(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("pending export: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Exporting pending expenses", "count", len(pending))

	exported := 0
	for _, expense := range pending {
		ref, err := w.appender.Append(ctx, expense)
		if err != nil {
			w.logger.ErrorContext(ctx, "Export failed",
				log.FieldExpenseID, expense.ID, log.FieldError, err)
			if markErr := w.ledger.MarkExportError(ctx, expense.ID); markErr != nil {
				w.logger.ErrorContext(ctx, "Failed to mark export error",
					log.FieldExpenseID, expense.ID, log.FieldError, markErr)
			}
			continue
		}
		if err := w.ledger.MarkExported(ctx, expense.ID); err != nil {
			// The row is on the sheet; only the bookkeeping failed.
			w.logger.ErrorContext(ctx, "Failed to mark exported",
				log.FieldExpenseID, expense.ID, log.FieldError, err)
			continue
		}
		exported++
		w.logger.InfoContext(ctx, "Expense exported",
			log.FieldExpenseID, expense.ID,
			log.FieldSheetsRef, ref,
			log.FieldAmountCents, expense.Amount.Cents)
	}
	return exported, nil
}

// HandleExpenseRecorded reacts to one queue message: it sweeps the pending
// backlog and checks the touched category against its budget.
func (w *ExportWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if _, err := w.ProcessPending(ctx); err != nil {
		return err
	}
	w.checkBudget(ctx, msg.Category)
	return nil
}

func (w *ExportWorker) checkBudget(ctx context.Context, category string) {
	if w.evaluator == nil || category == "" {
		return
	}
	now := w.now()
	alert, err := w.evaluator.AlertFor(ctx, category, now.Year(), now.Month())
	if err != nil {
		w.logger.WarnContext(ctx, "Budget check failed",
			log.FieldCategory, category, log.FieldError, err)
		return
	}
	if alert != nil {
		w.logger.WarnContext(ctx, "Budget alert",
			log.FieldCategory, alert.Category,
			log.FieldBudgetLimit, alert.Limit,
			"spent", alert.Spent,
			"level", string(alert.Level))
	}
}

// Run sweeps the backlog on startup and then on every tick until the
// context is cancelled.
func (w *ExportWorker) Run(ctx context.Context) error {
	if _, err := w.ProcessPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup export sweep failed", log.FieldError, err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Export worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Export sweep failed", log.FieldError, err)
			}
		}
	}
}
