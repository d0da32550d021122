package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"khata/internal/amqp"
	"khata/internal/budget"
	"khata/internal/core"
	"khata/internal/log"
	"khata/internal/sheets/memory"
	"khata/internal/storage"
)

var testNow = time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)

func newTestWorker(t *testing.T) (*ExportWorker, *storage.MemoryRepository, *memory.Appender) {
	t.Helper()
	store := storage.NewMemoryRepository()
	appender := memory.NewAppender()
	budgets := budget.NewFileStore(filepath.Join(t.TempDir(), "budgets.json"))
	evaluator := budget.NewEvaluator(budgets, store)
	logger := log.New(log.DefaultConfig())
	w := NewExportWorker(store, appender, evaluator, logger, 10, time.Second)
	w.WithClock(func() time.Time { return testNow })
	return w, store, appender
}

func addExpense(t *testing.T, store *storage.MemoryRepository, rupees float64, category string) int64 {
	t.Helper()
	id, err := store.Add(context.Background(), core.Expense{
		Date: core.NewDate(2025, 6, 11), TimeOfDay: "09:00:00",
		Amount: core.FromRupees(rupees), Category: category,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	return id
}

func TestProcessPendingExportsBatch(t *testing.T) {
	w, store, appender := newTestWorker(t)
	ctx := context.Background()

	addExpense(t, store, 250, "food")
	addExpense(t, store, 120, "transport")

	exported, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if exported != 2 {
		t.Errorf("exported = %d, want 2", exported)
	}
	if len(appender.Rows()) != 2 {
		t.Errorf("rows = %d, want 2", len(appender.Rows()))
	}

	// Nothing pending on the second sweep.
	exported, err = w.ProcessPending(ctx)
	if err != nil || exported != 0 {
		t.Errorf("second sweep = %d, %v, want 0, nil", exported, err)
	}
	pending, _ := store.PendingExport(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0 after export", len(pending))
	}
}

func TestProcessPendingMarksFailures(t *testing.T) {
	w, store, appender := newTestWorker(t)
	ctx := context.Background()

	addExpense(t, store, 250, "food")
	appender.FailNext = true

	exported, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if exported != 0 {
		t.Errorf("exported = %d, want 0 on failure", exported)
	}
	// The failed row is marked and not retried by the next sweep.
	pending, _ := store.PendingExport(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0 after error mark", len(pending))
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	w, store, _ := newTestWorker(t)
	w.batchSize = 1
	ctx := context.Background()

	addExpense(t, store, 10, "food")
	addExpense(t, store, 20, "food")

	exported, err := w.ProcessPending(ctx)
	if err != nil || exported != 1 {
		t.Fatalf("first sweep = %d, %v, want 1, nil", exported, err)
	}
	pending, _ := store.PendingExport(ctx, 10)
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1 left", len(pending))
	}
}

func TestHandleExpenseRecorded(t *testing.T) {
	w, store, appender := newTestWorker(t)
	ctx := context.Background()

	id := addExpense(t, store, 9000, "food")
	msg := amqp.NewExpenseRecordedMessage(id, "food")
	if err := w.HandleExpenseRecorded(ctx, msg); err != nil {
		t.Fatalf("HandleExpenseRecorded: %v", err)
	}
	if len(appender.Rows()) != 1 {
		t.Errorf("rows = %d, want the message's expense exported", len(appender.Rows()))
	}
}
