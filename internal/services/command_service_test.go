package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"khata/internal/budget"
	"khata/internal/intent"
	"khata/internal/log"
	"khata/internal/storage"
	"khata/internal/summary"
)

var testNow = time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC)

type fakePublisher struct {
	published []int64
	fail      bool
}

func (p *fakePublisher) PublishExpenseRecorded(_ context.Context, id int64, _ string) error {
	if p.fail {
		return context.DeadlineExceeded
	}
	p.published = append(p.published, id)
	return nil
}

func newTestService(t *testing.T) (*CommandService, *storage.MemoryRepository, *fakePublisher) {
	t.Helper()
	store := storage.NewMemoryRepository()
	budgets := budget.NewFileStore(filepath.Join(t.TempDir(), "budgets.json"))
	summaries := summary.NewService(store, time.Minute)
	publisher := &fakePublisher{}
	logger := log.New(log.DefaultConfig())
	svc := NewCommandService(store, budgets, summaries, publisher, logger)
	svc.WithClock(func() time.Time { return testNow })
	return svc, store, publisher
}

func run(t *testing.T, svc *CommandService, text string) Result {
	t.Helper()
	result, err := svc.Execute(context.Background(), intent.ParseAt(text, testNow))
	if err != nil {
		t.Fatalf("Execute(%q): %v", text, err)
	}
	return result
}

func TestExecuteAdd(t *testing.T) {
	svc, store, publisher := newTestService(t)

	result := run(t, svc, "spent 250 on groceries yesterday")
	if result.Action != intent.ActionAdd {
		t.Fatalf("action = %q, want add", result.Action)
	}
	if !strings.Contains(result.Reply, "₹250") || !strings.Contains(result.Reply, "food") {
		t.Errorf("reply = %q, want amount and category", result.Reply)
	}
	if result.Expense == nil {
		t.Fatal("expense missing from result")
	}
	if result.Expense.Date.ISO() != "2025-06-10" {
		t.Errorf("date = %q, want yesterday", result.Expense.Date.ISO())
	}
	if len(publisher.published) != 1 || publisher.published[0] != result.Expense.ID {
		t.Errorf("published = %v, want the new expense ID", publisher.published)
	}

	recent, err := store.Recent(context.Background(), 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("Recent = %v, %v, want one expense", recent, err)
	}
}

func TestExecuteAddDefaultsToToday(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := run(t, svc, "add 90 for transport")
	if result.Expense.Date.ISO() != "2025-06-11" {
		t.Errorf("date = %q, want today", result.Expense.Date.ISO())
	}
	if result.Expense.TimeOfDay != "15:30:00" {
		t.Errorf("time = %q, want clock time", result.Expense.TimeOfDay)
	}
}

func TestExecuteAddMissingAmount(t *testing.T) {
	svc, store, _ := newTestService(t)

	result := run(t, svc, "add an expense for groceries")
	if result.Missing != "amount" {
		t.Fatalf("missing = %q, want amount", result.Missing)
	}
	recent, _ := store.Recent(context.Background(), 5)
	if len(recent) != 0 {
		t.Error("nothing should be stored without an amount")
	}
}

func TestExecuteAddSurfacesBudgetAlert(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Default food budget is 10000 warn at 0.8.
	run(t, svc, "spent 9500 on food")
	result := run(t, svc, "spent 600 on food")
	if result.BudgetStatus == nil {
		t.Fatal("expected a budget status on the reply")
	}
	if result.BudgetStatus.Level != budget.LevelCritical {
		t.Errorf("level = %q, want critical past the limit", result.BudgetStatus.Level)
	}
	if !strings.Contains(result.Reply, "exceeded") {
		t.Errorf("reply = %q, want the alert appended", result.Reply)
	}
}

func TestExecutePublisherFailureDoesNotFailAdd(t *testing.T) {
	svc, store, publisher := newTestService(t)
	publisher.fail = true

	result := run(t, svc, "spent 100 on snacks")
	if result.Expense == nil {
		t.Fatal("expense should still be recorded")
	}
	recent, _ := store.Recent(context.Background(), 5)
	if len(recent) != 1 {
		t.Error("expense should be persisted despite publish failure")
	}
}

func TestExecuteDeleteLast(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := run(t, svc, "delete last expense")
	if result.Reply != "There is nothing to delete." {
		t.Errorf("empty ledger reply = %q", result.Reply)
	}

	run(t, svc, "spent 300 on food")
	result = run(t, svc, "delete last expense")
	if result.Expense == nil || result.Expense.Amount.Cents != 30000 {
		t.Errorf("deleted = %+v, want the ₹300 expense", result.Expense)
	}
}

func TestExecuteRecent(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := run(t, svc, "show recent expenses")
	if result.Reply != "You haven't recorded any expenses yet." {
		t.Errorf("empty reply = %q", result.Reply)
	}

	run(t, svc, "spent 300 on food")
	run(t, svc, "spent 120 on transport for office commute")
	result = run(t, svc, "show recent expenses")
	lines := strings.Split(result.Reply, "\n")
	if len(lines) != 3 {
		t.Fatalf("reply lines = %d, want header plus two entries: %q", len(lines), result.Reply)
	}
	if !strings.Contains(lines[1], "transport") {
		t.Errorf("newest entry should come first: %q", lines[1])
	}
}

func TestExecuteBalanceAndSummaries(t *testing.T) {
	svc, _, _ := newTestService(t)
	run(t, svc, "spent 300 on food")

	if result := run(t, svc, "what's my balance"); !strings.Contains(result.Reply, "₹300") {
		t.Errorf("balance reply = %q", result.Reply)
	}
	if result := run(t, svc, "weekly summary"); !strings.Contains(result.Reply, "Weekly spend") {
		t.Errorf("weekly reply = %q", result.Reply)
	}
	if result := run(t, svc, "monthly summary"); !strings.Contains(result.Reply, "June 2025") {
		t.Errorf("monthly reply = %q", result.Reply)
	}
}

func TestExecuteSetBudget(t *testing.T) {
	svc, _, _ := newTestService(t)
	run(t, svc, "spent 1000 on food")

	result := run(t, svc, "set budget of 5000 for food warn me at 70 percent")
	if result.BudgetStatus == nil {
		t.Fatal("budget status missing")
	}
	if result.BudgetStatus.Category != "food" || result.BudgetStatus.Limit != 5000 {
		t.Errorf("status = %+v, want food at 5000", result.BudgetStatus)
	}
	if result.BudgetStatus.Spent != 1000 {
		t.Errorf("spent = %v, want this month's 1000", result.BudgetStatus.Spent)
	}
	if result.WarnRatio == nil || *result.WarnRatio != 0.7 {
		t.Errorf("warn ratio = %v, want 0.7", result.WarnRatio)
	}
}

func TestExecuteSetBudgetMissingSlots(t *testing.T) {
	svc, _, _ := newTestService(t)

	if result := run(t, svc, "set a budget for food"); result.Missing != "amount" {
		t.Errorf("missing = %q, want amount", result.Missing)
	}
	if result := run(t, svc, "set budget to 4000"); result.Missing != "category" {
		t.Errorf("missing = %q, want category", result.Missing)
	}
}

func TestExecuteShowBudgets(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := run(t, svc, "show my budgets")
	if len(result.Budgets) != 5 {
		t.Fatalf("budgets = %d, want the 5 defaults", len(result.Budgets))
	}
	if !strings.Contains(result.Reply, "food") {
		t.Errorf("reply = %q, want category lines", result.Reply)
	}

	result = run(t, svc, "show budget for food")
	if result.BudgetStatus == nil || result.BudgetStatus.Category != "food" {
		t.Errorf("single status = %+v, want food", result.BudgetStatus)
	}
}

func TestExecuteRemoveBudget(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := run(t, svc, "remove budget for food")
	if result.RemovedBudget != "food" {
		t.Errorf("removed = %q, want food", result.RemovedBudget)
	}
	result = run(t, svc, "remove budget for food")
	if result.RemovedBudget != "" {
		t.Errorf("second removal = %q, want empty", result.RemovedBudget)
	}
	if !strings.Contains(result.Reply, "no budget") {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestExecuteChartSummary(t *testing.T) {
	svc, _, _ := newTestService(t)
	run(t, svc, "spent 300 on food")
	run(t, svc, "spent 120 on transport")

	result := run(t, svc, "show me a chart of my spending")
	if result.ChartSeries == nil || len(result.ChartSeries.CategoryBreakdown) != 2 {
		t.Fatalf("chart series = %+v, want two categories", result.ChartSeries)
	}
	if result.Reply == "" {
		t.Error("chart reply should narrate the series")
	}
}

func TestExecuteRepeat(t *testing.T) {
	svc, _, _ := newTestService(t)

	result := run(t, svc, "say that again")
	if result.Reply != "I haven't said anything yet." {
		t.Errorf("first repeat = %q", result.Reply)
	}

	first := run(t, svc, "spent 300 on food")
	repeated := run(t, svc, "say that again")
	if repeated.Reply != first.Reply {
		t.Errorf("repeat = %q, want %q", repeated.Reply, first.Reply)
	}
	// Repeat again still replays the add, not the repeat.
	if again := run(t, svc, "repeat"); again.Reply != first.Reply {
		t.Errorf("second repeat = %q, want %q", again.Reply, first.Reply)
	}
}

func TestExecuteExitAndHelp(t *testing.T) {
	svc, _, _ := newTestService(t)

	if result := run(t, svc, "exit"); !result.Exit {
		t.Error("exit flag not set")
	}
	if result := run(t, svc, "help"); !strings.Contains(result.Reply, "set budget") {
		t.Errorf("help reply = %q", result.Reply)
	}
	if result := run(t, svc, "blorp the frobnicator"); result.Action != intent.ActionUnknown {
		t.Errorf("action = %q, want unknown", result.Action)
	}
}
