// Package services executes parsed commands against storage, budgets and
// summaries, and turns the outcome into a speakable reply.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"khata/internal/budget"
	"khata/internal/core"
	"khata/internal/intent"
	"khata/internal/log"
	"khata/internal/storage"
	"khata/internal/summary"
)

// Publisher announces recorded expenses to the export worker. A nil
// publisher is allowed; recording then stays local.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, id int64, category string) error
}

// Result is the outcome of executing one command. Reply is always set and
// safe to speak or render; the optional fields carry structured data for
// API clients.
type Result struct {
	Action intent.Action `json:"action"`
	Reply  string        `json:"reply"`

	// Missing names a slot the caller should re-prompt for.
	Missing string `json:"missing,omitempty"`

	Expense       *core.Expense   `json:"expense,omitempty"`
	BudgetStatus  *budget.Status  `json:"budget_status,omitempty"`
	WarnRatio     *float64        `json:"warn_ratio,omitempty"`
	RemovedBudget string          `json:"removed_budget,omitempty"`
	Budgets       []budget.Status `json:"budgets,omitempty"`
	ChartSeries   *summary.Series `json:"chart_series,omitempty"`

	// Exit is set when the user asked to stop the session.
	Exit bool `json:"exit,omitempty"`
}

// CommandService wires the interpreter's output to the rest of the system.
type CommandService struct {
	store     storage.Store
	budgets   *budget.FileStore
	evaluator *budget.Evaluator
	summaries *summary.Service
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time

	mu        sync.Mutex
	lastReply string
}

func NewCommandService(store storage.Store, budgets *budget.FileStore, summaries *summary.Service, publisher Publisher, logger *log.Logger) *CommandService {
	return &CommandService{
		store:     store,
		budgets:   budgets,
		evaluator: budget.NewEvaluator(budgets, store),
		summaries: summaries,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentCommand),
		now:       time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *CommandService) WithClock(now func() time.Time) *CommandService {
	s.now = now
	return s
}

const helpText = `You can say things like:
- "spent 250 on groceries yesterday"
- "add 1200 for rent"
- "set budget of 5000 for food, warn me at 70 percent"
- "show my budgets", "remove budget for food"
- "show recent expenses", "weekly summary", "monthly summary"
- "what's my balance", "show me a chart"
- "delete last expense", or "exit" to stop.`

// Execute runs one parsed command and returns the result. Errors are
// reserved for infrastructure failures; bad or incomplete commands come
// back as a Result that asks for what is missing.
func (s *CommandService) Execute(ctx context.Context, in intent.Intent) (Result, error) {
	result, err := s.execute(ctx, in)
	if err != nil {
		return result, err
	}
	if in.Action != intent.ActionRepeat {
		s.mu.Lock()
		s.lastReply = result.Reply
		s.mu.Unlock()
	}
	return result, nil
}

func (s *CommandService) execute(ctx context.Context, in intent.Intent) (Result, error) {
	switch in.Action {
	case intent.ActionNone:
		return Result{Action: in.Action, Reply: "I didn't hear anything."}, nil
	case intent.ActionUnknown:
		s.logger.DebugContext(ctx, "Unrecognised command", log.FieldTranscript, in.Raw)
		return Result{Action: in.Action, Reply: "Sorry, I didn't understand that. Say 'help' for examples."}, nil
	case intent.ActionHelp:
		return Result{Action: in.Action, Reply: helpText}, nil
	case intent.ActionExit:
		return Result{Action: in.Action, Reply: "Goodbye!", Exit: true}, nil
	case intent.ActionRepeat:
		return s.repeat(in), nil
	case intent.ActionAdd:
		return s.addExpense(ctx, in)
	case intent.ActionBalance:
		return s.summaryReply(ctx, in, s.summaries.BalanceText)
	case intent.ActionWeekly:
		return s.summaryReply(ctx, in, s.summaries.WeeklyText)
	case intent.ActionMonthly:
		return s.summaryReply(ctx, in, s.summaries.MonthlyText)
	case intent.ActionRecent:
		return s.recent(ctx, in)
	case intent.ActionDelete:
		return s.deleteLast(ctx, in)
	case intent.ActionSetBudget:
		return s.setBudget(ctx, in)
	case intent.ActionShowBudgets:
		return s.showBudgets(ctx, in)
	case intent.ActionRemoveBudget:
		return s.removeBudget(ctx, in)
	case intent.ActionChartSummary:
		return s.chartSummary(ctx, in)
	default:
		return Result{Action: intent.ActionUnknown, Reply: "Sorry, I didn't understand that."}, nil
	}
}

func (s *CommandService) repeat(in intent.Intent) Result {
	s.mu.Lock()
	last := s.lastReply
	s.mu.Unlock()
	if last == "" {
		return Result{Action: in.Action, Reply: "I haven't said anything yet."}
	}
	return Result{Action: in.Action, Reply: last}
}

func (s *CommandService) addExpense(ctx context.Context, in intent.Intent) (Result, error) {
	if !in.HasAmount() {
		return Result{Action: in.Action, Missing: "amount", Reply: "How much did you spend?"}, nil
	}

	now := s.now()
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if in.Date != "" {
		parsed, err := core.ParseDate(in.Date)
		if err != nil {
			return Result{Action: in.Action, Reply: "I couldn't make sense of that date."}, nil
		}
		date = parsed
	}

	category := in.Category
	if category == "" {
		category = intent.CategoryFallback
	}

	expense := core.Expense{
		Date:        date,
		TimeOfDay:   now.Format("15:04:05"),
		Amount:      core.FromRupees(*in.Amount),
		Category:    category,
		Description: in.Description,
	}

	id, err := s.store.Add(ctx, expense)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return Result{Action: in.Action, Missing: "amount", Reply: "That amount doesn't look right. How much did you spend?"}, nil
		}
		return Result{}, fmt.Errorf("add expense: %w", err)
	}
	expense.ID = id
	s.summaries.Invalidate()

	s.logger.InfoContext(ctx, "Expense recorded",
		log.FieldExpenseID, id,
		log.FieldAmountCents, expense.Amount.Cents,
		log.FieldCategory, expense.Category,
		log.FieldDate, expense.Date.ISO())

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseRecorded(ctx, id, expense.Category); err != nil {
			// The expense is saved locally; export catches up later.
			s.logger.ErrorContext(ctx, "Failed to publish expense recorded message",
				log.FieldExpenseID, id, log.FieldError, err)
		}
	}

	reply := fmt.Sprintf("Added %s to %s.", expense.Amount, expense.Category)
	result := Result{Action: in.Action, Reply: reply, Expense: &expense}

	alert, err := s.evaluator.AlertFor(ctx, expense.Category, date.Year(), date.Month())
	if err != nil {
		s.logger.WarnContext(ctx, "Budget check failed", log.FieldCategory, expense.Category, log.FieldError, err)
		return result, nil
	}
	if alert != nil {
		result.Reply = reply + " " + alert.Message
		result.BudgetStatus = alert
	}
	return result, nil
}

func (s *CommandService) summaryReply(ctx context.Context, in intent.Intent, render func(context.Context, time.Time) (string, error)) (Result, error) {
	text, err := render(ctx, s.now())
	if err != nil {
		return Result{}, err
	}
	return Result{Action: in.Action, Reply: text}, nil
}

func (s *CommandService) recent(ctx context.Context, in intent.Intent) (Result, error) {
	expenses, err := s.store.Recent(ctx, 5)
	if err != nil {
		return Result{}, fmt.Errorf("recent expenses: %w", err)
	}
	if len(expenses) == 0 {
		return Result{Action: in.Action, Reply: "You haven't recorded any expenses yet."}, nil
	}

	lines := make([]string, 0, len(expenses)+1)
	lines = append(lines, "Your recent expenses:")
	for i, e := range expenses {
		line := fmt.Sprintf("%d. %s %s on %s", i+1, e.Amount, e.Category, e.Date.ISO())
		if e.Description != "" {
			line += fmt.Sprintf(" (%s)", e.Description)
		}
		lines = append(lines, line)
	}
	return Result{Action: in.Action, Reply: strings.Join(lines, "\n")}, nil
}

func (s *CommandService) deleteLast(ctx context.Context, in intent.Intent) (Result, error) {
	deleted, err := s.store.DeleteLast(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoExpenses) {
			return Result{Action: in.Action, Reply: "There is nothing to delete."}, nil
		}
		return Result{}, fmt.Errorf("delete last expense: %w", err)
	}
	s.summaries.Invalidate()

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldExpenseID, deleted.ID,
		log.FieldAmountCents, deleted.Amount.Cents,
		log.FieldCategory, deleted.Category)

	reply := fmt.Sprintf("Deleted %s %s from %s.", deleted.Amount, deleted.Category, deleted.Date.ISO())
	return Result{Action: in.Action, Reply: reply, Expense: &deleted}, nil
}

func (s *CommandService) setBudget(ctx context.Context, in intent.Intent) (Result, error) {
	if !in.HasAmount() {
		return Result{Action: in.Action, Missing: "amount", Reply: "What should the monthly limit be?"}, nil
	}
	if in.Category == "" {
		return Result{Action: in.Action, Missing: "category", Reply: "Which category is this budget for?"}, nil
	}

	limit, err := s.budgets.Set(in.Category, *in.Amount, in.WarnRatio)
	if err != nil {
		return Result{Action: in.Action, Reply: "I couldn't set that budget. The limit has to be a positive amount."}, nil
	}

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldCategory, limit.Category,
		log.FieldBudgetLimit, limit.Limit)

	now := s.now()
	status, err := s.evaluator.StatusFor(ctx, limit.Category, now.Year(), now.Month())
	if err != nil {
		return Result{}, fmt.Errorf("budget status: %w", err)
	}

	reply := fmt.Sprintf("Budget for %s set to ₹%.0f a month.", limit.Category, limit.Limit)
	if in.WarnRatio != nil {
		reply += fmt.Sprintf(" I'll warn you at %.0f percent.", limit.WarnRatio*100)
	}
	warn := limit.WarnRatio
	return Result{
		Action:       in.Action,
		Reply:        reply,
		BudgetStatus: status,
		WarnRatio:    &warn,
	}, nil
}

func (s *CommandService) showBudgets(ctx context.Context, in intent.Intent) (Result, error) {
	now := s.now()

	if in.Category != "" {
		status, err := s.evaluator.StatusFor(ctx, in.Category, now.Year(), now.Month())
		if err != nil {
			return Result{}, fmt.Errorf("budget status: %w", err)
		}
		if status == nil {
			return Result{Action: in.Action, Reply: fmt.Sprintf("There is no budget for %s.", in.Category)}, nil
		}
		return Result{Action: in.Action, Reply: status.Message, BudgetStatus: status}, nil
	}

	statuses, err := s.evaluator.EvaluateMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return Result{}, fmt.Errorf("evaluate budgets: %w", err)
	}
	if len(statuses) == 0 {
		return Result{Action: in.Action, Reply: "You have no budgets configured."}, nil
	}

	lines := make([]string, 0, len(statuses)+1)
	lines = append(lines, "Your budgets this month:")
	for _, status := range statuses {
		lines = append(lines, fmt.Sprintf("- %s: ₹%.0f of ₹%.0f spent", status.Category, status.Spent, status.Limit))
	}
	return Result{Action: in.Action, Reply: strings.Join(lines, "\n"), Budgets: statuses}, nil
}

func (s *CommandService) removeBudget(ctx context.Context, in intent.Intent) (Result, error) {
	if in.Category == "" {
		return Result{Action: in.Action, Missing: "category", Reply: "Which budget should I remove?"}, nil
	}

	removed, err := s.budgets.Remove(in.Category)
	if err != nil {
		return Result{}, fmt.Errorf("remove budget: %w", err)
	}
	if !removed {
		return Result{Action: in.Action, Reply: fmt.Sprintf("There is no budget for %s.", in.Category)}, nil
	}

	s.logger.InfoContext(ctx, "Budget removed", log.FieldCategory, in.Category)
	return Result{
		Action:        in.Action,
		Reply:         fmt.Sprintf("Removed the budget for %s.", in.Category),
		RemovedBudget: in.Category,
	}, nil
}

func (s *CommandService) chartSummary(ctx context.Context, in intent.Intent) (Result, error) {
	now := s.now()
	series, err := s.summaries.ChartSeries(ctx, now)
	if err != nil {
		return Result{}, fmt.Errorf("chart series: %w", err)
	}
	text, err := s.summaries.ChartText(ctx, now)
	if err != nil {
		return Result{}, fmt.Errorf("chart text: %w", err)
	}
	return Result{Action: in.Action, Reply: text, ChartSeries: &series}, nil
}
