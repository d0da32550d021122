// Package intent turns one transcribed utterance into a structured command.
//
// The parser is a pure function of its input text (plus an injectable
// reference time for date resolution): it holds no mutable package state,
// performs no I/O, and never returns an error; absence of a field is the
// only failure signal. Voice transcripts are noisy, so extraction is
// best-effort and validation belongs to the caller.
package intent

// Action tags the kind of command recognised in an utterance.
type Action string

const (
	ActionNone         Action = "none"
	ActionUnknown      Action = "unknown"
	ActionHelp         Action = "help"
	ActionExit         Action = "exit"
	ActionRepeat       Action = "repeat"
	ActionAdd          Action = "add"
	ActionBalance      Action = "balance"
	ActionRecent       Action = "recent"
	ActionWeekly       Action = "weekly"
	ActionMonthly      Action = "monthly"
	ActionDelete       Action = "delete"
	ActionSetBudget    Action = "set_budget"
	ActionShowBudgets  Action = "show_budgets"
	ActionRemoveBudget Action = "remove_budget"
	ActionChartSummary Action = "chart_summary"
)

// CategoryFallback is the catch-all category used when no synonym matches.
const CategoryFallback = "uncategorized"

// Intent is the immutable result of parsing one utterance. Exactly one
// Action is set; fields that are not meaningful for that action stay at
// their zero value.
type Intent struct {
	Action Action

	// Amount is set for add and set_budget when a monetary value was found.
	Amount *float64
	// Category is set for add (possibly CategoryFallback) and for the
	// budget actions (empty when no specific category was named).
	Category string
	// Date is an ISO YYYY-MM-DD string for add; empty means "today".
	Date string
	// Description is leftover free text around the matched category.
	Description string
	// WarnRatio is the optional warning fraction for set_budget.
	WarnRatio *float64
	// Raw carries the normalized input for unknown results.
	Raw string
}

// HasAmount reports whether an amount was extracted.
func (in Intent) HasAmount() bool {
	return in.Amount != nil
}

// HasCategory reports whether a non-fallback category was resolved.
func (in Intent) HasCategory() bool {
	return in.Category != "" && in.Category != CategoryFallback
}

// Fields flattens the intent into a key/value map for JSON transport.
// Absent optionals are omitted rather than serialized as zero values.
func (in Intent) Fields() map[string]any {
	m := map[string]any{"action": string(in.Action)}
	if in.Amount != nil {
		m["amount"] = *in.Amount
	}
	if in.Category != "" {
		m["category"] = in.Category
	}
	if in.Date != "" {
		m["date"] = in.Date
	}
	if in.Description != "" {
		m["description"] = in.Description
	}
	if in.WarnRatio != nil {
		m["warn_ratio"] = *in.WarnRatio
	}
	if in.Raw != "" {
		m["raw"] = in.Raw
	}
	return m
}

func float(v float64) *float64 { return &v }
