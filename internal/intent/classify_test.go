package intent

import "testing"

func TestClassifyTiers(t *testing.T) {
	cases := []struct {
		text        string
		hasAmount   bool
		hasCategory bool
		want        Action
	}{
		{"set budget for food to 5000", true, true, ActionSetBudget},
		{"remove budget for entertainment", false, true, ActionRemoveBudget},
		{"delete my food budget", false, true, ActionRemoveBudget},
		{"what's my food budget", false, true, ActionShowBudgets},
		{"budget status", false, false, ActionShowBudgets},
		{"give me a chart recap", false, false, ActionChartSummary},
		{"goodbye", false, false, ActionExit},
		{"help", false, false, ActionHelp},
		{"say that again", false, false, ActionRepeat},
		{"cancel the food record", false, true, ActionDelete},
		{"undo", false, false, ActionDelete},
		{"show me recent expenses", false, false, ActionRecent},
		{"weekly summary", false, false, ActionWeekly},
		{"monthly breakdown please", false, false, ActionMonthly},
		{"balance", false, false, ActionBalance},
		{"add 200", true, false, ActionAdd},
		{"bought new shoes", false, true, ActionAdd},
		// Evidence default: no verb, but an amount or category was found.
		{"200 for groceries", true, true, ActionAdd},
		{"", false, false, ""},
		{"hello there", false, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			if got := classify(tc.text, tc.hasAmount, tc.hasCategory); got != tc.want {
				t.Fatalf("classify(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassifyBudgetBeforeDelete(t *testing.T) {
	// "remove" alone is a delete verb; "remove ... budget" must not be.
	if got := classify("remove the last expense", false, false); got != ActionDelete {
		t.Fatalf("got %q, want delete", got)
	}
	if got := classify("remove budget for food", false, true); got != ActionRemoveBudget {
		t.Fatalf("got %q, want remove_budget", got)
	}
}
