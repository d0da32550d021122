package intent

import "regexp"

// Classification walks fixed tiers in order; the first pattern hit wins.
// Budget intents come before the generic groups because "remove budget"
// would otherwise land in delete, and "set budget" in add. The delete
// group precedes the add evidence fallback so "cancel the food record"
// deletes instead of logging a food expense.

type actionTier struct {
	action   Action
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

var classifierTiers = []actionTier{
	{ActionSetBudget, compileAll(
		`\bset\b.*\bbudget\b`,
		`\bset a budget\b`,
		`\bbudget for\b.*\bset\b`,
	)},
	{ActionRemoveBudget, compileAll(
		`\bremove\b.*\bbudgets?\b`,
		`\b(?:delete|drop|clear|cancel)\b.*\bbudgets?\b`,
	)},
	{ActionShowBudgets, compileAll(
		`\b(?:show|what(?:'s| is)|list)\b.*\bbudgets?\b`,
		`\bbudget status\b`,
		`\bshow my budgets\b`,
		`\bwhat'?s my budget\b`,
	)},
	{ActionChartSummary, compileAll(
		`\bchart\b`,
		`\bgraph\b`,
		`\bvisual\b.*\b(?:summary|recap|breakdown)\b`,
	)},
	{ActionExit, compileAll(
		`\b(?:stop|exit|quit|close|shut down|goodbye|bye)\b`,
	)},
	{ActionHelp, compileAll(
		`\bhelp\b`,
		`what can you do`,
		`list commands`,
	)},
	{ActionRepeat, compileAll(
		`\brepeat\b`,
		`say (?:that )?again`,
		`last command`,
	)},
	{ActionDelete, compileAll(
		`\b(?:delete|remove|undo|erase|cancel)(?:\s+(?:last\s+)?.*?(?:expense|entry|transaction))?\b`,
		`\bcancel last expense\b`,
		`\b(?:delete|remove|undo)\b`,
	)},
	{ActionRecent, compileAll(
		`\brecent\b.*\b(?:expense|expenses|entries|transactions)\b`,
		`\bshow (?:me )?(?:the )?(?:last|recent)\b`,
		`\blast\b.*\b(?:expense|entry)\b`,
		`\bexpense history\b`,
		`\brecent\b`,
	)},
	{ActionWeekly, compileAll(
		`\bweekly\b.*\b(?:summary|report|breakdown|spend|spending|expenses|stats)\b`,
		`\bthis week'?s?\b.*\b(?:summary|report|spending|expenses|stats)\b`,
		`\bweek(?:ly)? summary\b`,
		`\bweekly\b`,
	)},
	{ActionMonthly, compileAll(
		`\bmonthly\b.*\b(?:summary|report|breakdown|spend|spending|expenses|stats)\b`,
		`\bthis month'?s?\b.*\b(?:summary|report|spending|expenses|stats)\b`,
		`\bmonth(?:ly)? summary\b`,
		`\bmonthly\b`,
	)},
	{ActionBalance, compileAll(
		`\bbalance\b`,
		`total\s+(?:spent|spend)(?:\s+today)?`,
		`how much (?:have|did) i\s+(?:spend|spent)`,
		`\bspending\s+(?:today|so far)\b`,
		`\bexpense total\b`,
		`\btoday'?s? total\b`,
	)},
	{ActionAdd, compileAll(
		`\b(?:add|record|log|note|register|capture|save|set aside)\b`,
		`\b(?:spend|spent|pay|paid|purchase|purchased|buy|bought)\b`,
	)},
}

// classify returns the action for normalized text, or "" when nothing
// matches. An utterance carrying an amount or a recognised category but no
// verb is still an add; people say "500 for groceries" and mean it.
func classify(text string, hasAmount, hasCategory bool) Action {
	for _, tier := range classifierTiers {
		for _, p := range tier.patterns {
			if p.MatchString(text) {
				return tier.action
			}
		}
	}
	if hasAmount || hasCategory {
		return ActionAdd
	}
	return ""
}
