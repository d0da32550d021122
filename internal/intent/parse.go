package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// normalize lowercases and collapses runs of whitespace so the pattern
// tables see one canonical form of the utterance.
func normalize(text string) string {
	return spaceRunPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// warnRatioPattern catches "warn me at 70 percent" and "warn at 0.8".
var warnRatioPattern = regexp.MustCompile(`\bwarn(?:\s+me)?\s+(?:at\s+)?(\d+(?:\.\d+)?)\s*(?:percent|%)?`)

// extractWarnRatio returns the warning fraction for a budget, clamped to
// [0,1]. Values above one are read as percentages.
func extractWarnRatio(text string) *float64 {
	m := warnRatioPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	if v > 1 {
		v /= 100
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}

// "show" is both a budget command verb and an entertainment synonym.
// Budget intents resolve their category with it removed so "show my
// budgets" stays category-free.
var showVerbPattern = regexp.MustCompile(`\bshows?\b`)

func budgetCategory(lower string) string {
	stripped := showVerbPattern.ReplaceAllString(lower, " ")
	category, _ := extractCategoryAndDescription(stripped, stripped)
	if category == CategoryFallback {
		return ""
	}
	return category
}

// Parse interprets one utterance against the current wall clock.
func Parse(text string) Intent {
	return ParseAt(text, time.Now())
}

// ParseAt interprets one utterance, resolving relative dates against now.
// It always returns a usable Intent: blank input is ActionNone and
// unrecognised input is ActionUnknown with the normalized text in Raw.
func ParseAt(text string, now time.Time) Intent {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Intent{Action: ActionNone}
	}

	lower := strings.ToLower(raw)
	normalized := normalize(raw)

	amount := extractAmount(normalized)
	category, description := extractCategoryAndDescription(lower, raw)

	action := classify(normalized, amount != nil, category != CategoryFallback)
	switch action {
	case "":
		return Intent{Action: ActionUnknown, Raw: normalized}
	case ActionAdd:
		return Intent{
			Action:      ActionAdd,
			Amount:      amount,
			Category:    category,
			Date:        extractDate(raw, now),
			Description: description,
		}
	case ActionSetBudget:
		return Intent{
			Action:    ActionSetBudget,
			Amount:    amount,
			Category:  budgetCategory(lower),
			WarnRatio: extractWarnRatio(normalized),
		}
	case ActionRemoveBudget, ActionShowBudgets:
		return Intent{Action: action, Category: budgetCategory(lower)}
	default:
		return Intent{Action: action}
	}
}
