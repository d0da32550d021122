package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Date handling is deliberately gated: an utterance with no explicit date
// signal yields no date at all, so "add 5000 to food" never resolves a
// spurious "today". When a signal exists, ambiguous forms prefer the past
// (an expense is usually being logged after the fact) and numeric dates
// read day-first.

var dateKeywords = map[string]struct{}{
	"today": {}, "yesterday": {}, "tomorrow": {},
	"tonight": {}, "tonite": {}, "yday": {},
}

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday, "sunday": time.Sunday,
}

var monthNames = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "sept": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

var relativeDatePhrases = []string{
	"last week", "last month", "next week", "next month",
	"this week", "this month", "last night", "last evening",
}

var (
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
	ordinalDatePattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	dateTokenPattern   = regexp.MustCompile(`[a-z0-9]+`)
	dayTokenPattern    = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?$`)

	// Strips any date-ish word out of description text.
	dateTokenStrip *regexp.Regexp
)

func init() {
	words := make(map[string]struct{})
	for w := range dateKeywords {
		words[w] = struct{}{}
	}
	for w := range weekdayNames {
		words[w] = struct{}{}
	}
	for w := range monthNames {
		words[w] = struct{}{}
	}
	for _, phrase := range relativeDatePhrases {
		for _, w := range strings.Fields(phrase) {
			words[w] = struct{}{}
		}
	}
	all := make([]string, 0, len(words))
	for w := range words {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool {
		if len(all[i]) != len(all[j]) {
			return len(all[i]) > len(all[j])
		}
		return all[i] < all[j]
	})
	dateTokenStrip = regexp.MustCompile(`(?i)\b(?:` + strings.Join(all, "|") + `)\b`)
}

// containsDateSignal reports whether the text carries any explicit date
// reference worth resolving.
func containsDateSignal(text string) bool {
	lowered := strings.ToLower(text)
	for kw := range dateKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	for _, phrase := range relativeDatePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	for _, tok := range wordTokenPattern.FindAllString(lowered, -1) {
		if _, ok := weekdayNames[tok]; ok {
			return true
		}
		if _, ok := monthNames[tok]; ok {
			return true
		}
	}
	return numericDatePattern.MatchString(lowered) || ordinalDatePattern.MatchString(lowered)
}

// extractDate resolves the first date reference in the text to ISO
// YYYY-MM-DD relative to now, or returns "" when the text has no signal.
func extractDate(text string, now time.Time) string {
	if !containsDateSignal(text) {
		return ""
	}
	lowered := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if d, ok := resolveRelativePhrase(lowered, today); ok {
		return d.Format("2006-01-02")
	}
	if d, ok := resolveKeyword(lowered, today); ok {
		return d.Format("2006-01-02")
	}
	if d, ok := resolveNumericDate(lowered, today); ok {
		return d.Format("2006-01-02")
	}
	if d, ok := resolveMonthDay(lowered, today); ok {
		return d.Format("2006-01-02")
	}
	if d, ok := resolveOrdinal(lowered, today); ok {
		return d.Format("2006-01-02")
	}
	if d, ok := resolveWeekday(lowered, today); ok {
		return d.Format("2006-01-02")
	}
	return ""
}

func resolveRelativePhrase(lowered string, today time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(lowered, "last night"), strings.Contains(lowered, "last evening"):
		return today.AddDate(0, 0, -1), true
	case strings.Contains(lowered, "last week"):
		return today.AddDate(0, 0, -7), true
	case strings.Contains(lowered, "next week"):
		return today.AddDate(0, 0, 7), true
	case strings.Contains(lowered, "last month"):
		return today.AddDate(0, -1, 0), true
	case strings.Contains(lowered, "next month"):
		return today.AddDate(0, 1, 0), true
	case strings.Contains(lowered, "this week"), strings.Contains(lowered, "this month"):
		return today, true
	}
	return time.Time{}, false
}

func resolveKeyword(lowered string, today time.Time) (time.Time, bool) {
	switch {
	case strings.Contains(lowered, "yesterday"), strings.Contains(lowered, "yday"):
		return today.AddDate(0, 0, -1), true
	case strings.Contains(lowered, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(lowered, "today"), strings.Contains(lowered, "tonight"), strings.Contains(lowered, "tonite"):
		return today, true
	}
	return time.Time{}, false
}

// resolveNumericDate parses day-first numeric dates: 5/6 is the 5th of
// June. Two-digit years map to 2000+. Without a year, a date that lands in
// the future rolls back one year.
func resolveNumericDate(lowered string, today time.Time) (time.Time, bool) {
	m := numericDatePattern.FindStringSubmatch(lowered)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if m[3] != "" {
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location()), true
	}
	d := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, today.Location())
	if d.After(today) {
		d = d.AddDate(-1, 0, 0)
	}
	return d, true
}

// resolveMonthDay handles "june 5", "5 june" and "5th of june". The day is
// read only from a number adjacent to the month name, so an amount
// elsewhere in the utterance cannot become the day. A month with no
// adjacent day resolves to the first of that month.
func resolveMonthDay(lowered string, today time.Time) (time.Time, bool) {
	tokens := dateTokenPattern.FindAllString(lowered, -1)
	for i, tok := range tokens {
		month, ok := monthNames[tok]
		if !ok {
			continue
		}
		day := 1
		if d, ok := adjacentDay(tokens, i+1, 1); ok {
			day = d
		} else if d, ok := adjacentDay(tokens, i-1, -1); ok {
			day = d
		}
		d := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
		if d.After(today) {
			d = d.AddDate(-1, 0, 0)
		}
		return d, true
	}
	return time.Time{}, false
}

// adjacentDay reads a day-of-month token next to a month name, stepping
// over "the" and "of" so "5th of june" still pairs up.
func adjacentDay(tokens []string, i, step int) (int, bool) {
	for ; i >= 0 && i < len(tokens); i += step {
		switch tokens[i] {
		case "the", "of":
			continue
		}
		m := dayTokenPattern.FindStringSubmatch(tokens[i])
		if m == nil {
			return 0, false
		}
		d, _ := strconv.Atoi(m[1])
		if d < 1 || d > 31 {
			return 0, false
		}
		return d, true
	}
	return 0, false
}

// resolveOrdinal handles a bare "on the 15th": the current month, rolling
// back one month when the day has not happened yet.
func resolveOrdinal(lowered string, today time.Time) (time.Time, bool) {
	m := ordinalDatePattern.FindStringSubmatch(lowered)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location())
	if d.After(today) {
		d = d.AddDate(0, -1, 0)
	}
	return d, true
}

// resolveWeekday maps a weekday name to the most recent such day strictly
// in the past, unless "next" precedes it. The first weekday mentioned in
// the text wins when there are several.
func resolveWeekday(lowered string, today time.Time) (time.Time, bool) {
	for _, name := range wordTokenPattern.FindAllString(lowered, -1) {
		wd, ok := weekdayNames[name]
		if !ok {
			continue
		}
		if strings.Contains(lowered, "next "+name) {
			delta := (int(wd) - int(today.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7
			}
			return today.AddDate(0, 0, delta), true
		}
		delta := (int(today.Weekday()) - int(wd) + 7) % 7
		if delta == 0 {
			delta = 7
		}
		return today.AddDate(0, 0, -delta), true
	}
	return time.Time{}, false
}
