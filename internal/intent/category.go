package intent

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// categorySynonyms maps each canonical category to the spoken terms that
// resolve to it. The first entry of every list is the canonical name
// itself, so resolution is idempotent. Terms must be unique across
// categories; buildCategoryTables panics on overlap so an ambiguous
// addition fails at startup instead of resolving by table order.
var categorySynonyms = map[string][]string{
	"food": {
		"food", "meal", "meals",
		"lunch", "dinner", "breakfast",
		"snack", "snacks",
		"restaurant", "restaurants",
		"groceries", "grocery",
		"coffee", "tea",
		"drink", "drinks",
	},
	"transport": {
		"transport", "travel",
		"taxi", "cab", "uber", "ola",
		"bus", "train", "metro", "ride", "rides",
		"petrol", "diesel", "fuel", "gas", "commute",
	},
	"entertainment": {
		"entertainment", "movie", "movies",
		"netflix", "prime", "hotstar", "ott",
		"show", "shows", "concert",
		"gaming", "game", "games", "fun",
	},
	"shopping": {
		"shopping", "amazon", "mall", "purchase", "purchases",
		"bought", "buy", "buying", "retail", "clothes", "clothing", "apparel",
	},
	"utilities": {
		"utility", "utilities",
		"electricity", "power", "water",
		"internet", "wifi", "broadband",
		"phone", "mobile", "recharge", "bill", "bills",
	},
	"health": {
		"health", "doctor", "hospital",
		"medical", "medicine", "medicines",
		"pharmacy", "clinic", "fitness", "gym",
	},
	"education": {
		"education", "study", "studies",
		"course", "courses", "tuition",
		"class", "classes", "training", "book", "books",
	},
	"rent": {
		"rent", "renting", "lease",
		"housing", "house", "apartment", "flat",
	},
	"savings": {
		"savings", "investment", "invest", "investing",
		"mutual fund", "fixed deposit", "fd", "rd", "sip",
	},
	"personal": {
		"personal", "care", "salon",
		"beauty", "spa", "grooming",
	},
	"gifts": {
		"gift", "gifts", "present", "presents",
	},
	"charity": {
		"charity", "donation", "donations",
	},
	"insurance": {
		"insurance", "premium", "policy",
	},
	"fees": {
		"fee", "fees", "subscription", "subscriptions",
	},
}

type categoryKeyword struct {
	term      string
	canonical string
}

var (
	// Longest term first so "mutual fund" wins over "fund"-like substrings.
	categoryKeywords []categoryKeyword
	// Per-category regexp removing that category's terms from a phrase.
	categoryTermStrip map[string]*regexp.Regexp

	categoryPhrasePattern = regexp.MustCompile(`(?:\bto\b|\bon\b|\bfor\b|\bunder\b)\s+([a-z0-9 '&/-]+)`)
	nonAlnumPattern       = regexp.MustCompile(`[^a-z0-9\s]`)
	punctPattern          = regexp.MustCompile(`[^A-Za-z0-9\s]`)
	spaceRunPattern       = regexp.MustCompile(`\s+`)
)

func init() {
	buildCategoryTables()
}

func buildCategoryTables() {
	seen := make(map[string]string)
	categoryTermStrip = make(map[string]*regexp.Regexp, len(categorySynonyms))
	for canonical, terms := range categorySynonyms {
		escaped := make([]string, 0, len(terms))
		for _, term := range terms {
			term = strings.TrimSpace(strings.ToLower(term))
			if term == "" {
				continue
			}
			if prev, dup := seen[term]; dup && prev != canonical {
				panic(fmt.Sprintf("intent: category term %q maps to both %q and %q", term, prev, canonical))
			}
			seen[term] = canonical
			categoryKeywords = append(categoryKeywords, categoryKeyword{term: term, canonical: canonical})
			escaped = append(escaped, regexp.QuoteMeta(term))
		}
		sort.Slice(escaped, func(i, j int) bool { return len(escaped[i]) > len(escaped[j]) })
		categoryTermStrip[canonical] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(escaped, "|") + `)\b`)
	}
	sort.SliceStable(categoryKeywords, func(i, j int) bool {
		if len(categoryKeywords[i].term) != len(categoryKeywords[j].term) {
			return len(categoryKeywords[i].term) > len(categoryKeywords[j].term)
		}
		return categoryKeywords[i].term < categoryKeywords[j].term
	})
}

// categoryFromText resolves a fragment to a canonical category, or ""
// when no known term appears.
func categoryFromText(fragment string) string {
	cleaned := nonAlnumPattern.ReplaceAllString(strings.ToLower(fragment), " ")
	cleaned = strings.TrimSpace(spaceRunPattern.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return ""
	}
	padded := " " + cleaned + " "
	for _, kw := range categoryKeywords {
		if strings.Contains(padded, " "+kw.term+" ") {
			return kw.canonical
		}
	}
	return ""
}

// stripKnownTerms removes the category's own terms and any date words from
// a phrase, leaving free text usable as a description.
func stripKnownTerms(phrase, category string) string {
	cleaned := phrase
	if re, ok := categoryTermStrip[category]; ok {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	cleaned = dateTokenStrip.ReplaceAllString(cleaned, " ")
	cleaned = punctPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(spaceRunPattern.ReplaceAllString(cleaned, " "))
}

// extractCategoryAndDescription looks for a category after a connector
// preposition first ("add 200 to office lunch" resolves food and keeps
// "office" as description), then anywhere in the text. lower and raw are
// the same text; the raw form preserves the user's casing for the
// description.
func extractCategoryAndDescription(lower, raw string) (string, string) {
	for _, m := range categoryPhrasePattern.FindAllStringSubmatchIndex(lower, -1) {
		if m[2] < 0 {
			continue
		}
		phrase := strings.TrimSpace(lower[m[2]:m[3]])
		category := categoryFromText(phrase)
		if category == "" {
			continue
		}
		start, end := m[2], m[3]
		if end > len(raw) {
			start, end = 0, 0
		}
		description := ""
		if end > start {
			description = stripKnownTerms(raw[start:end], category)
		}
		return category, description
	}
	if category := categoryFromText(lower); category != "" {
		return category, ""
	}
	return CategoryFallback, ""
}
