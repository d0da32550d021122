package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Transcripts contain digits that are not money ("call 100 people"), so a
// number only counts as an amount when a currency marker or a spend-ish word
// appears near it. Connector prepositions are accepted for digit matches but
// not for spelled-out numbers, which would otherwise fire on phrases like
// "one of them".
var amountContextWords = map[string]struct{}{
	"add": {}, "added": {}, "adding": {},
	"amount": {}, "cost": {}, "expense": {},
	"log": {}, "logged": {}, "logging": {},
	"pay": {}, "paid": {}, "paying": {},
	"purchase": {}, "purchased": {},
	"record": {}, "recorded": {}, "recording": {},
	"set": {}, "spend": {}, "spending": {}, "spent": {},
	"to": {}, "for": {}, "on": {}, "under": {},
}

var connectorWords = map[string]struct{}{
	"to": {}, "for": {}, "on": {}, "under": {},
}

var currencyWords = map[string]struct{}{
	"₹": {}, "rs": {}, "rs.": {}, "rupee": {}, "rupees": {}, "inr": {},
	"$": {}, "usd": {}, "dollar": {}, "dollars": {}, "bucks": {},
	"€": {}, "euro": {}, "euros": {},
	"£": {}, "pound": {}, "pounds": {},
}

var (
	// Optional currency marker, then digits with optional thousands
	// separators. A space separator covers speech engines that render
	// "five thousand" as "5 000".
	amountPattern = regexp.MustCompile(`(?:₹|rs\.?|rupees?|inr|usd|dollars?|bucks|euros?|pounds?|[$€£])?\s*(-?\d+(?:[,\s]\d{3})*(?:\.\d+)?)`)

	bareNumberPattern   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	contextTokenPattern = regexp.MustCompile(`[a-z₹$€£]+`)
)

// hasAmountContext reports whether the fragment contains a word or symbol
// that marks a nearby number as monetary.
func hasAmountContext(fragment string, includeConnectors bool) bool {
	for _, tok := range contextTokenPattern.FindAllString(strings.ToLower(fragment), -1) {
		if _, ok := amountContextWords[tok]; ok {
			if includeConnectors {
				return true
			}
			if _, conn := connectorWords[tok]; !conn {
				return true
			}
		}
		if _, ok := currencyWords[tok]; ok {
			return true
		}
	}
	return strings.ContainsAny(fragment, "₹$€£")
}

// window widens [start,end) by up to pad runes on each side, staying on
// rune boundaries.
func window(s string, start, end, pad int) string {
	for i := 0; i < pad && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(s[:start])
		start -= size
	}
	for i := 0; i < pad && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[start:end]
}

// extractNumericAmount finds the first digit sequence that is plausibly a
// monetary amount. Matches with an explicit currency marker are accepted
// outright; otherwise the surrounding text must contain a context word.
// A second, looser pass catches plain numbers such as "spent 250".
func extractNumericAmount(text string) *float64 {
	for _, m := range amountPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[2] < 0 {
			continue
		}
		matched := text[m[0]:m[1]]
		hasCurrency := false
		for _, tok := range contextTokenPattern.FindAllString(strings.ToLower(matched), -1) {
			if _, ok := currencyWords[tok]; ok {
				hasCurrency = true
				break
			}
		}
		if !hasCurrency && !hasAmountContext(window(text, m[0], m[1], 12), true) {
			continue
		}
		cleaned := strings.NewReplacer(",", "", " ", "").Replace(text[m[2]:m[3]])
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		return &v
	}

	for _, m := range bareNumberPattern.FindAllStringIndex(text, -1) {
		if !hasAmountContext(window(text, m[0], m[1], 10), true) {
			continue
		}
		v, err := strconv.ParseFloat(text[m[0]:m[1]], 64)
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}

// extractWordAmount handles spelled-out numbers ("two hundred", "one
// thousand five hundred"). It scans for the longest run of number words
// starting at each position, capped at seven tokens, and accepts the value
// only when an adjacent token or the surrounding text carries amount
// context. Connectors alone are not enough here.
func extractWordAmount(text string) *float64 {
	lower := strings.ToLower(text)
	spans := wordTokenPattern.FindAllStringIndex(lower, -1)
	if len(spans) == 0 {
		return nil
	}
	tokens := make([]string, len(spans))
	for i, sp := range spans {
		tokens[i] = lower[sp[0]:sp[1]]
	}

	const maxSpan = 7
	for i, tok := range tokens {
		if _, ok := numberWordTokens[tok]; !ok {
			continue
		}
		j := i
		for j < len(tokens) && j < i+maxSpan {
			if _, ok := numberWordTokens[tokens[j]]; !ok {
				break
			}
			j++
		}
		v, err := wordsToNumber(tokens[i:j])
		if err != nil {
			continue
		}
		prev, next := "", ""
		if i > 0 {
			prev = tokens[i-1]
		}
		if j < len(tokens) {
			next = tokens[j]
		}
		if hasAmountContext(prev, false) || hasAmountContext(next, false) {
			return &v
		}
		if hasAmountContext(window(lower, spans[i][0], spans[j-1][1], 10), false) {
			return &v
		}
	}
	return nil
}

var wordTokenPattern = regexp.MustCompile(`[a-z]+`)

// extractAmount prefers digits over spelled-out numbers; speech engines
// usually emit digits, so word forms are the fallback.
func extractAmount(text string) *float64 {
	if v := extractNumericAmount(text); v != nil {
		return v
	}
	return extractWordAmount(text)
}
