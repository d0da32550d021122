package intent

import "errors"

// Number-word grammar for spoken amounts. Indian scales (lakh) sit beside
// the western ones because the tracker targets en-IN transcripts.

var numberWordTokens = map[string]struct{}{
	"zero": {}, "one": {}, "two": {}, "three": {}, "four": {}, "five": {},
	"six": {}, "seven": {}, "eight": {}, "nine": {}, "ten": {},
	"eleven": {}, "twelve": {}, "thirteen": {}, "fourteen": {}, "fifteen": {},
	"sixteen": {}, "seventeen": {}, "eighteen": {}, "nineteen": {}, "twenty": {},
	"thirty": {}, "forty": {}, "fifty": {}, "sixty": {}, "seventy": {}, "eighty": {}, "ninety": {},
	"hundred": {}, "thousand": {}, "lakh": {}, "lakhs": {},
	"million": {}, "billion": {}, "trillion": {},
	"point": {}, "and": {}, "minus": {}, "negative": {},
}

var unitWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tenWords = map[string]float64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scaleWords = map[string]float64{
	"thousand": 1e3, "lakh": 1e5, "lakhs": 1e5,
	"million": 1e6, "billion": 1e9, "trillion": 1e12,
}

var digitWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var errNotANumber = errors.New("not a number phrase")

// wordsToNumber evaluates a run of number words, e.g. ["two","hundred"]
// or ["one","thousand","five","hundred"]. "and" is filler ("one hundred
// and five"), "point" switches to digit-by-digit decimals, and a leading
// minus or negative flips the sign. A run carrying only filler tokens is
// rejected.
func wordsToNumber(tokens []string) (float64, error) {
	i := 0
	neg := false
	for i < len(tokens) && (tokens[i] == "minus" || tokens[i] == "negative") {
		neg = true
		i++
	}

	var total, current float64
	seen := false
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case tok == "and":
			continue
		case tok == "point":
			frac, err := decimalDigits(tokens[i+1:])
			if err != nil {
				return 0, err
			}
			v := total + current + frac
			if neg {
				v = -v
			}
			return v, nil
		case tok == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
			seen = true
		default:
			if scale, ok := scaleWords[tok]; ok {
				if current == 0 {
					current = 1
				}
				total += current * scale
				current = 0
				seen = true
			} else if v, ok := unitWords[tok]; ok {
				current += v
				seen = true
			} else if v, ok := tenWords[tok]; ok {
				current += v
				seen = true
			} else {
				return 0, errNotANumber
			}
		}
	}
	if !seen {
		return 0, errNotANumber
	}
	v := total + current
	if neg {
		v = -v
	}
	return v, nil
}

// decimalDigits reads the digit words after "point", one decimal place each.
func decimalDigits(tokens []string) (float64, error) {
	var frac, place float64
	place = 0.1
	seen := false
	for _, tok := range tokens {
		d, ok := digitWords[tok]
		if !ok {
			return 0, errNotANumber
		}
		frac += d * place
		place /= 10
		seen = true
	}
	if !seen {
		return 0, errNotANumber
	}
	return frac, nil
}
