package intent

import "testing"

func TestExtractNumericAmount(t *testing.T) {
	cases := []struct {
		text string
		want float64
		none bool
	}{
		{text: "add 5000 to food", want: 5000},
		{text: "add 5 000 to food", want: 5000},
		{text: "add ₹10,000 to transport", want: 10000},
		{text: "1200 rs for snacks", want: 1200},
		{text: "spent 45.50 on coffee", want: 45.5},
		{text: "paid -200 for refund entry", want: -200},
		// A number with no currency and no context word nearby is noise.
		{text: "i counted 37 pigeons", none: true},
		{text: "there is nothing numeric here", none: true},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got := extractNumericAmount(tc.text)
			if tc.none {
				if got != nil {
					t.Fatalf("got %v, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("got nil, want %v", tc.want)
			}
			if *got != tc.want {
				t.Fatalf("got %v, want %v", *got, tc.want)
			}
		})
	}
}

func TestExtractNumericAmountBareFallback(t *testing.T) {
	// "call 100 people" has a number but no amount context; the spend verb
	// variant licenses it.
	if got := extractNumericAmount("call 100 people"); got != nil {
		t.Fatalf("got %v, want nil", *got)
	}
	got := extractNumericAmount("spent 100 today")
	if got == nil || *got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
}

func TestExtractWordAmount(t *testing.T) {
	cases := []struct {
		text string
		want float64
		none bool
	}{
		{text: "add two hundred to food", want: 200},
		{text: "spent one thousand five hundred on rent", want: 1500},
		{text: "record one lakh for savings", want: 100000},
		{text: "log twenty five for coffee", want: 25},
		// Number words with no amount context around them stay untouched.
		{text: "one of them was late", none: true},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got := extractWordAmount(tc.text)
			if tc.none {
				if got != nil {
					t.Fatalf("got %v, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("got nil, want %v", tc.want)
			}
			if *got != tc.want {
				t.Fatalf("got %v, want %v", *got, tc.want)
			}
		})
	}
}

func TestExtractAmountPrefersDigits(t *testing.T) {
	got := extractAmount("add 300 not three hundred to food")
	if got == nil || *got != 300 {
		t.Fatalf("got %v, want 300", got)
	}
}

func TestHasAmountContext(t *testing.T) {
	if !hasAmountContext("add 200", true) {
		t.Fatal("expected context for spend verb")
	}
	if !hasAmountContext("₹", true) {
		t.Fatal("expected context for currency symbol")
	}
	if hasAmountContext("to", false) {
		t.Fatal("connector alone must not count without connectors")
	}
	if !hasAmountContext("to", true) {
		t.Fatal("connector must count with connectors")
	}
	if hasAmountContext("pigeons everywhere", true) {
		t.Fatal("unexpected context")
	}
}
