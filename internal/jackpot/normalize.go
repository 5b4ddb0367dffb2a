// Package jackpot turns raw text scraped from the lottery page into a
// canonical, currency-suffixed display value and classifies its magnitude
// against plausibility bounds.
package jackpot

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// markerWord is the informal plural currency word on the page; the
	// value ends where the word begins.
	markerWord = "лева"
	// currencySuffix ends every canonical value.
	currencySuffix = "лв."

	// Plausibility bounds for the implied numeric magnitude. Values
	// outside produce an advisory verdict, never an error.
	lowBound  = 1_000
	highBound = 100_000_000
)

// Verdict classifies the magnitude of a canonical value. It is advisory
// only and never blocks delivery.
type Verdict int

const (
	WithinRange Verdict = iota
	SuspiciouslyLow
	SuspiciouslyHigh
)

func (v Verdict) String() string {
	switch v {
	case SuspiciouslyLow:
		return "suspiciously-low"
	case SuspiciouslyHigh:
		return "suspiciously-high"
	default:
		return "within-range"
	}
}

// Kind identifies why normalization rejected its input.
type Kind string

const (
	KindEmptyInput Kind = "empty-input"
	KindNoDigits   Kind = "no-digits"
)

// Error reports a normalization failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("jackpot: %s: %s", e.Kind, e.Message)
}

// Normalize converts raw page text into a canonical value.
//
// The text is truncated at the first occurrence of the currency marker
// word (its absence is fine), whitespace runs are collapsed to single
// spaces, and the currency suffix is appended exactly once. Input that is
// empty or yields no digit fails with a typed *Error; already-canonical
// input passes through without gaining a second suffix.
func Normalize(raw string) (string, Verdict, error) {
	if raw == "" {
		return "", WithinRange, &Error{Kind: KindEmptyInput, Message: "no text extracted from page"}
	}

	if idx := strings.Index(raw, markerWord); idx >= 0 {
		raw = raw[:idx]
	}

	value := strings.Join(strings.Fields(raw), " ")

	if !strings.HasSuffix(value, currencySuffix) {
		if value == "" {
			value = currencySuffix
		} else {
			value += " " + currencySuffix
		}
	}

	if !strings.ContainsAny(value, "0123456789") {
		return "", WithinRange, &Error{Kind: KindNoDigits, Message: fmt.Sprintf("no digits in %q", value)}
	}

	return value, classify(value), nil
}

// classify strips everything but digits and decimal separators, parses the
// remainder and compares it against the plausibility bounds. A remainder
// that does not parse is treated as within range: the digit-presence check
// already guaranteed the value carries content.
func classify(value string) Verdict {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}

	magnitude, err := strconv.ParseFloat(strings.ReplaceAll(b.String(), ",", "."), 64)
	if err != nil {
		return WithinRange
	}

	switch {
	case magnitude < lowBound:
		return SuspiciouslyLow
	case magnitude > highBound:
		return SuspiciouslyHigh
	default:
		return WithinRange
	}
}
