package jackpot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_TruncatesAtMarkerWord(t *testing.T) {
	value, verdict, err := Normalize("5 000 000 лева")
	require.NoError(t, err)
	assert.Equal(t, "5 000 000 лв.", value)
	assert.Equal(t, WithinRange, verdict)
}

func TestNormalize_MarkerTrailingTextDiscarded(t *testing.T) {
	value, _, err := Normalize("5 000 000 лева за тираж 42 от неделя")
	require.NoError(t, err)
	assert.Equal(t, "5 000 000 лв.", value)
	assert.NotContains(t, value, "тираж")
}

func TestNormalize_CollapsesIrregularWhitespace(t *testing.T) {
	value, _, err := Normalize("  3   500   000   лева  ")
	require.NoError(t, err)
	assert.Equal(t, "3 500 000 лв.", value)
}

func TestNormalize_TabsAndNewlines(t *testing.T) {
	value, _, err := Normalize("2\t000\n000 лева")
	require.NoError(t, err)
	assert.Equal(t, "2 000 000 лв.", value)
}

func TestNormalize_MarkerAbsentIsNotAnError(t *testing.T) {
	value, verdict, err := Normalize("4 000 000")
	require.NoError(t, err)
	assert.Equal(t, "4 000 000 лв.", value)
	assert.Equal(t, WithinRange, verdict)
}

func TestNormalize_SuffixAppendedExactlyOnce(t *testing.T) {
	first, _, err := Normalize("5 000 000 лева")
	require.NoError(t, err)

	// Feeding a canonical value back through must not double the suffix.
	second, _, err := Normalize(first)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(second, "лв."))
}

func TestNormalize_EmptyInput(t *testing.T) {
	_, _, err := Normalize("")
	require.Error(t, err)

	var normErr *Error
	require.ErrorAs(t, err, &normErr)
	assert.Equal(t, KindEmptyInput, normErr.Kind)
}

func TestNormalize_NoDigits(t *testing.T) {
	for _, raw := range []string{"джакпот лева", "   ", "лева something"} {
		_, _, err := Normalize(raw)
		require.Error(t, err, "input %q", raw)

		var normErr *Error
		require.ErrorAs(t, err, &normErr)
		assert.Equal(t, KindNoDigits, normErr.Kind)
	}
}

func TestNormalize_Verdicts(t *testing.T) {
	tests := []struct {
		raw    string
		expect Verdict
	}{
		{"5 000 000 лева", WithinRange},
		{"1 000 лева", WithinRange},
		{"999 лева", SuspiciouslyLow},
		{"12 лева", SuspiciouslyLow},
		{"100 000 000 лева", WithinRange},
		{"999 000 000 лева", SuspiciouslyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, verdict, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, verdict)
		})
	}
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "within-range", WithinRange.String())
	assert.Equal(t, "suspiciously-low", SuspiciouslyLow.String())
	assert.Equal(t, "suspiciously-high", SuspiciouslyHigh.String())
}
