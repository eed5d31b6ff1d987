package currency

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "teranga/pkg/domain-errors"
)

// plain swaps the typographic spaces for ASCII so expectations stay readable.
func plain(s string) string {
	return strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(s)
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		code   Code
		want   string
	}{
		{"xof grouping", 1_500_000, XOF, "1 500 000 F CFA"},
		{"xof small", 950, XOF, "950 F CFA"},
		{"xof zero", 0, XOF, "0 F CFA"},
		{"eur converted and rounded", 1_500_000, EUR, "2 287 €"},
		{"eur exact peg", 655_957, EUR, "1 000 €"},
		{"negative", -1_234_567, XOF, "-1 234 567 F CFA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, plain(Format(decimal.NewFromInt(tc.amount), tc.code)))
		})
	}
}

func TestFormatUsesNarrowNoBreakSpace(t *testing.T) {
	assert.Equal(t, "12\u202f000\u00a0F\u00a0CFA", Format(decimal.NewFromInt(12_000), XOF))
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode(" eur ")
	require.NoError(t, err)
	assert.Equal(t, EUR, code)

	code, err = ParseCode("")
	require.NoError(t, err)
	assert.Equal(t, XOF, code)

	_, err = ParseCode("USD")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
