// Package currency formats catalog amounts for display. Prices are stored in
// West African CFA francs; euro amounts are converted at the fixed peg.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	dErrors "teranga/pkg/domain-errors"
)

type Code string

const (
	XOF Code = "XOF"
	EUR Code = "EUR"
)

// EURRate is the fixed XOF per EUR parity.
var EURRate = decimal.RequireFromString("655.957")

const (
	groupSeparator = "\u202f"
	symbolSpacer   = "\u00a0"
)

// ParseCode accepts XOF or EUR in any case. Empty defaults to XOF.
func ParseCode(s string) (Code, error) {
	switch Code(strings.ToUpper(strings.TrimSpace(s))) {
	case "", XOF:
		return XOF, nil
	case EUR:
		return EUR, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "currency must be XOF or EUR")
}

// Convert turns an XOF amount into code, unrounded.
func Convert(amountXOF decimal.Decimal, code Code) decimal.Decimal {
	if code == EUR {
		return amountXOF.Div(EURRate)
	}
	return amountXOF
}

// Format renders an XOF amount in code using fr-FR conventions: narrow
// no-break space thousands grouping, no fraction digits, trailing symbol.
// 1 500 000 XOF formats as "1 500 000 F CFA"; in EUR as "2 287 €".
func Format(amountXOF decimal.Decimal, code Code) string {
	v := Convert(amountXOF, code).Round(0)
	neg := v.IsNegative()
	digits := v.Abs().StringFixed(0)

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(groupSeparator)
		b.WriteString(digits[i : i+3])
	}
	b.WriteString(symbolSpacer)
	b.WriteString(symbol(code))
	return b.String()
}

func symbol(code Code) string {
	if code == EUR {
		return "€"
	}
	return "F\u00a0CFA"
}
