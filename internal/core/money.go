// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Parsing, rounding to whole currency
// units and percentages go through shopspring/decimal so no float64 ever
// touches a stored amount.
package core

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// maxCents bounds parsed amounts so cents always fit an int64.
var maxCents = decimal.New(1, 17)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// Either dot or comma may be the decimal separator. When both appear the last
// one is the decimal separator and the other groups thousands. A lone comma
// followed by exactly three digits groups thousands, as in the "S/ 1,500"
// that FormatSoles prints. Anything else that mixes separators is rejected.
// The result is rounded half-up to two places. Signed and non-numeric input
// is rejected; zero is allowed.
//
// Examples:
//
//	ParseDecimalToCents("12.34")    -> 1234, nil
//	ParseDecimalToCents("12,34")    -> 1234, nil
//	ParseDecimalToCents("1,500")    -> 150000, nil
//	ParseDecimalToCents("1.500,50") -> 150050, nil
//	ParseDecimalToCents("1,50,0")   -> 0, ErrInvalidAmount
//	ParseDecimalToCents("-1")       -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	s, ok := normalizeSeparators(s)
	if !ok {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.IsNegative() || cents.GreaterThanOrEqual(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// normalizeSeparators rewrites s with a dot as the only decimal separator
// and no thousands separators.
func normalizeSeparators(s string) (string, bool) {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot < 0 && comma < 0:
		return s, true
	case comma < 0:
		return s, strings.Count(s, ".") == 1
	case dot < 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 != 3 {
			return strings.Replace(s, ",", ".", 1), true
		}
		return ungroup(s, ",")
	case dot > comma:
		whole, ok := ungroup(s[:dot], ",")
		return whole + s[dot:], ok
	default:
		whole, ok := ungroup(s[:comma], ".")
		return whole + "." + s[comma+1:], ok && strings.Count(s, ",") == 1
	}
}

// ungroup drops thousands separators, checking that every group after the
// first has exactly three characters.
func ungroup(s, sep string) (string, bool) {
	groups := strings.Split(s, sep)
	if n := len(groups[0]); n == 0 || n > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Units rounds the amount to whole currency units, half away from zero.
func (m Money) Units() int64 {
	return m.Decimal().Round(0).IntPart()
}

// String renders the amount with two decimals, e.g. "1234.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// Percent returns part/whole*100 rounded to one decimal place. ok is false
// when whole is zero, where the ratio is undefined.
func Percent(part, whole Money) (pct decimal.Decimal, ok bool) {
	if whole.Cents == 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(part.Cents).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole.Cents)).
		Round(1), true
}

// FormatSoles renders an amount as "S/ 1,234" without decimals. Negative
// amounts keep a leading minus sign.
func FormatSoles(m Money) string {
	units := m.Units()
	if units < 0 {
		return "-S/ " + humanize.Comma(-units)
	}
	return "S/ " + humanize.Comma(units)
}

// FormatSolesCompact renders amounts of a thousand or more as "S/ 1.2k".
func FormatSolesCompact(m Money) string {
	d := m.Decimal()
	if d.Abs().LessThan(decimal.NewFromInt(1000)) {
		return FormatSoles(m)
	}
	k := d.Abs().Div(decimal.NewFromInt(1000)).StringFixed(1) + "k"
	if d.IsNegative() {
		return "-S/ " + k
	}
	return "S/ " + k
}
