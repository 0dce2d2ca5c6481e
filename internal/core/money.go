// Package core provides the ledger domain types and value parsing.
//
// This file contains the amount parsers for localized currency strings
// (R$ 1.234,56) and raw spreadsheet numbers, plus a display formatter.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for amounts (centavos).
const AmountPlaces = 2

const currencyPrefix = "R$"

// ParseAmount converts a Brazilian-formatted currency string to a decimal.
//
// The currency prefix and thousands separators are removed and the decimal
// comma becomes a point. Anything that still fails to parse yields zero and
// ok=false; callers treat that as a degraded value, not an error.
//
// Examples:
//
//	ParseAmount("R$ 1.234,56") -> 1234.56, true
//	ParseAmount("-45,9")       -> -45.90, true
//	ParseAmount("abc")         -> 0, false
//	ParseAmount("")            -> 0, false
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, currencyPrefix, "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(AmountPlaces), true
}

// ParseRawAmount parses an amount stored as a plain number, as found in
// numeric spreadsheet cells ("1234.5", "1.2e3"). No separator rewriting is
// applied, so a numeric cell is never reinterpreted as a localized string.
func ParseRawAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Round(AmountPlaces), true
}

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(AmountPlaces)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
