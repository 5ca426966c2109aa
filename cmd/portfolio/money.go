package main

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatMoney renders amount in currency using its usual symbol and
// separators. Codes unknown to the currency table, crypto quotes mostly, fall
// back to "<amount> <CODE>".
func formatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(currency)
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// formatSigned prefixes non-negative amounts with "+".
func formatSigned(amount decimal.Decimal, currency string) string {
	s := formatMoney(amount, currency)
	if !amount.IsNegative() {
		return "+" + s
	}
	return s
}

func formatPercent(p decimal.Decimal) string {
	s := p.StringFixed(2) + "%"
	if !p.IsNegative() {
		return "+" + s
	}
	return s
}
