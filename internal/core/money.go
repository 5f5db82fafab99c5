// Package core provides money parsing and handling utilities.
//
// Amounts are kept as signed integer cents so that sums over any number of
// rows are exact.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a signed decimal string to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional sign and an optional trailing currency marker. When both
// separators appear the last one is the decimal mark and the other groups
// thousands; a single separator repeated is grouping only.
//
// Examples:
//
//	ParseAmount("-47.83") -> -4783
//	ParseAmount("25,00 €") -> 2500
//	ParseAmount("12.345") -> 1235
//	ParseAmount("1.234,56 €") -> 123456
//	ParseAmount("1,234,567") -> 123456700
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "€"))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	normalized, err := normalizeAmount(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Round(2).Shift(2)
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return Money{Cents: cents.IntPart()}, nil
}

const maxCents = (1<<63 - 1) / 100

// normalizeAmount rewrites s with grouping removed and a dot decimal mark.
func normalizeAmount(s string) (string, error) {
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	mark := max(lastDot, lastComma)
	if mark < 0 {
		return s, nil
	}
	sep := s[mark]
	if lastDot < 0 || lastComma < 0 {
		if strings.Count(s, string(sep)) == 1 {
			return s[:mark] + "." + s[mark+1:], nil
		}
		return ungroup(s, sep)
	}
	group := byte('.')
	if sep == '.' {
		group = ','
	}
	whole, err := ungroup(s[:mark], group)
	if err != nil {
		return "", err
	}
	return whole + "." + s[mark+1:], nil
}

// ungroup strips the group separator from an integer part, requiring
// three digits in every group after the first.
func ungroup(s string, group byte) (string, error) {
	parts := strings.Split(s, string(group))
	lead := strings.TrimLeft(parts[0], "+-")
	if len(lead) == 0 || len(lead) > 3 || strings.ContainsAny(lead, ".,") {
		return "", errors.New("bad digit grouping")
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || strings.ContainsAny(p, ".,") {
			return "", errors.New("bad digit grouping")
		}
	}
	return strings.Join(parts, ""), nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Neg() Money        { return Money{Cents: -m.Cents} }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

func (m Money) IsZero() bool { return m.Cents == 0 }

// String renders the amount with two decimals and a leading minus for
// negative values, e.g. "-47.83".
func (m Money) String() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Decimal exposes the amount as an exact decimal for interop.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}
