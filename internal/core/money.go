// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and display representations. All arithmetic
// on amounts stays in integer cents.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseScaled(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseNonNegativeCents is ParseDecimalToCents with zero allowed. Cost fields
// that may legitimately be empty (fuel with no fill-up, tax-free receipts)
// parse through here.
func ParseNonNegativeCents(s string) (int64, error) {
	return parseScaled(s)
}

// ParseHoursToHundredths converts a decimal hour string ("8.5", "7,25") to
// hundredths of an hour. Hours must be positive.
func ParseHoursToHundredths(s string) (int64, error) {
	v, err := parseScaled(s)
	if err != nil {
		return 0, ErrInvalidHours
	}
	if v <= 0 {
		return 0, ErrInvalidHours
	}
	return v, nil
}

// parseScaled parses a non-negative decimal string into an integer scaled by
// 100, rounding half-up on the third decimal place. Signs are rejected.
func parseScaled(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracScaled int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracScaled = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracScaled += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracScaled++
				}
			}
		}
	}
	return iv*100 + fracScaled, nil
}

// LaborCost multiplies worked hours by an hourly pay rate, rounding half-up
// to the nearest cent. 8.00h at 25.00/h yields exactly 20000 cents.
func LaborCost(h Hours, rate Money) Money {
	return Money{Cents: (h.Hundredths*rate.Cents + 50) / 100}
}

// FormatCents renders cents as a plain decimal string with two places.
// Used for CSV export and logging, never for arithmetic.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

// Float returns the amount as a float64 for display purposes.
// Note: Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return FormatCents(m.Cents)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return formatScaledJSON(m.Cents), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := parseScaledJSON(data)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = v
	return nil
}

// formatScaledJSON renders a scaled-by-100 integer as a JSON number literal
// with two decimal places, e.g. 1234 -> 12.34.
func formatScaledJSON(v int64) []byte {
	return []byte(FormatCents(v))
}

// parseScaledJSON accepts a JSON number or a quoted decimal string and
// returns the value scaled by 100. Null parses as zero.
func parseScaledJSON(data []byte) (int64, error) {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0, nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return parseScaled(s)
}
