// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Precision of score and popularity columns: DECIMAL(5,2).
const (
	DecimalMaxDigits = 5
	DecimalPlaces    = 2
)

// Decimal parse errors.
var (
	ErrDecimalSyntax = errors.New("not a valid decimal number")
	ErrDecimalPlaces = fmt.Errorf("more than %d decimal places", DecimalPlaces)
	ErrDecimalDigits = fmt.Errorf("more than %d digits before the decimal point", DecimalMaxDigits-DecimalPlaces)
)

// Decimal is a fixed precision number rendered with exactly two fractional
// digits ("8.80"). The zero value is 0.00.
type Decimal struct {
	d decimal.Decimal
}

// ParseDecimal parses s and enforces DECIMAL(5,2) precision. Trailing zeros
// count as written: "8.800" has three decimal places and is rejected.
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, ErrDecimalSyntax
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, ErrDecimalSyntax
	}

	if places := -d.Exponent(); places > DecimalPlaces {
		return Decimal{}, ErrDecimalPlaces
	}

	limit := decimal.New(1, DecimalMaxDigits-DecimalPlaces)
	if d.Abs().GreaterThanOrEqual(limit) {
		return Decimal{}, ErrDecimalDigits
	}

	return Decimal{d: d}, nil
}

// MustDecimal is ParseDecimal that panics on error. Intended for tests and constants.
func MustDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(fmt.Sprintf("models.MustDecimal(%q): %v", s, err))
	}
	return d
}

// String returns the value with two fractional digits.
func (d Decimal) String() string {
	return d.d.StringFixed(DecimalPlaces)
}

// Equal reports whether d and other are numerically equal.
func (d Decimal) Equal(other Decimal) bool {
	return d.d.Equal(other.d)
}

// MarshalJSON renders the value as a JSON string ("8.80").
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a JSON string or a JSON number.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseDecimal(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer. The database casts the text to DECIMAL(5,2).
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner for text, float and integer columns.
func (d *Decimal) Scan(src any) error {
	var (
		parsed decimal.Decimal
		err    error
	)

	switch v := src.(type) {
	case nil:
		*d = Decimal{}
		return nil
	case string:
		parsed, err = decimal.NewFromString(v)
	case []byte:
		parsed, err = decimal.NewFromString(string(v))
	case float64:
		parsed = decimal.NewFromFloat(v)
	case int64:
		parsed = decimal.NewFromInt(v)
	default:
		return fmt.Errorf("cannot scan %T into Decimal", src)
	}
	if err != nil {
		return fmt.Errorf("failed to scan decimal: %w", err)
	}

	d.d = parsed.Round(DecimalPlaces)
	return nil
}
