package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a form price into a finite, non-negative amount.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: price is required", ErrValidation)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price %q is not a number", ErrValidation, raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	// Prices are stored as float64.
	if f, _ := price.Float64(); math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: price %q is out of range", ErrValidation, raw)
	}
	return price, nil
}
