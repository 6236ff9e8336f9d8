// Package core provides the domain types and row normalization for the
// spend aggregation pipeline.
//
// This file contains parsing of monetary amounts from query literals.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a decimal literal to a float64 amount.
//
// It accepts both dot (3.50) and comma (3,50) decimal separators and
// tolerates embedded spaces and non-breaking spaces. Every comma is
// translated to a dot before parsing, so thousands separators are not
// supported and such values are rejected. Returns ErrInvalidAmount for
// anything that does not parse to a finite number.
//
// Examples:
//
//	ParseAmount("3.50") -> 3.5, nil
//	ParseAmount("3,50") -> 3.5, nil
//	ParseAmount(" 12.00 ") -> 12.0, nil
//	ParseAmount("N/A") -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
