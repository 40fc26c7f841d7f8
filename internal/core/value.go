// Package core holds the domain types shared by the ledger and shift
// components: records, time entries, calendar dates and filter windows.
//
// This file contains parsing of monetary amounts from user input.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseValue converts a decimal string to a non-negative float64 amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns an error for invalid formats or negative values. Zero is allowed.
//
// Examples:
//
//	ParseValue("500")    -> 500, nil
//	ParseValue("12,34")  -> 12.34, nil
//	ParseValue("-5")     -> 0, ErrInvalidValue
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidValue
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidValue
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrInvalidValue
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidValue
	}
	return v, nil
}
