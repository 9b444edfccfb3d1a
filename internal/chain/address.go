// Package chain holds the pure helpers that tie the donation pipeline to the
// target chain: input grammar validators and the single base-unit conversion
// boundary.
package chain

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	amountPattern  = regexp.MustCompile(`^\d+\.?\d*$`)
)

// IsWellFormedAddress reports whether s matches the account address grammar:
// the 0x prefix followed by exactly 40 hex digits, any case. No checksum
// validation beyond the grammar.
func IsWellFormedAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IsPositiveAmount reports whether s is a plain decimal number strictly
// greater than zero. Scientific notation, signs, and empty strings are all
// rejected by the grammar before the value is even parsed.
func IsPositiveAmount(s string) bool {
	if !amountPattern.MatchString(s) {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.IsPositive()
}
