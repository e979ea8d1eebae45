package numeric

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// FormatUnits renders a raw base-unit quantity as a decimal string, dividing
// by 10^decimals only at this display boundary. The fractional part always
// carries at least one digit ("100.0", not "100") so amounts are unambiguous.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		raw = new(big.Int)
	}
	if decimals <= 0 {
		return raw.String()
	}
	s := raw.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		fracPart = "0"
	}
	return intPart + "." + fracPart
}

// ParseUnits converts a human decimal amount into a raw base-unit integer.
// Precision beyond the token's decimals is an error, never a silent truncation.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	clean := strings.TrimSpace(amount)
	if clean == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if decimals < 0 {
		return nil, fmt.Errorf("decimals must be >= 0")
	}
	if !decimalPattern.MatchString(clean) {
		return nil, fmt.Errorf("amount %q must be in decimal form like 1.23", amount)
	}
	parts := strings.SplitN(clean, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		fracPart = strings.TrimRight(fracPart, "0")
		if len(fracPart) > decimals {
			return nil, fmt.Errorf("amount precision exceeds token decimals (%d)", decimals)
		}
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))
	combined := strings.TrimLeft(intPart+fracPart, "0")
	if combined == "" {
		return new(big.Int), nil
	}
	out, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", amount)
	}
	return out, nil
}

// SlippageMinimum computes the minimum acceptable output for a balance at the
// given slippage tolerance: floor(balance * (10000 - bps) / 10000).
func SlippageMinimum(balance *big.Int, bps int64) *big.Int {
	if balance == nil || balance.Sign() <= 0 {
		return new(big.Int)
	}
	if bps < 0 {
		bps = 0
	}
	if bps > 10000 {
		bps = 10000
	}
	out := new(big.Int).Mul(balance, big.NewInt(10000-bps))
	return out.Div(out, big.NewInt(10000))
}
