package id

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
)

var decimalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// DefaultDecimals is assumed when a token's decimals() cannot be read.
const DefaultDecimals = 18

// NormalizeAmount converts either a base-unit integer string or a
// human-decimal string into canonical (baseUnits, decimal) forms at the given
// token decimals. Exactly one of the two inputs must be set.
func NormalizeAmount(baseUnits, decimal string, decimals int) (string, string, error) {
	if baseUnits != "" && decimal != "" {
		return "", "", clierr.New(clierr.CodeUsage, "use either --amount or --amount-decimal, not both")
	}
	if baseUnits == "" && decimal == "" {
		return "", "", clierr.New(clierr.CodeUsage, "amount is required")
	}
	if decimals < 0 {
		return "", "", clierr.New(clierr.CodeUsage, "decimals must be >= 0")
	}

	if baseUnits != "" {
		n, ok := new(big.Int).SetString(baseUnits, 10)
		if !ok || n.Sign() < 0 {
			return "", "", clierr.New(clierr.CodeValidation, "--amount must be a non-negative integer string")
		}
		return baseUnits, formatDecimal(baseUnits, decimals), nil
	}

	if !decimalPattern.MatchString(decimal) {
		return "", "", clierr.New(clierr.CodeValidation, "--amount-decimal must be in decimal form like 1.23")
	}
	base, err := decimalToBaseUnits(decimal, decimals)
	if err != nil {
		return "", "", err
	}
	return base, normalizeDecimal(decimal), nil
}

// ValidatePositiveDecimal checks the textual form alone: well-formed decimal
// with at least one nonzero digit. It needs no token decimals, so it can run
// before any on-chain metadata read.
func ValidatePositiveDecimal(decimal string) error {
	if !decimalPattern.MatchString(decimal) {
		return clierr.New(clierr.CodeValidation, "amount must be in decimal form like 1.23")
	}
	if !strings.ContainsAny(decimal, "123456789") {
		return clierr.New(clierr.CodeValidation, "amount must be strictly positive")
	}
	return nil
}

// ParsePositiveAmount is the pipeline entry check: the amount must normalize
// to a strictly positive base-unit value before any approval or swap.
func ParsePositiveAmount(decimal string, decimals int) (*big.Int, error) {
	base, _, err := NormalizeAmount("", decimal, decimals)
	if err != nil {
		return nil, err
	}
	n, _ := new(big.Int).SetString(base, 10)
	if n == nil || n.Sign() <= 0 {
		return nil, clierr.New(clierr.CodeValidation, "amount must be strictly positive")
	}
	return n, nil
}

func formatDecimal(baseUnits string, decimals int) string {
	n := new(big.Int)
	n.SetString(baseUnits, 10)
	if decimals == 0 {
		return n.String()
	}

	s := n.String()
	if len(s) <= decimals {
		pad := strings.Repeat("0", decimals-len(s)+1)
		s = pad + s
	}
	intPart := s[:len(s)-decimals]
	fracPart := s[len(s)-decimals:]
	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func decimalToBaseUnits(decimal string, decimals int) (string, error) {
	parts := strings.SplitN(decimal, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > decimals {
		return "", clierr.New(clierr.CodeValidation, fmt.Sprintf("decimal precision exceeds token decimals (%d)", decimals))
	}

	fracPart = fracPart + strings.Repeat("0", decimals-len(fracPart))
	combined := intPart + fracPart
	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		return "0", nil
	}
	if _, ok := new(big.Int).SetString(combined, 10); !ok {
		return "", clierr.New(clierr.CodeValidation, "invalid decimal amount")
	}
	return combined, nil
}

func normalizeDecimal(v string) string {
	if !strings.Contains(v, ".") {
		out := strings.TrimLeft(v, "0")
		if out == "" {
			return "0"
		}
		return out
	}
	parts := strings.SplitN(v, ".", 2)
	intPart := strings.TrimLeft(parts[0], "0")
	if intPart == "" {
		intPart = "0"
	}
	fracPart := strings.TrimRight(parts[1], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// FormatDecimal converts base-unit integer strings into decimal display
// strings. Display conversion happens only at the output boundary.
func FormatDecimal(baseUnits string, decimals int) string {
	return formatDecimal(baseUnits, decimals)
}
