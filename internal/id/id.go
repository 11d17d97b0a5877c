package id

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
)

var evmAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether input is a 0x-prefixed 20-byte hex address.
func ValidAddress(input string) bool {
	return evmAddressPattern.MatchString(strings.TrimSpace(input))
}

// ParseAddress validates and canonicalizes a token or contract address.
// Equality between parsed addresses is case-insensitive by construction.
func ParseAddress(input string) (common.Address, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return common.Address{}, clierr.New(clierr.CodeValidation, "address is required")
	}
	if !evmAddressPattern.MatchString(raw) {
		return common.Address{}, clierr.New(clierr.CodeValidation, fmt.Sprintf("invalid address %q: expected 0x-prefixed 40 hex chars", input))
	}
	return common.HexToAddress(raw), nil
}

// ParseTokenPair validates both token addresses and rejects identical tokens.
func ParseTokenPair(tokenA, tokenB string) (common.Address, common.Address, error) {
	a, err := ParseAddress(tokenA)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b, err := ParseAddress(tokenB)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if a == b {
		return common.Address{}, common.Address{}, clierr.New(clierr.CodeValidation, "token addresses must be distinct")
	}
	return a, b, nil
}
