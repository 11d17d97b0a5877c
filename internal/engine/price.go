package engine

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
)

const feeDenominatorBps = 10_000

// EstimateOutput computes the expected output amount for swapping amountIn
// of inputToken against the pool snapshot, using the constant-product
// formula with the fee taken from the input side:
//
//	feeAdjusted = amountIn * (10000 - feeBps) / 10000
//	out         = feeAdjusted * reserveOut / (reserveIn + feeAdjusted)
//
// All arithmetic is integer base units; decimal display conversion happens
// only at the output boundary. The estimate is advisory: the contract
// computes the authoritative amount at execution time with the same formula.
func EstimateOutput(pool PoolState, inputToken common.Address, amountIn *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, clierr.New(clierr.CodeValidation, "input amount must be strictly positive")
	}

	var reserveIn, reserveOut *big.Int
	switch {
	case addressEqual(pool.Token0, inputToken):
		reserveIn, reserveOut = pool.Reserve0, pool.Reserve1
	case addressEqual(pool.Token1, inputToken):
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	default:
		return nil, clierr.New(clierr.CodePrice, fmt.Sprintf("token %s is not in the pool", inputToken.Hex()))
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, clierr.New(clierr.CodePrice, "insufficient liquidity in pool")
	}
	feeBps := pool.SwapFeeBps
	if feeBps == nil || feeBps.Sign() < 0 || feeBps.Cmp(big.NewInt(feeDenominatorBps)) >= 0 {
		return nil, clierr.New(clierr.CodePrice, "swap fee out of range")
	}

	feeAdjusted := new(big.Int).Mul(amountIn, new(big.Int).Sub(big.NewInt(feeDenominatorBps), feeBps))
	feeAdjusted.Quo(feeAdjusted, big.NewInt(feeDenominatorBps))

	numerator := new(big.Int).Mul(feeAdjusted, reserveOut)
	denominator := new(big.Int).Add(reserveIn, feeAdjusted)
	return numerator.Quo(numerator, denominator), nil
}

// ContractQuote asks the contract's own pricing view for the output amount,
// using the contract-read fee. The client estimate and the contract result
// must agree; the fee is never taken from caller input.
func ContractQuote(ctx context.Context, session *Session, pool PoolState, inputToken common.Address, amountIn *big.Int) (*big.Int, error) {
	var reserveIn, reserveOut *big.Int
	switch {
	case addressEqual(pool.Token0, inputToken):
		reserveIn, reserveOut = pool.Reserve0, pool.Reserve1
	case addressEqual(pool.Token1, inputToken):
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	default:
		return nil, clierr.New(clierr.CodePrice, fmt.Sprintf("token %s is not in the pool", inputToken.Hex()))
	}

	values, err := session.callSwapper(ctx, "getSwapAmount", amountIn, reserveIn, reserveOut, pool.SwapFeeBps)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodePrice, "contract quote", err)
	}
	out, ok := values[0].(*big.Int)
	if !ok {
		return nil, clierr.New(clierr.CodePrice, "unexpected getSwapAmount result shape")
	}
	return out, nil
}

// SpotPrices returns the reserve-ratio display prices of token0 in token1
// units and the inverse. Display only; trades are priced by EstimateOutput.
func SpotPrices(pool PoolState) (string, string, error) {
	if pool.Reserve0 == nil || pool.Reserve1 == nil || pool.Reserve0.Sign() == 0 || pool.Reserve1.Sign() == 0 {
		return "", "", clierr.New(clierr.CodePrice, "insufficient liquidity in pool")
	}
	price0 := new(big.Rat).SetFrac(pool.Reserve1, pool.Reserve0)
	price1 := new(big.Rat).SetFrac(pool.Reserve0, pool.Reserve1)
	return ratDecimal(price0), ratDecimal(price1), nil
}

func ratDecimal(r *big.Rat) string {
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return "0"
	}
	return s
}

func addressEqual(a, b common.Address) bool {
	// common.Address comparison is already case-insensitive: hex casing is
	// normalized at parse time.
	return a == b
}
