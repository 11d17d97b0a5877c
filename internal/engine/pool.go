package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/id"
)

// ResolvePool validates the token pair, asks the contract for the canonical
// pool id of the unordered pair, and fetches the current pool snapshot.
// There is no caching: reserves must be re-read for every estimation and
// swap. Malformed input fails before any RPC call is issued.
func ResolvePool(ctx context.Context, session *Session, tokenA, tokenB string) (PoolID, PoolState, error) {
	a, b, err := id.ParseTokenPair(tokenA, tokenB)
	if err != nil {
		return PoolID{}, PoolState{}, err
	}
	return resolvePoolAddrs(ctx, session, a, b)
}

func resolvePoolAddrs(ctx context.Context, session *Session, a, b common.Address) (PoolID, PoolState, error) {
	values, err := session.callSwapper(ctx, "getPoolId", a, b)
	if err != nil {
		return PoolID{}, PoolState{}, clierr.Wrap(clierr.CodePool, "read pool id", err)
	}
	raw, ok := values[0].([32]byte)
	if !ok {
		return PoolID{}, PoolState{}, clierr.New(clierr.CodePool, "unexpected getPoolId result shape")
	}
	poolID := PoolID(raw)
	if poolID.IsZero() {
		return PoolID{}, PoolState{}, clierr.New(clierr.CodePool, fmt.Sprintf("no pool exists for pair %s / %s", a.Hex(), b.Hex()))
	}

	state, err := fetchPoolState(ctx, session, poolID)
	if err != nil {
		return PoolID{}, PoolState{}, err
	}
	return poolID, state, nil
}

func fetchPoolState(ctx context.Context, session *Session, poolID PoolID) (PoolState, error) {
	values, err := session.callSwapper(ctx, "pools", [32]byte(poolID))
	if err != nil {
		return PoolState{}, clierr.Wrap(clierr.CodePool, "read pool state", err)
	}
	if len(values) != 4 {
		return PoolState{}, clierr.New(clierr.CodePool, "unexpected pools result shape")
	}
	token0, ok0 := values[0].(common.Address)
	token1, ok1 := values[1].(common.Address)
	reserve0, ok2 := values[2].(*big.Int)
	reserve1, ok3 := values[3].(*big.Int)
	if !ok0 || !ok1 || !ok2 || !ok3 {
		return PoolState{}, clierr.New(clierr.CodePool, "unexpected pools result shape")
	}
	if reserve0.Sign() == 0 || reserve1.Sign() == 0 {
		return PoolState{}, clierr.New(clierr.CodePool, fmt.Sprintf("pool %s has no liquidity", poolID.Hex()))
	}

	feeValues, err := session.callSwapper(ctx, "getSwapFee", [32]byte(poolID))
	if err != nil {
		return PoolState{}, clierr.Wrap(clierr.CodePool, "read swap fee", err)
	}
	fee, ok := feeValues[0].(*big.Int)
	if !ok {
		return PoolState{}, clierr.New(clierr.CodePool, "unexpected getSwapFee result shape")
	}

	return PoolState{
		Token0:     token0,
		Token1:     token1,
		Reserve0:   reserve0,
		Reserve1:   reserve1,
		SwapFeeBps: fee,
	}, nil
}
