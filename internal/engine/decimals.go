package engine

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YeahNotSewerSide/Swap/internal/cache"
	"github.com/YeahNotSewerSide/Swap/internal/id"
)

// TokenDecimals resolves a token's decimal exponent. decimals() is immutable
// per token, so results are cached when a metadata store is supplied; a
// token that does not answer the call is assumed to use 18.
func TokenDecimals(ctx context.Context, session *Session, chainID int64, token common.Address, meta *cache.Store) int {
	key := cache.DecimalsKey(chainID, token.Hex())
	if meta != nil {
		if buf, hit, err := meta.Get(key); err == nil && hit {
			if n, err := strconv.Atoi(string(buf)); err == nil {
				return n
			}
		}
	}

	decimals := id.DefaultDecimals
	values, err := callABI(ctx, session.Wallet(), token, erc20ABI, "decimals")
	if err == nil {
		if n, ok := values[0].(uint8); ok {
			decimals = int(n)
		}
	}
	if meta != nil && err == nil {
		_ = meta.Set(key, []byte(strconv.Itoa(decimals)))
	}
	return decimals
}
