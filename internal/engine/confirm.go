package engine

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

// ErrTxDropped reports a submitted transaction that disappeared from the
// network without a receipt (dropped or replaced).
var ErrTxDropped = errors.New("transaction dropped or replaced")

// droppedThreshold is how many consecutive polls may find the transaction
// completely unknown before it is declared dropped. A just-submitted
// transaction can transiently be missing from a node's view.
const droppedThreshold = 3

// waitMined polls for one confirmation of hash. The caller bounds the wait
// through ctx; engine code imposes no timeout of its own, and abandoning the
// wait leaves the transaction pending on-chain. The returned receipt may
// carry a failed status; callers decide what a revert means for them.
func waitMined(ctx context.Context, w wallet.Wallet, hash common.Hash, poll time.Duration) (*types.Receipt, error) {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	unknownStreak := 0
	for {
		receipt, err := w.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			// Transient RPC failures are retried until the caller cancels.
			unknownStreak = 0
		} else {
			known, knownErr := w.TransactionKnown(ctx, hash)
			if knownErr == nil && !known {
				unknownStreak++
				if unknownStreak >= droppedThreshold {
					return nil, ErrTxDropped
				}
			} else {
				unknownStreak = 0
			}
		}

		select {
		case <-ctx.Done():
			return nil, clierr.Wrap(clierr.CodeTimeout, "abandoned confirmation wait; transaction may still be pending", ctx.Err())
		case <-ticker.C:
		}
	}
}
