package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

// ApprovalResult reports what the allowance gate did for one call.
// Allowance is the spendable amount after the gate ran: the fresh reading
// when it already sufficed, the approved amount when an approval was
// submitted.
type ApprovalResult struct {
	Allowance *big.Int
	Submitted bool
	TxHash    common.Hash
}

// EnsureAllowance guarantees spender may move at least required base units
// of token on behalf of owner. The allowance is read fresh on every call; if
// it already covers the requirement the gate returns with zero write calls,
// so repeated invocations are idempotent. Otherwise it approves exactly the
// required amount (never unlimited) and waits for one confirmation. A swap
// must not be submitted until this returns nil.
func EnsureAllowance(ctx context.Context, session *Session, owner, token common.Address, required *big.Int, poll time.Duration) (ApprovalResult, error) {
	if required == nil || required.Sign() <= 0 {
		return ApprovalResult{}, clierr.New(clierr.CodeValidation, "required allowance must be strictly positive")
	}
	w := session.Wallet()
	spender := session.Contract()

	values, err := callABI(ctx, w, token, erc20ABI, "allowance", owner, spender)
	if err != nil {
		return ApprovalResult{}, clierr.Wrap(clierr.CodeApproval, "read allowance", err)
	}
	allowance, ok := values[0].(*big.Int)
	if !ok {
		return ApprovalResult{}, clierr.New(clierr.CodeApproval, "unexpected allowance result shape")
	}
	if allowance.Cmp(required) >= 0 {
		return ApprovalResult{Allowance: allowance}, nil
	}

	data, err := erc20ABI.Pack("approve", spender, required)
	if err != nil {
		return ApprovalResult{}, clierr.Wrap(clierr.CodeInternal, "pack approve calldata", err)
	}
	txHash, err := w.SendTransaction(ctx, wallet.TxRequest{To: token, Data: data})
	if err != nil {
		if wallet.IsUserRejected(err) {
			return ApprovalResult{}, clierr.Wrap(clierr.CodeSigner, "approval rejected by wallet", err)
		}
		return ApprovalResult{}, clierr.Wrap(clierr.CodeApproval, "submit approval", err)
	}

	receipt, err := waitMined(ctx, w, txHash, poll)
	if err != nil {
		if errors.Is(err, ErrTxDropped) {
			return ApprovalResult{}, clierr.New(clierr.CodeApproval, fmt.Sprintf("approval transaction %s dropped", txHash.Hex()))
		}
		return ApprovalResult{}, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return ApprovalResult{}, clierr.New(clierr.CodeApproval, fmt.Sprintf("approval transaction %s reverted", txHash.Hex()))
	}
	// approve overwrites the allowance outright, so the confirmed value is
	// exactly what was requested.
	return ApprovalResult{Allowance: new(big.Int).Set(required), Submitted: true, TxHash: txHash}, nil
}
