package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/YeahNotSewerSide/Swap/internal/registry"
)

// Wallet is the signing authority the engine consumes. It mirrors an
// EIP-1193 provider plus transaction submission: the engine never constructs
// connections itself, it only operates on an already-authenticated wallet.
type Wallet interface {
	Address() common.Address
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, desc registry.ChainDescriptor) error
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	TransactionKnown(ctx context.Context, hash common.Hash) (bool, error)
}

// TxRequest is a mutating contract call before gas and nonce resolution.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// Provider error codes from EIP-1193/EIP-3085 wallets.
const (
	ErrCodeUserRejected      = 4001
	ErrCodeUnrecognizedChain = 4902
)

// ProviderError carries a wallet provider error code.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// rpcError matches go-ethereum's JSON-RPC error interface without importing
// the rpc package here.
type rpcError interface {
	Error() string
	ErrorCode() int
}

func providerErrorCode(err error) (int, bool) {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Code, true
	}
	var rErr rpcError
	if errors.As(err, &rErr) {
		return rErr.ErrorCode(), true
	}
	return 0, false
}

// IsUnrecognizedChain reports whether the wallet does not know the requested
// chain and an add-chain request must be issued first.
func IsUnrecognizedChain(err error) bool {
	code, ok := providerErrorCode(err)
	return ok && code == ErrCodeUnrecognizedChain
}

// IsUserRejected reports whether the wallet user declined the request.
func IsUserRejected(err error) bool {
	code, ok := providerErrorCode(err)
	return ok && code == ErrCodeUserRejected
}
