package engine

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/id"
	"github.com/YeahNotSewerSide/Swap/internal/registry"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

var (
	swapperABI = mustABI(registry.SwapperABI)
	erc20ABI   = mustABI(registry.ERC20MinimalABI)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Session binds the swapper contract address, its ABI, and an active wallet.
// A new contract address or a new wallet requires a new Session; nothing is
// mutated in place.
type Session struct {
	contract common.Address
	wallet   wallet.Wallet
}

func NewSession(contractAddress string, w wallet.Wallet) (*Session, error) {
	addr, err := id.ParseAddress(contractAddress)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeValidation, "contract address", err)
	}
	if w == nil {
		return nil, clierr.New(clierr.CodeSigner, "session requires a wallet")
	}
	return &Session{contract: addr, wallet: w}, nil
}

func (s *Session) Contract() common.Address {
	return s.contract
}

func (s *Session) Wallet() wallet.Wallet {
	return s.wallet
}

// callSwapper issues a read-only call against the swapper contract and
// unpacks the outputs.
func (s *Session) callSwapper(ctx context.Context, method string, args ...any) ([]any, error) {
	return callABI(ctx, s.wallet, s.contract, swapperABI, method, args...)
}

func callABI(ctx context.Context, w wallet.Wallet, to common.Address, parsed abi.ABI, method string, args ...any) ([]any, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack "+method+" calldata", err)
	}
	out, err := w.Call(ctx, ethereum.CallMsg{From: w.Address(), To: &to, Data: data})
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "call "+method, err)
	}
	values, err := parsed.Unpack(method, out)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "decode "+method+" result", err)
	}
	return values, nil
}
