package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/YeahNotSewerSide/Swap/internal/registry"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testContract = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	testTokenA   = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	testTokenB   = common.HexToAddress("0x0000000000000000000000000000000000000b02")
)

// fakeWallet scripts provider behavior per ABI method and counts every
// request category so tests can assert on exactly how many calls a flow
// issued.
type fakeWallet struct {
	mu sync.Mutex

	address common.Address
	chain   *big.Int
	known   map[int64]bool

	switchCalls int
	addCalls    int
	addedDescs  []registry.ChainDescriptor
	rejectAll   bool

	callCount int
	handlers  map[string]func(args []any) ([]byte, error)

	sends        []wallet.TxRequest
	sendErr      error
	sendGate     chan struct{}
	failReceipts bool

	receipts map[common.Hash]*types.Receipt
	knownTx  map[common.Hash]bool
}

func newFakeWallet(chainID int64) *fakeWallet {
	return &fakeWallet{
		address:  testOwner,
		chain:    big.NewInt(chainID),
		known:    map[int64]bool{chainID: true},
		handlers: map[string]func(args []any) ([]byte, error){},
		receipts: map[common.Hash]*types.Receipt{},
		knownTx:  map[common.Hash]bool{},
	}
}

func (f *fakeWallet) Address() common.Address { return f.address }

func (f *fakeWallet) ChainID(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.chain), nil
}

func (f *fakeWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switchCalls++
	if f.rejectAll {
		return &wallet.ProviderError{Code: wallet.ErrCodeUserRejected, Message: "user rejected"}
	}
	if !f.known[chainID.Int64()] {
		return &wallet.ProviderError{Code: wallet.ErrCodeUnrecognizedChain, Message: "unrecognized chain"}
	}
	f.chain = new(big.Int).Set(chainID)
	return nil
}

func (f *fakeWallet) AddChain(ctx context.Context, desc registry.ChainDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls++
	if f.rejectAll {
		return &wallet.ProviderError{Code: wallet.ErrCodeUserRejected, Message: "user rejected"}
	}
	f.addedDescs = append(f.addedDescs, desc)
	id, err := desc.ChainID()
	if err != nil {
		return err
	}
	f.known[id.Int64()] = true
	return nil
}

func (f *fakeWallet) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	f.callCount++
	f.mu.Unlock()
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("short calldata")
	}
	method, args, err := decodeCall(msg.Data)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	handler, ok := f.handlers[method]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no handler for method %s", method)
	}
	return handler(args)
}

func (f *fakeWallet) SendTransaction(ctx context.Context, req wallet.TxRequest) (common.Hash, error) {
	if f.sendGate != nil {
		<-f.sendGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sends = append(f.sends, req)
	hash := txHashFor(len(f.sends), req)
	status := types.ReceiptStatusSuccessful
	if f.failReceipts {
		status = types.ReceiptStatusFailed
	}
	f.receipts[hash] = &types.Receipt{Status: status, TxHash: hash}
	f.knownTx[hash] = true
	return hash, nil
}

func (f *fakeWallet) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt, ok := f.receipts[hash]
	if !ok || receipt == nil {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (f *fakeWallet) TransactionKnown(ctx context.Context, hash common.Hash) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.knownTx[hash], nil
}

func (f *fakeWallet) handle(method string, fn func(args []any) ([]byte, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = fn
}

func receiptFor(hash common.Hash) *types.Receipt {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}
}

func txHashFor(n int, req wallet.TxRequest) common.Hash {
	sum := sha256.Sum256(append([]byte(fmt.Sprintf("tx-%d-", n)), req.Data...))
	return common.BytesToHash(sum[:])
}

func decodeCall(data []byte) (string, []any, error) {
	for _, parsed := range []abi.ABI{swapperABI, erc20ABI} {
		for name, method := range parsed.Methods {
			if bytes.Equal(method.ID, data[:4]) {
				args, err := method.Inputs.Unpack(data[4:])
				return name, args, err
			}
		}
	}
	return "", nil, fmt.Errorf("unknown method selector %x", data[:4])
}

func packOutputs(t *testing.T, parsed abi.ABI, method string, values ...any) []byte {
	t.Helper()
	out, err := parsed.Methods[method].Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s outputs: %v", method, err)
	}
	return out
}

func newTestSession(t *testing.T, w wallet.Wallet) *Session {
	t.Helper()
	session, err := NewSession(testContract.Hex(), w)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return session
}

// installPool wires the standard swapper read handlers for one pool.
func installPool(t *testing.T, f *fakeWallet, poolID PoolID, pool PoolState) {
	t.Helper()
	f.handle("getPoolId", func(args []any) ([]byte, error) {
		return packOutputs(t, swapperABI, "getPoolId", [32]byte(poolID)), nil
	})
	f.handle("pools", func(args []any) ([]byte, error) {
		return packOutputs(t, swapperABI, "pools", pool.Token0, pool.Token1, pool.Reserve0, pool.Reserve1), nil
	})
	f.handle("getSwapFee", func(args []any) ([]byte, error) {
		return packOutputs(t, swapperABI, "getSwapFee", pool.SwapFeeBps), nil
	})
}

func testPoolID(b byte) PoolID {
	var id PoolID
	id[31] = b
	return id
}
