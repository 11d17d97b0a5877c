package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/registry"
)

type GasOptions struct {
	Multiplier         float64
	MaxFeeGwei         string
	MaxPriorityFeeGwei string
}

// RPCWallet implements Wallet over a JSON-RPC endpoint with a local key
// signer. Chain switching redials the RPC endpoint registered for the
// requested chain, matching the semantics a browser wallet exposes through
// wallet_switchEthereumChain / wallet_addEthereumChain: a chain the wallet
// has no descriptor for yields the unrecognized-chain provider code.
type RPCWallet struct {
	mu     sync.Mutex
	signer Signer
	client *ethclient.Client
	chain  *big.Int
	known  map[int64]registry.ChainDescriptor
	gas    GasOptions
}

func Dial(ctx context.Context, rpcURL string, signer Signer, gas GasOptions) (*RPCWallet, error) {
	if signer == nil {
		return nil, clierr.New(clierr.CodeSigner, "missing signer")
	}
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "connect rpc", err)
	}
	client := ethclient.NewClient(rpcClient)
	chain, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, clierr.Wrap(clierr.CodeUnavailable, "read chain id", err)
	}
	if gas.Multiplier <= 1 {
		gas.Multiplier = 1.2
	}
	w := &RPCWallet{
		signer: signer,
		client: client,
		chain:  chain,
		known:  map[int64]registry.ChainDescriptor{},
		gas:    gas,
	}
	if desc, ok := registry.DescriptorFor(chain.Int64()); ok {
		w.known[chain.Int64()] = desc
	}
	return w, nil
}

func (w *RPCWallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client != nil {
		w.client.Close()
	}
}

func (w *RPCWallet) Address() common.Address {
	return w.signer.Address()
}

func (w *RPCWallet) ChainID(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client == nil {
		return nil, clierr.New(clierr.CodeNetwork, "wallet provider is not connected")
	}
	return new(big.Int).Set(w.chain), nil
}

func (w *RPCWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.client == nil {
		return clierr.New(clierr.CodeNetwork, "wallet provider is not connected")
	}
	if w.chain.Cmp(chainID) == 0 {
		return nil
	}
	desc, ok := w.known[chainID.Int64()]
	if !ok {
		if d, found := registry.DescriptorFor(chainID.Int64()); found {
			desc, ok = d, true
		}
	}
	if !ok || len(desc.RPCURLs) == 0 {
		return &ProviderError{Code: ErrCodeUnrecognizedChain, Message: fmt.Sprintf("chain %s has not been added to the wallet", chainID)}
	}

	rpcClient, err := rpc.DialContext(ctx, desc.RPCURLs[0])
	if err != nil {
		return clierr.Wrap(clierr.CodeUnavailable, "connect chain rpc", err)
	}
	client := ethclient.NewClient(rpcClient)
	actual, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return clierr.Wrap(clierr.CodeUnavailable, "read chain id after switch", err)
	}
	if actual.Cmp(chainID) != 0 {
		client.Close()
		return clierr.New(clierr.CodeNetwork, fmt.Sprintf("rpc endpoint reports chain %s, expected %s", actual, chainID))
	}
	w.client.Close()
	w.client = client
	w.chain = new(big.Int).Set(actual)
	return nil
}

func (w *RPCWallet) AddChain(ctx context.Context, desc registry.ChainDescriptor) error {
	id, err := desc.ChainID()
	if err != nil {
		return clierr.Wrap(clierr.CodeValidation, "invalid chain descriptor", err)
	}
	if strings.TrimSpace(desc.ChainName) == "" || len(desc.RPCURLs) == 0 {
		return clierr.New(clierr.CodeValidation, "chain descriptor requires a name and at least one rpc url")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.known[id.Int64()] = desc
	return nil
}

func (w *RPCWallet) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return w.active().CallContract(ctx, msg, nil)
}

func (w *RPCWallet) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	client := w.active()
	w.mu.Lock()
	chainID := new(big.Int).Set(w.chain)
	w.mu.Unlock()

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}
	to := req.To
	msg := ethereum.CallMsg{From: w.signer.Address(), To: &to, Value: value, Data: req.Data}

	gasLimit, err := client.EstimateGas(ctx, msg)
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeUnavailable, "estimate gas", err)
	}
	gasLimit = uint64(float64(gasLimit) * w.gas.Multiplier)

	tipCap, err := w.resolveTipCap(ctx, client)
	if err != nil {
		return common.Hash{}, err
	}
	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeUnavailable, "fetch latest header", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(1_000_000_000)
	}
	feeCap, err := w.resolveFeeCap(baseFee, tipCap)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := client.PendingNonceAt(ctx, w.signer.Address())
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeUnavailable, "fetch nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})
	signed, err := w.signer.SignTx(chainID, tx)
	if err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeSigner, "sign transaction", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, clierr.Wrap(clierr.CodeUnavailable, "broadcast transaction", err)
	}
	return signed.Hash(), nil
}

func (w *RPCWallet) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return w.active().TransactionReceipt(ctx, hash)
}

func (w *RPCWallet) TransactionKnown(ctx context.Context, hash common.Hash) (bool, error) {
	_, _, err := w.active().TransactionByHash(ctx, hash)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ethereum.NotFound) {
		return false, nil
	}
	return false, err
}

func (w *RPCWallet) active() *ethclient.Client {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.client
}

func (w *RPCWallet) resolveTipCap(ctx context.Context, client *ethclient.Client) (*big.Int, error) {
	if strings.TrimSpace(w.gas.MaxPriorityFeeGwei) != "" {
		v, err := parseGwei(w.gas.MaxPriorityFeeGwei)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, "parse max priority fee", err)
		}
		return v, nil
	}
	tipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return big.NewInt(2_000_000_000), nil // 2 gwei fallback
	}
	return tipCap, nil
}

func (w *RPCWallet) resolveFeeCap(baseFee, tipCap *big.Int) (*big.Int, error) {
	if strings.TrimSpace(w.gas.MaxFeeGwei) != "" {
		v, err := parseGwei(w.gas.MaxFeeGwei)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeUsage, "parse max fee", err)
		}
		if v.Cmp(tipCap) < 0 {
			return nil, clierr.New(clierr.CodeUsage, "max fee must be >= max priority fee")
		}
		return v, nil
	}
	feeCap := new(big.Int).Mul(baseFee, big.NewInt(2))
	feeCap.Add(feeCap, tipCap)
	return feeCap, nil
}

func parseGwei(v string) (*big.Int, error) {
	clean := strings.TrimSpace(v)
	if clean == "" {
		return nil, fmt.Errorf("empty gwei value")
	}
	rat, ok := new(big.Rat).SetString(clean)
	if !ok {
		return nil, fmt.Errorf("invalid numeric value %q", v)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("value must be non-negative")
	}
	scale := big.NewRat(1_000_000_000, 1)
	rat.Mul(rat, scale)
	if !rat.IsInt() {
		return nil, fmt.Errorf("value must resolve to an integer wei amount")
	}
	return new(big.Int).Set(rat.Num()), nil
}
