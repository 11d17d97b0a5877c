package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// PoolID is the canonical identifier of an unordered token pair's pool. The
// contract derives it, canonicalizing pair order internally, so resolving
// (A,B) and (B,A) yields the same id.
type PoolID [32]byte

func (p PoolID) Hex() string {
	return hexutil.Encode(p[:])
}

func (p PoolID) IsZero() bool {
	return p == PoolID{}
}

// PoolState is a read-only snapshot of on-chain pool state. Reserves mutate
// between reads, so a snapshot is fetched per estimation or swap and never
// cached.
type PoolState struct {
	Token0     common.Address
	Token1     common.Address
	Reserve0   *big.Int
	Reserve1   *big.Int
	SwapFeeBps *big.Int
}

// ConnectionState describes the wallet's relationship to the target chain.
// It is observed from the provider, never owned by the engine.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	ConnectedWrongChain
	ConnectedCorrectChain
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectedWrongChain:
		return "connected_wrong_chain"
	case ConnectedCorrectChain:
		return "connected_correct_chain"
	default:
		return "disconnected"
	}
}
