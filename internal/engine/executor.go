package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"

	"github.com/YeahNotSewerSide/Swap/internal/cache"
	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/id"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

// State names one stage of the swap pipeline.
type State string

const (
	StateIdle              State = "idle"
	StateValidating        State = "validating"
	StateCheckingNetwork   State = "checking_network"
	StateResolvingPool     State = "resolving_pool"
	StateCheckingAllowance State = "checking_allowance"
	StateSubmitting        State = "submitting"
	StateConfirming        State = "confirming"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// Executor runs the swap pipeline: validate, guard the network, resolve the
// pool, gate the allowance, submit the swap, await one confirmation. Each
// step short-circuits to a typed failure; nothing already written on-chain
// is undone, so a raised allowance survives a failed swap and the retried
// pipeline skips the approval via the gate's idempotent short-circuit.
type Executor struct {
	session *Session
	guard   *NetworkGuard
	journal *Journal
	meta    *cache.Store
	log     *logrus.Logger
	poll    time.Duration

	// One attempt per session: a second trigger while one is in flight is
	// rejected rather than interleaved.
	inflight sync.Mutex
}

type ExecutorOptions struct {
	Journal      *Journal
	Meta         *cache.Store
	Log          *logrus.Logger
	PollInterval time.Duration
}

func NewExecutor(session *Session, guard *NetworkGuard, opts ExecutorOptions) (*Executor, error) {
	if session == nil {
		return nil, clierr.New(clierr.CodeInternal, "executor requires a session")
	}
	if guard == nil {
		return nil, clierr.New(clierr.CodeInternal, "executor requires a network guard")
	}
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Executor{
		session: session,
		guard:   guard,
		journal: opts.Journal,
		meta:    opts.Meta,
		log:     log,
		poll:    poll,
	}, nil
}

// SwapRequest is user input for one pipeline run, validated from scratch on
// every attempt: pool and allowance state may have changed since the last
// one.
type SwapRequest struct {
	TokenIn       string
	TokenOut      string
	AmountDecimal string
}

// SwapResult is the terminal outcome of a pipeline run.
type SwapResult struct {
	Attempt      Attempt
	PoolID       PoolID
	AmountIn     *big.Int
	EstimatedOut *big.Int
	DecimalsIn   int
	DecimalsOut  int
	TxHash       common.Hash
}

// Swap executes the full pipeline. Cancellation through ctx is honored at
// every step before submission; once the transaction is out, only the
// confirmation wait can be abandoned.
func (e *Executor) Swap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	if !e.inflight.TryLock() {
		return SwapResult{}, clierr.New(clierr.CodeSwap, "a swap attempt is already in flight for this session")
	}
	defer e.inflight.Unlock()

	attempt := NewAttempt(e.guard.Target().Int64(), e.session.Contract().Hex(), req.TokenIn, req.TokenOut, req.AmountDecimal)
	res := SwapResult{Attempt: attempt}

	fail := func(state State, err error) (SwapResult, error) {
		res.Attempt.State = string(StateFailed)
		res.Attempt.Error = err.Error()
		res.Attempt.Touch()
		e.saveAttempt(&res.Attempt)
		e.log.WithFields(logrus.Fields{"attempt": res.Attempt.AttemptID, "state": string(state)}).WithError(err).Debug("swap pipeline aborted")
		return res, err
	}

	// Validating
	e.advance(&res.Attempt, StateValidating)
	tokenIn, tokenOut, err := id.ParseTokenPair(req.TokenIn, req.TokenOut)
	if err != nil {
		return fail(StateValidating, err)
	}
	if err := id.ValidatePositiveDecimal(req.AmountDecimal); err != nil {
		return fail(StateValidating, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(StateValidating, clierr.Wrap(clierr.CodeTimeout, "swap cancelled", err))
	}

	// CheckingNetwork
	e.advance(&res.Attempt, StateCheckingNetwork)
	if _, err := e.guard.EnsureCorrectNetwork(ctx); err != nil {
		return fail(StateCheckingNetwork, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(StateCheckingNetwork, clierr.Wrap(clierr.CodeTimeout, "swap cancelled", err))
	}

	// ResolvingPool covers the on-chain metadata reads too: token decimals
	// come from the token contracts, and the base-unit conversion cannot
	// happen before they are known.
	e.advance(&res.Attempt, StateResolvingPool)
	chainID := e.guard.Target().Int64()
	res.DecimalsIn = TokenDecimals(ctx, e.session, chainID, tokenIn, e.meta)
	res.DecimalsOut = TokenDecimals(ctx, e.session, chainID, tokenOut, e.meta)
	amountIn, err := id.ParsePositiveAmount(req.AmountDecimal, res.DecimalsIn)
	if err != nil {
		return fail(StateResolvingPool, err)
	}
	res.AmountIn = amountIn
	res.Attempt.AmountBaseUnits = amountIn.String()

	poolID, pool, err := resolvePoolAddrs(ctx, e.session, tokenIn, tokenOut)
	if err != nil {
		return fail(StateResolvingPool, err)
	}
	res.PoolID = poolID
	res.Attempt.PoolID = poolID.Hex()

	estimated, err := EstimateOutput(pool, tokenIn, amountIn)
	if err != nil {
		return fail(StateResolvingPool, err)
	}
	res.EstimatedOut = estimated
	res.Attempt.EstimatedOut = estimated.String()
	if err := ctx.Err(); err != nil {
		return fail(StateResolvingPool, clierr.Wrap(clierr.CodeTimeout, "swap cancelled", err))
	}

	// CheckingAllowance
	e.advance(&res.Attempt, StateCheckingAllowance)
	if _, err := EnsureAllowance(ctx, e.session, e.session.Wallet().Address(), tokenIn, amountIn, e.poll); err != nil {
		return fail(StateCheckingAllowance, err)
	}
	if err := ctx.Err(); err != nil {
		return fail(StateCheckingAllowance, clierr.Wrap(clierr.CodeTimeout, "swap cancelled", err))
	}

	// Submitting
	e.advance(&res.Attempt, StateSubmitting)
	data, err := swapperABI.Pack("swap", [32]byte(poolID), tokenIn, amountIn)
	if err != nil {
		return fail(StateSubmitting, clierr.Wrap(clierr.CodeInternal, "pack swap calldata", err))
	}
	txHash, err := e.session.Wallet().SendTransaction(ctx, wallet.TxRequest{To: e.session.Contract(), Data: data})
	if err != nil {
		if wallet.IsUserRejected(err) {
			return fail(StateSubmitting, clierr.Wrap(clierr.CodeSigner, "swap rejected by wallet", err))
		}
		return fail(StateSubmitting, clierr.Wrap(clierr.CodeSwap, "submit swap", err))
	}
	res.TxHash = txHash
	res.Attempt.TxHash = txHash.Hex()
	e.log.WithFields(logrus.Fields{"attempt": res.Attempt.AttemptID, "tx": txHash.Hex()}).Debug("swap submitted")

	// Confirming
	e.advance(&res.Attempt, StateConfirming)
	receipt, err := waitMined(ctx, e.session.Wallet(), txHash, e.poll)
	if err != nil {
		if errors.Is(err, ErrTxDropped) {
			return fail(StateConfirming, clierr.New(clierr.CodeSwap, fmt.Sprintf("swap transaction %s dropped or replaced", txHash.Hex())))
		}
		return fail(StateConfirming, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fail(StateConfirming, clierr.New(clierr.CodeSwap, fmt.Sprintf("swap transaction %s reverted", txHash.Hex())))
	}

	res.Attempt.State = string(StateSucceeded)
	res.Attempt.Touch()
	e.saveAttempt(&res.Attempt)
	return res, nil
}

func (e *Executor) advance(attempt *Attempt, state State) {
	attempt.State = string(state)
	attempt.Touch()
	e.saveAttempt(attempt)
}

func (e *Executor) saveAttempt(attempt *Attempt) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Save(*attempt); err != nil {
		e.log.WithError(err).Warn("persist swap attempt")
	}
}
