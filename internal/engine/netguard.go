package engine

import (
	"context"
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/registry"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

// NetworkGuard makes sure the wallet is attached to the target chain before
// any mutating call. It only observes and requests; the wallet owns the
// actual connection state, which can regress behind the guard's back when
// the user switches chains externally.
type NetworkGuard struct {
	wallet wallet.Wallet
	target *big.Int
	desc   registry.ChainDescriptor
	log    *logrus.Logger
}

// NetworkReport describes what the guard observed and did.
type NetworkReport struct {
	State      ConnectionState
	ChainID    *big.Int
	Switched   bool
	ChainAdded bool
}

func NewNetworkGuard(w wallet.Wallet, desc registry.ChainDescriptor, log *logrus.Logger) (*NetworkGuard, error) {
	target, err := desc.ChainID()
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeValidation, "target chain descriptor", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &NetworkGuard{wallet: w, target: target, desc: desc, log: log}, nil
}

func (g *NetworkGuard) Target() *big.Int {
	return new(big.Int).Set(g.target)
}

// State reports the current connection state without issuing any switch or
// add requests.
func (g *NetworkGuard) State(ctx context.Context) (ConnectionState, *big.Int) {
	if g.wallet == nil {
		return Disconnected, nil
	}
	current, err := g.wallet.ChainID(ctx)
	if err != nil {
		return Disconnected, nil
	}
	if current.Cmp(g.target) == 0 {
		return ConnectedCorrectChain, current
	}
	return ConnectedWrongChain, current
}

// EnsureCorrectNetwork returns immediately when the wallet already reports
// the target chain, issuing zero switch or add requests. On a mismatch it
// requests a chain switch; a wallet that does not know the chain gets an
// add-chain request carrying the full descriptor, then the switch is
// retried. Failures are surfaced, never retried automatically.
func (g *NetworkGuard) EnsureCorrectNetwork(ctx context.Context) (NetworkReport, error) {
	if g.wallet == nil {
		return NetworkReport{State: Disconnected}, clierr.New(clierr.CodeNetwork, "no wallet provider is connected")
	}
	current, err := g.wallet.ChainID(ctx)
	if err != nil {
		return NetworkReport{State: Disconnected}, clierr.Wrap(clierr.CodeNetwork, "wallet provider unavailable", err)
	}
	if current.Cmp(g.target) == 0 {
		return NetworkReport{State: ConnectedCorrectChain, ChainID: current}, nil
	}

	g.log.WithFields(logrus.Fields{"current": current.String(), "target": g.target.String()}).Debug("requesting chain switch")
	report := NetworkReport{State: ConnectedWrongChain, ChainID: current}
	err = g.wallet.SwitchChain(ctx, g.target)
	if wallet.IsUnrecognizedChain(err) {
		g.log.WithField("chain", g.desc.ChainName).Debug("chain unknown to wallet, requesting add")
		if addErr := g.wallet.AddChain(ctx, g.desc); addErr != nil {
			if wallet.IsUserRejected(addErr) {
				return report, clierr.Wrap(clierr.CodeNetwork, "add-chain request rejected by wallet", addErr)
			}
			return report, clierr.Wrap(clierr.CodeNetwork, "add chain to wallet", addErr)
		}
		report.ChainAdded = true
		err = g.wallet.SwitchChain(ctx, g.target)
	}
	if err != nil {
		if wallet.IsUserRejected(err) {
			return report, clierr.Wrap(clierr.CodeNetwork, "network switch rejected by wallet", err)
		}
		return report, clierr.Wrap(clierr.CodeNetwork, fmt.Sprintf("switch wallet to chain %s", g.target), err)
	}
	report.State = ConnectedCorrectChain
	report.ChainID = g.Target()
	report.Switched = true
	return report, nil
}
