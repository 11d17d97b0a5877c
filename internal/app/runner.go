package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/YeahNotSewerSide/Swap/internal/cache"
	"github.com/YeahNotSewerSide/Swap/internal/config"
	"github.com/YeahNotSewerSide/Swap/internal/engine"
	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/model"
	"github.com/YeahNotSewerSide/Swap/internal/out"
	"github.com/YeahNotSewerSide/Swap/internal/policy"
	"github.com/YeahNotSewerSide/Swap/internal/registry"
	"github.com/YeahNotSewerSide/Swap/internal/telemetry"
	"github.com/YeahNotSewerSide/Swap/internal/version"
	"github.com/YeahNotSewerSide/Swap/internal/wallet"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	log         *logrus.Logger
	meta        *cache.Store
	journal     *engine.Journal
	wallet      *wallet.RPCWallet
	session     *engine.Session
	guard       *engine.NetworkGuard
	root        *cobra.Command
	lastCommand string
	lastTxHash  string

	// Test seam: Run dials the configured RPC endpoint unless a wallet was
	// injected here first.
	walletOverride wallet.Wallet
}

func (r *Runner) Run(args []string) int {
	return r.run(args, nil)
}

func (r *Runner) run(args []string, walletOverride wallet.Wallet) int {
	state := &runtimeState{runner: r, walletOverride: walletOverride}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	state.closeResources()
	if err == nil {
		return 0
	}
	state.renderError("", err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) closeResources() {
	if s.meta != nil {
		_ = s.meta.Close()
	}
	if s.journal != nil {
		_ = s.journal.Close()
	}
	if s.wallet != nil {
		s.wallet.Close()
	}
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Constant-product swap CLI for the Aplo swapper contract",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.log = telemetry.New(settings.Verbose)

			path := trimRootPath(cmd.CommandPath())
			s.lastCommand = path
			return policy.CheckCommandAllowed(settings.EnableCommands, path)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "RPC request timeout")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "JSON-RPC endpoint override")
	cmd.PersistentFlags().Int64Var(&s.flags.ChainID, "chain-id", 0, "Target chain id")
	cmd.PersistentFlags().StringVar(&s.flags.Contract, "contract", "", "Swapper contract address")
	cmd.PersistentFlags().BoolVar(&s.flags.NoCache, "no-cache", false, "Disable token metadata cache")
	cmd.PersistentFlags().BoolVar(&s.flags.NoJournal, "no-journal", false, "Disable the swap attempt journal")
	cmd.PersistentFlags().BoolVar(&s.flags.Verbose, "verbose", false, "Enable debug logging on stderr")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newPoolCommand())
	cmd.AddCommand(s.newQuoteCommand())
	cmd.AddCommand(s.newApproveCommand())
	cmd.AddCommand(s.newExecuteCommand())
	cmd.AddCommand(s.newNetworkCommand())
	cmd.AddCommand(s.newAttemptsCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

// ensureSession connects the wallet and binds the swapper session and the
// network guard. Commands that never touch the chain do not call it.
func (s *runtimeState) ensureSession(ctx context.Context) error {
	if s.session != nil {
		return nil
	}
	if strings.TrimSpace(s.settings.ContractAddress) == "" {
		return clierr.New(clierr.CodeUsage, "swapper contract address is required (--contract, SWAP_CONTRACT, or config)")
	}

	var w wallet.Wallet
	if s.walletOverride != nil {
		w = s.walletOverride
	} else {
		signer, err := wallet.NewLocalSignerFromEnv(s.settings.KeySource)
		if err != nil {
			return clierr.Wrap(clierr.CodeSigner, "load signing key", err)
		}
		rpcURL, err := registry.ResolveRPCURL(s.settings.RPCURL, s.settings.ChainID)
		if err != nil {
			return clierr.Wrap(clierr.CodeUsage, "resolve rpc endpoint", err)
		}
		rpcWallet, err := wallet.Dial(ctx, rpcURL, signer, wallet.GasOptions{
			Multiplier:         s.settings.GasMultiplier,
			MaxFeeGwei:         s.settings.MaxFeeGwei,
			MaxPriorityFeeGwei: s.settings.MaxPriorityFeeGwei,
		})
		if err != nil {
			return err
		}
		s.wallet = rpcWallet
		w = rpcWallet
	}

	session, err := engine.NewSession(s.settings.ContractAddress, w)
	if err != nil {
		return err
	}
	desc, ok := registry.DescriptorFor(s.settings.ChainID)
	if !ok {
		rpcURL, err := registry.ResolveRPCURL(s.settings.RPCURL, s.settings.ChainID)
		if err != nil {
			return clierr.Wrap(clierr.CodeUsage, "resolve rpc endpoint", err)
		}
		desc = registry.ChainDescriptor{
			ChainIDHex: fmt.Sprintf("0x%x", s.settings.ChainID),
			ChainName:  fmt.Sprintf("chain-%d", s.settings.ChainID),
			RPCURLs:    []string{rpcURL},
		}
	}
	guard, err := engine.NewNetworkGuard(w, desc, s.log)
	if err != nil {
		return err
	}
	s.session = session
	s.guard = guard
	return nil
}

func (s *runtimeState) ensureMetaCache() *cache.Store {
	if !s.settings.CacheEnabled {
		return nil
	}
	if s.meta == nil {
		store, err := cache.Open(s.settings.CachePath, s.settings.CacheLockPath)
		if err != nil {
			s.log.WithError(err).Warn("token metadata cache unavailable")
			s.settings.CacheEnabled = false
			return nil
		}
		s.meta = store
	}
	return s.meta
}

func (s *runtimeState) ensureJournal() (*engine.Journal, error) {
	if !s.settings.JournalEnabled {
		return nil, nil
	}
	if s.journal == nil {
		journal, err := engine.OpenJournal(s.settings.JournalPath, s.settings.JournalLockPath)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "open attempt journal", err)
		}
		s.journal = journal
	}
	return s.journal, nil
}

func (s *runtimeState) readContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.settings.Timeout)
}

func (s *runtimeState) confirmContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.settings.ConfirmTimeout)
}

func (s *runtimeState) emitSuccess(commandPath string, data any, warnings []string) error {
	env := model.Envelope{
		Version:  model.EnvelopeVersion,
		Success:  true,
		Data:     data,
		Error:    nil,
		Warnings: warnings,
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(commandPath string, err error) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	code := clierr.ExitCode(err)
	typ := "internal_error"
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
		typ = errorType(cErr.Code)
	}

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    []any{},
		Error: &model.ErrorBody{
			Code:      code,
			Type:      typ,
			Message:   message,
			Retryable: clierr.Retryable(err),
			TxHash:    s.lastTxHash,
		},
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func errorType(code clierr.Code) string {
	switch code {
	case clierr.CodeUsage:
		return "usage_error"
	case clierr.CodeValidation:
		return "validation_error"
	case clierr.CodeNetwork:
		return "network_error"
	case clierr.CodePool:
		return "pool_error"
	case clierr.CodePrice:
		return "price_error"
	case clierr.CodeApproval:
		return "approval_error"
	case clierr.CodeSwap:
		return "swap_error"
	case clierr.CodeSigner:
		return "signer_error"
	case clierr.CodeUnavailable:
		return "provider_unavailable"
	case clierr.CodeTimeout:
		return "timeout"
	case clierr.CodeBlocked:
		return "command_blocked"
	default:
		return "internal_error"
	}
}

func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
