package app

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YeahNotSewerSide/Swap/internal/model"
)

func (s *runtimeState) newNetworkCommand() *cobra.Command {
	root := &cobra.Command{Use: "network", Short: "Wallet network state"}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report the wallet's chain without issuing switch requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.readContext()
			defer cancel()
			if err := s.ensureSession(ctx); err != nil {
				return err
			}
			state, chainID := s.guard.State(ctx)
			view := model.NetworkView{
				State:         state.String(),
				TargetChainID: strconv.FormatInt(s.settings.ChainID, 10),
			}
			if chainID != nil {
				view.ChainID = chainID.String()
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), view, nil)
		},
	}

	ensureCmd := &cobra.Command{
		Use:   "ensure",
		Short: "Switch the wallet to the target chain, adding it if unknown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.readContext()
			defer cancel()
			if err := s.ensureSession(ctx); err != nil {
				return err
			}
			report, err := s.guard.EnsureCorrectNetwork(ctx)
			if err != nil {
				return err
			}
			view := model.NetworkView{
				State:         report.State.String(),
				TargetChainID: strconv.FormatInt(s.settings.ChainID, 10),
				Switched:      report.Switched,
				ChainAdded:    report.ChainAdded,
			}
			if report.ChainID != nil {
				view.ChainID = report.ChainID.String()
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), view, nil)
		},
	}

	root.AddCommand(statusCmd)
	root.AddCommand(ensureCmd)
	return root
}
