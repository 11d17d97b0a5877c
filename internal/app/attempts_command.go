package app

import (
	"github.com/spf13/cobra"

	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
)

func (s *runtimeState) newAttemptsCommand() *cobra.Command {
	root := &cobra.Command{Use: "attempts", Short: "Inspect journaled swap attempts"}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent swap attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := s.ensureJournal()
			if err != nil {
				return err
			}
			if journal == nil {
				return clierr.New(clierr.CodeUsage, "attempt journal is disabled")
			}
			attempts, err := journal.List(limit)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list attempts", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), attempts, nil)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum attempts to return")

	var attemptID string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show one swap attempt by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := s.ensureJournal()
			if err != nil {
				return err
			}
			if journal == nil {
				return clierr.New(clierr.CodeUsage, "attempt journal is disabled")
			}
			attempt, err := journal.Get(attemptID)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load attempt", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), attempt, nil)
		},
	}
	showCmd.Flags().StringVar(&attemptID, "id", "", "Attempt id")
	_ = showCmd.MarkFlagRequired("id")

	root.AddCommand(listCmd)
	root.AddCommand(showCmd)
	return root
}
