package app

import (
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/YeahNotSewerSide/Swap/internal/engine"
	clierr "github.com/YeahNotSewerSide/Swap/internal/errors"
	"github.com/YeahNotSewerSide/Swap/internal/id"
	"github.com/YeahNotSewerSide/Swap/internal/model"
)

func (s *runtimeState) newPoolCommand() *cobra.Command {
	var tokenA, tokenB string
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Resolve the pool for a token pair and show its live state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.readContext()
			defer cancel()
			if err := s.ensureSession(ctx); err != nil {
				return err
			}
			poolID, pool, err := engine.ResolvePool(ctx, s.session, tokenA, tokenB)
			if err != nil {
				return err
			}
			price01, price10, err := engine.SpotPrices(pool)
			if err != nil {
				return err
			}
			view := model.PoolView{
				PoolID:      poolID.Hex(),
				Token0:      pool.Token0.Hex(),
				Token1:      pool.Token1.Hex(),
				Reserve0:    pool.Reserve0.String(),
				Reserve1:    pool.Reserve1.String(),
				SwapFeeBps:  pool.SwapFeeBps.Int64(),
				SpotPrice01: price01,
				SpotPrice10: price10,
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), view, nil)
		},
	}
	cmd.Flags().StringVar(&tokenA, "token-a", "", "First token address")
	cmd.Flags().StringVar(&tokenB, "token-b", "", "Second token address")
	_ = cmd.MarkFlagRequired("token-a")
	_ = cmd.MarkFlagRequired("token-b")
	return cmd
}

func (s *runtimeState) newQuoteCommand() *cobra.Command {
	var tokenIn, tokenOut, amountBase, amountDecimal string
	var verify bool
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Estimate swap output from live reserves",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, outToken, err := id.ParseTokenPair(tokenIn, tokenOut)
			if err != nil {
				return err
			}
			ctx, cancel := s.readContext()
			defer cancel()
			if err := s.ensureSession(ctx); err != nil {
				return err
			}

			poolID, pool, err := engine.ResolvePool(ctx, s.session, tokenIn, tokenOut)
			if err != nil {
				return err
			}

			meta := s.ensureMetaCache()
			decimalsIn := engine.TokenDecimals(ctx, s.session, s.settings.ChainID, in, meta)
			decimalsOut := engine.TokenDecimals(ctx, s.session, s.settings.ChainID, outToken, meta)

			base, decimal, err := id.NormalizeAmount(amountBase, amountDecimal, decimalsIn)
			if err != nil {
				return err
			}
			amountIn, _ := new(big.Int).SetString(base, 10)
			if amountIn == nil || amountIn.Sign() <= 0 {
				return clierr.New(clierr.CodeValidation, "amount must be strictly positive")
			}

			estimated, err := engine.EstimateOutput(pool, in, amountIn)
			if err != nil {
				return err
			}

			var warnings []string
			var contractMatch *bool
			if verify {
				contractOut, err := engine.ContractQuote(ctx, s.session, pool, in, amountIn)
				if err != nil {
					return err
				}
				match := contractOut.Cmp(estimated) == 0
				contractMatch = &match
				if !match {
					warnings = append(warnings, fmt.Sprintf("contract quote %s differs from local estimate %s", contractOut, estimated))
				}
			}

			view := model.QuoteView{
				PoolID:   poolID.Hex(),
				TokenIn:  in.Hex(),
				TokenOut: outToken.Hex(),
				Input: model.AmountInfo{
					AmountBaseUnits: base,
					AmountDecimal:   decimal,
					Decimals:        decimalsIn,
				},
				EstimatedOut: model.AmountInfo{
					AmountBaseUnits: estimated.String(),
					AmountDecimal:   id.FormatDecimal(estimated.String(), decimalsOut),
					Decimals:        decimalsOut,
				},
				SwapFeeBps:    pool.SwapFeeBps.Int64(),
				ContractMatch: contractMatch,
				FetchedAt:     s.runner.now().UTC().Format(time.RFC3339),
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), view, warnings)
		},
	}
	cmd.Flags().StringVar(&tokenIn, "token-in", "", "Input token address")
	cmd.Flags().StringVar(&tokenOut, "token-out", "", "Output token address")
	cmd.Flags().StringVar(&amountBase, "amount", "", "Input amount in base units")
	cmd.Flags().StringVar(&amountDecimal, "amount-decimal", "", "Input amount in decimal units")
	cmd.Flags().BoolVar(&verify, "verify", false, "Cross-check the estimate against the contract's pricing view")
	_ = cmd.MarkFlagRequired("token-in")
	_ = cmd.MarkFlagRequired("token-out")
	return cmd
}

func (s *runtimeState) newApproveCommand() *cobra.Command {
	var token, amountBase, amountDecimal string
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Ensure the swapper may spend the given token amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenAddr, err := id.ParseAddress(token)
			if err != nil {
				return err
			}
			ctx, cancel := s.confirmContext()
			defer cancel()
			if err := s.ensureSession(ctx); err != nil {
				return err
			}
			if _, err := s.guard.EnsureCorrectNetwork(ctx); err != nil {
				return err
			}

			meta := s.ensureMetaCache()
			decimals := engine.TokenDecimals(ctx, s.session, s.settings.ChainID, tokenAddr, meta)
			base, _, err := id.NormalizeAmount(amountBase, amountDecimal, decimals)
			if err != nil {
				return err
			}
			required, _ := new(big.Int).SetString(base, 10)
			if required == nil || required.Sign() <= 0 {
				return clierr.New(clierr.CodeValidation, "amount must be strictly positive")
			}

			result, err := engine.EnsureAllowance(ctx, s.session, s.session.Wallet().Address(), tokenAddr, required, s.settings.PollInterval)
			if err != nil {
				return err
			}
			view := model.ApprovalView{
				Token:     tokenAddr.Hex(),
				Owner:     s.session.Wallet().Address().Hex(),
				Spender:   s.session.Contract().Hex(),
				Required:  required.String(),
				Allowance: result.Allowance.String(),
				Submitted: result.Submitted,
			}
			if result.Submitted {
				view.TxHash = result.TxHash.Hex()
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), view, nil)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Token address to approve")
	cmd.Flags().StringVar(&amountBase, "amount", "", "Required allowance in base units")
	cmd.Flags().StringVar(&amountDecimal, "amount-decimal", "", "Required allowance in decimal units")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func (s *runtimeState) newExecuteCommand() *cobra.Command {
	var tokenIn, tokenOut, amountDecimal string
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run the full swap pipeline: validate, guard network, approve, swap, confirm",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := s.confirmContext()
			defer cancel()
			if err := s.ensureSession(ctx); err != nil {
				return err
			}
			journal, err := s.ensureJournal()
			if err != nil {
				return err
			}
			executor, err := engine.NewExecutor(s.session, s.guard, engine.ExecutorOptions{
				Journal:      journal,
				Meta:         s.ensureMetaCache(),
				Log:          s.log,
				PollInterval: s.settings.PollInterval,
			})
			if err != nil {
				return err
			}

			res, err := executor.Swap(ctx, engine.SwapRequest{
				TokenIn:       tokenIn,
				TokenOut:      tokenOut,
				AmountDecimal: amountDecimal,
			})
			if err != nil {
				s.lastTxHash = res.Attempt.TxHash
				return err
			}

			view := model.SwapView{
				AttemptID: res.Attempt.AttemptID,
				State:     res.Attempt.State,
				PoolID:    res.PoolID.Hex(),
				TokenIn:   res.Attempt.TokenIn,
				TokenOut:  res.Attempt.TokenOut,
				Input: model.AmountInfo{
					AmountBaseUnits: res.AmountIn.String(),
					AmountDecimal:   id.FormatDecimal(res.AmountIn.String(), res.DecimalsIn),
					Decimals:        res.DecimalsIn,
				},
				EstimatedOut: model.AmountInfo{
					AmountBaseUnits: res.EstimatedOut.String(),
					AmountDecimal:   id.FormatDecimal(res.EstimatedOut.String(), res.DecimalsOut),
					Decimals:        res.DecimalsOut,
				},
				TxHash: res.TxHash.Hex(),
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), view, nil)
		},
	}
	cmd.Flags().StringVar(&tokenIn, "token-in", "", "Input token address")
	cmd.Flags().StringVar(&tokenOut, "token-out", "", "Output token address")
	cmd.Flags().StringVar(&amountDecimal, "amount-decimal", "", "Input amount in decimal units")
	_ = cmd.MarkFlagRequired("token-in")
	_ = cmd.MarkFlagRequired("token-out")
	_ = cmd.MarkFlagRequired("amount-decimal")
	return cmd
}
