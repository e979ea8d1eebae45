package app

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/intent"
	"github.com/basefolio/aeromgr/internal/orchestrator"
	"github.com/basefolio/aeromgr/internal/store"
)

func (s *runtimeState) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Discover the owner's manager contract and its capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				// orchestrator() already ran Initialize; the cached result is free.
				res, err := s.gw.Initialize(ctx)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success}, nil
			})
		},
	}
}

func (s *runtimeState) newCreateManagerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-manager",
		Short: "Deploy a manager contract for the signing wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				res, err := s.gw.CreateManager(ctx)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash}, nil
			})
		},
	}
}

func (s *runtimeState) newBalancesCommand() *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show token balances held by the manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				if strings.TrimSpace(symbol) != "" {
					sym, err := intent.Token(s.settings.ChainID, symbol)
					if err != nil {
						return opResult{}, err
					}
					res, err := s.gw.GetTokenBalance(ctx, sym)
					if err != nil {
						return opResult{}, err
					}
					return opResult{data: res, success: true}, nil
				}
				res, err := s.gw.GetBalances(ctx)
				if err != nil {
					return opResult{}, err
				}
				// Zero-filled reads stay in the data; the notes surface as warnings.
				var warnings []string
				for _, bal := range res {
					if bal.ErrorNote != "" {
						warnings = append(warnings, bal.Symbol+": "+bal.ErrorNote)
					}
				}
				return opResult{data: res, success: true, warnings: warnings}, nil
			})
		},
	}
	cmd.Flags().StringVar(&symbol, "token", "", "Limit output to one token symbol")
	return cmd
}

func (s *runtimeState) newPositionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Show unstaked LP token positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				res, err := s.gw.GetLPPositions(ctx)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: true}, nil
			})
		},
	}
}

func (s *runtimeState) newStakedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "staked",
		Short: "Show gauge-staked positions with pending rewards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				res, err := s.gw.GetStakedPositions(ctx)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: true}, nil
			})
		},
	}
}

func (s *runtimeState) newDepositCommand() *cobra.Command {
	var (
		symbol string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Move tokens from the wallet into the manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				sym, err := intent.Token(s.settings.ChainID, symbol)
				if err != nil {
					return opResult{}, err
				}
				res, err := s.gw.Deposit(ctx, sym, intent.DepositAmount(sym, amount))
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash}, nil
			})
		},
	}
	cmd.Flags().StringVar(&symbol, "token", "", "Token symbol (default USDC)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in whole units")
	return cmd
}

func (s *runtimeState) newWithdrawCommand() *cobra.Command {
	var (
		symbol string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Move tokens from the manager back to the wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				sym, err := intent.Token(s.settings.ChainID, symbol)
				if err != nil {
					return opResult{}, err
				}
				res, err := orch.WithdrawTokens(ctx, sym, intent.WithdrawAmount(amount))
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash}, nil
			})
		},
	}
	cmd.Flags().StringVar(&symbol, "token", "", "Token symbol (default USDC)")
	cmd.Flags().StringVar(&amount, "amount", "", `Amount in whole units, or "ALL"`)
	return cmd
}

func (s *runtimeState) newAddLiquidityCommand() *cobra.Command {
	var (
		pool  string
		stake bool
	)
	cmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Supply the manager's full balance of both pool tokens as liquidity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				if stake {
					res, err := orch.AddLiquidityAndStake(ctx, poolName)
					if err != nil {
						return opResult{}, err
					}
					return opResult{data: res, success: res.Success, partial: res.Partial, txHash: res.AddLiquidity.TxHash, pool: poolName}, nil
				}
				res, err := s.gw.AddLiquidity(ctx, poolName)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name, e.g. USDC-WETH (default USDC-WETH)")
	cmd.Flags().BoolVar(&stake, "stake", false, "Stake the received LP tokens in the pool gauge")
	return cmd
}

func (s *runtimeState) newRemoveLiquidityCommand() *cobra.Command {
	var (
		pool   string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Burn LP tokens and withdraw both pool tokens to the manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				res, err := s.gw.RemoveLiquidity(ctx, poolName, intent.StakeAmount(amount))
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name (default USDC-WETH)")
	cmd.Flags().StringVar(&amount, "amount", "", `LP amount in whole units, or "MAX"`)
	return cmd
}

func (s *runtimeState) newStakeCommand() *cobra.Command {
	var (
		pool   string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Stake LP tokens in the pool gauge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				res, err := s.gw.Stake(ctx, poolName, intent.StakeAmount(amount))
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name (default USDC-WETH)")
	cmd.Flags().StringVar(&amount, "amount", "", `LP amount in whole units, or "MAX"`)
	return cmd
}

func (s *runtimeState) newUnstakeCommand() *cobra.Command {
	var (
		pool   string
		amount string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "unstake",
		Short: "Withdraw LP tokens from the pool gauge, optionally removing liquidity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				if remove {
					res, err := orch.UnstakeAndRemoveLiquidity(ctx, poolName)
					if err != nil {
						return opResult{}, err
					}
					txHash := ""
					if res.Remove != nil {
						txHash = res.Remove.TxHash
					}
					return opResult{data: res, success: res.Success, partial: !res.Success && (res.Unstaked || res.Removed), txHash: txHash, pool: poolName}, nil
				}
				res, err := s.gw.Unstake(ctx, poolName, intent.StakeAmount(amount))
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name (default USDC-WETH)")
	cmd.Flags().StringVar(&amount, "amount", "", `LP amount in whole units, or "MAX"`)
	cmd.Flags().BoolVar(&remove, "remove", false, "Also remove the unstaked liquidity from the pool")
	return cmd
}

func (s *runtimeState) newClaimRewardsCommand() *cobra.Command {
	var (
		pool string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "claim-rewards",
		Short: "Claim AERO emissions from pool gauges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				if all {
					res, err := orch.ClaimAllPoolRewards(ctx)
					if err != nil {
						return opResult{}, err
					}
					return opResult{data: res, success: res.Success}, nil
				}
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				res, err := orch.ClaimPoolRewards(ctx, poolName)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name (default USDC-WETH)")
	cmd.Flags().BoolVar(&all, "all", false, "Claim from every gauge above the reward threshold")
	return cmd
}

func (s *runtimeState) newFeesCommand() *cobra.Command {
	var (
		pool string
		all  bool
	)
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Show claimable trading fees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				if all {
					res, err := orch.GetAllClaimableFees(ctx)
					if err != nil {
						return opResult{}, err
					}
					return opResult{data: res, success: true}, nil
				}
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				res, err := orch.GetPoolClaimableFees(ctx, poolName)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: true, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name (default USDC-WETH)")
	cmd.Flags().BoolVar(&all, "all", false, "Sweep the whole pool catalog")
	return cmd
}

func (s *runtimeState) newClaimFeesCommand() *cobra.Command {
	var pool string
	cmd := &cobra.Command{
		Use:   "claim-fees",
		Short: "Claim accumulated trading fees from a pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runOperation(cmd, func(ctx context.Context, orch *orchestrator.Orchestrator) (opResult, error) {
				poolName, err := intent.Pool(s.settings.ChainID, pool)
				if err != nil {
					return opResult{}, err
				}
				res, err := orch.ClaimPoolFees(ctx, poolName)
				if err != nil {
					return opResult{}, err
				}
				return opResult{data: res, success: res.Success, txHash: res.TxHash, pool: poolName}, nil
			})
		},
	}
	cmd.Flags().StringVar(&pool, "pool", "", "Pool name (default USDC-WETH)")
	return cmd
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	var (
		operation string
		limit     int
		id        string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show journaled operation results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !s.settings.JournalEnabled {
				return clierr.New(clierr.CodeConfig, "journal is disabled (journal.enabled)")
			}
			journal, err := store.Open(s.settings.JournalPath, s.settings.JournalLock)
			if err != nil {
				return err
			}
			defer journal.Close()

			op := trimRootPath(cmd.CommandPath())
			if strings.TrimSpace(id) != "" {
				entry, err := journal.Get(strings.TrimSpace(id))
				if err != nil {
					return err
				}
				return s.emit(op, opResult{data: entry, success: true})
			}
			entries, err := journal.List(strings.TrimSpace(operation), limit)
			if err != nil {
				return err
			}
			return s.emit(op, opResult{data: entries, success: true})
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "Filter by operation name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&id, "id", "", "Fetch one entry by id")
	return cmd
}
