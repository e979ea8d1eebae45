// Package orchestrator composes the per-contract session primitives into the
// multi-step workflows exposed to callers. Workflows report partial outcomes
// instead of aborting: each completed step stands on its own.
package orchestrator

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/basefolio/aeromgr/internal/chain"
)

// Gateway is the session surface the workflows compose. *chain.Session
// implements it; tests substitute scripted fakes.
type Gateway interface {
	Initialize(ctx context.Context) (chain.InitResult, error)
	CreateManager(ctx context.Context) (chain.CreateManagerResult, error)
	GetBalances(ctx context.Context) ([]chain.TokenBalance, error)
	GetTokenBalance(ctx context.Context, symbol string) (chain.TokenBalance, error)
	GetLPPositions(ctx context.Context) ([]chain.LPPosition, error)
	GetStakedPositions(ctx context.Context) ([]chain.StakedPosition, error)
	Deposit(ctx context.Context, symbol, amount string) (chain.DepositResult, error)
	Withdraw(ctx context.Context, symbol, amount string) (chain.WithdrawResult, error)
	AddLiquidity(ctx context.Context, poolName string) (chain.AddLiquidityResult, error)
	RemoveLiquidity(ctx context.Context, poolName, amount string) (chain.RemoveLiquidityResult, error)
	Stake(ctx context.Context, poolName, amount string) (chain.StakeResult, error)
	Unstake(ctx context.Context, poolName, amount string) (chain.StakeResult, error)
	ClaimRewards(ctx context.Context, poolName string) (chain.ClaimResult, error)
	ClaimAllRewards(ctx context.Context) (chain.ClaimAllResult, error)
	GetClaimableFees(ctx context.Context, poolName string) (chain.PoolFees, error)
	GetAllClaimableFees(ctx context.Context) ([]chain.PoolFees, error)
	ClaimFees(ctx context.Context, poolName string) (chain.ClaimFeesResult, error)
}

// Orchestrator runs composed workflows over a gateway.
type Orchestrator struct {
	gw  Gateway
	log zerolog.Logger
}

func New(gw Gateway, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, log: log}
}

// AddLiquidityAndStake supplies liquidity and, only when the supply confirmed,
// stakes the resulting LP tokens. A failed stake after a confirmed supply is a
// partial outcome, not a failure: the liquidity was added and stays in the
// manager, so the overall result remains successful with Partial set.
func (o *Orchestrator) AddLiquidityAndStake(ctx context.Context, poolName string) (AddLiquidityAndStakeResult, error) {
	res := AddLiquidityAndStakeResult{PoolName: poolName}
	added, err := o.gw.AddLiquidity(ctx, poolName)
	if err != nil {
		return res, err
	}
	res.AddLiquidity = added
	if !added.Success {
		res.StakeError = "staking skipped: liquidity was not added"
		return res, nil
	}
	res.Success = true
	staked, err := o.gw.Stake(ctx, poolName, chain.StakeAll)
	if err != nil {
		o.log.Warn().Str("pool", poolName).Err(err).Msg("liquidity added but staking failed")
		res.StakeError = err.Error()
		res.Partial = true
		return res, nil
	}
	res.Stake = &staked
	res.Partial = !staked.Success
	return res, nil
}

// UnstakeAndRemoveLiquidity unwinds a staked position. A missing position
// returns an all-false result without touching the chain; a failed unstake is
// a hard failure; a failed removal after a confirmed unstake leaves Success
// true with Removed false, each step independently visible.
func (o *Orchestrator) UnstakeAndRemoveLiquidity(ctx context.Context, poolName string) (UnstakeAndRemoveResult, error) {
	res := UnstakeAndRemoveResult{PoolName: poolName}

	staked, err := o.gw.GetStakedPositions(ctx)
	if err != nil {
		return res, err
	}
	hasStake := false
	for _, pos := range staked {
		if samePool(pos.PoolName, poolName) && pos.StakedRaw.Sign() > 0 {
			hasStake = true
			break
		}
	}
	if !hasStake {
		res.UnstakeError = "no staked position matching " + poolName
		return res, nil
	}

	unstaked, err := o.gw.Unstake(ctx, poolName, chain.StakeAll)
	if err != nil {
		return res, err
	}
	res.Unstake = &unstaked
	res.Unstaked = unstaked.Success
	res.Success = unstaked.Success

	removed, err := o.gw.RemoveLiquidity(ctx, poolName, chain.StakeAll)
	if err != nil {
		o.log.Warn().Str("pool", poolName).Err(err).Msg("unstaked but liquidity removal failed")
		res.RemoveError = err.Error()
		return res, nil
	}
	res.Remove = &removed
	res.Removed = removed.Success
	if !removed.Success {
		res.RemoveError = removed.Message
	}
	return res, nil
}

// WithdrawTokens moves tokens from the manager to the owner wallet. The
// amount "ALL" withdraws the full balance.
func (o *Orchestrator) WithdrawTokens(ctx context.Context, symbol, amount string) (chain.WithdrawResult, error) {
	return o.gw.Withdraw(ctx, symbol, amount)
}

// ClaimPoolRewards claims one pool's gauge rewards. A staked position with
// nothing pending short-circuits without sending a transaction.
func (o *Orchestrator) ClaimPoolRewards(ctx context.Context, poolName string) (chain.ClaimResult, error) {
	positions, err := o.gw.GetStakedPositions(ctx)
	if err == nil {
		for _, pos := range positions {
			if samePool(pos.PoolName, poolName) && pos.EarnedRaw != nil && pos.EarnedRaw.Sign() == 0 {
				o.log.Info().Str("pool", poolName).Msg("no pending rewards, skipping claim")
				return chain.ClaimResult{
					PoolName: poolName,
					Gauge:    pos.Gauge.Hex(),
					Earned:   pos.EarnedFormatted,
					Message:  "no pending rewards to claim",
				}, nil
			}
		}
	}
	return o.gw.ClaimRewards(ctx, poolName)
}

// ClaimAllPoolRewards claims every gauge whose pending rewards meet the
// configured minimum.
func (o *Orchestrator) ClaimAllPoolRewards(ctx context.Context) (chain.ClaimAllResult, error) {
	return o.gw.ClaimAllRewards(ctx)
}

// ClaimPoolFees claims one pool's accrued trading fees.
func (o *Orchestrator) ClaimPoolFees(ctx context.Context, poolName string) (chain.ClaimFeesResult, error) {
	return o.gw.ClaimFees(ctx, poolName)
}

// GetPoolClaimableFees reads one pool's accrued trading fees.
func (o *Orchestrator) GetPoolClaimableFees(ctx context.Context, poolName string) (chain.PoolFees, error) {
	return o.gw.GetClaimableFees(ctx, poolName)
}

// GetAllClaimableFees sweeps the catalog for accrued trading fees.
func (o *Orchestrator) GetAllClaimableFees(ctx context.Context) ([]chain.PoolFees, error) {
	return o.gw.GetAllClaimableFees(ctx)
}

func samePool(a, b string) bool {
	return normalizePool(a) == normalizePool(b)
}

// normalizePool uppercases, drops the stable display prefix, and sorts the
// legs so token order never affects matching.
func normalizePool(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "STABLE ")
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 2 && parts[1] < parts[0] {
		return parts[1] + "-" + parts[0]
	}
	return s
}
