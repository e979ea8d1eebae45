package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/numeric"
	"github.com/basefolio/aeromgr/internal/registry"
)

// StakeAll is the sentinel amount that stakes or unstakes the full balance.
const StakeAll = "MAX"

// resolveGauge resolves pool name -> pool address -> gauge address, failing
// with a resolution error when either hop is missing.
func (s *Session) resolveGauge(ctx context.Context, poolName string) (pool, gauge common.Address, err error) {
	tokenA, tokenB, stable, err := registry.ResolvePoolTokens(s.chain, poolName)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	pool, exists, err := s.pairAddress(ctx, tokenA.Address, tokenB.Address, stable)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if !exists {
		return common.Address{}, common.Address{}, clierr.New(clierr.CodeResolution, "pool "+poolName+" does not exist")
	}
	gauge, exists, err = s.gaugeFor(ctx, pool)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if !exists {
		return common.Address{}, common.Address{}, clierr.New(clierr.CodeResolution, "pool "+poolName+" has no gauge")
	}
	return pool, gauge, nil
}

// Stake deposits manager-held LP tokens into the pool's gauge. The amount
// "MAX" stakes the full unstaked LP balance; an explicit amount above that
// balance fails before anything is broadcast.
func (s *Session) Stake(ctx context.Context, poolName, amount string) (StakeResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return StakeResult{}, err
	}
	res := StakeResult{PoolName: poolName}
	pool, gauge, err := s.resolveGauge(ctx, poolName)
	if err != nil {
		return res, err
	}
	res.Gauge = gauge.Hex()

	vals, err := s.call(ctx, pool, registry.PoolABI, "balanceOf", manager)
	if err != nil {
		return res, err
	}
	held := big.NewInt(0)
	if len(vals) > 0 {
		held = numeric.ToUint256(vals[0])
	}
	var raw *big.Int
	if strings.EqualFold(strings.TrimSpace(amount), StakeAll) {
		raw = held
	} else {
		raw, err = numeric.ParseUnits(amount, lpDecimals)
		if err != nil {
			return res, err
		}
		if raw.Cmp(held) > 0 {
			return res, clierr.New(clierr.CodePrecondition, fmt.Sprintf(
				"insufficient LP balance in %s: requested %s, held %s",
				poolName, numeric.FormatUnits(raw, lpDecimals), numeric.FormatUnits(held, lpDecimals)))
		}
	}
	if raw.Sign() == 0 {
		return res, clierr.New(clierr.CodePrecondition, "no unstaked LP balance in "+poolName)
	}

	data, err := registry.ManagerABI.Pack("stakeLPTokens", gauge, raw)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack stakeLPTokens", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.Amount = numeric.FormatUnits(raw, lpDecimals)
	res.Message = fmt.Sprintf("staked %s LP in %s gauge", res.Amount, poolName)
	return res, nil
}

// Unstake withdraws staked LP tokens from the pool's gauge back to the
// manager. The amount "MAX" unstakes the full gauge balance; an explicit
// amount above that balance fails before anything is broadcast.
func (s *Session) Unstake(ctx context.Context, poolName, amount string) (StakeResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return StakeResult{}, err
	}
	res := StakeResult{PoolName: poolName}
	_, gauge, err := s.resolveGauge(ctx, poolName)
	if err != nil {
		return res, err
	}
	res.Gauge = gauge.Hex()

	vals, err := s.call(ctx, gauge, registry.GaugeABI, "balanceOf", manager)
	if err != nil {
		return res, err
	}
	held := big.NewInt(0)
	if len(vals) > 0 {
		held = numeric.ToUint256(vals[0])
	}
	var raw *big.Int
	if strings.EqualFold(strings.TrimSpace(amount), StakeAll) {
		raw = held
	} else {
		raw, err = numeric.ParseUnits(amount, lpDecimals)
		if err != nil {
			return res, err
		}
		if raw.Cmp(held) > 0 {
			return res, clierr.New(clierr.CodePrecondition, fmt.Sprintf(
				"insufficient staked LP balance in %s: requested %s, staked %s",
				poolName, numeric.FormatUnits(raw, lpDecimals), numeric.FormatUnits(held, lpDecimals)))
		}
	}
	if raw.Sign() == 0 {
		return res, clierr.New(clierr.CodePrecondition, "no staked LP balance in "+poolName)
	}

	data, err := registry.ManagerABI.Pack("unstakeLPTokens", gauge, raw)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack unstakeLPTokens", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.Amount = numeric.FormatUnits(raw, lpDecimals)
	res.Message = fmt.Sprintf("unstaked %s LP from %s gauge", res.Amount, poolName)
	return res, nil
}

// ClaimRewards claims the pending gauge rewards of one pool regardless of the
// pending amount.
func (s *Session) ClaimRewards(ctx context.Context, poolName string) (ClaimResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return ClaimResult{}, err
	}
	res := ClaimResult{PoolName: poolName}
	_, gauge, err := s.resolveGauge(ctx, poolName)
	if err != nil {
		return res, err
	}
	return s.claimGauge(ctx, manager, gauge, poolName)
}

func (s *Session) claimGauge(ctx context.Context, manager, gauge common.Address, poolName string) (ClaimResult, error) {
	res := ClaimResult{PoolName: poolName, Gauge: gauge.Hex()}
	rewardDecimals := 18
	if reward, ok := registry.Token(s.chain, registry.RewardTokenSymbol); ok {
		rewardDecimals = reward.Decimals
	}
	earned := big.NewInt(0)
	if vals, err := s.call(ctx, gauge, registry.GaugeABI, "earned", manager); err == nil && len(vals) > 0 {
		earned = numeric.ToUint256(vals[0])
	}
	res.Earned = numeric.FormatUnits(earned, rewardDecimals)

	data, err := registry.ManagerABI.Pack("claimRewards", gauge)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack claimRewards", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.Message = fmt.Sprintf("claimed %s %s from %s", res.Earned, registry.RewardTokenSymbol, poolName)
	return res, nil
}

// ClaimAllRewards sweeps every staked position and claims each gauge whose
// pending rewards meet the configured minimum. Claims are independent: a
// failed gauge is reported and skipped, not fatal.
func (s *Session) ClaimAllRewards(ctx context.Context) (ClaimAllResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return ClaimAllResult{}, err
	}
	rewardDecimals := 18
	if reward, ok := registry.Token(s.chain, registry.RewardTokenSymbol); ok {
		rewardDecimals = reward.Decimals
	}
	threshold, err := numeric.ParseUnits(s.minClaim, rewardDecimals)
	if err != nil {
		return ClaimAllResult{}, clierr.Wrap(clierr.CodeConfig, "parse rewards.min_claim", err)
	}

	staked, err := s.GetStakedPositions(ctx)
	if err != nil {
		return ClaimAllResult{}, err
	}
	result := ClaimAllResult{Claims: []ClaimResult{}}
	total := big.NewInt(0)
	for _, pos := range staked {
		if pos.EarnedRaw.Cmp(threshold) < 0 {
			s.log.Debug().
				Str("pool", pos.PoolName).
				Str("earned", pos.EarnedFormatted).
				Str("min", s.minClaim).
				Msg("skipping gauge below claim threshold")
			continue
		}
		claim, err := s.claimGauge(ctx, manager, pos.Gauge, pos.PoolName)
		if err != nil {
			claim.Message = err.Error()
			s.log.Warn().Str("pool", pos.PoolName).Err(err).Msg("reward claim failed")
		} else {
			total.Add(total, pos.EarnedRaw)
		}
		result.Claims = append(result.Claims, claim)
	}
	result.TotalEarned = numeric.FormatUnits(total, rewardDecimals)
	for _, claim := range result.Claims {
		if claim.Success {
			result.Success = true
			break
		}
	}
	if len(result.Claims) == 0 {
		result.Message = "no gauges met the claim threshold"
	} else if !result.Success {
		result.Message = "all reward claims failed"
	} else {
		result.Message = fmt.Sprintf("claimed %s %s across %d gauges", result.TotalEarned, registry.RewardTokenSymbol, len(result.Claims))
	}
	return result, nil
}
