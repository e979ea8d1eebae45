package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/basefolio/aeromgr/internal/numeric"
	"github.com/basefolio/aeromgr/internal/registry"
)

// lpDecimals is fixed by the Aerodrome pool implementation.
const lpDecimals = 18

// GetLPPositions enumerates the manager's unstaked LP holdings. When the
// manager exposes position enumeration that list is authoritative; otherwise
// the catalog pairs are swept through the pool factory.
func (s *Session) GetLPPositions(ctx context.Context) ([]LPPosition, error) {
	manager, err := s.requireManager()
	if err != nil {
		return nil, err
	}
	if s.Capabilities().HasPositionEnum {
		return s.enumeratedPositions(ctx, manager)
	}
	return s.sweptPositions(ctx, manager)
}

func (s *Session) enumeratedPositions(ctx context.Context, manager common.Address) ([]LPPosition, error) {
	vals, err := s.call(ctx, manager, registry.ManagerABI, "getPositions")
	if err != nil {
		return nil, err
	}
	if len(vals) < 2 {
		return nil, nil
	}
	lpTokens, _ := vals[0].([]common.Address)
	rawBalances, _ := vals[1].([]*big.Int)
	positions := make([]LPPosition, 0, len(lpTokens))
	for i, lp := range lpTokens {
		var raw *big.Int
		if i < len(rawBalances) {
			raw = numeric.ToUint256(rawBalances[i])
		} else {
			raw = big.NewInt(0)
		}
		if raw.Sign() == 0 {
			continue
		}
		pos, err := s.describePool(ctx, lp, raw)
		if err != nil {
			s.log.Warn().Str("lp_token", lp.Hex()).Err(err).Msg("skipping undescribable position")
			continue
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func (s *Session) sweptPositions(ctx context.Context, manager common.Address) ([]LPPosition, error) {
	var positions []LPPosition
	for _, pool := range s.candidatePools(ctx) {
		vals, err := s.call(ctx, pool, registry.PoolABI, "balanceOf", manager)
		if err != nil {
			s.log.Warn().Str("pool", pool.Hex()).Err(err).Msg("pool balance read failed")
			continue
		}
		raw := big.NewInt(0)
		if len(vals) > 0 {
			raw = numeric.ToUint256(vals[0])
		}
		if raw.Sign() == 0 {
			continue
		}
		pos, err := s.describePool(ctx, pool, raw)
		if err != nil {
			s.log.Warn().Str("pool", pool.Hex()).Err(err).Msg("skipping undescribable position")
			continue
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// candidatePools resolves every catalog pair to a live pool address,
// deduplicated and with nonexistent pools dropped.
func (s *Session) candidatePools(ctx context.Context) []common.Address {
	seen := make(map[common.Address]bool)
	var pools []common.Address
	for _, combo := range registry.CandidatePairs(s.chain) {
		addr, exists, err := s.pairAddress(ctx, combo.TokenA.Address, combo.TokenB.Address, combo.Stable)
		if err != nil {
			s.log.Warn().
				Str("token_a", combo.TokenA.Symbol).
				Str("token_b", combo.TokenB.Symbol).
				Bool("stable", combo.Stable).
				Err(err).
				Msg("pair lookup failed")
			continue
		}
		if !exists || seen[addr] {
			continue
		}
		seen[addr] = true
		pools = append(pools, addr)
	}
	return pools
}

// stakeCandidates extends the catalog pools with the LP tokens the manager
// enumerates, so stakes in pools outside the token table are still found. The
// enumeration is read raw: a fully staked position holds zero unstaked LP, so
// zero-balance entries stay in the candidate set.
func (s *Session) stakeCandidates(ctx context.Context, manager common.Address) []common.Address {
	pools := s.candidatePools(ctx)
	if !s.Capabilities().HasPositionEnum {
		return pools
	}
	seen := make(map[common.Address]bool, len(pools))
	for _, pool := range pools {
		seen[pool] = true
	}
	vals, err := s.call(ctx, manager, registry.ManagerABI, "getPositions")
	if err != nil {
		s.log.Warn().Err(err).Msg("position enumeration failed")
		return pools
	}
	if len(vals) == 0 {
		return pools
	}
	lpTokens, _ := vals[0].([]common.Address)
	for _, lp := range lpTokens {
		if lp == (common.Address{}) || seen[lp] {
			continue
		}
		seen[lp] = true
		pools = append(pools, lp)
	}
	return pools
}

// describePool fills the pool metadata for an LP holding; unknown token pairs
// are reported under "Unknown Pool" rather than dropped.
func (s *Session) describePool(ctx context.Context, pool common.Address, raw *big.Int) (LPPosition, error) {
	pos := LPPosition{
		LPToken:   pool,
		Raw:       raw,
		Formatted: numeric.FormatUnits(raw, lpDecimals),
		PoolName:  "Unknown Pool",
	}
	if vals, err := s.call(ctx, pool, registry.PoolABI, "token0"); err == nil {
		pos.Token0, _ = vals[0].(common.Address)
	} else {
		return pos, err
	}
	if vals, err := s.call(ctx, pool, registry.PoolABI, "token1"); err == nil {
		pos.Token1, _ = vals[0].(common.Address)
	} else {
		return pos, err
	}
	if vals, err := s.call(ctx, pool, registry.PoolABI, "stable"); err == nil {
		pos.Stable, _ = vals[0].(bool)
	}
	if name, ok := registry.DisplayPoolName(s.chain, pos.Token0, pos.Token1); ok {
		pos.PoolName = name
		if pos.Stable {
			pos.PoolName = "Stable " + name
		}
	}
	return pos, nil
}

// GetStakedPositions sweeps the gauges of every candidate pool — the catalog
// pairs plus the pools the manager itself enumerates, deduplicated by LP token
// address — for stakes held by the manager. Gauge balances and pending rewards
// are always read fresh. One failing gauge does not abort the sweep.
func (s *Session) GetStakedPositions(ctx context.Context) ([]StakedPosition, error) {
	manager, err := s.requireManager()
	if err != nil {
		return nil, err
	}
	rewardDecimals := 18
	if reward, ok := registry.Token(s.chain, registry.RewardTokenSymbol); ok {
		rewardDecimals = reward.Decimals
	}
	var staked []StakedPosition
	for _, pool := range s.stakeCandidates(ctx, manager) {
		gauge, exists, err := s.gaugeFor(ctx, pool)
		if err != nil || !exists {
			if err != nil {
				s.log.Warn().Str("pool", pool.Hex()).Err(err).Msg("gauge lookup failed")
			}
			continue
		}
		vals, err := s.call(ctx, gauge, registry.GaugeABI, "balanceOf", manager)
		if err != nil {
			s.log.Warn().Str("gauge", gauge.Hex()).Err(err).Msg("gauge balance read failed")
			continue
		}
		raw := big.NewInt(0)
		if len(vals) > 0 {
			raw = numeric.ToUint256(vals[0])
		}
		if raw.Sign() == 0 {
			continue
		}
		pos, err := s.describePool(ctx, pool, raw)
		if err != nil {
			s.log.Warn().Str("pool", pool.Hex()).Err(err).Msg("skipping undescribable stake")
			continue
		}
		entry := StakedPosition{
			LPPosition:      pos,
			Gauge:           gauge,
			StakedRaw:       raw,
			StakedFormatted: numeric.FormatUnits(raw, lpDecimals),
			EarnedRaw:       big.NewInt(0),
		}
		if vals, err := s.call(ctx, gauge, registry.GaugeABI, "earned", manager); err == nil && len(vals) > 0 {
			entry.EarnedRaw = numeric.ToUint256(vals[0])
		} else if err != nil {
			s.log.Warn().Str("gauge", gauge.Hex()).Err(err).Msg("earned read failed")
		}
		entry.EarnedFormatted = numeric.FormatUnits(entry.EarnedRaw, rewardDecimals)
		staked = append(staked, entry)
	}
	return staked, nil
}
