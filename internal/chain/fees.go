package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/numeric"
	"github.com/basefolio/aeromgr/internal/registry"
)

// GetClaimableFees reads the accrued trading fees of one pool. The manager's
// aggregate accessor is preferred; contracts without it are served by reading
// the pool directly.
func (s *Session) GetClaimableFees(ctx context.Context, poolName string) (PoolFees, error) {
	manager, err := s.requireManager()
	if err != nil {
		return PoolFees{}, err
	}
	tokenA, tokenB, stable, err := registry.ResolvePoolTokens(s.chain, poolName)
	if err != nil {
		return PoolFees{}, err
	}
	pool, exists, err := s.pairAddress(ctx, tokenA.Address, tokenB.Address, stable)
	if err != nil {
		return PoolFees{}, err
	}
	if !exists {
		return PoolFees{}, clierr.New(clierr.CodeResolution, "pool "+poolName+" does not exist")
	}
	return s.poolFees(ctx, manager, pool, poolName, tokenA, tokenB, stable)
}

func (s *Session) poolFees(ctx context.Context, manager, pool common.Address, poolName string, tokenA, tokenB registry.TokenInfo, stable bool) (PoolFees, error) {
	var breakdown FeeBreakdown
	var err error
	if s.Capabilities().HasFeeAggregate {
		breakdown, err = s.aggregateFees(ctx, manager, tokenA.Address, tokenB.Address, stable)
	} else {
		breakdown, err = s.directFees(ctx, manager, pool)
	}
	if err != nil {
		return PoolFees{}, err
	}

	// The pool orders tokens itself; map symbols through token0/token1 so the
	// claimable amounts land on the right legs.
	token0, token1 := tokenA, tokenB
	if vals, err := s.call(ctx, pool, registry.PoolABI, "token0"); err == nil {
		if addr, ok := vals[0].(common.Address); ok && addr == tokenB.Address {
			token0, token1 = tokenB, tokenA
		}
	}
	return PoolFees{
		PoolName:     poolName,
		Pool:         pool.Hex(),
		LPBalanceRaw: breakdown.LPBalance,
		LPBalance:    numeric.FormatUnits(breakdown.LPBalance, lpDecimals),
		Token0Symbol: token0.Symbol,
		Token1Symbol: token1.Symbol,
		Claimable0:   breakdown.Claimable0,
		Claimable1:   breakdown.Claimable1,
		Fee0:         numeric.FormatUnits(breakdown.Claimable0, token0.Decimals),
		Fee1:         numeric.FormatUnits(breakdown.Claimable1, token1.Decimals),
	}, nil
}

func (s *Session) aggregateFees(ctx context.Context, manager, tokenA, tokenB common.Address, stable bool) (FeeBreakdown, error) {
	vals, err := s.call(ctx, manager, registry.ManagerABI, "getClaimableFees", tokenA, tokenB, stable)
	if err != nil {
		return FeeBreakdown{}, err
	}
	breakdown := FeeBreakdown{LPBalance: big.NewInt(0), Claimable0: big.NewInt(0), Claimable1: big.NewInt(0)}
	if len(vals) > 0 {
		breakdown.LPBalance = numeric.ToUint256(vals[0])
	}
	if len(vals) > 1 {
		breakdown.Claimable0 = numeric.ToUint256(vals[1])
	}
	if len(vals) > 2 {
		breakdown.Claimable1 = numeric.ToUint256(vals[2])
	}
	return breakdown, nil
}

func (s *Session) directFees(ctx context.Context, manager, pool common.Address) (FeeBreakdown, error) {
	breakdown := FeeBreakdown{LPBalance: big.NewInt(0), Claimable0: big.NewInt(0), Claimable1: big.NewInt(0)}
	reads := []struct {
		method string
		dst    **big.Int
	}{
		{"balanceOf", &breakdown.LPBalance},
		{"claimable0", &breakdown.Claimable0},
		{"claimable1", &breakdown.Claimable1},
	}
	for _, read := range reads {
		vals, err := s.call(ctx, pool, registry.PoolABI, read.method, manager)
		if err != nil {
			return FeeBreakdown{}, err
		}
		if len(vals) > 0 {
			*read.dst = numeric.ToUint256(vals[0])
		}
	}
	return breakdown, nil
}

// GetAllClaimableFees sweeps the catalog pools for accrued fees. A failing
// pool is logged and skipped; pools without an LP stake or pending fees are
// omitted.
func (s *Session) GetAllClaimableFees(ctx context.Context) ([]PoolFees, error) {
	manager, err := s.requireManager()
	if err != nil {
		return nil, err
	}
	var all []PoolFees
	for _, p := range registry.Pools(s.chain) {
		pool, exists, err := s.pairAddress(ctx, p.TokenA.Address, p.TokenB.Address, p.Stable)
		if err != nil || !exists {
			if err != nil {
				s.log.Warn().Str("pool", p.Name).Err(err).Msg("pair lookup failed")
			}
			continue
		}
		fees, err := s.poolFees(ctx, manager, pool, p.Name, p.TokenA, p.TokenB, p.Stable)
		if err != nil {
			s.log.Warn().Str("pool", p.Name).Err(err).Msg("fee read failed")
			continue
		}
		if fees.LPBalanceRaw.Sign() == 0 && fees.Claimable0.Sign() == 0 && fees.Claimable1.Sign() == 0 {
			continue
		}
		all = append(all, fees)
	}
	return all, nil
}

// ClaimFees claims the accrued trading fees of one pool to the manager. Fee
// claims ride a moderately boosted fee so they confirm promptly during base
// fee swings.
func (s *Session) ClaimFees(ctx context.Context, poolName string) (ClaimFeesResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return ClaimFeesResult{}, err
	}
	tokenA, tokenB, stable, err := registry.ResolvePoolTokens(s.chain, poolName)
	if err != nil {
		return ClaimFeesResult{}, err
	}
	res := ClaimFeesResult{Amount0: "0.0", Amount1: "0.0"}

	data, err := registry.ManagerABI.Pack("claimFees", tokenA.Address, tokenB.Address, stable)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack claimFees", err)
	}
	opts := defaultTxOptions()
	opts.FeeNum, opts.FeeDen = 3, 2
	opts.TipNum, opts.TipDen = 2, 1
	receipt, err := s.submitAndWait(ctx, manager, data, opts)
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	amount0, amount1 := s.parseFeesClaimed(receipt)

	// Map event amounts onto the pool's token ordering for display.
	token0, token1 := tokenA, tokenB
	if pool, exists, err := s.pairAddress(ctx, tokenA.Address, tokenB.Address, stable); err == nil && exists {
		if vals, err := s.call(ctx, pool, registry.PoolABI, "token0"); err == nil {
			if addr, ok := vals[0].(common.Address); ok && addr == tokenB.Address {
				token0, token1 = tokenB, tokenA
			}
		}
	}
	res.Amount0 = numeric.FormatUnits(amount0, token0.Decimals)
	res.Amount1 = numeric.FormatUnits(amount1, token1.Decimals)
	res.Message = fmt.Sprintf("claimed %s %s and %s %s from %s", res.Amount0, token0.Symbol, res.Amount1, token1.Symbol, poolName)
	return res, nil
}

// parseFeesClaimed extracts claimed amounts from the receipt, defaulting both
// to zero when the event is absent or undecodable.
func (s *Session) parseFeesClaimed(receipt *types.Receipt) (*big.Int, *big.Int) {
	event := registry.ManagerABI.Events["FeesClaimed"]
	for _, entry := range receipt.Logs {
		if entry == nil || len(entry.Topics) == 0 || entry.Topics[0] != event.ID {
			continue
		}
		vals, err := event.Inputs.Unpack(entry.Data)
		if err != nil || len(vals) < 3 {
			s.log.Debug().Err(err).Msg("FeesClaimed decode failed")
			break
		}
		return numeric.ToUint256(vals[1]), numeric.ToUint256(vals[2])
	}
	return big.NewInt(0), big.NewInt(0)
}
