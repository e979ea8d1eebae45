package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/numeric"
	"github.com/basefolio/aeromgr/internal/registry"
)

// WithdrawAll is the sentinel amount that withdraws the full manager balance.
const WithdrawAll = "ALL"

// addLiquidityGasLimit skips estimation: router-mediated mints are routinely
// underestimated on Base.
const addLiquidityGasLimit = 1_200_000

// liquidityDeadline bounds router execution of an add/remove.
const liquidityDeadline = 30 * time.Minute

// Deposit moves tokens from the owner wallet into the manager, first granting
// the manager an allowance when the current one is insufficient.
func (s *Session) Deposit(ctx context.Context, symbol, amount string) (DepositResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return DepositResult{}, err
	}
	token, ok := registry.Token(s.chain, symbol)
	if !ok {
		return DepositResult{}, clierr.New(clierr.CodeResolution, "unknown token symbol "+symbol)
	}
	raw, err := numeric.ParseUnits(amount, token.Decimals)
	if err != nil {
		return DepositResult{}, err
	}
	if raw.Sign() == 0 {
		return DepositResult{}, clierr.New(clierr.CodeUsage, "deposit amount must be positive")
	}
	res := DepositResult{Symbol: token.Symbol, Amount: numeric.FormatUnits(raw, token.Decimals)}

	owner := s.signer.Address()
	vals, err := s.call(ctx, token.Address, registry.ERC20ABI, "allowance", owner, manager)
	if err != nil {
		return res, err
	}
	allowance := big.NewInt(0)
	if len(vals) > 0 {
		allowance = numeric.ToUint256(vals[0])
	}
	if allowance.Cmp(raw) < 0 {
		data, err := registry.ERC20ABI.Pack("approve", manager, raw)
		if err != nil {
			return res, clierr.Wrap(clierr.CodeInternal, "pack approve", err)
		}
		receipt, err := s.submitAndWait(ctx, token.Address, data, defaultTxOptions())
		if err != nil {
			return res, clierr.Wrap(clierr.CodeChain, "approve "+token.Symbol+" for manager", err)
		}
		res.ApprovalTx = receipt.TxHash.Hex()
	}

	data, err := registry.ManagerABI.Pack("depositToken", token.Address, raw)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack depositToken", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.Message = fmt.Sprintf("deposited %s %s", res.Amount, token.Symbol)
	return res, nil
}

// Withdraw moves tokens from the manager back to the owner wallet. The
// amount "ALL" (case-insensitive) withdraws the full current balance.
func (s *Session) Withdraw(ctx context.Context, symbol, amount string) (WithdrawResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return WithdrawResult{}, err
	}
	token, ok := registry.Token(s.chain, symbol)
	if !ok {
		return WithdrawResult{}, clierr.New(clierr.CodeResolution, "unknown token symbol "+symbol)
	}

	var raw *big.Int
	if strings.EqualFold(strings.TrimSpace(amount), WithdrawAll) {
		balance, err := s.GetTokenBalance(ctx, symbol)
		if err != nil {
			return WithdrawResult{}, err
		}
		raw = balance.Raw
	} else {
		raw, err = numeric.ParseUnits(amount, token.Decimals)
		if err != nil {
			return WithdrawResult{}, err
		}
	}
	res := WithdrawResult{Symbol: token.Symbol, Amount: numeric.FormatUnits(raw, token.Decimals)}
	if raw.Sign() == 0 {
		return res, clierr.New(clierr.CodePrecondition, "no "+token.Symbol+" balance to withdraw")
	}

	data, err := registry.ManagerABI.Pack("withdrawToken", token.Address, raw)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack withdrawToken", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.Message = fmt.Sprintf("withdrew %s %s", res.Amount, token.Symbol)
	return res, nil
}

// AddLiquidity supplies the manager's entire balance of both pool legs; there
// is no partial-amount path. It verifies both balances before submitting
// anything, derives minimums from the pool's slippage tolerance, and reports
// the minted LP amount when the contract's event can be decoded.
func (s *Session) AddLiquidity(ctx context.Context, poolName string) (AddLiquidityResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return AddLiquidityResult{}, err
	}
	tokenA, tokenB, stable, err := registry.ResolvePoolTokens(s.chain, poolName)
	if err != nil {
		return AddLiquidityResult{}, err
	}
	slippageBps := registry.PoolSlippageBps(s.chain, poolName)
	res := AddLiquidityResult{PoolName: poolName}

	// Balance preconditions run before any state-changing call.
	balances := make([]*big.Int, 2)
	for i, token := range []registry.TokenInfo{tokenA, tokenB} {
		balance, err := s.GetTokenBalance(ctx, token.Symbol)
		if err != nil {
			return res, err
		}
		if balance.Raw.Sign() == 0 {
			return res, clierr.New(clierr.CodePrecondition,
				fmt.Sprintf("no %s balance in manager to supply to %s", token.Symbol, poolName))
		}
		balances[i] = balance.Raw
	}
	rawA, rawB := balances[0], balances[1]

	minA := numeric.SlippageMinimum(rawA, slippageBps)
	minB := numeric.SlippageMinimum(rawB, slippageBps)
	deadline := big.NewInt(time.Now().Add(liquidityDeadline).Unix())
	data, err := registry.ManagerABI.Pack("addLiquidityAerodrome",
		tokenA.Address, tokenB.Address, stable, rawA, rawB, minA, minB, deadline)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack addLiquidityAerodrome", err)
	}
	opts := defaultTxOptions()
	opts.GasLimit = addLiquidityGasLimit
	receipt, err := s.submitAndWait(ctx, manager, data, opts)
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.AmountA = numeric.FormatUnits(rawA, tokenA.Decimals)
	res.AmountB = numeric.FormatUnits(rawB, tokenB.Decimals)
	res.Message = fmt.Sprintf("added %s %s and %s %s to %s", res.AmountA, tokenA.Symbol, res.AmountB, tokenB.Symbol, poolName)
	res.LPTokenInfo = s.parseLiquidityAdded(receipt)
	return res, nil
}

// parseLiquidityAdded extracts the minted LP amount from the receipt. Decode
// failures leave the field nil; the operation already succeeded.
func (s *Session) parseLiquidityAdded(receipt *types.Receipt) *LPTokenInfo {
	event := registry.ManagerABI.Events["LiquidityAdded"]
	for _, entry := range receipt.Logs {
		if entry == nil || len(entry.Topics) == 0 || entry.Topics[0] != event.ID {
			continue
		}
		vals, err := event.Inputs.Unpack(entry.Data)
		if err != nil || len(vals) < 5 {
			s.log.Debug().Err(err).Msg("LiquidityAdded decode failed")
			return nil
		}
		amount := numeric.ToUint256(vals[4])
		return &LPTokenInfo{Amount: amount, Formatted: numeric.FormatUnits(amount, lpDecimals)}
	}
	return nil
}

// RemoveLiquidity burns manager-held LP tokens of a pool. The amount "MAX"
// (case-insensitive) removes the full LP balance. Output minimums are left at
// zero: removal pays out pool-proportionally and the router enforces the
// deadline.
func (s *Session) RemoveLiquidity(ctx context.Context, poolName, amount string) (RemoveLiquidityResult, error) {
	manager, err := s.requireManager()
	if err != nil {
		return RemoveLiquidityResult{}, err
	}
	tokenA, tokenB, stable, err := registry.ResolvePoolTokens(s.chain, poolName)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}
	res := RemoveLiquidityResult{PoolName: poolName}

	pool, exists, err := s.pairAddress(ctx, tokenA.Address, tokenB.Address, stable)
	if err != nil {
		return res, err
	}
	if !exists {
		return res, clierr.New(clierr.CodeResolution, "pool "+poolName+" does not exist")
	}

	var raw *big.Int
	if strings.EqualFold(strings.TrimSpace(amount), "MAX") {
		vals, err := s.call(ctx, pool, registry.PoolABI, "balanceOf", manager)
		if err != nil {
			return res, err
		}
		raw = big.NewInt(0)
		if len(vals) > 0 {
			raw = numeric.ToUint256(vals[0])
		}
	} else {
		raw, err = numeric.ParseUnits(amount, lpDecimals)
		if err != nil {
			return res, err
		}
	}
	if raw.Sign() == 0 {
		return res, clierr.New(clierr.CodePrecondition, "no LP balance in "+poolName+" to remove")
	}

	deadline := big.NewInt(time.Now().Add(liquidityDeadline).Unix())
	data, err := registry.ManagerABI.Pack("removeLiquidityAerodrome",
		tokenA.Address, tokenB.Address, stable, raw, big.NewInt(0), big.NewInt(0), deadline)
	if err != nil {
		return res, clierr.Wrap(clierr.CodeInternal, "pack removeLiquidityAerodrome", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return res, err
	}
	res.Success = true
	res.TxHash = receipt.TxHash.Hex()
	res.Amount = numeric.FormatUnits(raw, lpDecimals)
	res.Message = fmt.Sprintf("removed %s LP from %s", res.Amount, poolName)
	return res, nil
}
