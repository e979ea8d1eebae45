package app

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/basefolio/aeromgr/internal/chain"
	"github.com/basefolio/aeromgr/internal/config"
	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/orchestrator"
	"github.com/basefolio/aeromgr/internal/version"
)

// fakeGateway scripts the session surface so command wiring can be tested
// without an RPC endpoint. Methods without a hook return zero values.
type fakeGateway struct {
	initErr error

	balances     func() ([]chain.TokenBalance, error)
	deposit      func(symbol, amount string) (chain.DepositResult, error)
	withdraw     func(symbol, amount string) (chain.WithdrawResult, error)
	addLiquidity func(pool string) (chain.AddLiquidityResult, error)
	stake        func(pool, amount string) (chain.StakeResult, error)
	staked       func() ([]chain.StakedPosition, error)
	claimAll     func() (chain.ClaimAllResult, error)
	fees         func(pool string) (chain.PoolFees, error)
}

func (f *fakeGateway) Initialize(context.Context) (chain.InitResult, error) {
	if f.initErr != nil {
		return chain.InitResult{}, f.initErr
	}
	return chain.InitResult{Success: true, ManagerAddress: "0x00000000000000000000000000000000000000a1"}, nil
}

func (f *fakeGateway) CreateManager(context.Context) (chain.CreateManagerResult, error) {
	return chain.CreateManagerResult{}, nil
}

func (f *fakeGateway) GetBalances(context.Context) ([]chain.TokenBalance, error) {
	if f.balances != nil {
		return f.balances()
	}
	return nil, nil
}

func (f *fakeGateway) GetTokenBalance(_ context.Context, symbol string) (chain.TokenBalance, error) {
	return chain.TokenBalance{Symbol: symbol}, nil
}

func (f *fakeGateway) GetLPPositions(context.Context) ([]chain.LPPosition, error) {
	return nil, nil
}

func (f *fakeGateway) GetStakedPositions(context.Context) ([]chain.StakedPosition, error) {
	if f.staked != nil {
		return f.staked()
	}
	return nil, nil
}

func (f *fakeGateway) Deposit(_ context.Context, symbol, amount string) (chain.DepositResult, error) {
	if f.deposit != nil {
		return f.deposit(symbol, amount)
	}
	return chain.DepositResult{Success: true, Symbol: symbol, Amount: amount}, nil
}

func (f *fakeGateway) Withdraw(_ context.Context, symbol, amount string) (chain.WithdrawResult, error) {
	if f.withdraw != nil {
		return f.withdraw(symbol, amount)
	}
	return chain.WithdrawResult{Success: true, Symbol: symbol, Amount: amount}, nil
}

func (f *fakeGateway) AddLiquidity(_ context.Context, pool string) (chain.AddLiquidityResult, error) {
	if f.addLiquidity != nil {
		return f.addLiquidity(pool)
	}
	return chain.AddLiquidityResult{Success: true, PoolName: pool}, nil
}

func (f *fakeGateway) RemoveLiquidity(_ context.Context, pool, amount string) (chain.RemoveLiquidityResult, error) {
	return chain.RemoveLiquidityResult{Success: true, PoolName: pool, Amount: amount}, nil
}

func (f *fakeGateway) Stake(_ context.Context, pool, amount string) (chain.StakeResult, error) {
	if f.stake != nil {
		return f.stake(pool, amount)
	}
	return chain.StakeResult{Success: true, PoolName: pool, Amount: amount}, nil
}

func (f *fakeGateway) Unstake(_ context.Context, pool, amount string) (chain.StakeResult, error) {
	return chain.StakeResult{Success: true, PoolName: pool, Amount: amount}, nil
}

func (f *fakeGateway) ClaimRewards(_ context.Context, pool string) (chain.ClaimResult, error) {
	return chain.ClaimResult{Success: true, PoolName: pool}, nil
}

func (f *fakeGateway) ClaimAllRewards(context.Context) (chain.ClaimAllResult, error) {
	if f.claimAll != nil {
		return f.claimAll()
	}
	return chain.ClaimAllResult{Success: true}, nil
}

func (f *fakeGateway) GetClaimableFees(_ context.Context, pool string) (chain.PoolFees, error) {
	if f.fees != nil {
		return f.fees(pool)
	}
	return chain.PoolFees{PoolName: pool}, nil
}

func (f *fakeGateway) GetAllClaimableFees(context.Context) ([]chain.PoolFees, error) {
	return nil, nil
}

func (f *fakeGateway) ClaimFees(_ context.Context, pool string) (chain.ClaimFeesResult, error) {
	return chain.ClaimFeesResult{Success: true}, nil
}

var _ orchestrator.Gateway = (*fakeGateway)(nil)

type envelopeShape struct {
	Version string          `json:"version"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		Operation string `json:"operation"`
		ChainID   int64  `json:"chain_id"`
		Partial   bool   `json:"partial"`
	} `json:"meta"`
}

func newTestRunner(t *testing.T, gw *fakeGateway) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("AEROMGR_RPC_URL", "http://localhost:8545")
	t.Setenv("AEROMGR_LOG_LEVEL", "error")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	r := NewRunnerWithWriters(stdout, stderr)
	r.newGateway = func(context.Context, config.Settings, zerolog.Logger) (orchestrator.Gateway, func(), error) {
		return gw, func() {}, nil
	}
	return r, stdout, stderr
}

func decodeEnvelope(t *testing.T, buf *bytes.Buffer) envelopeShape {
	t.Helper()
	var env envelopeShape
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env), "output: %s", buf.String())
	return env
}

func TestVersionCommand(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &fakeGateway{})
	code := r.Run([]string{"version"})
	require.Equal(t, 0, code)
	require.Equal(t, version.CLIVersion, strings.TrimSpace(stdout.String()))
}

func TestBalancesEnvelope(t *testing.T) {
	gw := &fakeGateway{
		balances: func() ([]chain.TokenBalance, error) {
			return []chain.TokenBalance{{Symbol: "USDC", Formatted: "100.0", Decimals: 6}}, nil
		},
	}
	r, stdout, _ := newTestRunner(t, gw)

	code := r.Run([]string{"balances"})
	require.Equal(t, 0, code)

	env := decodeEnvelope(t, stdout)
	require.True(t, env.Success)
	require.Equal(t, "balances", env.Meta.Operation)
	require.Equal(t, int64(8453), env.Meta.ChainID)

	var data []chain.TokenBalance
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 1)
	require.Equal(t, "100.0", data[0].Formatted)
}

func TestReadOnlyBlocksDeposit(t *testing.T) {
	r, _, stderr := newTestRunner(t, &fakeGateway{})

	code := r.Run([]string{"deposit", "--token", "USDC", "--amount", "5", "--read-only"})
	require.Equal(t, clierr.ExitCode(clierr.New(clierr.CodeBlocked, "")), code)

	env := decodeEnvelope(t, stderr)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	require.Contains(t, env.Error.Message, "read-only")
}

func TestReadOnlyAllowsReads(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &fakeGateway{})
	code := r.Run([]string{"positions", "--read-only"})
	require.Equal(t, 0, code)
	require.True(t, decodeEnvelope(t, stdout).Success)
}

func TestAddLiquidityStakePartialEnvelope(t *testing.T) {
	gw := &fakeGateway{
		addLiquidity: func(pool string) (chain.AddLiquidityResult, error) {
			return chain.AddLiquidityResult{Success: true, PoolName: pool, TxHash: "0xadd"}, nil
		},
		stake: func(pool, amount string) (chain.StakeResult, error) {
			return chain.StakeResult{}, clierr.New(clierr.CodeChain, "gauge deposit reverted")
		},
	}
	r, stdout, _ := newTestRunner(t, gw)

	code := r.Run([]string{"add-liquidity", "--pool", "USDC-WETH", "--stake"})
	require.Equal(t, 0, code, "a partial outcome still renders a result envelope")

	env := decodeEnvelope(t, stdout)
	require.True(t, env.Success, "the liquidity was added")
	require.True(t, env.Meta.Partial)
	require.Nil(t, env.Error)
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	r, _, _ := newTestRunner(t, &fakeGateway{})
	require.Equal(t, 2, r.Run([]string{"definitely-not-a-command"}))
}

func TestInitFailureSurfacesChainError(t *testing.T) {
	gw := &fakeGateway{initErr: clierr.New(clierr.CodeChain, "rpc unreachable")}
	r, _, stderr := newTestRunner(t, gw)

	code := r.Run([]string{"balances"})
	require.Equal(t, 13, code)
	env := decodeEnvelope(t, stderr)
	require.Equal(t, 13, env.Error.Code)
}

func TestMutatingOperationIsJournaled(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &fakeGateway{})

	code := r.Run([]string{"deposit", "--token", "USDC", "--amount", "5"})
	require.Equal(t, 0, code)
	stdout.Reset()

	// A fresh runner shares the same XDG_CACHE_HOME, so history sees the
	// journal written by the deposit above.
	code = r.Run([]string{"history", "--operation", "deposit"})
	require.Equal(t, 0, code)

	env := decodeEnvelope(t, stdout)
	require.True(t, env.Success)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "deposit", entries[0]["operation"])
}

func TestPlainOutputMode(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &fakeGateway{})
	code := r.Run([]string{"positions", "--plain"})
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "success=true")
}

func TestSchemaDescribesCommands(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &fakeGateway{})
	code := r.Run([]string{"schema", "claim-rewards"})
	require.Equal(t, 0, code)

	env := decodeEnvelope(t, stdout)
	require.True(t, env.Success)
	require.Contains(t, string(env.Data), `"claim-rewards"`)
	require.Contains(t, string(env.Data), `"all"`)
}

func TestBalanceReadFailuresSurfaceAsWarnings(t *testing.T) {
	gw := &fakeGateway{
		balances: func() ([]chain.TokenBalance, error) {
			return []chain.TokenBalance{
				{Symbol: "USDC", Formatted: "100.0"},
				{Symbol: "WETH", Formatted: "0.0", ErrorNote: "balanceOf reverted"},
			}, nil
		},
	}
	r, stdout, _ := newTestRunner(t, gw)

	code := r.Run([]string{"balances"})
	require.Equal(t, 0, code)

	var env struct {
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &env))
	require.Len(t, env.Warnings, 1)
	require.Contains(t, env.Warnings[0], "WETH")
}
