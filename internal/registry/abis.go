package registry

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI fragments for the contract surfaces this module calls. Only the
// methods and events actually used are declared.
const (
	ERC20ABIJSON = `[
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
	]`

	ManagerFactoryABIJSON = `[
		{"name":"getUserManager","type":"function","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"createManager","type":"function","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"ManagerCreated","type":"event","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"manager","type":"address","indexed":true}]}
	]`

	ManagerABIJSON = `[
		{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"aerodromeFactory","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"setAerodromeFactory","type":"function","stateMutability":"nonpayable","inputs":[{"name":"factory","type":"address"}],"outputs":[]},
		{"name":"getTokenBalance","type":"function","stateMutability":"view","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"depositToken","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"withdrawToken","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"approveToken","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"addLiquidityAerodrome","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"},{"name":"amountA","type":"uint256"},{"name":"amountB","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"deadline","type":"uint256"}],"outputs":[]},
		{"name":"removeLiquidityAerodrome","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"},{"name":"liquidity","type":"uint256"},{"name":"amountAMin","type":"uint256"},{"name":"amountBMin","type":"uint256"},{"name":"deadline","type":"uint256"}],"outputs":[]},
		{"name":"stakeLPTokens","type":"function","stateMutability":"nonpayable","inputs":[{"name":"gauge","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"unstakeLPTokens","type":"function","stateMutability":"nonpayable","inputs":[{"name":"gauge","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
		{"name":"claimRewards","type":"function","stateMutability":"nonpayable","inputs":[{"name":"gauge","type":"address"}],"outputs":[]},
		{"name":"claimFees","type":"function","stateMutability":"nonpayable","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"}],"outputs":[]},
		{"name":"getClaimableFees","type":"function","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"}],"outputs":[{"name":"lpBalance","type":"uint256"},{"name":"claimable0","type":"uint256"},{"name":"claimable1","type":"uint256"}]},
		{"name":"getPositions","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"lpTokens","type":"address[]"},{"name":"balances","type":"uint256[]"}]},
		{"name":"getAerodromePair","type":"function","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"}],"outputs":[{"name":"","type":"address"}]},
		{"name":"LiquidityAdded","type":"event","anonymous":false,"inputs":[{"name":"tokenA","type":"address","indexed":false},{"name":"tokenB","type":"address","indexed":false},{"name":"amountA","type":"uint256","indexed":false},{"name":"amountB","type":"uint256","indexed":false},{"name":"liquidity","type":"uint256","indexed":false}]},
		{"name":"LiquidityRemoved","type":"event","anonymous":false,"inputs":[{"name":"tokenA","type":"address","indexed":false},{"name":"tokenB","type":"address","indexed":false},{"name":"amountA","type":"uint256","indexed":false},{"name":"amountB","type":"uint256","indexed":false},{"name":"liquidity","type":"uint256","indexed":false}]},
		{"name":"FeesClaimed","type":"event","anonymous":false,"inputs":[{"name":"pool","type":"address","indexed":false},{"name":"amount0","type":"uint256","indexed":false},{"name":"amount1","type":"uint256","indexed":false}]}
	]`

	VoterABIJSON = `[
		{"name":"gauges","type":"function","stateMutability":"view","inputs":[{"name":"pool","type":"address"}],"outputs":[{"name":"","type":"address"}]}
	]`

	GaugeABIJSON = `[
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"earned","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`

	PoolABIJSON = `[
		{"name":"token0","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"token1","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"stable","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"claimable0","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"claimable1","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`

	PoolFactoryABIJSON = `[
		{"name":"getPool","type":"function","stateMutability":"view","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"stable","type":"bool"}],"outputs":[{"name":"","type":"address"}]}
	]`
)

var (
	ERC20ABI          = mustABI(ERC20ABIJSON)
	ManagerFactoryABI = mustABI(ManagerFactoryABIJSON)
	ManagerABI        = mustABI(ManagerABIJSON)
	VoterABI          = mustABI(VoterABIJSON)
	GaugeABI          = mustABI(GaugeABIJSON)
	PoolABI           = mustABI(PoolABIJSON)
	PoolFactoryABI    = mustABI(PoolFactoryABIJSON)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
