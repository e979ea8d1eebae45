package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// InitResult reports the outcome of session initialization. A missing manager
// is a normal outcome, not an error.
type InitResult struct {
	Success        bool   `json:"success"`
	ManagerAddress string `json:"manager_address,omitempty"`
	Message        string `json:"message,omitempty"`
}

// TokenBalance is one entry of a manager balance sweep. Failed reads are
// zero-filled with an error note so the sweep always yields one record per
// configured symbol.
type TokenBalance struct {
	Symbol    string   `json:"symbol"`
	Address   string   `json:"address"`
	Raw       *big.Int `json:"raw"`
	Decimals  int      `json:"decimals"`
	Formatted string   `json:"formatted"`
	ErrorNote string   `json:"error,omitempty"`
}

// LPPosition is one liquidity-pool holding of the manager.
type LPPosition struct {
	LPToken   common.Address `json:"lp_token"`
	Raw       *big.Int       `json:"raw"`
	Formatted string         `json:"formatted"`
	PoolName  string         `json:"pool_name"`
	Stable    bool           `json:"stable"`
	Token0    common.Address `json:"token0"`
	Token1    common.Address `json:"token1"`
}

// StakedPosition extends an LP position with its gauge view. Derived fresh on
// every query, never cached.
type StakedPosition struct {
	LPPosition
	Gauge           common.Address `json:"gauge"`
	StakedRaw       *big.Int       `json:"staked_raw"`
	StakedFormatted string         `json:"staked"`
	EarnedRaw       *big.Int       `json:"earned_raw"`
	EarnedFormatted string         `json:"earned"`
}

// DepositResult reports a deposit (with any prerequisite approval) outcome.
type DepositResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Symbol     string `json:"symbol"`
	Amount     string `json:"amount"`
	ApprovalTx string `json:"approval_tx,omitempty"`
	TxHash     string `json:"tx_hash,omitempty"`
}

// WithdrawResult reports a withdrawal outcome; Amount is the resolved human
// amount even when the request used the "ALL" sentinel.
type WithdrawResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Symbol  string `json:"symbol"`
	Amount  string `json:"amount"`
	TxHash  string `json:"tx_hash,omitempty"`
}

// LPTokenInfo carries the liquidity amount parsed from the LiquidityAdded
// event; nil when the event could not be decoded (which is not a failure).
type LPTokenInfo struct {
	Amount    *big.Int `json:"amount"`
	Formatted string   `json:"formatted"`
}

// AddLiquidityResult reports an add-liquidity outcome.
type AddLiquidityResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	PoolName    string       `json:"pool_name"`
	TxHash      string       `json:"tx_hash,omitempty"`
	AmountA     string       `json:"amount_a,omitempty"`
	AmountB     string       `json:"amount_b,omitempty"`
	LPTokenInfo *LPTokenInfo `json:"lp_token_info"`
}

// RemoveLiquidityResult reports a remove-liquidity outcome.
type RemoveLiquidityResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	PoolName string `json:"pool_name"`
	TxHash   string `json:"tx_hash,omitempty"`
	Amount   string `json:"amount,omitempty"`
}

// StakeResult reports a stake or unstake outcome.
type StakeResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	PoolName string `json:"pool_name"`
	Gauge    string `json:"gauge,omitempty"`
	Amount   string `json:"amount,omitempty"`
	TxHash   string `json:"tx_hash,omitempty"`
}

// ClaimResult reports one gauge reward claim.
type ClaimResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	PoolName string `json:"pool_name"`
	Gauge    string `json:"gauge"`
	Earned   string `json:"earned"`
	TxHash   string `json:"tx_hash,omitempty"`
}

// ClaimAllResult aggregates independent per-gauge claims; Success means at
// least one claim went through.
type ClaimAllResult struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message,omitempty"`
	Claims      []ClaimResult `json:"claims"`
	TotalEarned string        `json:"total_earned"`
}

// FeeBreakdown is the normalized claimable-fee view regardless of whether it
// came from the manager aggregate accessor or the pool-direct fallback.
type FeeBreakdown struct {
	LPBalance  *big.Int `json:"lp_balance"`
	Claimable0 *big.Int `json:"claimable0"`
	Claimable1 *big.Int `json:"claimable1"`
}

// PoolFees is the claimable trading-fee view of one pool.
type PoolFees struct {
	PoolName     string   `json:"pool_name"`
	Pool         string   `json:"pool"`
	LPBalanceRaw *big.Int `json:"lp_balance_raw"`
	LPBalance    string   `json:"lp_balance"`
	Token0Symbol string   `json:"token0_symbol"`
	Token1Symbol string   `json:"token1_symbol"`
	Claimable0   *big.Int `json:"claimable0_raw"`
	Claimable1   *big.Int `json:"claimable1_raw"`
	Fee0         string   `json:"claimable0"`
	Fee1         string   `json:"claimable1"`
}

// ClaimFeesResult reports a fee claim; amounts default to zero when the
// FeesClaimed event could not be parsed.
type ClaimFeesResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	TxHash  string `json:"tx_hash,omitempty"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// CreateManagerResult reports manager creation or recovery of an existing one.
type CreateManagerResult struct {
	Success        bool   `json:"success"`
	ManagerAddress string `json:"manager_address,omitempty"`
	TxHash         string `json:"tx_hash,omitempty"`
	Message        string `json:"message,omitempty"`
	AlreadyExisted bool   `json:"already_existed,omitempty"`
}
