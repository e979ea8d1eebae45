package orchestrator

import "github.com/basefolio/aeromgr/internal/chain"

// AddLiquidityAndStakeResult reports the composed supply-then-stake workflow.
// Partial marks a confirmed supply whose follow-up stake did not complete; the
// LP tokens remain in the manager.
type AddLiquidityAndStakeResult struct {
	PoolName     string                   `json:"pool_name"`
	AddLiquidity chain.AddLiquidityResult `json:"add_liquidity"`
	Stake        *chain.StakeResult       `json:"stake,omitempty"`
	StakeError   string                   `json:"stake_error,omitempty"`
	Partial      bool                     `json:"partial"`
	Success      bool                     `json:"success"`
}

// UnstakeAndRemoveResult reports the composed unwind workflow. Unstaked and
// Removed are independent: either step may succeed while the other fails.
type UnstakeAndRemoveResult struct {
	PoolName     string                       `json:"pool_name"`
	Unstake      *chain.StakeResult           `json:"unstake,omitempty"`
	Unstaked     bool                         `json:"unstaked"`
	UnstakeError string                       `json:"unstake_error,omitempty"`
	Remove       *chain.RemoveLiquidityResult `json:"remove,omitempty"`
	Removed      bool                         `json:"removed"`
	RemoveError  string                       `json:"remove_error,omitempty"`
	Success      bool                         `json:"success"`
}
