package registry

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ContractRole names a protocol contract slot in the address table.
type ContractRole string

const (
	RoleManagerFactory ContractRole = "manager_factory"
	RoleRouter         ContractRole = "router"
	RoleVoter          ContractRole = "voter"
	RolePoolFactory    ContractRole = "pool_factory"
)

// TokenInfo describes one entry of the network address table.
type TokenInfo struct {
	Symbol   string
	Address  common.Address
	Decimals int
}

// BalanceSymbols is the fixed allow-list swept by manager balance queries.
var BalanceSymbols = []string{"USDC", "WETH", "AERO", "USDbC"}

// RewardTokenSymbol is the protocol emission token paid out by gauges.
const RewardTokenSymbol = "AERO"

// The address table is immutable after load: any symbol missing from it fails
// resolution, it never crashes.
var tokensByChainID = map[int64][]TokenInfo{
	8453: {
		{Symbol: "USDC", Address: common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), Decimals: 6},
		{Symbol: "WETH", Address: common.HexToAddress("0x4200000000000000000000000000000000000006"), Decimals: 18},
		{Symbol: "AERO", Address: common.HexToAddress("0x940181a94A35A4569E4529A3CDfB74e38FD98631"), Decimals: 18},
		{Symbol: "USDbC", Address: common.HexToAddress("0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA"), Decimals: 6},
	},
}

var contractsByChainID = map[int64]map[ContractRole]common.Address{
	8453: {
		RoleManagerFactory: common.HexToAddress("0x5cB2d49E1EEE77CFB1b7a6f8f4f1c6a840FAd9c4"),
		RoleRouter:         common.HexToAddress("0xcF77a3Ba9A5CA399B7c97c74d54e5b1Beb874E43"),
		RoleVoter:          common.HexToAddress("0x16613524e02ad97eDfeF371bC883F2F5d6C480A5"),
		RolePoolFactory:    common.HexToAddress("0x420DD381b31aEf6683db6B902084cB0FFECe40Da"),
	},
}

// Token resolves a logical symbol on a chain. Resolution is case-insensitive.
func Token(chainID int64, symbol string) (TokenInfo, bool) {
	for _, t := range tokensByChainID[chainID] {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return TokenInfo{}, false
}

// TokenByAddress reverse-resolves a token address to its table entry.
func TokenByAddress(chainID int64, address common.Address) (TokenInfo, bool) {
	for _, t := range tokensByChainID[chainID] {
		if t.Address == address {
			return t, true
		}
	}
	return TokenInfo{}, false
}

// Tokens returns the full token table for a chain, in declaration order.
func Tokens(chainID int64) []TokenInfo {
	out := make([]TokenInfo, len(tokensByChainID[chainID]))
	copy(out, tokensByChainID[chainID])
	return out
}

// Contract resolves a protocol contract role on a chain.
func Contract(chainID int64, role ContractRole) (common.Address, bool) {
	roles, ok := contractsByChainID[chainID]
	if !ok {
		return common.Address{}, false
	}
	addr, ok := roles[role]
	return addr, ok
}
