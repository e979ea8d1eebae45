package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

// Pool is a descriptor from the known-pool catalog. The catalog supplies
// default slippage and amount hints; any pair resolvable through the address
// table can still be used ad hoc.
type Pool struct {
	Name        string
	TokenA      TokenInfo
	TokenB      TokenInfo
	Stable      bool
	SlippageBps int64
}

// PairCombo is one candidate token pairing checked during gauge discovery.
type PairCombo struct {
	TokenA TokenInfo
	TokenB TokenInfo
	Stable bool
}

const defaultSlippageBps = 50

var poolCatalogByChainID = map[int64][]Pool{
	8453: buildBasePools(),
}

func buildBasePools() []Pool {
	usdc, _ := Token(8453, "USDC")
	weth, _ := Token(8453, "WETH")
	aero, _ := Token(8453, "AERO")
	usdbc, _ := Token(8453, "USDbC")
	return []Pool{
		{Name: "USDC-WETH", TokenA: usdc, TokenB: weth, Stable: false, SlippageBps: defaultSlippageBps},
		{Name: "WETH-AERO", TokenA: weth, TokenB: aero, Stable: false, SlippageBps: defaultSlippageBps},
		{Name: "USDC-AERO", TokenA: usdc, TokenB: aero, Stable: false, SlippageBps: defaultSlippageBps},
		{Name: "USDC-USDbC", TokenA: usdc, TokenB: usdbc, Stable: true, SlippageBps: 10},
	}
}

// PoolByName resolves a catalog pool, case-insensitively and in either
// token order ("WETH-USDC" matches "USDC-WETH").
func PoolByName(chainID int64, name string) (Pool, bool) {
	clean := strings.TrimSpace(name)
	for _, p := range poolCatalogByChainID[chainID] {
		if strings.EqualFold(p.Name, clean) {
			return p, true
		}
		flipped := p.TokenB.Symbol + "-" + p.TokenA.Symbol
		if strings.EqualFold(flipped, clean) {
			return p, true
		}
	}
	return Pool{}, false
}

// PoolSlippageBps returns the slippage tolerance for a pool, falling back to
// the default for pairs outside the catalog.
func PoolSlippageBps(chainID int64, name string) int64 {
	if p, ok := PoolByName(chainID, name); ok {
		return p.SlippageBps
	}
	return defaultSlippageBps
}

// Pools returns the catalog for a chain.
func Pools(chainID int64) []Pool {
	out := make([]Pool, len(poolCatalogByChainID[chainID]))
	copy(out, poolCatalogByChainID[chainID])
	return out
}

// ParsePoolName splits a "TOKEN_A-TOKEN_B" pool name into its two leg symbols.
// A segment equal to "stable" (any case) marks the stable variant and is not a
// leg. Anything other than exactly two leg symbols is a resolution failure.
func ParsePoolName(name string) (symbolA, symbolB string, stable bool, err error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", "", false, clierr.New(clierr.CodeResolution, "pool name is required")
	}
	legs := make([]string, 0, 2)
	for _, part := range strings.Split(clean, "-") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.EqualFold(part, "stable") {
			stable = true
			continue
		}
		legs = append(legs, part)
	}
	if len(legs) != 2 {
		return "", "", false, clierr.New(clierr.CodeResolution,
			fmt.Sprintf("malformed pool name %q: expected TOKEN_A-TOKEN_B", name))
	}
	return legs[0], legs[1], stable, nil
}

// ResolvePoolTokens resolves both legs of a pool name through the address
// table. Unknown symbols fail resolution, never crash.
func ResolvePoolTokens(chainID int64, name string) (TokenInfo, TokenInfo, bool, error) {
	symbolA, symbolB, stable, err := ParsePoolName(name)
	if err != nil {
		return TokenInfo{}, TokenInfo{}, false, err
	}
	tokenA, ok := Token(chainID, symbolA)
	if !ok {
		return TokenInfo{}, TokenInfo{}, false, clierr.New(clierr.CodeResolution,
			fmt.Sprintf("unknown token symbol %q on chain %d", symbolA, chainID))
	}
	tokenB, ok := Token(chainID, symbolB)
	if !ok {
		return TokenInfo{}, TokenInfo{}, false, clierr.New(clierr.CodeResolution,
			fmt.Sprintf("unknown token symbol %q on chain %d", symbolB, chainID))
	}
	if !stable {
		if p, found := PoolByName(chainID, name); found {
			stable = p.Stable
		}
	}
	return tokenA, tokenB, stable, nil
}

// CandidatePairs enumerates the common token-pair combinations probed during
// staked-position discovery, covering gauges whose LP token the manager never
// enumerated explicitly.
func CandidatePairs(chainID int64) []PairCombo {
	tokens := Tokens(chainID)
	out := make([]PairCombo, 0, len(tokens)*len(tokens))
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			out = append(out, PairCombo{TokenA: tokens[i], TokenB: tokens[j], Stable: false})
		}
	}
	// Stable variants only make sense for like-valued pairs.
	for _, p := range poolCatalogByChainID[chainID] {
		if p.Stable {
			out = append(out, PairCombo{TokenA: p.TokenA, TokenB: p.TokenB, Stable: true})
		}
	}
	return out
}

// DisplayPoolName reverse-resolves a pair of token addresses to a
// catalog-style name; ok=false when either address is not in the table so
// callers can fall back to "Unknown Pool".
func DisplayPoolName(chainID int64, token0, token1 common.Address) (string, bool) {
	t0, ok0 := TokenByAddress(chainID, token0)
	t1, ok1 := TokenByAddress(chainID, token1)
	if !ok0 || !ok1 {
		return "", false
	}
	return t0.Symbol + "-" + t1.Symbol, true
}
