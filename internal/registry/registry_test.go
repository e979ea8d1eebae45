package registry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenResolution(t *testing.T) {
	usdc, ok := Token(8453, "usdc")
	require.True(t, ok, "symbol lookup should be case-insensitive")
	assert.Equal(t, 6, usdc.Decimals)

	back, ok := TokenByAddress(8453, usdc.Address)
	require.True(t, ok)
	assert.Equal(t, "USDC", back.Symbol)

	_, ok = Token(8453, "DOGE")
	assert.False(t, ok, "unknown symbols fail resolution")

	_, ok = Token(1, "USDC")
	assert.False(t, ok, "unsupported chain fails resolution")
}

func TestContractRoles(t *testing.T) {
	for _, role := range []ContractRole{RoleManagerFactory, RoleRouter, RoleVoter, RolePoolFactory} {
		addr, ok := Contract(8453, role)
		require.Truef(t, ok, "role %s must be present", role)
		assert.NotEqual(t, "0x0000000000000000000000000000000000000000", addr.Hex())
	}
	_, ok := Contract(10, RoleRouter)
	assert.False(t, ok)
}

func TestPoolByNameEitherOrder(t *testing.T) {
	p, ok := PoolByName(8453, "usdc-weth")
	require.True(t, ok)
	assert.Equal(t, "USDC-WETH", p.Name)

	flipped, ok := PoolByName(8453, "WETH-USDC")
	require.True(t, ok)
	assert.Equal(t, p.Name, flipped.Name)

	_, ok = PoolByName(8453, "DOGE-WETH")
	assert.False(t, ok)
}

func TestParsePoolName(t *testing.T) {
	a, b, stable, err := ParsePoolName("USDC-WETH")
	require.NoError(t, err)
	assert.Equal(t, "USDC", a)
	assert.Equal(t, "WETH", b)
	assert.False(t, stable)

	a, b, stable, err = ParsePoolName("USDC-USDbC-stable")
	require.NoError(t, err)
	assert.Equal(t, "USDC", a)
	assert.Equal(t, "USDbC", b)
	assert.True(t, stable)

	for _, bad := range []string{"", "USDC", "USDC-WETH-AERO", "--"} {
		_, _, _, err := ParsePoolName(bad)
		assert.Errorf(t, err, "pool name %q should be rejected", bad)
	}
}

func TestResolvePoolTokensCatalogStableFlag(t *testing.T) {
	_, _, stable, err := ResolvePoolTokens(8453, "USDC-USDbC")
	require.NoError(t, err)
	assert.True(t, stable, "catalog stable flag applies when the name omits it")

	_, _, _, err = ResolvePoolTokens(8453, "USDC-DOGE")
	require.Error(t, err)
}

func TestCandidatePairsCoverCatalog(t *testing.T) {
	combos := CandidatePairs(8453)
	require.NotEmpty(t, combos)
	seen := map[string]bool{}
	for _, c := range combos {
		seen[c.TokenA.Symbol+"-"+c.TokenB.Symbol] = true
	}
	assert.True(t, seen["USDC-WETH"])
	assert.True(t, seen["WETH-AERO"])
}

func TestDisplayPoolName(t *testing.T) {
	usdc, _ := Token(8453, "USDC")
	weth, _ := Token(8453, "WETH")
	name, ok := DisplayPoolName(8453, usdc.Address, weth.Address)
	require.True(t, ok)
	assert.Equal(t, "USDC-WETH", name)

	_, ok = DisplayPoolName(8453, usdc.Address, common.HexToAddress("0x1111111111111111111111111111111111111111"))
	assert.False(t, ok)
}

func TestABIsParse(t *testing.T) {
	_, ok := ManagerABI.Methods["getClaimableFees"]
	assert.True(t, ok)
	_, ok = ManagerFactoryABI.Events["ManagerCreated"]
	assert.True(t, ok)
	_, ok = VoterABI.Methods["gauges"]
	assert.True(t, ok)
}
