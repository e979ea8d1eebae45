package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

func TestPoolDefaultsAndValidates(t *testing.T) {
	pool, err := Pool(8453, "")
	require.NoError(t, err)
	assert.Equal(t, "USDC-WETH", pool)

	pool, err = Pool(8453, " weth-aero ")
	require.NoError(t, err)
	assert.Equal(t, "weth-aero", pool)

	// Off-catalog but resolvable pairs pass.
	pool, err = Pool(8453, "AERO-USDbC")
	require.NoError(t, err)
	assert.Equal(t, "AERO-USDbC", pool)

	_, err = Pool(8453, "USDC")
	require.Error(t, err)
	e, ok := clierr.As(err)
	require.True(t, ok)
	assert.Equal(t, clierr.CodeResolution, e.Code)

	_, err = Pool(8453, "USDC-DOGE")
	require.Error(t, err)
}

func TestTokenDefaultsToUSDC(t *testing.T) {
	symbol, err := Token(8453, "")
	require.NoError(t, err)
	assert.Equal(t, "USDC", symbol)

	symbol, err = Token(8453, "weth")
	require.NoError(t, err)
	assert.Equal(t, "WETH", symbol)

	_, err = Token(8453, "DOGE")
	require.Error(t, err)
}

func TestAmountDefaults(t *testing.T) {
	assert.Equal(t, "10", DepositAmount("USDC", ""))
	assert.Equal(t, "0.01", DepositAmount("weth", ""))
	assert.Equal(t, "1", DepositAmount("AERO", ""))
	assert.Equal(t, "1", DepositAmount("USDbC", ""))
	assert.Equal(t, "25", DepositAmount("USDC", "25"))

	assert.Equal(t, "ALL", WithdrawAmount(""))
	assert.Equal(t, "42.5", WithdrawAmount(" 42.5 "))

	assert.Equal(t, "MAX", StakeAmount(""))
	assert.Equal(t, "2.0", StakeAmount("2.0"))
}
