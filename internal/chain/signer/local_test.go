package signer

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

const testKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestLocalSignerFromHexKey(t *testing.T) {
	s, err := NewLocalSigner(Config{PrivateKeyHex: "0x" + testKeyHex})
	require.NoError(t, err)
	assert.NotEqual(t, "0x0000000000000000000000000000000000000000", s.Address().Hex())

	tx := types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(8453), Gas: 21000})
	signed, err := s.SignTx(big.NewInt(8453), tx)
	require.NoError(t, err)
	assert.NotEqual(t, tx.Hash(), signed.Hash())
}

func TestLocalSignerFromKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.hex")
	require.NoError(t, os.WriteFile(path, []byte(testKeyHex+"\n"), 0o600))
	t.Setenv(EnvPrivateKey, "")
	t.Setenv(EnvPrivateKeyFile, path)
	s, err := NewLocalSignerFromEnv(KeySourceFile)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestMissingCredentialIsConfigError(t *testing.T) {
	t.Setenv(EnvPrivateKey, "")
	t.Setenv(EnvPrivateKeyFile, "")
	t.Setenv(EnvKeystorePath, "")
	_, err := NewLocalSignerFromEnv(KeySourceAuto)
	require.Error(t, err)
	typed, ok := clierr.As(err)
	require.True(t, ok)
	assert.Equal(t, clierr.CodeConfig, typed.Code)
}

func TestUnsupportedKeySource(t *testing.T) {
	_, err := NewLocalSignerFromEnv("hardware")
	require.Error(t, err)
}
