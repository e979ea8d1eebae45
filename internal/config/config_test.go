package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(GlobalFlags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)
	assert.Equal(t, int64(8453), settings.ChainID)
	assert.Equal(t, "https://mainnet.base.org", settings.RPCURL)
	assert.Equal(t, "json", settings.OutputMode)
	assert.Equal(t, "1.0", settings.MinClaimReward)
	assert.True(t, settings.JournalEnabled)
	assert.True(t, settings.CacheEnabled)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
chain:
  rpc_url: https://base.example.org
policy:
  read_only: true
  enable_operations: [balances, positions]
rewards:
  min_claim: "2.5"
timeout: 90s
`)
	settings, err := Load(GlobalFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "https://base.example.org", settings.RPCURL)
	assert.True(t, settings.ReadOnly)
	assert.Equal(t, []string{"balances", "positions"}, settings.EnableOperations)
	assert.Equal(t, "2.5", settings.MinClaimReward)
	assert.Equal(t, 90*time.Second, settings.Timeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "chain:\n  rpc_url: https://file.example.org\n")
	t.Setenv("AEROMGR_RPC_URL", "https://env.example.org")
	t.Setenv("AEROMGR_MIN_CLAIM", "0.5")
	settings, err := Load(GlobalFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.org", settings.RPCURL)
	assert.Equal(t, "0.5", settings.MinClaimReward)
}

func TestFlagOverridesEverything(t *testing.T) {
	t.Setenv("AEROMGR_RPC_URL", "https://env.example.org")
	settings, err := Load(GlobalFlags{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		RPCURL:     "https://flag.example.org",
		Plain:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.org", settings.RPCURL)
	assert.Equal(t, "plain", settings.OutputMode)
}

func TestConflictingOutputFlags(t *testing.T) {
	_, err := Load(GlobalFlags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), JSON: true, Plain: true})
	require.Error(t, err)
}

func TestUnknownChainWithoutRPCFails(t *testing.T) {
	path := writeConfig(t, "chain:\n  chain_id: 99999\n")
	_, err := Load(GlobalFlags{ConfigPath: path})
	require.Error(t, err)
}

func TestInvalidMinClaimRejected(t *testing.T) {
	path := writeConfig(t, "rewards:\n  min_claim: lots\n")
	_, err := Load(GlobalFlags{ConfigPath: path})
	require.Error(t, err)
}
