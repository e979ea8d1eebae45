package registry

import (
	"fmt"
	"strings"
)

// Canonical default EVM RPC endpoints by chain ID, used whenever the
// configuration does not carry an explicit endpoint.
var defaultRPCByChainID = map[int64]string{
	8453: "https://mainnet.base.org",
}

func DefaultRPCURL(chainID int64) (string, bool) {
	v, ok := defaultRPCByChainID[chainID]
	return v, ok
}

func ResolveRPCURL(override string, chainID int64) (string, error) {
	if strings.TrimSpace(override) != "" {
		return strings.TrimSpace(override), nil
	}
	if v, ok := DefaultRPCURL(chainID); ok {
		return v, nil
	}
	return "", fmt.Errorf("no default rpc configured for chain id %d; set chain.rpc_url", chainID)
}
