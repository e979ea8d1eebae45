// Package intent normalizes caller-provided operation inputs. Callers may
// omit nearly everything; every operation resolves to concrete arguments with
// conservative defaults before it reaches the orchestrator.
package intent

import (
	"strings"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/registry"
)

const (
	// DefaultPool is assumed when a pool-scoped operation names no pool.
	DefaultPool = "USDC-WETH"
	// DefaultDepositToken is assumed when a deposit names no token.
	DefaultDepositToken = "USDC"
	// DefaultWithdrawAmount withdraws the full balance when no amount is given.
	DefaultWithdrawAmount = "ALL"
)

// defaultDepositAmounts are small whole-unit trial amounts per token.
var defaultDepositAmounts = map[string]string{
	"USDC": "10",
	"WETH": "0.01",
	"AERO": "1",
}

// Pool resolves a pool name, defaulting and validating its shape. The
// catalog is an optimization, not a constraint: any parseable TOKEN-TOKEN
// name passes.
func Pool(chainID int64, name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		clean = DefaultPool
	}
	if _, _, _, err := registry.ResolvePoolTokens(chainID, clean); err != nil {
		return "", err
	}
	return clean, nil
}

// Token resolves a token symbol against the address table, defaulting to the
// deposit token when empty.
func Token(chainID int64, symbol string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(symbol))
	if clean == "" {
		clean = DefaultDepositToken
	}
	token, ok := registry.Token(chainID, clean)
	if !ok {
		return "", clierr.New(clierr.CodeResolution, "unknown token symbol "+clean)
	}
	return token.Symbol, nil
}

// DepositAmount defaults a missing deposit amount per token.
func DepositAmount(symbol, amount string) string {
	clean := strings.TrimSpace(amount)
	if clean != "" {
		return clean
	}
	if def, ok := defaultDepositAmounts[strings.ToUpper(symbol)]; ok {
		return def
	}
	return "1"
}

// WithdrawAmount defaults a missing withdrawal amount to the full balance.
func WithdrawAmount(amount string) string {
	clean := strings.TrimSpace(amount)
	if clean == "" {
		return DefaultWithdrawAmount
	}
	return clean
}

// StakeAmount defaults a missing stake or unstake amount to the full balance.
func StakeAmount(amount string) string {
	clean := strings.TrimSpace(amount)
	if clean == "" {
		return "MAX"
	}
	return clean
}
