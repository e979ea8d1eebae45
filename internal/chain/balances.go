package chain

import (
	"context"
	"math/big"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/numeric"
	"github.com/basefolio/aeromgr/internal/registry"
)

// GetBalances reads the manager's balance for every configured token. A
// failed read yields a zero-filled entry with an error note so the sweep
// always reports one record per symbol.
func (s *Session) GetBalances(ctx context.Context) ([]TokenBalance, error) {
	manager, err := s.requireManager()
	if err != nil {
		return nil, err
	}
	balances := make([]TokenBalance, 0, len(registry.BalanceSymbols))
	for _, symbol := range registry.BalanceSymbols {
		token, ok := registry.Token(s.chain, symbol)
		if !ok {
			continue
		}
		entry := TokenBalance{
			Symbol:   token.Symbol,
			Address:  token.Address.Hex(),
			Raw:      big.NewInt(0),
			Decimals: token.Decimals,
		}
		vals, err := s.call(ctx, manager, registry.ManagerABI, "getTokenBalance", token.Address)
		if err != nil {
			entry.ErrorNote = err.Error()
			s.log.Warn().Str("token", token.Symbol).Err(err).Msg("balance read failed")
		} else if len(vals) > 0 {
			entry.Raw = numeric.ToUint256(vals[0])
		}
		entry.Formatted = numeric.FormatUnits(entry.Raw, entry.Decimals)
		balances = append(balances, entry)
	}
	return balances, nil
}

// GetTokenBalance reads the manager's balance of one token by symbol.
func (s *Session) GetTokenBalance(ctx context.Context, symbol string) (TokenBalance, error) {
	manager, err := s.requireManager()
	if err != nil {
		return TokenBalance{}, err
	}
	token, ok := registry.Token(s.chain, symbol)
	if !ok {
		return TokenBalance{}, clierr.New(clierr.CodeResolution, "unknown token symbol "+symbol)
	}
	vals, err := s.call(ctx, manager, registry.ManagerABI, "getTokenBalance", token.Address)
	if err != nil {
		return TokenBalance{}, err
	}
	raw := big.NewInt(0)
	if len(vals) > 0 {
		raw = numeric.ToUint256(vals[0])
	}
	return TokenBalance{
		Symbol:    token.Symbol,
		Address:   token.Address.Hex(),
		Raw:       raw,
		Decimals:  token.Decimals,
		Formatted: numeric.FormatUnits(raw, token.Decimals),
	}, nil
}
