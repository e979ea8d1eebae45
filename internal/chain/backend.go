package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

// Backend is the slice of the JSON-RPC provider surface the session needs.
// Production code wraps *ethclient.Client; tests script it in-process.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

type ethBackend struct {
	client *ethclient.Client
}

// Dial connects the production backend to the configured provider endpoint.
func Dial(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChain, "connect rpc", err)
	}
	return &ethBackend{client: client}, nil
}

func (b *ethBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.client.ChainID(ctx)
}

func (b *ethBackend) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return b.client.CallContract(ctx, msg, nil)
}

func (b *ethBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return b.client.PendingNonceAt(ctx, account)
}

func (b *ethBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return b.client.SuggestGasTipCap(ctx)
}

func (b *ethBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return b.client.EstimateGas(ctx, msg)
}

func (b *ethBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return b.client.HeaderByNumber(ctx, number)
}

func (b *ethBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return b.client.SendTransaction(ctx, tx)
}

func (b *ethBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return b.client.TransactionReceipt(ctx, txHash)
}

func (b *ethBackend) Close() {
	b.client.Close()
}
