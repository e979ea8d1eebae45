package chain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

// txOptions shapes fee selection for a single submission. Multipliers are
// expressed as integer ratios so fee math stays exact.
type txOptions struct {
	// GasLimit, when non-zero, skips estimation and uses the fixed limit.
	GasLimit uint64
	// Estimated gas is scaled by GasNum/GasDen when GasLimit is zero.
	GasNum, GasDen int64
	// Fee cap is baseFee*FeeNum/FeeDen + tip.
	FeeNum, FeeDen int64
	// Suggested tip is scaled by TipNum/TipDen.
	TipNum, TipDen int64
	// Timeout bounds the receipt wait; zero falls back to the session default.
	Timeout time.Duration
}

func defaultTxOptions() txOptions {
	return txOptions{
		GasNum: 12, GasDen: 10,
		FeeNum: 2, FeeDen: 1,
		TipNum: 1, TipDen: 1,
	}
}

func (o txOptions) normalize() txOptions {
	if o.GasNum <= 0 || o.GasDen <= 0 {
		o.GasNum, o.GasDen = 12, 10
	}
	if o.FeeNum <= 0 || o.FeeDen <= 0 {
		o.FeeNum, o.FeeDen = 2, 1
	}
	if o.TipNum <= 0 || o.TipDen <= 0 {
		o.TipNum, o.TipDen = 1, 1
	}
	return o
}

// submitAndWait simulates, prices, signs, broadcasts, and waits for the
// receipt of a single contract call against the session backend. It returns
// the mined receipt only when the transaction succeeded on-chain.
func (s *Session) submitAndWait(ctx context.Context, to common.Address, data []byte, opts txOptions) (*types.Receipt, error) {
	opts = opts.normalize()
	from := s.signer.Address()
	msg := ethereum.CallMsg{From: from, To: &to, Data: data}

	if _, err := s.backend.CallContract(ctx, msg); err != nil {
		return nil, clierr.Wrap(clierr.CodePrecondition, "simulate call (eth_call)", err)
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		estimated, err := s.backend.EstimateGas(ctx, msg)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeChain, "estimate gas", err)
		}
		gasLimit = estimated * uint64(opts.GasNum) / uint64(opts.GasDen)
	}

	tipCap, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil || tipCap == nil || tipCap.Sign() <= 0 {
		tipCap = big.NewInt(1_000_000) // Base floors around 0.001 gwei
	}
	tipCap = new(big.Int).Div(new(big.Int).Mul(tipCap, big.NewInt(opts.TipNum)), big.NewInt(opts.TipDen))

	header, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChain, "fetch latest header", err)
	}
	baseFee := header.BaseFee
	if baseFee == nil {
		baseFee = big.NewInt(1_000_000_000)
	}
	feeCap := new(big.Int).Div(new(big.Int).Mul(baseFee, big.NewInt(opts.FeeNum)), big.NewInt(opts.FeeDen))
	feeCap.Add(feeCap, tipCap)

	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChain, "fetch nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gasLimit,
		To:        &to,
		Data:      data,
	})
	signed, err := s.signer.SignTx(s.chainID, tx)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeSigner, "sign transaction", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return nil, clierr.Wrap(clierr.CodeChain, "broadcast transaction", err)
	}
	return s.waitReceipt(ctx, signed.Hash(), opts.Timeout)
}

func (s *Session) waitReceipt(ctx context.Context, hash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	if timeout <= 0 {
		timeout = s.confirmTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(s.confirmInterval)
	defer ticker.Stop()
	for {
		receipt, err := s.backend.TransactionReceipt(waitCtx, hash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				return receipt, nil
			}
			return nil, clierr.New(clierr.CodeChain, "transaction reverted on-chain: "+hash.Hex())
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) && waitCtx.Err() == nil {
			s.log.Debug().Err(err).Str("tx", hash.Hex()).Msg("receipt poll failed, retrying")
		}
		select {
		case <-waitCtx.Done():
			return nil, clierr.Wrap(clierr.CodeTimeout, "timed out waiting for receipt "+hash.Hex(), waitCtx.Err())
		case <-ticker.C:
		}
	}
}
