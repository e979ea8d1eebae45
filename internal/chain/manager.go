package chain

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/registry"
)

// createAttemptTimeout bounds each escalation attempt's receipt wait.
const createAttemptTimeout = 60 * time.Second

// createFeeSchedule escalates fee pressure across attempts so a creation that
// stalls in the mempool gets replaced rather than abandoned.
var createFeeSchedule = []txOptions{
	{FeeNum: 3, FeeDen: 2, TipNum: 2, TipDen: 1, Timeout: createAttemptTimeout},
	{FeeNum: 2, FeeDen: 1, TipNum: 3, TipDen: 1, Timeout: createAttemptTimeout},
	{FeeNum: 5, FeeDen: 2, TipNum: 4, TipDen: 1, Timeout: createAttemptTimeout},
}

// CreateManager deploys a manager contract for the caller. Calling it when a
// manager already exists is not an error: the existing address is returned.
func (s *Session) CreateManager(ctx context.Context) (CreateManagerResult, error) {
	if _, err := s.Initialize(ctx); err != nil {
		return CreateManagerResult{}, err
	}
	if manager, ok := s.Manager(); ok {
		return CreateManagerResult{
			Success:        true,
			ManagerAddress: manager.Hex(),
			AlreadyExisted: true,
			Message:        "manager already deployed",
		}, nil
	}

	data, err := registry.ManagerFactoryABI.Pack("createManager")
	if err != nil {
		return CreateManagerResult{}, clierr.Wrap(clierr.CodeInternal, "pack createManager", err)
	}

	var lastErr error
	for attempt, opts := range createFeeSchedule {
		receipt, err := s.submitAndWait(ctx, s.factory, data, opts)
		if err == nil {
			return s.finishCreate(ctx, receipt)
		}
		// A revert claiming the manager exists means a racing creation won;
		// recover the address instead of failing.
		if strings.Contains(strings.ToLower(err.Error()), "already has a manager") {
			return s.recoverExisting(ctx)
		}
		if e, ok := clierr.As(err); ok && e.Code != clierr.CodeTimeout {
			return CreateManagerResult{}, err
		}
		lastErr = err
		s.log.Warn().Int("attempt", attempt+1).Err(err).Msg("manager creation attempt timed out, escalating fees")
	}
	return CreateManagerResult{}, clierr.Wrap(clierr.CodeTimeout, "manager creation unconfirmed after fee escalation", lastErr)
}

// finishCreate resolves the new manager address, preferring the factory event
// and falling back to a fresh factory query.
func (s *Session) finishCreate(ctx context.Context, receipt *types.Receipt) (CreateManagerResult, error) {
	manager := s.parseManagerCreated(receipt)
	if manager == (common.Address{}) {
		vals, err := s.call(ctx, s.factory, registry.ManagerFactoryABI, "getUserManager", s.signer.Address())
		if err != nil {
			return CreateManagerResult{}, clierr.Wrap(clierr.CodeChain, "resolve created manager", err)
		}
		manager, err = addrResult(vals, "getUserManager")
		if err != nil {
			return CreateManagerResult{}, err
		}
	}
	if manager == (common.Address{}) {
		return CreateManagerResult{}, clierr.New(clierr.CodeChain, "creation confirmed but factory reports no manager")
	}
	s.adoptManager(ctx, manager)
	return CreateManagerResult{
		Success:        true,
		ManagerAddress: manager.Hex(),
		TxHash:         receipt.TxHash.Hex(),
		Message:        "manager deployed",
	}, nil
}

func (s *Session) recoverExisting(ctx context.Context) (CreateManagerResult, error) {
	vals, err := s.call(ctx, s.factory, registry.ManagerFactoryABI, "getUserManager", s.signer.Address())
	if err != nil {
		return CreateManagerResult{}, clierr.Wrap(clierr.CodeChain, "recover existing manager", err)
	}
	manager, err := addrResult(vals, "getUserManager")
	if err != nil {
		return CreateManagerResult{}, err
	}
	if manager == (common.Address{}) {
		return CreateManagerResult{}, clierr.New(clierr.CodeChain, "factory rejected creation but reports no manager")
	}
	s.adoptManager(ctx, manager)
	return CreateManagerResult{
		Success:        true,
		ManagerAddress: manager.Hex(),
		AlreadyExisted: true,
		Message:        "manager already deployed",
	}, nil
}

// adoptManager installs a freshly resolved manager into the session state and
// probes its capabilities.
func (s *Session) adoptManager(ctx context.Context, manager common.Address) {
	caps := s.probeCapabilities(ctx, manager)
	s.mu.Lock()
	s.manager = manager
	s.caps = caps
	s.initialized = true
	s.mu.Unlock()
}

func (s *Session) parseManagerCreated(receipt *types.Receipt) common.Address {
	event := registry.ManagerFactoryABI.Events["ManagerCreated"]
	for _, entry := range receipt.Logs {
		if entry == nil || len(entry.Topics) < 3 || entry.Topics[0] != event.ID {
			continue
		}
		// owner and manager are both indexed.
		if common.BytesToAddress(entry.Topics[1].Bytes()) != s.signer.Address() {
			continue
		}
		return common.BytesToAddress(entry.Topics[2].Bytes())
	}
	return common.Address{}
}
