package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/basefolio/aeromgr/internal/chain/signer"
	"github.com/basefolio/aeromgr/internal/config"
	clierr "github.com/basefolio/aeromgr/internal/errors"
	"github.com/basefolio/aeromgr/internal/registry"
)

// Capabilities records which optional manager accessors the deployed contract
// supports. Probed once at Initialize; absent accessors switch reads to
// protocol-direct fallbacks.
type Capabilities struct {
	HasPairLookup   bool
	HasPositionEnum bool
	HasFeeAggregate bool
}

// PairCache lets the session reuse previously resolved pool addresses. The
// zero value of the interface (nil) disables caching.
type PairCache interface {
	Get(key string) (common.Address, bool)
	Put(key string, addr common.Address)
}

// Session is a per-user view over the manager factory, the user's manager
// contract, and the Aerodrome periphery. All mutating operations require a
// completed Initialize and a deployed manager.
type Session struct {
	backend Backend
	signer  signer.Signer
	log     zerolog.Logger

	chain   int64
	chainID *big.Int

	factory     common.Address
	router      common.Address
	voter       common.Address
	poolFactory common.Address

	confirmTimeout  time.Duration
	confirmInterval time.Duration
	minClaim        string

	pairCache PairCache

	mu           sync.Mutex
	initializing bool
	initialized  bool
	manager      common.Address
	caps         Capabilities
}

// NewSession wires a session from resolved settings. It performs no network
// traffic; call Initialize before using any operation.
func NewSession(backend Backend, txSigner signer.Signer, settings config.Settings, log zerolog.Logger) (*Session, error) {
	if backend == nil {
		return nil, clierr.New(clierr.CodeInternal, "missing backend")
	}
	if txSigner == nil {
		return nil, clierr.New(clierr.CodeSigner, "missing signer")
	}
	s := &Session{
		backend:         backend,
		signer:          txSigner,
		log:             log,
		chain:           settings.ChainID,
		chainID:         big.NewInt(settings.ChainID),
		confirmTimeout:  settings.Timeout,
		confirmInterval: settings.ConfirmInterval,
		minClaim:        settings.MinClaimReward,
	}
	if s.confirmTimeout <= 0 {
		s.confirmTimeout = 2 * time.Minute
	}
	if s.confirmInterval <= 0 {
		s.confirmInterval = 2 * time.Second
	}
	var ok bool
	if s.factory, ok = registry.Contract(settings.ChainID, registry.RoleManagerFactory); !ok {
		return nil, clierr.New(clierr.CodeConfig, fmt.Sprintf("no manager factory registered for chain %d", settings.ChainID))
	}
	if s.router, ok = registry.Contract(settings.ChainID, registry.RoleRouter); !ok {
		return nil, clierr.New(clierr.CodeConfig, fmt.Sprintf("no router registered for chain %d", settings.ChainID))
	}
	if s.voter, ok = registry.Contract(settings.ChainID, registry.RoleVoter); !ok {
		return nil, clierr.New(clierr.CodeConfig, fmt.Sprintf("no voter registered for chain %d", settings.ChainID))
	}
	if s.poolFactory, ok = registry.Contract(settings.ChainID, registry.RolePoolFactory); !ok {
		return nil, clierr.New(clierr.CodeConfig, fmt.Sprintf("no pool factory registered for chain %d", settings.ChainID))
	}
	return s, nil
}

// SetPairCache installs an optional pool-address cache.
func (s *Session) SetPairCache(c PairCache) { s.pairCache = c }

// Owner returns the signer address the session acts for.
func (s *Session) Owner() common.Address { return s.signer.Address() }

// ChainID returns the configured chain id.
func (s *Session) ChainID() int64 { return s.chain }

// Manager returns the discovered manager address and whether one exists.
func (s *Session) Manager() (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager, s.manager != (common.Address{})
}

// Capabilities returns the probe results from Initialize.
func (s *Session) Capabilities() Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps
}

// Initialize discovers the caller's manager contract, verifies its ownership,
// and probes optional accessors. A repeated call returns the cached result
// without further chain traffic. A missing manager is reported in the result,
// not as an error.
func (s *Session) Initialize(ctx context.Context) (InitResult, error) {
	s.mu.Lock()
	if s.initialized {
		res := s.cachedInitResult()
		s.mu.Unlock()
		return res, nil
	}
	if s.initializing {
		s.mu.Unlock()
		return InitResult{}, clierr.New(clierr.CodePrecondition, "initialization already in progress, retry shortly")
	}
	s.initializing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.initializing = false
		s.mu.Unlock()
	}()

	owner := s.signer.Address()
	vals, err := s.call(ctx, s.factory, registry.ManagerFactoryABI, "getUserManager", owner)
	if err != nil {
		return InitResult{}, clierr.Wrap(clierr.CodeChain, "query manager factory", err)
	}
	manager, err := addrResult(vals, "getUserManager")
	if err != nil {
		return InitResult{}, err
	}
	if manager == (common.Address{}) {
		s.mu.Lock()
		s.initialized = true
		s.manager = common.Address{}
		s.mu.Unlock()
		return InitResult{Success: false, Message: "no manager contract deployed for " + owner.Hex()}, nil
	}

	ownerVals, err := s.call(ctx, manager, registry.ManagerABI, "owner")
	if err != nil {
		return InitResult{}, clierr.Wrap(clierr.CodeChain, "verify manager ownership", err)
	}
	got, err := addrResult(ownerVals, "owner")
	if err != nil {
		return InitResult{}, err
	}
	if got != owner {
		return InitResult{}, clierr.New(clierr.CodePrecondition,
			fmt.Sprintf("manager %s is owned by %s, not %s", manager.Hex(), got.Hex(), owner.Hex()))
	}

	if err := s.ensureFactoryPointer(ctx, manager); err != nil {
		return InitResult{}, err
	}

	caps := s.probeCapabilities(ctx, manager)
	s.mu.Lock()
	s.initialized = true
	s.manager = manager
	s.caps = caps
	s.mu.Unlock()
	s.log.Info().
		Str("manager", manager.Hex()).
		Bool("pair_lookup", caps.HasPairLookup).
		Bool("position_enum", caps.HasPositionEnum).
		Bool("fee_aggregate", caps.HasFeeAggregate).
		Msg("session initialized")
	return InitResult{Success: true, ManagerAddress: manager.Hex()}, nil
}

func (s *Session) cachedInitResult() InitResult {
	if s.manager == (common.Address{}) {
		return InitResult{Success: false, Message: "no manager contract deployed for " + s.signer.Address().Hex()}
	}
	return InitResult{Success: true, ManagerAddress: s.manager.Hex()}
}

// ensureFactoryPointer repairs managers deployed before the factory pointer
// was set in the constructor: a zero aerodromeFactory would make every pool
// interaction revert, so it is fixed once here. Managers without the accessor
// are left alone.
func (s *Session) ensureFactoryPointer(ctx context.Context, manager common.Address) error {
	vals, err := s.call(ctx, manager, registry.ManagerABI, "aerodromeFactory")
	if err != nil {
		s.log.Debug().Err(err).Msg("factory pointer not readable, skipping repair")
		return nil
	}
	current, err := addrResult(vals, "aerodromeFactory")
	if err != nil || current != (common.Address{}) {
		return nil
	}
	data, err := registry.ManagerABI.Pack("setAerodromeFactory", s.poolFactory)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "pack setAerodromeFactory", err)
	}
	receipt, err := s.submitAndWait(ctx, manager, data, defaultTxOptions())
	if err != nil {
		return err
	}
	s.log.Info().Str("tx", receipt.TxHash.Hex()).Msg("manager factory pointer set")
	return nil
}

// probeCapabilities issues one cheap eth_call per optional accessor. Any
// failure just marks the capability absent.
func (s *Session) probeCapabilities(ctx context.Context, manager common.Address) Capabilities {
	var caps Capabilities
	usdc, okA := registry.Token(s.chain, "USDC")
	weth, okB := registry.Token(s.chain, "WETH")
	if okA && okB {
		if _, err := s.call(ctx, manager, registry.ManagerABI, "getAerodromePair", usdc.Address, weth.Address, false); err == nil {
			caps.HasPairLookup = true
		}
		if _, err := s.call(ctx, manager, registry.ManagerABI, "getClaimableFees", usdc.Address, weth.Address, false); err == nil {
			caps.HasFeeAggregate = true
		}
	}
	if _, err := s.call(ctx, manager, registry.ManagerABI, "getPositions"); err == nil {
		caps.HasPositionEnum = true
	}
	return caps
}

// requireManager gates every operation that needs the deployed contract.
func (s *Session) requireManager() (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return common.Address{}, clierr.New(clierr.CodePrecondition, "session not initialized")
	}
	if s.manager == (common.Address{}) {
		return common.Address{}, clierr.New(clierr.CodePrecondition, "no manager contract deployed; create one first")
	}
	return s.manager, nil
}

// call packs a read-only method, executes it, and decodes the outputs. Empty
// return data from a non-empty call is treated as an unsupported accessor.
func (s *Session) call(ctx context.Context, target common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "pack "+method, err)
	}
	out, err := s.backend.CallContract(ctx, ethereum.CallMsg{From: s.signer.Address(), To: &target, Data: data})
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChain, "call "+method, err)
	}
	if len(out) == 0 {
		return nil, clierr.New(clierr.CodeUnsupported, method+" is not supported by "+target.Hex())
	}
	vals, err := contractABI.Unpack(method, out)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChain, "decode "+method+" result", err)
	}
	return vals, nil
}

func addrResult(vals []any, method string) (common.Address, error) {
	if len(vals) == 0 {
		return common.Address{}, clierr.New(clierr.CodeChain, method+" returned no values")
	}
	addr, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, clierr.New(clierr.CodeChain, method+" returned a non-address value")
	}
	return addr, nil
}

// pairAddress resolves the pool contract for a token pair. It prefers the
// manager's own lookup when supported, falling back to the Aerodrome pool
// factory. A zero pool address means the pool does not exist, which is a
// normal outcome.
func (s *Session) pairAddress(ctx context.Context, tokenA, tokenB common.Address, stable bool) (common.Address, bool, error) {
	key := pairKey(s.chain, tokenA, tokenB, stable)
	if s.pairCache != nil {
		if addr, ok := s.pairCache.Get(key); ok {
			return addr, addr != (common.Address{}), nil
		}
	}

	var (
		vals []any
		err  error
	)
	if s.Capabilities().HasPairLookup {
		manager, mErr := s.requireManager()
		if mErr != nil {
			return common.Address{}, false, mErr
		}
		vals, err = s.call(ctx, manager, registry.ManagerABI, "getAerodromePair", tokenA, tokenB, stable)
	} else {
		vals, err = s.call(ctx, s.poolFactory, registry.PoolFactoryABI, "getPool", tokenA, tokenB, stable)
	}
	if err != nil {
		return common.Address{}, false, err
	}
	addr, err := addrResult(vals, "pool lookup")
	if err != nil {
		return common.Address{}, false, err
	}
	if s.pairCache != nil {
		s.pairCache.Put(key, addr)
	}
	return addr, addr != (common.Address{}), nil
}

func pairKey(chainID int64, tokenA, tokenB common.Address, stable bool) string {
	a, b := tokenA.Hex(), tokenB.Hex()
	if strings.Compare(strings.ToLower(a), strings.ToLower(b)) > 0 {
		a, b = b, a
	}
	kind := "volatile"
	if stable {
		kind = "stable"
	}
	return fmt.Sprintf("%d:%s:%s:%s", chainID, strings.ToLower(a), strings.ToLower(b), kind)
}

// gaugeFor resolves the gauge bound to a pool via the protocol voter. A
// zero gauge means the pool has no gauge.
func (s *Session) gaugeFor(ctx context.Context, pool common.Address) (common.Address, bool, error) {
	vals, err := s.call(ctx, s.voter, registry.VoterABI, "gauges", pool)
	if err != nil {
		return common.Address{}, false, err
	}
	addr, err := addrResult(vals, "gauges")
	if err != nil {
		return common.Address{}, false, err
	}
	return addr, addr != (common.Address{}), nil
}
