package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basefolio/aeromgr/internal/registry"
)

func TestCreateManagerParsesFactoryEvent(t *testing.T) {
	backend := newFakeBackend(t)
	s, owner := newSession(t, backend)
	factory, _ := registry.Contract(8453, registry.RoleManagerFactory)
	manager := common.HexToAddress("0x00000000000000000000000000000000000000A1")

	discovered := common.Address{}
	backend.on(factory, registry.ManagerFactoryABI, "getUserManager", func([]any) ([]any, error) {
		return []any{discovered}, nil
	})
	backend.on(factory, registry.ManagerFactoryABI, "createManager", func([]any) ([]any, error) {
		return []any{manager}, nil
	})
	event := registry.ManagerFactoryABI.Events["ManagerCreated"]
	backend.logs = []*types.Log{{
		Address: factory,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(owner.Bytes()),
			common.BytesToHash(manager.Bytes()),
		},
	}}

	res, err := s.CreateManager(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.AlreadyExisted)
	assert.Equal(t, manager.Hex(), res.ManagerAddress)
	assert.NotEmpty(t, res.TxHash)

	got, ok := s.Manager()
	assert.True(t, ok)
	assert.Equal(t, manager, got)
}

func TestCreateManagerFallsBackToFactoryQuery(t *testing.T) {
	backend := newFakeBackend(t)
	s, _ := newSession(t, backend)
	factory, _ := registry.Contract(8453, registry.RoleManagerFactory)
	manager := common.HexToAddress("0x00000000000000000000000000000000000000A1")

	queries := 0
	backend.on(factory, registry.ManagerFactoryABI, "getUserManager", func([]any) ([]any, error) {
		queries++
		if queries == 1 {
			return []any{common.Address{}}, nil
		}
		return []any{manager}, nil
	})
	backend.on(factory, registry.ManagerFactoryABI, "createManager", func([]any) ([]any, error) {
		return []any{manager}, nil
	})
	// No ManagerCreated log: the receipt is empty.

	res, err := s.CreateManager(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, manager.Hex(), res.ManagerAddress)
}

func TestCreateManagerIsIdempotent(t *testing.T) {
	sc := newScenario(t)
	res, err := sc.session.CreateManager(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.AlreadyExisted)
	assert.Equal(t, sc.manager.Hex(), res.ManagerAddress)
	assert.Empty(t, sc.backend.sent, "no transaction for an existing manager")
}

func TestCreateManagerRecoversFromRacedCreation(t *testing.T) {
	backend := newFakeBackend(t)
	s, _ := newSession(t, backend)
	factory, _ := registry.Contract(8453, registry.RoleManagerFactory)
	manager := common.HexToAddress("0x00000000000000000000000000000000000000A1")

	queries := 0
	backend.on(factory, registry.ManagerFactoryABI, "getUserManager", func([]any) ([]any, error) {
		queries++
		if queries == 1 {
			return []any{common.Address{}}, nil
		}
		return []any{manager}, nil
	})
	backend.on(factory, registry.ManagerFactoryABI, "createManager", func([]any) ([]any, error) {
		return nil, errors.New("execution reverted: user already has a manager")
	})

	res, err := s.CreateManager(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.AlreadyExisted)
	assert.Equal(t, manager.Hex(), res.ManagerAddress)
	assert.Empty(t, backend.sent)
}

func TestCreateManagerSurfacesHardRevert(t *testing.T) {
	backend := newFakeBackend(t)
	s, _ := newSession(t, backend)
	factory, _ := registry.Contract(8453, registry.RoleManagerFactory)
	backend.on(factory, registry.ManagerFactoryABI, "getUserManager", func([]any) ([]any, error) {
		return []any{common.Address{}}, nil
	})
	backend.on(factory, registry.ManagerFactoryABI, "createManager", func([]any) ([]any, error) {
		return nil, errors.New("execution reverted: factory paused")
	})
	_, err := s.CreateManager(context.Background())
	require.Error(t, err)
	assert.Empty(t, backend.sent)
}
