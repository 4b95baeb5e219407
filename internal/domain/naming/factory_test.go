package naming

import (
	"testing"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct{}

func (stubBackend) Register(name, url string) error  { return nil }
func (stubBackend) Lookup(name string) (string, bool) { return "", false }

type stubFactory struct{}

func (stubFactory) Create() (Backend, error) { return stubBackend{}, nil }

func freshRegistry(t *testing.T) *registry {
	t.Helper()
	return &registry{}
}

func TestSetAndGetNamingFactory(t *testing.T) {
	r := freshRegistry(t)
	f := stubFactory{}

	require.NoError(t, r.set(1, f))
	assert.Equal(t, f, r.get(1))
}

func TestSetNamingFactoryNilRejected(t *testing.T) {
	r := freshRegistry(t)
	err := r.set(1, nil)
	require.Error(t, err)
	kind, ok := pebbleerrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, pebbleerrors.NamingInvalidParam, kind)
}

func TestSetNamingFactoryDuplicateRejected(t *testing.T) {
	r := freshRegistry(t)
	require.NoError(t, r.set(1, stubFactory{}))

	err := r.set(1, stubFactory{})
	require.Error(t, err)
	kind, _ := pebbleerrors.KindOf(err)
	assert.Equal(t, pebbleerrors.NamingFactoryExisted, kind)
}

func TestGetNamingFactoryUnknownReturnsNil(t *testing.T) {
	r := freshRegistry(t)
	assert.Nil(t, r.get(42))
}

func TestResetNamingFactoryRegistryBlocksFurtherSets(t *testing.T) {
	r := freshRegistry(t)
	require.NoError(t, r.set(1, stubFactory{}))

	// Apply the same state change ResetNamingFactoryRegistry makes to the
	// package registry, here on a private registry.
	r.mu.Lock()
	r.torndown = true
	r.factories = nil
	r.mu.Unlock()

	assert.Nil(t, r.get(1))

	err := r.set(2, stubFactory{})
	require.Error(t, err)
	kind, _ := pebbleerrors.KindOf(err)
	assert.Equal(t, pebbleerrors.NamingFactoryMapNull, kind)
}

func TestPackageLevelRegistryRoundTrip(t *testing.T) {
	defer func() {
		defaultRegistry = registry{}
	}()

	require.NoError(t, SetNamingFactory(7, stubFactory{}))
	assert.NotNil(t, GetNamingFactory(7))
	assert.Nil(t, GetNamingFactory(8))
}
