package asset

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	"github.com/porter-wallet/porter_service/internal/infrastructure/cache"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) GetByIdentifier(ctx context.Context, identifier string) (*entities.Asset, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Asset), args.Error(1)
}

func (m *MockAssetStore) GetByIdentifiers(ctx context.Context, identifiers []string) (map[string]*entities.Asset, error) {
	args := m.Called(ctx, identifiers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entities.Asset), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testAsset() *entities.Asset {
	return &entities.Asset{
		ID:         uuid.New(),
		Identifier: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Symbol:     "USDC",
		Name:       "USD Coin",
		Decimals:   6,
	}
}

func TestResolveWithoutCache(t *testing.T) {
	store := new(MockAssetStore)
	asset := testAsset()
	store.On("GetByIdentifier", mock.Anything, asset.Identifier).Return(asset, nil)

	directory := NewDirectory(store, nil, logger.New("error", "development"))

	got, err := directory.Resolve(context.Background(), asset.Identifier)
	require.NoError(t, err)
	assert.Equal(t, asset, got)
}

func TestResolveCacheMissFallsThrough(t *testing.T) {
	store := new(MockAssetStore)
	asset := testAsset()
	store.On("GetByIdentifier", mock.Anything, asset.Identifier).Return(asset, nil)

	cacheClient := new(MockCache)
	cacheClient.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(cache.ErrCacheMiss)
	cacheClient.On("Set", mock.Anything, mock.Anything, asset, mock.Anything).Return(nil)

	directory := NewDirectory(store, cacheClient, logger.New("error", "development"))

	got, err := directory.Resolve(context.Background(), asset.Identifier)
	require.NoError(t, err)
	assert.Equal(t, asset, got)
	cacheClient.AssertExpectations(t)
}

func TestResolveCacheFailureIsNonFatal(t *testing.T) {
	store := new(MockAssetStore)
	asset := testAsset()
	store.On("GetByIdentifier", mock.Anything, asset.Identifier).Return(asset, nil)

	cacheClient := new(MockCache)
	cacheClient.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	cacheClient.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	directory := NewDirectory(store, cacheClient, logger.New("error", "development"))

	got, err := directory.Resolve(context.Background(), asset.Identifier)
	require.NoError(t, err)
	assert.Equal(t, asset, got)
}

func TestResolveUnknownIdentifier(t *testing.T) {
	store := new(MockAssetStore)
	store.On("GetByIdentifier", mock.Anything, "nonsense").Return(nil, apperrors.ErrNotFound)

	directory := NewDirectory(store, nil, logger.New("error", "development"))

	_, err := directory.Resolve(context.Background(), "nonsense")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAssetUnknown, appErr.Code)
}

func TestResolveNativeUsesEmptyIdentifier(t *testing.T) {
	store := new(MockAssetStore)
	native := &entities.Asset{ID: uuid.New(), Identifier: entities.NativeAssetID, Symbol: "SOL", Decimals: 9}
	store.On("GetByIdentifier", mock.Anything, entities.NativeAssetID).Return(native, nil)

	directory := NewDirectory(store, nil, logger.New("error", "development"))

	got, err := directory.Resolve(context.Background(), entities.NativeAssetID)
	require.NoError(t, err)
	assert.True(t, got.IsNative())
}

func TestResolveManyOmitsUnknownIdentifiers(t *testing.T) {
	store := new(MockAssetStore)
	asset := testAsset()
	identifiers := []string{asset.Identifier, "So11111111111111111111111111111111111111112"}
	store.On("GetByIdentifiers", mock.Anything, identifiers).
		Return(map[string]*entities.Asset{asset.Identifier: asset}, nil)

	directory := NewDirectory(store, nil, logger.New("error", "development"))

	got, err := directory.ResolveMany(context.Background(), identifiers)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, asset, got[asset.Identifier])
}
