package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	"github.com/porter-wallet/porter_service/internal/infrastructure/cache"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

const cacheTTL = time.Hour

// assetStore is the persistence surface the directory reads from
type assetStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*entities.Asset, error)
	GetByIdentifiers(ctx context.Context, identifiers []string) (map[string]*entities.Asset, error)
}

// Directory resolves asset identifiers to registered assets, with a
// cache-aside layer in front of the database. A nil cache client is
// tolerated; every lookup then goes straight through.
type Directory struct {
	store  assetStore
	cache  cache.RedisClient
	logger *logger.Logger
}

func NewDirectory(store assetStore, cacheClient cache.RedisClient, log *logger.Logger) *Directory {
	return &Directory{
		store:  store,
		cache:  cacheClient,
		logger: log,
	}
}

// Resolve returns the registered asset for an identifier. The native
// asset is registered under the empty identifier. An unknown
// identifier is a validation failure, not a lookup miss.
func (d *Directory) Resolve(ctx context.Context, identifier string) (*entities.Asset, error) {
	key := cacheKey(identifier)

	if d.cache != nil {
		var cached entities.Asset
		err := d.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			d.logger.Warn("Asset cache read failed", "identifier", identifier, "error", err)
		}
	}

	asset, err := d.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidation(
				apperrors.CodeAssetUnknown,
				"asset is not registered with this service",
			)
		}
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, asset, cacheTTL); err != nil {
			d.logger.Warn("Asset cache write failed", "identifier", identifier, "error", err)
		}
	}

	return asset, nil
}

// ResolveMany returns the registered assets among the given
// identifiers, keyed by identifier. Unknown identifiers are omitted.
func (d *Directory) ResolveMany(ctx context.Context, identifiers []string) (map[string]*entities.Asset, error) {
	return d.store.GetByIdentifiers(ctx, identifiers)
}

func cacheKey(identifier string) string {
	if identifier == entities.NativeAssetID {
		return "asset:native"
	}
	return fmt.Sprintf("asset:%s", identifier)
}
