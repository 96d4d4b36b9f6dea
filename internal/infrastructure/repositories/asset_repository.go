package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// AssetRepository handles asset database operations
type AssetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAssetRepository creates a new asset repository instance
func NewAssetRepository(db *sql.DB, logger *zap.Logger) *AssetRepository {
	return &AssetRepository{
		db:     db,
		logger: logger,
	}
}

// GetByIdentifier retrieves an asset by its chain identifier. The
// native asset is stored under the empty identifier.
func (r *AssetRepository) GetByIdentifier(ctx context.Context, identifier string) (*entities.Asset, error) {
	query := `
		SELECT id, identifier, symbol, name, decimals, created_at
		FROM assets
		WHERE identifier = $1
	`

	asset := &entities.Asset{}
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(
		&asset.ID,
		&asset.Identifier,
		&asset.Symbol,
		&asset.Name,
		&asset.Decimals,
		&asset.CreatedAt,
	)

	if err == sql.ErrNoRows {
		r.logger.Debug("Asset not found", zap.String("identifier", identifier))
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		r.logger.Error("Failed to get asset", zap.Error(err), zap.String("identifier", identifier))
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// GetByIdentifiers retrieves the assets whose identifiers appear in
// the list; unknown identifiers are simply absent from the result
func (r *AssetRepository) GetByIdentifiers(ctx context.Context, identifiers []string) (map[string]*entities.Asset, error) {
	if len(identifiers) == 0 {
		return map[string]*entities.Asset{}, nil
	}

	query := `
		SELECT id, identifier, symbol, name, decimals, created_at
		FROM assets
		WHERE identifier = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(identifiers))
	if err != nil {
		r.logger.Error("Failed to query assets", zap.Error(err))
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := make(map[string]*entities.Asset, len(identifiers))
	for rows.Next() {
		asset := &entities.Asset{}
		if err := rows.Scan(
			&asset.ID,
			&asset.Identifier,
			&asset.Symbol,
			&asset.Name,
			&asset.Decimals,
			&asset.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets[asset.Identifier] = asset
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}

	return assets, nil
}
