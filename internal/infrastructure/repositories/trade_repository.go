package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// TradeRepository handles trade database operations
type TradeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTradeRepository creates a new trade repository instance
func NewTradeRepository(db *sql.DB, logger *zap.Logger) *TradeRepository {
	return &TradeRepository{
		db:     db,
		logger: logger,
	}
}

const tradeColumns = `id, from_asset_id, to_asset_id, from_asset_ref, to_asset_ref, symbol, type,
	amount, fee, status, unsigned_transaction, transaction_hash, error_message, finalized,
	completed_at, created_at`

// Create persists a new trade record
func (r *TradeRepository) Create(ctx context.Context, trade *entities.Trade) error {
	query := `
		INSERT INTO trades (` + tradeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID,
		trade.FromAssetID,
		trade.ToAssetID,
		trade.FromAssetRef,
		trade.ToAssetRef,
		trade.Symbol,
		trade.Type,
		trade.Amount,
		trade.Fee,
		trade.Status,
		trade.UnsignedTransaction,
		trade.TransactionHash,
		trade.ErrorMessage,
		trade.Finalized,
		trade.CompletedAt,
		trade.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create trade",
			zap.Error(err),
			zap.String("trade_id", trade.ID.String()),
			zap.String("symbol", trade.Symbol),
		)
		return fmt.Errorf("failed to create trade: %w", err)
	}

	r.logger.Info("Trade created",
		zap.String("trade_id", trade.ID.String()),
		zap.String("symbol", trade.Symbol),
		zap.String("status", string(trade.Status)),
	)
	return nil
}

// Update persists the mutable fields of an existing trade
func (r *TradeRepository) Update(ctx context.Context, trade *entities.Trade) error {
	query := `
		UPDATE trades
		SET status = $2, transaction_hash = $3, error_message = $4, finalized = $5, completed_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		trade.ID,
		trade.Status,
		trade.TransactionHash,
		trade.ErrorMessage,
		trade.Finalized,
		trade.CompletedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update trade",
			zap.Error(err),
			zap.String("trade_id", trade.ID.String()),
		)
		return fmt.Errorf("failed to update trade: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// GetByID retrieves a trade by its identifier
func (r *TradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE id = $1
	`

	trade := &entities.Trade{}
	err := r.scanTrade(r.db.QueryRowContext(ctx, query, id), trade)

	if err == sql.ErrNoRows {
		r.logger.Debug("Trade not found", zap.String("trade_id", id.String()))
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		r.logger.Error("Failed to get trade", zap.Error(err), zap.String("trade_id", id.String()))
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	return trade, nil
}

// GetByUnsignedTransaction retrieves the trade a signed transaction
// belongs to, keyed on the serialized unsigned form. The column is
// unique, so at most one row can match.
func (r *TradeRepository) GetByUnsignedTransaction(ctx context.Context, unsignedTx string) (*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE unsigned_transaction = $1
	`

	trade := &entities.Trade{}
	err := r.scanTrade(r.db.QueryRowContext(ctx, query, unsignedTx), trade)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		r.logger.Error("Failed to get trade by unsigned transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to get trade by unsigned transaction: %w", err)
	}

	return trade, nil
}

// ListByStatus retrieves trades in the given status, oldest first
func (r *TradeRepository) ListByStatus(ctx context.Context, status entities.TradeStatus, limit int) ([]*entities.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM trades
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		r.logger.Error("Failed to query trades", zap.Error(err), zap.String("status", string(status)))
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*entities.Trade
	for rows.Next() {
		trade := &entities.Trade{}
		if err := r.scanTrade(rows, trade); err != nil {
			r.logger.Error("Failed to scan trade", zap.Error(err))
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}

// List retrieves trades newest first, optionally filtered by status
func (r *TradeRepository) List(ctx context.Context, status *entities.TradeStatus, limit, offset int) ([]*entities.Trade, error) {
	var (
		query string
		args  []interface{}
	)
	if status != nil {
		query = `
			SELECT ` + tradeColumns + `
			FROM trades
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		args = []interface{}{*status, limit, offset}
	} else {
		query = `
			SELECT ` + tradeColumns + `
			FROM trades
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`
		args = []interface{}{limit, offset}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list trades", zap.Error(err))
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []*entities.Trade
	for rows.Next() {
		trade := &entities.Trade{}
		if err := r.scanTrade(rows, trade); err != nil {
			r.logger.Error("Failed to scan trade", zap.Error(err))
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}

	return trades, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TradeRepository) scanTrade(row rowScanner, trade *entities.Trade) error {
	return row.Scan(
		&trade.ID,
		&trade.FromAssetID,
		&trade.ToAssetID,
		&trade.FromAssetRef,
		&trade.ToAssetRef,
		&trade.Symbol,
		&trade.Type,
		&trade.Amount,
		&trade.Fee,
		&trade.Status,
		&trade.UnsignedTransaction,
		&trade.TransactionHash,
		&trade.ErrorMessage,
		&trade.Finalized,
		&trade.CompletedAt,
		&trade.CreatedAt,
	)
}
