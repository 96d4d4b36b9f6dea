package transfer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/porter-wallet/porter_service/internal/adapters/chain"
	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
	"github.com/porter-wallet/porter_service/pkg/metrics"
)

// ChainGateway is the ledger surface the transfer service depends on
type ChainGateway interface {
	ValidateAddress(address string) error
	BuildNativeTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (*chain.UnsignedTransaction, error)
	BuildTokenTransfer(ctx context.Context, from, to, mint string, amount decimal.Decimal) (*chain.UnsignedTransaction, error)
	DecodeSigned(signedBase64 string) (*chain.SignedTransaction, error)
	Submit(ctx context.Context, signed *chain.SignedTransaction) (string, error)
	TransactionStatus(ctx context.Context, txHash string) (chain.TxStatus, error)
}

// tradeStore is the persistence surface for trade records
type tradeStore interface {
	Create(ctx context.Context, trade *entities.Trade) error
	Update(ctx context.Context, trade *entities.Trade) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Trade, error)
	GetByUnsignedTransaction(ctx context.Context, unsignedTx string) (*entities.Trade, error)
	List(ctx context.Context, status *entities.TradeStatus, limit, offset int) ([]*entities.Trade, error)
}

// assetDirectory resolves configured asset identifiers
type assetDirectory interface {
	Resolve(ctx context.Context, identifier string) (*entities.Asset, error)
}

// Service orchestrates the transfer lifecycle: prepare an unsigned
// transaction, accept its signed counterpart, submit, and track
// confirmation.
type Service struct {
	gateway ChainGateway
	trades  tradeStore
	assets  assetDirectory
	logger  *logger.Logger

	confirmInterval time.Duration
	confirmTimeout  time.Duration

	watchCtx    context.Context
	watchCancel context.CancelFunc
	watchers    sync.WaitGroup
}

// NewService wires the transfer orchestrator. confirmInterval and
// confirmTimeout bound the per-trade confirmation watcher.
func NewService(gateway ChainGateway, trades tradeStore, assets assetDirectory, confirmInterval, confirmTimeout time.Duration, log *logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		gateway:         gateway,
		trades:          trades,
		assets:          assets,
		logger:          log,
		confirmInterval: confirmInterval,
		confirmTimeout:  confirmTimeout,
		watchCtx:        ctx,
		watchCancel:     cancel,
	}
}

// Stop cancels all in-flight confirmation watchers and waits for them
// to unwind. Trades they were watching stay in submitted; the sweeper
// picks them up later.
func (s *Service) Stop() {
	s.watchCancel()
	s.watchers.Wait()
}

// PrepareTransfer validates a transfer request, assembles the unsigned
// transaction, and records the pending trade. Validation and asset
// resolution failures happen before any record exists; once a usable
// transaction is assembled it is always handed back for signing.
func (s *Service) PrepareTransfer(ctx context.Context, req *entities.TransferRequest) (*entities.PrepareTransferResponse, error) {
	if err := s.validateRequest(req); err != nil {
		metrics.RecordTransfer("prepare", "rejected")
		return nil, err
	}

	asset, err := s.assets.Resolve(ctx, req.AssetID)
	if err != nil {
		metrics.RecordTransfer("prepare", "rejected")
		return nil, err
	}

	var unsigned *chain.UnsignedTransaction
	if asset.IsNative() {
		unsigned, err = s.gateway.BuildNativeTransfer(ctx, req.FromAddress, req.ToAddress, req.Amount)
	} else {
		unsigned, err = s.gateway.BuildTokenTransfer(ctx, req.FromAddress, req.ToAddress, asset.Identifier, req.Amount)
	}
	if err != nil {
		metrics.RecordTransfer("prepare", "failed")
		return nil, err
	}

	trade := &entities.Trade{
		ID:                  uuid.New(),
		FromAssetID:         req.AssetID,
		ToAssetID:           req.AssetID,
		FromAssetRef:        &asset.ID,
		ToAssetRef:          &asset.ID,
		Symbol:              asset.Symbol,
		Type:                entities.TradeTypeTransfer,
		Amount:              req.Amount,
		Fee:                 unsigned.Fee,
		Status:              entities.TradeStatusPending,
		UnsignedTransaction: unsigned.Base64,
		CreatedAt:           time.Now().UTC(),
	}

	// Bookkeeping is best effort once a usable transaction exists: the
	// caller gets the unsigned transaction regardless. An unrecorded
	// trade will be refused at submission as untracked.
	if err := s.trades.Create(ctx, trade); err != nil {
		metrics.RecordTransfer("prepare", "unrecorded")
		s.logger.Error("Failed to record trade",
			"trade_id", trade.ID.String(),
			"symbol", trade.Symbol,
			"error", err,
		)
	} else {
		metrics.RecordTransfer("prepare", "success")
		metrics.RecordTradeTransition(string(entities.TradeStatusPending))
	}
	s.logger.Info("Transfer prepared",
		"trade_id", trade.ID.String(),
		"symbol", trade.Symbol,
		"amount", req.Amount.String(),
		"signatures", unsigned.SignatureCount,
	)

	return &entities.PrepareTransferResponse{
		TradeID:             trade.ID.String(),
		UnsignedTransaction: unsigned.Base64,
		Fee:                 unsigned.Fee.String(),
	}, nil
}

// GetTrade returns one trade by identifier
func (s *Service) GetTrade(ctx context.Context, id uuid.UUID) (*entities.Trade, error) {
	trade, err := s.trades.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound(apperrors.CodeTradeNotFound, "trade not found")
		}
		return nil, err
	}
	return trade, nil
}

// ListTrades returns trades newest first, optionally filtered by status
func (s *Service) ListTrades(ctx context.Context, status *entities.TradeStatus, limit, offset int) ([]*entities.Trade, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidation(apperrors.CodeInvalidStatus, "unknown trade status")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	trades, err := s.trades.List(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}
	if trades == nil {
		trades = []*entities.Trade{}
	}
	return trades, nil
}

func (s *Service) validateRequest(req *entities.TransferRequest) error {
	if req.FromAddress == "" {
		return apperrors.NewValidation(apperrors.CodeMissingField, "from_address is required")
	}
	if req.ToAddress == "" {
		return apperrors.NewValidation(apperrors.CodeMissingField, "to_address is required")
	}
	if err := s.gateway.ValidateAddress(req.FromAddress); err != nil {
		return err
	}
	if err := s.gateway.ValidateAddress(req.ToAddress); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return apperrors.NewValidation(apperrors.CodeInvalidAmount, "amount must be positive")
	}
	return nil
}
