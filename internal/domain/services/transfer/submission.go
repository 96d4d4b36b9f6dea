package transfer

import (
	"context"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/metrics"
)

// SubmitTransfer accepts a signed transaction, correlates it with the
// pending trade it was prepared from, and sends it to the ledger. A
// signed transaction with no matching trade record is refused before
// any network call is made.
func (s *Service) SubmitTransfer(ctx context.Context, req *entities.SubmitTransferRequest) (*entities.SubmitTransferResponse, error) {
	if req.SignedTransaction == "" {
		metrics.RecordTransfer("submit", "rejected")
		return nil, apperrors.NewValidation(apperrors.CodeMissingField, "signed_transaction is required")
	}

	signed, err := s.gateway.DecodeSigned(req.SignedTransaction)
	if err != nil {
		metrics.RecordTransfer("submit", "rejected")
		return nil, err
	}

	// The join key is derived from the signed bytes, never trusted
	// from the request. A client-supplied unsigned form that disagrees
	// means the signature belongs to a different transaction.
	if req.UnsignedTransaction != "" && req.UnsignedTransaction != signed.UnsignedBase64 {
		metrics.RecordTransfer("submit", "rejected")
		return nil, apperrors.NewValidation(
			apperrors.CodeInvalidTransaction,
			"signed transaction does not match the supplied unsigned transaction",
		)
	}

	trade, err := s.trades.GetByUnsignedTransaction(ctx, signed.UnsignedBase64)
	if err != nil {
		if apperrors.IsNotFound(err) {
			metrics.RecordTransfer("submit", "rejected")
			return nil, apperrors.NewValidation(
				apperrors.CodeUntrackedTransaction,
				"transaction was not prepared by this service",
			)
		}
		return nil, err
	}

	if trade.Status != entities.TradeStatusPending {
		metrics.RecordTransfer("submit", "rejected")
		return nil, apperrors.NewConflict(
			apperrors.CodeTradeNotPending,
			"trade has already been submitted",
		)
	}

	txHash, err := s.gateway.Submit(ctx, signed)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeSubmission) {
			// The ledger refused the transaction outright; the trade is
			// dead and the rejection reason travels with it.
			s.failTrade(ctx, trade, err.Error())
			metrics.RecordTransfer("submit", "failed")
			return nil, err
		}
		// Transport failure: the send outcome is unknown, so the trade
		// stays pending and the client may retry the same submission.
		metrics.RecordTransfer("submit", "failed")
		return nil, err
	}

	trade.MarkSubmitted(txHash)
	if err := s.trades.Update(ctx, trade); err != nil {
		// The transaction is already on its way; losing the bookkeeping
		// update must not surface as a submission failure.
		s.logger.Error("Failed to record trade submission",
			"trade_id", trade.ID.String(),
			"transaction_hash", txHash,
			"error", err,
		)
	}

	metrics.RecordTransfer("submit", "success")
	metrics.RecordTradeTransition(string(entities.TradeStatusSubmitted))
	s.logger.Info("Transfer submitted",
		"trade_id", trade.ID.String(),
		"transaction_hash", txHash,
	)

	s.watchers.Add(1)
	go s.watchConfirmation(trade.ID, txHash)

	return &entities.SubmitTransferResponse{TransactionHash: txHash}, nil
}

func (s *Service) failTrade(ctx context.Context, trade *entities.Trade, reason string) {
	trade.MarkFailed(reason)
	if err := s.trades.Update(ctx, trade); err != nil {
		s.logger.Error("Failed to record trade failure",
			"trade_id", trade.ID.String(),
			"error", err,
		)
		return
	}
	metrics.RecordTradeTransition(string(entities.TradeStatusFailed))
}
