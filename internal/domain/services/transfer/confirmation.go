package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/metrics"
)

// watchConfirmation polls one submitted transaction until it
// finalizes, fails, or the watch deadline passes. On timeout the trade
// simply stays in submitted; the background sweeper owns recovery.
func (s *Service) watchConfirmation(tradeID uuid.UUID, txHash string) {
	defer s.watchers.Done()

	ctx, cancel := context.WithTimeout(s.watchCtx, s.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.confirmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Warn("Confirmation watch ended without resolution",
				"trade_id", tradeID.String(),
				"transaction_hash", txHash,
			)
			return
		case <-ticker.C:
			resolved, err := s.resolveOnce(ctx, tradeID, txHash)
			if err != nil {
				s.logger.Warn("Confirmation poll failed",
					"trade_id", tradeID.String(),
					"error", err,
				)
				continue
			}
			if resolved {
				return
			}
		}
	}
}

func (s *Service) resolveOnce(ctx context.Context, tradeID uuid.UUID, txHash string) (bool, error) {
	trade, err := s.trades.GetByID(ctx, tradeID)
	if err != nil {
		return false, err
	}
	return s.ResolveConfirmation(ctx, trade, txHash)
}

// ResolveConfirmation checks the ledger state of a submitted trade's
// transaction and applies the terminal transition if one is observed.
// It reports whether the trade reached a terminal state. Shared
// between the inline watcher and the background sweeper.
func (s *Service) ResolveConfirmation(ctx context.Context, trade *entities.Trade, txHash string) (bool, error) {
	if trade.Status != entities.TradeStatusSubmitted {
		// Someone else already resolved it
		return true, nil
	}

	status, err := s.gateway.TransactionStatus(ctx, txHash)
	if err != nil {
		return false, err
	}

	if status.Failed {
		reason := status.Err
		if reason == "" {
			reason = "transaction failed on the ledger"
		}
		trade.MarkFailed(reason)
		if err := s.trades.Update(ctx, trade); err != nil {
			return false, apperrors.NewInternal("failed to record trade failure", err)
		}
		metrics.RecordTradeTransition(string(entities.TradeStatusFailed))
		s.logger.Info("Trade failed on ledger",
			"trade_id", trade.ID.String(),
			"transaction_hash", txHash,
			"reason", reason,
		)
		return true, nil
	}

	if status.Finalized {
		trade.MarkFinalized(time.Now().UTC())
		if err := s.trades.Update(ctx, trade); err != nil {
			return false, apperrors.NewInternal("failed to record trade finalization", err)
		}
		metrics.RecordTradeTransition(string(entities.TradeStatusFinalized))
		s.logger.Info("Trade finalized",
			"trade_id", trade.ID.String(),
			"transaction_hash", txHash,
		)
		return true, nil
	}

	return false, nil
}
