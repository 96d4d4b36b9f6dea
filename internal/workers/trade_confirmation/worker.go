package trade_confirmation

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

// tradeSource lists trades awaiting confirmation
type tradeSource interface {
	ListByStatus(ctx context.Context, status entities.TradeStatus, limit int) ([]*entities.Trade, error)
}

// confirmationResolver applies terminal transitions to submitted trades
type confirmationResolver interface {
	ResolveConfirmation(ctx context.Context, trade *entities.Trade, txHash string) (bool, error)
}

// Worker sweeps submitted trades whose inline confirmation watcher
// died or timed out, so no trade is ever stranded by a restart
type Worker struct {
	trades    tradeSource
	resolver  confirmationResolver
	schedule  string
	batchSize int
	logger    *logger.Logger
	cron      *cron.Cron
}

// NewWorker creates a new trade confirmation sweeper
func NewWorker(trades tradeSource, resolver confirmationResolver, schedule string, batchSize int, logger *logger.Logger) *Worker {
	return &Worker{
		trades:    trades,
		resolver:  resolver,
		schedule:  schedule,
		batchSize: batchSize,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the sweep and begins running it
func (w *Worker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.sweep); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("Trade confirmation sweeper started",
		"schedule", w.schedule,
		"batch_size", w.batchSize,
	)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (w *Worker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("Trade confirmation sweeper stopped")
}

func (w *Worker) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trades, err := w.trades.ListByStatus(ctx, entities.TradeStatusSubmitted, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list submitted trades", "error", err)
		return
	}

	if len(trades) == 0 {
		return
	}

	w.logger.Debug("Sweeping submitted trades", "count", len(trades))

	resolved := 0
	for _, trade := range trades {
		if trade.TransactionHash == nil {
			// Submitted without a hash should be impossible; flag it
			// rather than resolve it
			w.logger.Error("Submitted trade has no transaction hash",
				"trade_id", trade.ID.String())
			continue
		}

		done, err := w.resolver.ResolveConfirmation(ctx, trade, *trade.TransactionHash)
		if err != nil {
			w.logger.Warn("Failed to resolve trade confirmation",
				"trade_id", trade.ID.String(),
				"error", err,
			)
			continue
		}
		if done {
			resolved++
		}
	}

	if resolved > 0 {
		w.logger.Info("Sweep resolved trades", "resolved", resolved, "checked", len(trades))
	}
}
