package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/porter-wallet/porter_service/internal/adapters/chain"
	"github.com/porter-wallet/porter_service/internal/domain/entities"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

func submittedTrade(txHash string) *entities.Trade {
	trade := pendingTrade("dW5zaWduZWQ=")
	trade.MarkSubmitted(txHash)
	return trade
}

func TestResolveConfirmationFinalized(t *testing.T) {
	gateway := new(MockChainGateway)
	trades := new(MockTradeStore)
	assets := new(MockAssetDirectory)
	svc := newTestService(gateway, trades, assets)
	defer svc.Stop()

	trade := submittedTrade("txhash123")
	gateway.On("TransactionStatus", mock.Anything, "txhash123").
		Return(chain.TxStatus{Known: true, Finalized: true}, nil)
	trades.On("Update", mock.Anything, trade).Return(nil)

	done, err := svc.ResolveConfirmation(context.Background(), trade, "txhash123")
	require.NoError(t, err)
	assert.True(t, done)

	assert.Equal(t, entities.TradeStatusFinalized, trade.Status)
	assert.True(t, trade.Finalized)
	require.NotNil(t, trade.CompletedAt)
	assert.Nil(t, trade.ErrorMessage)
}

func TestResolveConfirmationFailed(t *testing.T) {
	gateway := new(MockChainGateway)
	trades := new(MockTradeStore)
	assets := new(MockAssetDirectory)
	svc := newTestService(gateway, trades, assets)
	defer svc.Stop()

	trade := submittedTrade("txhash123")
	gateway.On("TransactionStatus", mock.Anything, "txhash123").
		Return(chain.TxStatus{Known: true, Failed: true, Err: "InstructionError"}, nil)
	trades.On("Update", mock.Anything, trade).Return(nil)

	done, err := svc.ResolveConfirmation(context.Background(), trade, "txhash123")
	require.NoError(t, err)
	assert.True(t, done)

	assert.Equal(t, entities.TradeStatusFailed, trade.Status)
	assert.False(t, trade.Finalized)
	assert.Nil(t, trade.CompletedAt)
	require.NotNil(t, trade.ErrorMessage)
	assert.Equal(t, "InstructionError", *trade.ErrorMessage)
}

func TestResolveConfirmationStillInFlight(t *testing.T) {
	gateway := new(MockChainGateway)
	trades := new(MockTradeStore)
	assets := new(MockAssetDirectory)
	svc := newTestService(gateway, trades, assets)
	defer svc.Stop()

	trade := submittedTrade("txhash123")
	gateway.On("TransactionStatus", mock.Anything, "txhash123").
		Return(chain.TxStatus{Known: true}, nil)

	done, err := svc.ResolveConfirmation(context.Background(), trade, "txhash123")
	require.NoError(t, err)
	assert.False(t, done)

	assert.Equal(t, entities.TradeStatusSubmitted, trade.Status)
	trades.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestResolveConfirmationSkipsResolvedTrade(t *testing.T) {
	gateway := new(MockChainGateway)
	trades := new(MockTradeStore)
	assets := new(MockAssetDirectory)
	svc := newTestService(gateway, trades, assets)
	defer svc.Stop()

	trade := submittedTrade("txhash123")
	trade.MarkFailed("already resolved elsewhere")

	done, err := svc.ResolveConfirmation(context.Background(), trade, "txhash123")
	require.NoError(t, err)
	assert.True(t, done)

	gateway.AssertNotCalled(t, "TransactionStatus", mock.Anything, mock.Anything)
}

func TestWatchConfirmationCeilingLeavesTradeSubmitted(t *testing.T) {
	gateway := new(MockChainGateway)
	trades := new(MockTradeStore)
	assets := new(MockAssetDirectory)

	// Fast poll, faster deadline: the watch must expire without ever
	// writing a terminal state
	svc := NewService(gateway, trades, assets,
		10*time.Millisecond, 60*time.Millisecond,
		logger.New("error", "development"))
	defer svc.Stop()

	trade := submittedTrade("txhash123")
	trades.On("GetByID", mock.Anything, trade.ID).Return(trade, nil)
	gateway.On("TransactionStatus", mock.Anything, "txhash123").
		Return(chain.TxStatus{Known: true}, nil)

	svc.watchers.Add(1)
	go svc.watchConfirmation(trade.ID, "txhash123")
	svc.watchers.Wait()

	assert.Equal(t, entities.TradeStatusSubmitted, trade.Status)
	trades.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestWatchConfirmationStopCancelsWatchers(t *testing.T) {
	gateway := new(MockChainGateway)
	trades := new(MockTradeStore)
	assets := new(MockAssetDirectory)

	svc := NewService(gateway, trades, assets,
		time.Hour, time.Hour,
		logger.New("error", "development"))

	trade := submittedTrade("txhash123")

	svc.watchers.Add(1)
	go svc.watchConfirmation(trade.ID, "txhash123")

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not unwind the watcher")
	}
	assert.Equal(t, entities.TradeStatusSubmitted, trade.Status)
}
