package trade_confirmation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/porter-wallet/porter_service/internal/domain/entities"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

type MockTradeSource struct {
	mock.Mock
}

func (m *MockTradeSource) ListByStatus(ctx context.Context, status entities.TradeStatus, limit int) ([]*entities.Trade, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Trade), args.Error(1)
}

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveConfirmation(ctx context.Context, trade *entities.Trade, txHash string) (bool, error) {
	args := m.Called(ctx, trade, txHash)
	return args.Bool(0), args.Error(1)
}

func submittedTrade(txHash string) *entities.Trade {
	trade := &entities.Trade{ID: uuid.New(), Status: entities.TradeStatusPending}
	trade.MarkSubmitted(txHash)
	return trade
}

func newTestWorker(trades *MockTradeSource, resolver *MockResolver) *Worker {
	return NewWorker(trades, resolver, "@every 1m", 50, logger.New("error", "development"))
}

func TestSweepResolvesSubmittedTrades(t *testing.T) {
	trades := new(MockTradeSource)
	resolver := new(MockResolver)

	first := submittedTrade("hash-1")
	second := submittedTrade("hash-2")
	trades.On("ListByStatus", mock.Anything, entities.TradeStatusSubmitted, 50).
		Return([]*entities.Trade{first, second}, nil)
	resolver.On("ResolveConfirmation", mock.Anything, first, "hash-1").Return(true, nil)
	resolver.On("ResolveConfirmation", mock.Anything, second, "hash-2").Return(false, nil)

	worker := newTestWorker(trades, resolver)
	worker.sweep()

	trades.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestSweepSkipsTradeWithoutHash(t *testing.T) {
	trades := new(MockTradeSource)
	resolver := new(MockResolver)

	orphan := &entities.Trade{ID: uuid.New(), Status: entities.TradeStatusSubmitted}
	tracked := submittedTrade("hash-1")
	trades.On("ListByStatus", mock.Anything, entities.TradeStatusSubmitted, 50).
		Return([]*entities.Trade{orphan, tracked}, nil)
	resolver.On("ResolveConfirmation", mock.Anything, tracked, "hash-1").Return(true, nil)

	worker := newTestWorker(trades, resolver)
	worker.sweep()

	resolver.AssertNumberOfCalls(t, "ResolveConfirmation", 1)
}

func TestSweepContinuesPastResolverFailure(t *testing.T) {
	trades := new(MockTradeSource)
	resolver := new(MockResolver)

	first := submittedTrade("hash-1")
	second := submittedTrade("hash-2")
	trades.On("ListByStatus", mock.Anything, entities.TradeStatusSubmitted, 50).
		Return([]*entities.Trade{first, second}, nil)
	resolver.On("ResolveConfirmation", mock.Anything, first, "hash-1").Return(false, assert.AnError)
	resolver.On("ResolveConfirmation", mock.Anything, second, "hash-2").Return(true, nil)

	worker := newTestWorker(trades, resolver)
	worker.sweep()

	resolver.AssertExpectations(t)
}

func TestSweepListFailureResolvesNothing(t *testing.T) {
	trades := new(MockTradeSource)
	resolver := new(MockResolver)

	trades.On("ListByStatus", mock.Anything, entities.TradeStatusSubmitted, 50).
		Return(nil, assert.AnError)

	worker := newTestWorker(trades, resolver)
	worker.sweep()

	resolver.AssertNotCalled(t, "ResolveConfirmation", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartRejectsMalformedSchedule(t *testing.T) {
	worker := NewWorker(new(MockTradeSource), new(MockResolver), "not a schedule", 50,
		logger.New("error", "development"))
	require.Error(t, worker.Start())
}

func TestStartAndStop(t *testing.T) {
	trades := new(MockTradeSource)
	resolver := new(MockResolver)

	worker := newTestWorker(trades, resolver)
	require.NoError(t, worker.Start())
	worker.Stop()
}
