package balance

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/porter-wallet/porter_service/internal/adapters/chain"
	"github.com/porter-wallet/porter_service/internal/domain/entities"
	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
	"github.com/porter-wallet/porter_service/pkg/metrics"
)

// BalanceGateway is the ledger surface the aggregator reads from
type BalanceGateway interface {
	NativeBalance(ctx context.Context, address string) (decimal.Decimal, error)
	TokenHoldings(ctx context.Context, address string) ([]chain.TokenBalance, error)
}

// assetDirectory annotates holdings with registered asset metadata
type assetDirectory interface {
	ResolveMany(ctx context.Context, identifiers []string) (map[string]*entities.Asset, error)
}

// Service assembles the balance view of an address fresh on every
// query; nothing here is cached or persisted
type Service struct {
	gateway BalanceGateway
	assets  assetDirectory
	logger  *logger.Logger
}

func NewService(gateway BalanceGateway, assets assetDirectory, log *logger.Logger) *Service {
	return &Service{gateway: gateway, assets: assets, logger: log}
}

// GetBalances returns every positive holding of an address: the native
// balance first, then token balances ordered by asset identifier. An
// address that has never touched the chain yields an empty list. If
// token enumeration fails after the native read succeeded, the view
// degrades to native-only rather than failing the whole query.
func (s *Service) GetBalances(ctx context.Context, address string) (*entities.BalancesResponse, error) {
	native, err := s.gateway.NativeBalance(ctx, address)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.RecordBalanceQuery("empty")
			return &entities.BalancesResponse{Address: address, Balances: []entities.Balance{}}, nil
		}
		metrics.RecordBalanceQuery("error")
		return nil, err
	}

	balances := make([]entities.Balance, 0, 4)
	if native.IsPositive() {
		balances = append(balances, entities.Balance{
			AssetID: entities.NativeAssetID,
			Amount:  native,
		})
	}

	holdings, err := s.gateway.TokenHoldings(ctx, address)
	if err != nil {
		s.logger.Warn("Token holdings unavailable, returning native balance only",
			"address", address,
			"error", err,
		)
		metrics.RecordBalanceQuery("degraded")
		s.annotateSymbols(ctx, balances)
		return &entities.BalancesResponse{Address: address, Balances: balances}, nil
	}

	tokens := make([]entities.Balance, 0, len(holdings))
	for _, h := range holdings {
		if !h.Amount.IsPositive() {
			continue
		}
		tokens = append(tokens, entities.Balance{AssetID: h.Mint, Amount: h.Amount})
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].AssetID < tokens[j].AssetID })
	balances = append(balances, tokens...)

	s.annotateSymbols(ctx, balances)

	metrics.RecordBalanceQuery("success")
	return &entities.BalancesResponse{Address: address, Balances: balances}, nil
}

// annotateSymbols fills in symbols for holdings registered in the
// asset directory. Annotation is cosmetic; a directory failure leaves
// the amounts untouched.
func (s *Service) annotateSymbols(ctx context.Context, balances []entities.Balance) {
	if len(balances) == 0 {
		return
	}

	identifiers := make([]string, 0, len(balances))
	for _, b := range balances {
		identifiers = append(identifiers, b.AssetID)
	}

	known, err := s.assets.ResolveMany(ctx, identifiers)
	if err != nil {
		s.logger.Warn("Asset symbol annotation failed", "error", err)
		return
	}

	for i := range balances {
		if asset, ok := known[balances[i].AssetID]; ok {
			balances[i].Symbol = asset.Symbol
		}
	}
}
