package chain

import (
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// MintInfo is the on-chain metadata a token transfer depends on
type MintInfo struct {
	Address  solana.PublicKey
	Decimals uint8
}

// AssetMetadataResolver reads mint accounts off the chain. Decimals
// drive amount scaling, so a mint that cannot be read or decoded is
// always a hard error; the resolver never guesses a default.
type AssetMetadataResolver struct {
	lookup accountLookuper
}

func NewAssetMetadataResolver(lookup accountLookuper) *AssetMetadataResolver {
	return &AssetMetadataResolver{lookup: lookup}
}

// ResolveMint fetches and decodes the mint account for a token asset
func (r *AssetMetadataResolver) ResolveMint(ctx context.Context, mint solana.PublicKey) (MintInfo, error) {
	lookup, err := r.lookup.LookupAccount(ctx, mint)
	if err != nil {
		return MintInfo{}, err
	}
	if !lookup.Exists {
		return MintInfo{}, apperrors.NewValidation(
			apperrors.CodeMintNotFound,
			"asset mint does not exist on the ledger",
		)
	}
	if !lookup.Owner.Equals(solana.TokenProgramID) {
		return MintInfo{}, apperrors.NewValidation(
			apperrors.CodeMintNotFound,
			"asset account is not owned by the token program",
		)
	}

	var mintState token.Mint
	if err := mintState.UnmarshalWithDecoder(bin.NewBinDecoder(lookup.Data)); err != nil {
		return MintInfo{}, apperrors.NewValidation(
			apperrors.CodeMintNotFound,
			"asset account data is not a valid mint",
		)
	}

	return MintInfo{Address: mint, Decimals: mintState.Decimals}, nil
}
