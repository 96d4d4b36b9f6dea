package chain

import (
	"context"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// accountLookuper is the slice of the ledger client the resolver needs
type accountLookuper interface {
	LookupAccount(ctx context.Context, address solana.PublicKey) (*AccountLookup, error)
}

// TokenAccountPlan is the outcome of resolving one wallet's token
// account for a mint: the derived associated account address, and
// whether the transfer has to create it first.
type TokenAccountPlan struct {
	Address        solana.PublicKey
	Exists         bool
	NeedsProvision bool
}

// TokenAccountResolver derives associated token accounts and checks
// their on-chain existence
type TokenAccountResolver struct {
	lookup accountLookuper
}

func NewTokenAccountResolver(lookup accountLookuper) *TokenAccountResolver {
	return &TokenAccountResolver{lookup: lookup}
}

// ResolveSource resolves the sender's token account for a mint. The
// sender must already hold the token; a missing account is a hard
// error, never something the transfer provisions.
func (r *TokenAccountResolver) ResolveSource(ctx context.Context, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, apperrors.NewInternal("token account derivation failed", err)
	}

	lookup, err := r.lookup.LookupAccount(ctx, ata)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !lookup.Exists {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeAccountNotFound,
			"sender holds no token account for this asset",
		)
	}
	if !lookup.Owner.Equals(solana.TokenProgramID) {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeAccountNotFound,
			"derived sender account is not a token account",
		)
	}

	return ata, nil
}

// ResolveDestination resolves the recipient's token account for a
// mint. A missing account is normal; the plan marks it for creation
// inside the same transaction.
func (r *TokenAccountResolver) ResolveDestination(ctx context.Context, owner, mint solana.PublicKey) (TokenAccountPlan, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return TokenAccountPlan{}, apperrors.NewInternal("token account derivation failed", err)
	}

	lookup, err := r.lookup.LookupAccount(ctx, ata)
	if err != nil {
		return TokenAccountPlan{}, err
	}

	plan := TokenAccountPlan{Address: ata, Exists: lookup.Exists}
	// A slot owned by the system program is unallocated: the account
	// record exists but was never initialized as a token account, so it
	// still needs creating.
	if !lookup.Exists || lookup.Owner.Equals(solana.SystemProgramID) {
		plan.NeedsProvision = true
	}

	return plan, nil
}
