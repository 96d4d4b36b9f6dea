package chain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// ParseAddress decodes a base58 account identifier, rejecting
// malformed input before any network call is made.
func ParseAddress(address string) (solana.PublicKey, error) {
	if address == "" {
		return solana.PublicKey{}, apperrors.NewValidation(apperrors.CodeInvalidAddress, "address is required")
	}

	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeInvalidAddress,
			fmt.Sprintf("invalid address %q: %v", address, err),
		)
	}

	return pk, nil
}

// ValidateAddress checks base58 format only. Sufficient for transfer
// endpoints, where derived (off-curve) accounts are legitimate inputs.
func ValidateAddress(address string) error {
	_, err := ParseAddress(address)
	return err
}

// ParseOwnerAddress additionally requires the key to lie on the
// ed25519 curve, i.e. to be a wallet address rather than a derived
// account. Balance queries take owner addresses only.
func ParseOwnerAddress(address string) (solana.PublicKey, error) {
	pk, err := ParseAddress(address)
	if err != nil {
		return solana.PublicKey{}, err
	}

	if !pk.IsOnCurve() {
		return solana.PublicKey{}, apperrors.NewValidation(
			apperrors.CodeInvalidAddress,
			fmt.Sprintf("address %q is not a wallet address", address),
		)
	}

	return pk, nil
}
