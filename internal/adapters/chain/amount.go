package chain

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

const (
	// FeePerSignatureLamports approximates the network fee from a fixed
	// per-signature cost instead of deriving it from the assembled
	// transaction. Persisted Trade fees depend on this value.
	FeePerSignatureLamports = 5000

	// NativeDecimals is the divisibility of the native coin (lamports per SOL)
	NativeDecimals = 9
)

// RawUnits converts a human-readable decimal amount into the integer
// base-unit amount the ledger expects. Rounding is half-away-from-zero
// in decimal arithmetic; naive float truncation systematically
// under-transfers dust amounts.
func RawUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if !amount.IsPositive() {
		return 0, apperrors.NewValidation(apperrors.CodeInvalidAmount, "amount must be positive")
	}

	raw := amount.Shift(int32(decimals)).Round(0)

	bi := raw.BigInt()
	if !bi.IsUint64() {
		return 0, apperrors.NewValidation(
			apperrors.CodeInvalidAmount,
			fmt.Sprintf("amount %s exceeds the representable range at %d decimals", amount, decimals),
		)
	}

	units := bi.Uint64()
	if units == 0 {
		return 0, apperrors.NewValidation(
			apperrors.CodeInvalidAmount,
			fmt.Sprintf("amount %s rounds to zero base units at %d decimals", amount, decimals),
		)
	}

	return units, nil
}

// FromRawUnits converts an integer base-unit amount back to its
// human-readable decimal form
func FromRawUnits(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(raw).Shift(-int32(decimals))
}

// FeeForSignatures returns the approximated fee in native units for a
// transaction requiring n signatures
func FeeForSignatures(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n) * FeePerSignatureLamports).Shift(-NativeDecimals)
}
