package chain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

func TestParseAddress(t *testing.T) {
	wallet := solana.NewWallet()

	pk, err := ParseAddress(wallet.PublicKey().String())
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), pk)
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	for _, address := range []string{
		"",
		"not-base58-0OIl",
		"abc",
		"SomeRandomTextThatIsNotAnAddressAtAll!!!",
	} {
		t.Run(address, func(t *testing.T) {
			_, err := ParseAddress(address)
			require.Error(t, err)

			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeInvalidAddress, appErr.Code)
		})
	}
}

func TestValidateAddressAcceptsDerivedAccounts(t *testing.T) {
	// Transfer endpoints accept token accounts, which are off-curve
	wallet := solana.NewWallet()
	mint := solana.NewWallet()

	ata, _, err := solana.FindAssociatedTokenAddress(wallet.PublicKey(), mint.PublicKey())
	require.NoError(t, err)

	assert.NoError(t, ValidateAddress(ata.String()))
}

func TestParseOwnerAddress(t *testing.T) {
	wallet := solana.NewWallet()

	pk, err := ParseOwnerAddress(wallet.PublicKey().String())
	require.NoError(t, err)
	assert.Equal(t, wallet.PublicKey(), pk)
}

func TestParseOwnerAddressRejectsDerivedAccounts(t *testing.T) {
	// Balance queries take wallet addresses only; a derived account
	// address is well-formed base58 but lies off the curve
	wallet := solana.NewWallet()
	mint := solana.NewWallet()

	ata, _, err := solana.FindAssociatedTokenAddress(wallet.PublicKey(), mint.PublicKey())
	require.NoError(t, err)

	_, err = ParseOwnerAddress(ata.String())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
