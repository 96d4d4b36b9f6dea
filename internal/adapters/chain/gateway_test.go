package chain

import (
	"context"
	"encoding/base64"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

// signUnsigned decodes an assembled unsigned transaction, signs it
// with the sender's key, and returns the signed base64 form
func signUnsigned(t *testing.T, unsignedBase64 string, sender *solana.Wallet) string {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(unsignedBase64)
	require.NoError(t, err)

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(sender.PublicKey()) {
			return &sender.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)

	signed, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(signed)
}

func TestDecodeSignedRecoversUnsignedForm(t *testing.T) {
	source, _ := testBlockhash(t)
	assembler := NewTransactionAssembler(source)

	sender := solana.NewWallet()
	recipient := solana.NewWallet().PublicKey()

	unsigned, err := assembler.AssembleNative(context.Background(), sender.PublicKey(), recipient, 1_000_000)
	require.NoError(t, err)

	signedBase64 := signUnsigned(t, unsigned.Base64, sender)

	gateway := NewGateway(nil, logger.New("error", "development"))
	decoded, err := gateway.DecodeSigned(signedBase64)
	require.NoError(t, err)

	// Stripping the signatures must reproduce the exact serialization
	// handed out at prepare time; it is the trade join key
	assert.Equal(t, unsigned.Base64, decoded.UnsignedBase64)
}

func TestDecodeSignedRejectsBadBase64(t *testing.T) {
	gateway := NewGateway(nil, logger.New("error", "development"))

	_, err := gateway.DecodeSigned("not base64 at all!!!")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidTransaction, appErr.Code)
}

func TestDecodeSignedRejectsGarbagePayload(t *testing.T) {
	gateway := NewGateway(nil, logger.New("error", "development"))

	garbage := base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x01})
	_, err := gateway.DecodeSigned(garbage)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestDecodeSignedRejectsUnsignedTransaction(t *testing.T) {
	// A transaction with its signature slots empty is not submittable
	source, _ := testBlockhash(t)
	assembler := NewTransactionAssembler(source)

	sender := solana.NewWallet().PublicKey()
	recipient := solana.NewWallet().PublicKey()

	unsigned, err := assembler.AssembleNative(context.Background(), sender, recipient, 1_000_000)
	require.NoError(t, err)

	gateway := NewGateway(nil, logger.New("error", "development"))
	_, err = gateway.DecodeSigned(unsigned.Base64)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidTransaction, appErr.Code)
}

func TestNativeBalanceReadsThroughGetBalance(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	rpcClient := new(MockRPCClient)
	rpcClient.On("GetAccountInfo", mock.Anything, owner).Return(&rpc.GetAccountInfoResult{
		Value: &rpc.Account{Owner: solana.SystemProgramID},
	}, nil)
	rpcClient.On("GetBalance", mock.Anything, owner, mock.Anything).
		Return(&rpc.GetBalanceResult{Value: 1_500_000_000}, nil)

	gateway := NewGateway(newTestClient(rpcClient), logger.New("error", "development"))
	got, err := gateway.NativeBalance(context.Background(), owner.String())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(1.5).Equal(got))
	rpcClient.AssertExpectations(t)
}

func TestNativeBalanceNeverUsedAddress(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	rpcClient := new(MockRPCClient)
	rpcClient.On("GetAccountInfo", mock.Anything, owner).Return(nil, rpc.ErrNotFound)

	gateway := NewGateway(newTestClient(rpcClient), logger.New("error", "development"))
	_, err := gateway.NativeBalance(context.Background(), owner.String())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	rpcClient.AssertNotCalled(t, "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}
