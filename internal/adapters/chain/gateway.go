package chain

import (
	"context"
	"encoding/base64"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

// SignedTransaction is a decoded, structurally valid signed
// transaction. UnsignedBase64 is the serialization with signatures
// stripped, which matches the form originally handed to the client
// and so identifies the trade it belongs to.
type SignedTransaction struct {
	Raw            []byte
	UnsignedBase64 string
}

// TokenBalance is one token holding expressed in display units
type TokenBalance struct {
	Mint   string
	Amount decimal.Decimal
}

// Gateway is the single chain-facing surface the domain services use.
// Everything crossing it is strings and decimals; ledger key types
// stay inside this package.
type Gateway struct {
	client    *Client
	resolver  *TokenAccountResolver
	metadata  *AssetMetadataResolver
	assembler *TransactionAssembler
	logger    *logger.Logger
}

func NewGateway(client *Client, log *logger.Logger) *Gateway {
	return &Gateway{
		client:    client,
		resolver:  NewTokenAccountResolver(client),
		metadata:  NewAssetMetadataResolver(client),
		assembler: NewTransactionAssembler(client),
		logger:    log,
	}
}

// ValidateAddress reports whether the address is well formed
func (g *Gateway) ValidateAddress(address string) error {
	return ValidateAddress(address)
}

// Ping checks RPC reachability by fetching a recent blockhash
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.client.LatestBlockhash(ctx)
	return err
}

// BuildNativeTransfer assembles an unsigned native transfer of the
// given display amount
func (g *Gateway) BuildNativeTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (*UnsignedTransaction, error) {
	sender, err := ParseAddress(from)
	if err != nil {
		return nil, err
	}
	recipient, err := ParseAddress(to)
	if err != nil {
		return nil, err
	}

	lamports, err := RawUnits(amount, NativeDecimals)
	if err != nil {
		return nil, err
	}

	return g.assembler.AssembleNative(ctx, sender, recipient, lamports)
}

// BuildTokenTransfer assembles an unsigned token transfer. Decimals
// come from the on-chain mint, never from local configuration, and the
// recipient's token account is provisioned in-transaction if missing.
func (g *Gateway) BuildTokenTransfer(ctx context.Context, from, to, mintAddress string, amount decimal.Decimal) (*UnsignedTransaction, error) {
	sender, err := ParseAddress(from)
	if err != nil {
		return nil, err
	}
	recipient, err := ParseAddress(to)
	if err != nil {
		return nil, err
	}
	mint, err := ParseAddress(mintAddress)
	if err != nil {
		return nil, err
	}

	info, err := g.metadata.ResolveMint(ctx, mint)
	if err != nil {
		return nil, err
	}

	raw, err := RawUnits(amount, info.Decimals)
	if err != nil {
		return nil, err
	}

	source, err := g.resolver.ResolveSource(ctx, sender, mint)
	if err != nil {
		return nil, err
	}
	destination, err := g.resolver.ResolveDestination(ctx, recipient, mint)
	if err != nil {
		return nil, err
	}

	return g.assembler.AssembleToken(ctx, TokenTransferParams{
		Sender:      sender,
		Recipient:   recipient,
		Mint:        mint,
		Source:      source,
		Destination: destination,
		RawAmount:   raw,
		Decimals:    info.Decimals,
	})
}

// DecodeSigned decodes a base64 signed transaction and checks it is
// structurally complete: every required signature slot filled, none
// zeroed. It does not touch the network.
func (g *Gateway) DecodeSigned(signedBase64 string) (*SignedTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(signedBase64)
	if err != nil {
		return nil, apperrors.NewValidation(apperrors.CodeInvalidTransaction, "signed transaction is not valid base64")
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, apperrors.NewValidation(apperrors.CodeInvalidTransaction, "signed transaction payload is malformed")
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != required {
		return nil, apperrors.NewValidation(apperrors.CodeInvalidTransaction, "signed transaction is missing required signatures")
	}
	for _, sig := range tx.Signatures {
		if sig.IsZero() {
			return nil, apperrors.NewValidation(apperrors.CodeInvalidTransaction, "signed transaction has an empty signature")
		}
	}

	unsigned := *tx
	unsigned.Signatures = nil
	unsignedRaw, err := unsigned.MarshalBinary()
	if err != nil {
		return nil, apperrors.NewInternal("transaction re-encoding failed", err)
	}

	return &SignedTransaction{
		Raw:            raw,
		UnsignedBase64: base64.StdEncoding.EncodeToString(unsignedRaw),
	}, nil
}

// Submit sends the signed transaction to the ledger and returns its hash
func (g *Gateway) Submit(ctx context.Context, signed *SignedTransaction) (string, error) {
	return g.client.SubmitRaw(ctx, signed.Raw)
}

// TransactionStatus reports the confirmation state of a submitted
// transaction
func (g *Gateway) TransactionStatus(ctx context.Context, txHash string) (TxStatus, error) {
	return g.client.SignatureStatus(ctx, txHash)
}

// NativeBalance returns the native balance of an address in display
// units. An address with no on-chain account returns ErrNotFound so
// the caller can report an empty portfolio instead of a zero line.
func (g *Gateway) NativeBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	owner, err := ParseOwnerAddress(address)
	if err != nil {
		return decimal.Zero, err
	}

	lookup, err := g.client.LookupAccount(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}
	if !lookup.Exists {
		return decimal.Zero, apperrors.ErrNotFound
	}

	lamports, err := g.client.BalanceLamports(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}

	return FromRawUnits(lamports, NativeDecimals), nil
}

// TokenHoldings returns every token balance of an address in display
// units, zero balances included
func (g *Gateway) TokenHoldings(ctx context.Context, address string) ([]TokenBalance, error) {
	owner, err := ParseOwnerAddress(address)
	if err != nil {
		return nil, err
	}

	holdings, err := g.client.TokenHoldings(ctx, owner)
	if err != nil {
		return nil, err
	}

	balances := make([]TokenBalance, 0, len(holdings))
	for _, h := range holdings {
		balances = append(balances, TokenBalance{
			Mint:   h.Mint,
			Amount: FromRawUnits(h.Amount, h.Decimals),
		})
	}

	return balances, nil
}
