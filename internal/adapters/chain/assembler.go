package chain

import (
	"context"
	"encoding/base64"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/shopspring/decimal"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
)

// blockhashSource is the slice of the ledger client the assembler needs
type blockhashSource interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// UnsignedTransaction is an assembled, fee-quoted transaction awaiting
// the sender's signature. Base64 is the canonical serialized form the
// client signs and returns; it doubles as the trade join key.
type UnsignedTransaction struct {
	Base64           string
	SignatureCount   int
	InstructionCount int
	Fee              decimal.Decimal
}

// TransactionAssembler builds unsigned transfer transactions anchored
// to a fresh blockhash
type TransactionAssembler struct {
	blockhash blockhashSource
}

func NewTransactionAssembler(blockhash blockhashSource) *TransactionAssembler {
	return &TransactionAssembler{blockhash: blockhash}
}

// AssembleNative builds a native transfer of lamports from sender to
// recipient, with the sender as fee payer
func (a *TransactionAssembler) AssembleNative(ctx context.Context, sender, recipient solana.PublicKey, lamports uint64) (*UnsignedTransaction, error) {
	transfer := system.NewTransferInstruction(lamports, sender, recipient).Build()
	return a.assemble(ctx, sender, []solana.Instruction{transfer})
}

// TokenTransferParams carries everything a token transfer instruction
// needs after resolution
type TokenTransferParams struct {
	Sender      solana.PublicKey
	Recipient   solana.PublicKey
	Mint        solana.PublicKey
	Source      solana.PublicKey
	Destination TokenAccountPlan
	RawAmount   uint64
	Decimals    uint8
}

// AssembleToken builds a checked token transfer. When the recipient
// has no token account yet, an account creation instruction funded by
// the sender precedes the transfer in the same transaction.
func (a *TransactionAssembler) AssembleToken(ctx context.Context, p TokenTransferParams) (*UnsignedTransaction, error) {
	instructions := make([]solana.Instruction, 0, 2)

	if p.Destination.NeedsProvision {
		create := associatedtokenaccount.NewCreateInstruction(p.Sender, p.Recipient, p.Mint).Build()
		instructions = append(instructions, create)
	}

	transfer := token.NewTransferCheckedInstruction(
		p.RawAmount,
		p.Decimals,
		p.Source,
		p.Mint,
		p.Destination.Address,
		p.Sender,
		nil,
	).Build()
	instructions = append(instructions, transfer)

	return a.assemble(ctx, p.Sender, instructions)
}

func (a *TransactionAssembler) assemble(ctx context.Context, payer solana.PublicKey, instructions []solana.Instruction) (*UnsignedTransaction, error) {
	blockhash, err := a.blockhash.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, apperrors.NewInternal("transaction assembly failed", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, apperrors.NewInternal("transaction encoding failed", err)
	}

	signatures := int(tx.Message.Header.NumRequiredSignatures)

	return &UnsignedTransaction{
		Base64:           base64.StdEncoding.EncodeToString(raw),
		SignatureCount:   signatures,
		InstructionCount: len(instructions),
		Fee:              FeeForSignatures(signatures),
	}, nil
}
