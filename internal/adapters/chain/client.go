package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	apperrors "github.com/porter-wallet/porter_service/pkg/errors"
	"github.com/porter-wallet/porter_service/pkg/logger"
	"github.com/porter-wallet/porter_service/pkg/metrics"
)

// RPCClient is the subset of the ledger RPC surface this service
// consumes; satisfied by *rpc.Client and by test fakes.
type RPCClient interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	SendRawTransactionWithOpts(ctx context.Context, serializedTx []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// AccountLookup is the tagged result of a chain account query.
// The "not found vs transport error" decision is made exactly once,
// here at the client boundary; callers must never re-infer it from
// error text.
type AccountLookup struct {
	Exists bool
	Owner  solana.PublicKey
	Data   []byte
}

// Holding is one positive token balance of an owner
type Holding struct {
	Mint     string
	Amount   uint64
	Decimals uint8
}

// TxStatus is the observed confirmation state of a submitted transaction
type TxStatus struct {
	Known     bool
	Finalized bool
	Failed    bool
	Err       string
}

// Client wraps the raw RPC surface with typed, classified results
type Client struct {
	rpc        RPCClient
	commitment rpc.CommitmentType
	maxRetries uint
	logger     *logger.Logger
}

// NewClient creates a ledger client over the given RPC endpoint surface.
// maxRetries bounds the RPC node's internal resend of a raw transaction;
// it is not an application-level re-submission.
func NewClient(rpcClient RPCClient, commitment string, maxRetries uint, log *logger.Logger) *Client {
	c := rpc.CommitmentConfirmed
	if commitment == "finalized" {
		c = rpc.CommitmentFinalized
	}
	return &Client{
		rpc:        rpcClient,
		commitment: c,
		maxRetries: maxRetries,
		logger:     log,
	}
}

// LookupAccount queries one account. A well-defined "not found" from
// the ledger yields {Exists: false} with a nil error; anything else
// that fails is a transport error.
func (c *Client) LookupAccount(ctx context.Context, address solana.PublicKey) (*AccountLookup, error) {
	start := time.Now()
	out, err := c.rpc.GetAccountInfo(ctx, address)
	metrics.ObserveRPC("getAccountInfo", start, err)

	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return &AccountLookup{Exists: false}, nil
		}
		return nil, apperrors.NewNetwork("account lookup failed", err)
	}

	if out == nil || out.Value == nil {
		return &AccountLookup{Exists: false}, nil
	}

	var data []byte
	if out.Value.Data != nil {
		data = out.Value.Data.GetBinary()
	}

	return &AccountLookup{
		Exists: true,
		Owner:  out.Value.Owner,
		Data:   data,
	}, nil
}

// LatestBlockhash fetches the network checkpoint attached to every
// assembled transaction
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	start := time.Now()
	out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	metrics.ObserveRPC("getLatestBlockhash", start, err)

	if err != nil {
		return solana.Hash{}, apperrors.NewNetwork("blockhash fetch failed", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, apperrors.NewNetwork("blockhash fetch returned empty result", nil)
	}

	return out.Value.Blockhash, nil
}

// BalanceLamports returns the native balance of an address at the
// client's commitment level. GetBalance reports zero for an address
// that has never been used; the caller distinguishes that case through
// LookupAccount first.
func (c *Client) BalanceLamports(ctx context.Context, address solana.PublicKey) (uint64, error) {
	start := time.Now()
	out, err := c.rpc.GetBalance(ctx, address, c.commitment)
	metrics.ObserveRPC("getBalance", start, err)

	if err != nil {
		return 0, apperrors.NewNetwork("balance fetch failed", err)
	}
	if out == nil {
		return 0, apperrors.NewNetwork("balance fetch returned empty result", nil)
	}

	return out.Value, nil
}

// parsedTokenAccount mirrors the jsonParsed token account encoding
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// TokenHoldings returns all token-program accounts owned by the
// address, including zero balances; filtering is the aggregator's job.
func (c *Client) TokenHoldings(ctx context.Context, owner solana.PublicKey) ([]Holding, error) {
	programID := solana.TokenProgramID

	start := time.Now()
	out, err := c.rpc.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	metrics.ObserveRPC("getTokenAccountsByOwner", start, err)

	if err != nil {
		return nil, apperrors.NewNetwork("token holdings fetch failed", err)
	}
	if out == nil {
		return nil, apperrors.NewNetwork("token holdings fetch returned empty result", nil)
	}

	holdings := make([]Holding, 0, len(out.Value))
	for _, acc := range out.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}

		var parsed parsedTokenAccount
		if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &parsed); err != nil {
			return nil, apperrors.NewNetwork("token account response was malformed", err)
		}

		amount, err := strconv.ParseUint(parsed.Parsed.Info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, apperrors.NewNetwork("token amount was malformed", err)
		}

		holdings = append(holdings, Holding{
			Mint:     parsed.Parsed.Info.Mint,
			Amount:   amount,
			Decimals: parsed.Parsed.Info.TokenAmount.Decimals,
		})
	}

	return holdings, nil
}

// SubmitRaw sends a signed transaction. A ledger rejection (preflight
// failure, insufficient funds) comes back as a submission error with
// the ledger's message preserved; transport failures stay transport
// errors. The call is never retried at this level.
func (c *Client) SubmitRaw(ctx context.Context, serialized []byte) (string, error) {
	maxRetries := c.maxRetries

	start := time.Now()
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, serialized, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment,
		MaxRetries:          &maxRetries,
	})
	metrics.ObserveRPC("sendTransaction", start, err)

	if err != nil {
		var rpcErr *jsonrpc.RPCError
		if errors.As(err, &rpcErr) {
			c.logger.Warn("Ledger rejected transaction",
				"code", rpcErr.Code,
				"message", rpcErr.Message,
			)
			return "", apperrors.NewSubmission(rpcErr.Message, err)
		}
		return "", apperrors.NewNetwork("transaction send failed", err)
	}

	c.logger.Info("Transaction sent", "signature", sig.String())
	return sig.String(), nil
}

// SignatureStatus polls the confirmation state of one signature
func (c *Client) SignatureStatus(ctx context.Context, txHash string) (TxStatus, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return TxStatus{}, apperrors.NewValidation(apperrors.CodeInvalidTransaction, "transaction hash is malformed")
	}

	start := time.Now()
	out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
	metrics.ObserveRPC("getSignatureStatuses", start, err)

	if err != nil {
		return TxStatus{}, apperrors.NewNetwork("signature status fetch failed", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return TxStatus{Known: false}, nil
	}

	status := out.Value[0]
	result := TxStatus{Known: true}

	if status.Err != nil {
		result.Failed = true
		result.Err = fmt.Sprintf("%v", status.Err)
		return result, nil
	}

	if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		result.Finalized = true
	}

	return result, nil
}
