package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeType represents the kind of trade being tracked
type TradeType string

const (
	TradeTypeTransfer TradeType = "transfer"
)

// TradeStatus represents the lifecycle state of a trade.
// Transitions: pending -> submitted -> {finalized, failed}.
// A trade can rest in submitted indefinitely if confirmation
// polling times out; that is a valid terminal-for-now state.
type TradeStatus string

const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusSubmitted TradeStatus = "submitted"
	TradeStatusFinalized TradeStatus = "finalized"
	TradeStatusFailed    TradeStatus = "failed"
)

// Valid reports whether the status is one of the known lifecycle states
func (s TradeStatus) Valid() bool {
	switch s {
	case TradeStatusPending, TradeStatusSubmitted, TradeStatusFinalized, TradeStatusFailed:
		return true
	}
	return false
}

// Trade is the persisted unit of work for one transfer, created when
// an accepted transfer request is prepared. A signed transaction with
// no matching record is refused at submission.
type Trade struct {
	ID           uuid.UUID  `json:"id"`
	FromAssetID  string     `json:"from_asset_id"`
	ToAssetID    string     `json:"to_asset_id"`
	FromAssetRef *uuid.UUID `json:"from_asset_ref,omitempty"`
	ToAssetRef   *uuid.UUID `json:"to_asset_ref,omitempty"`
	Symbol       string     `json:"symbol"`
	Type         TradeType  `json:"type"`

	Amount decimal.Decimal `json:"amount"`
	// Fee is the approximated network fee in native units, derived from
	// the fixed per-signature cost constant
	Fee decimal.Decimal `json:"fee"`

	Status TradeStatus `json:"status"`

	// UnsignedTransaction is the base64 serialized unsigned transaction.
	// It doubles as the join key correlating a later submission with
	// this record, so it must be unique and byte-stable.
	UnsignedTransaction string  `json:"unsigned_transaction"`
	TransactionHash     *string `json:"transaction_hash,omitempty"`
	ErrorMessage        *string `json:"error,omitempty"`

	// Finalized mirrors Status == finalized for cheap filtering
	Finalized   bool       `json:"finalized"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MarkSubmitted transitions the trade after a successful network send
func (t *Trade) MarkSubmitted(txHash string) {
	t.Status = TradeStatusSubmitted
	t.TransactionHash = &txHash
	t.ErrorMessage = nil
}

// MarkFailed records a rejection or post-submission execution failure.
// CompletedAt stays nil: nothing completed.
func (t *Trade) MarkFailed(reason string) {
	t.Status = TradeStatusFailed
	t.ErrorMessage = &reason
	t.Finalized = false
}

// MarkFinalized records irreversible inclusion on the ledger
func (t *Trade) MarkFinalized(at time.Time) {
	t.Status = TradeStatusFinalized
	t.Finalized = true
	t.CompletedAt = &at
	t.ErrorMessage = nil
}

// TransferRequest is the validated-once, never-persisted transfer
// intent. An empty AssetID means the native coin.
type TransferRequest struct {
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	AssetID     string          `json:"asset_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// Balance is a read-only projection assembled fresh on each query.
// Zero and negative amounts are never included.
type Balance struct {
	AssetID string          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
	// Symbol is filled in when the asset is registered in the
	// directory; unregistered mints are still reported, without one
	Symbol string `json:"symbol,omitempty"`
}
