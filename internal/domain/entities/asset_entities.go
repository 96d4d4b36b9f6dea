package entities

import (
	"time"

	"github.com/google/uuid"
)

// NativeAssetID is the directory identifier of the native coin.
// Token assets are identified by their mint address.
const NativeAssetID = ""

// Asset is a directory entry describing a transferable asset
type Asset struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier"`
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Decimals   int       `json:"decimals"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsNative reports whether this is the ledger's base asset
func (a *Asset) IsNative() bool {
	return a.Identifier == NativeAssetID
}
