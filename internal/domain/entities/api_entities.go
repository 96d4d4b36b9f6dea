package entities

// ErrorResponse is the JSON error envelope returned by all handlers
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PrepareTransferResponse is returned by POST /v1/transfers/prepare
type PrepareTransferResponse struct {
	TradeID             string `json:"trade_id"`
	UnsignedTransaction string `json:"unsigned_transaction"`
	Fee                 string `json:"fee"`
}

// SubmitTransferRequest is the payload for POST /v1/transfers/submit
type SubmitTransferRequest struct {
	UnsignedTransaction string `json:"unsigned_transaction"`
	SignedTransaction   string `json:"signed_transaction"`
}

// SubmitTransferResponse is returned by POST /v1/transfers/submit
type SubmitTransferResponse struct {
	TransactionHash string `json:"transaction_hash"`
}

// TradesResponse is returned by GET /v1/trades
type TradesResponse struct {
	Trades []*Trade `json:"trades"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

// BalancesResponse is returned by GET /v1/balances/:address
type BalancesResponse struct {
	Address  string    `json:"address"`
	Balances []Balance `json:"balances"`
}
