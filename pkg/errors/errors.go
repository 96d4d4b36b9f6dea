package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures for propagation policy decisions
type ErrorType string

const (
	// ErrorTypeValidation covers malformed input rejected before any side effect
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound covers absent resources; often a trigger for
	// provisioning logic rather than a user-facing failure
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeNetwork covers transport failures against the ledger RPC.
	// These are hard errors and must never be read as "not found".
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeSubmission covers the ledger refusing a signed transaction
	ErrorTypeSubmission ErrorType = "submission"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes shared between services and the API layer
const (
	CodeInvalidAddress       = "INVALID_ADDRESS"
	CodeInvalidAmount        = "INVALID_AMOUNT"
	CodeInvalidTransaction   = "INVALID_TRANSACTION"
	CodeMissingField         = "MISSING_FIELD"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeAssetUnknown         = "ASSET_UNKNOWN"
	CodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	CodeMintNotFound         = "MINT_NOT_FOUND"
	CodeTradeNotFound        = "TRADE_NOT_FOUND"
	CodeUntrackedTransaction = "UNTRACKED_TRANSACTION"
	CodeTradeNotPending      = "TRADE_NOT_PENDING"
	CodeNetworkFailure       = "NETWORK_FAILURE"
	CodeSubmissionRejected   = "SUBMISSION_REJECTED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Sentinel errors for repository lookups and ledger responses
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// AppError carries a classified, HTTP-mappable failure
type AppError struct {
	Type       ErrorType
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation builds a 400-class validation error
func NewValidation(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: 400,
	}
}

// NewNotFound builds a 404-class missing-resource error
func NewNotFound(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: 404,
	}
}

// NewNetwork wraps a transport failure from the ledger RPC
func NewNetwork(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Code:       CodeNetworkFailure,
		Message:    message,
		StatusCode: 502,
		Err:        err,
	}
}

// NewSubmission wraps a ledger rejection of a signed transaction,
// preserving the ledger's message for the Trade record
func NewSubmission(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeSubmission,
		Code:       CodeSubmissionRejected,
		Message:    message,
		StatusCode: 422,
		Err:        err,
	}
}

// NewConflict builds a 409-class error for state machine violations
func NewConflict(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: 409,
	}
}

// NewInternal builds a 500-class error
func NewInternal(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       CodeInternalError,
		Message:    message,
		StatusCode: 500,
		Err:        err,
	}
}

// AsAppError unwraps err into an *AppError if one is in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is the not-found sentinel or a
// not-found classified AppError
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsType reports whether err carries the given classification
func IsType(err error, t ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == t
}
