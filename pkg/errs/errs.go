// Package errs classifies mining-operation failures into a fixed taxonomy
// with sanitized user-facing messages.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies a failure category.
type Code string

const (
	// CodeUserDeclined means the signature request was rejected by the user.
	// Never shown as an error.
	CodeUserDeclined Code = "user_declined"
	// CodeBusy means another operation is already in flight. Never shown.
	CodeBusy Code = "busy"
	// CodeInsufficientFunds means pre-flight or simulation detected a
	// balance shortfall.
	CodeInsufficientFunds Code = "insufficient_funds"
	// CodeNotEligible means the account fails the mining eligibility check.
	CodeNotEligible Code = "not_eligible"
	// CodeCapacityExceeded means the epoch ticket cap is reached.
	CodeCapacityExceeded Code = "capacity_exceeded"
	// CodeNothingPending means there are no pending mines to finalize.
	CodeNothingPending Code = "nothing_pending"
	// CodeNothingClaimable means there are no claimable epoch rewards.
	CodeNothingClaimable Code = "nothing_claimable"
	// CodeTransientNetwork means an endpoint failed; retried with rotation.
	CodeTransientNetwork Code = "transient_network"
	// CodeUnknownRevert means the ledger rejected the call for an
	// unclassified reason.
	CodeUnknownRevert Code = "unknown_revert"
)

// Error is a classified operation failure.
type Error struct {
	Code  Code
	Op    string // operation that failed ("mine", "finalize", "claim", "poll")
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error with no underlying cause.
func New(code Code, op string) *Error {
	return &Error{Code: code, Op: op}
}

// Wrap classifies an underlying error. Returns nil for a nil cause.
func Wrap(code Code, op string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Cause: cause}
}

// CodeOf extracts the classification code, or CodeUnknownRevert for
// unclassified errors. Returns "" for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknownRevert
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// Retryable reports whether the operation may be retried automatically.
// Only transient network failures qualify; everything else needs either
// user action or the next epoch.
func Retryable(err error) bool {
	return CodeOf(err) == CodeTransientNetwork
}

// Silent reports whether the error must not be surfaced to the user at all.
func Silent(err error) bool {
	switch CodeOf(err) {
	case CodeUserDeclined, CodeBusy:
		return true
	}
	return false
}

// userMessages maps codes to display text. Raw revert payloads, hex data,
// and addresses never reach the user.
var userMessages = map[Code]string{
	CodeInsufficientFunds: "Insufficient balance for this operation.",
	CodeNotEligible:       "This account is not eligible to mine yet.",
	CodeCapacityExceeded:  "Epoch ticket capacity reached. Wait for the next epoch.",
	CodeNothingPending:    "No pending mines to finalize.",
	CodeNothingClaimable:  "No rewards available to claim.",
	CodeTransientNetwork:  "Network unavailable. Please try again shortly.",
	CodeUnknownRevert:     "The operation was rejected. Please try again.",
}

// UserMessage returns sanitized display text for an error. Silent errors
// and nil return "".
func UserMessage(err error) string {
	if err == nil || Silent(err) {
		return ""
	}
	if msg, ok := userMessages[CodeOf(err)]; ok {
		return msg
	}
	return userMessages[CodeUnknownRevert]
}
