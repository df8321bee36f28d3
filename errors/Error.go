// Package errors implements the typed error taxonomy every votechain
// component recovers locally (wire framing faults, validation faults,
// transport faults never surface past a node's public operations as raw
// errors — callers only ever see a kind-tagged *Error or a plain bool).
package errors

import (
	stderrors "errors"
	"fmt"
)

// ERR names a kind in the error taxonomy. These are not Go error types —
// they are the "kinds, not type names" the design calls for, so a single
// *Error value can be compared by Code across package boundaries.
type ERR int32

const (
	ERR_UNKNOWN ERR = iota
	// ERR_MALFORMED_MESSAGE is a JSON parse error or a missing envelope field.
	ERR_MALFORMED_MESSAGE
	// ERR_UNKNOWN_TYPE is an unrecognized envelope "type".
	ERR_UNKNOWN_TYPE
	// ERR_DOUBLE_VOTE rejects a transaction whose voter has already voted.
	ERR_DOUBLE_VOTE
	// ERR_BAD_SIGNATURE rejects a transaction that fails signature verification.
	ERR_BAD_SIGNATURE
	// ERR_INVALID_BLOCK is a block that fails is_valid_next on arrival.
	ERR_INVALID_BLOCK
	// ERR_CHAIN_REPLACEMENT_FAILED is a candidate chain that is shorter or invalid.
	ERR_CHAIN_REPLACEMENT_FAILED
	// ERR_TRANSPORT is a connect/send/recv failure or timeout.
	ERR_TRANSPORT
	// ERR_REGISTRATION_RACE is a re-registration of an already-known peer.
	ERR_REGISTRATION_RACE
)

var errName = map[ERR]string{
	ERR_UNKNOWN:                  "UNKNOWN",
	ERR_MALFORMED_MESSAGE:        "MALFORMED_MESSAGE",
	ERR_UNKNOWN_TYPE:             "UNKNOWN_TYPE",
	ERR_DOUBLE_VOTE:              "DOUBLE_VOTE",
	ERR_BAD_SIGNATURE:            "BAD_SIGNATURE",
	ERR_INVALID_BLOCK:            "INVALID_BLOCK",
	ERR_CHAIN_REPLACEMENT_FAILED: "CHAIN_REPLACEMENT_FAILED",
	ERR_TRANSPORT:                "TRANSPORT",
	ERR_REGISTRATION_RACE:        "REGISTRATION_RACE",
}

func (c ERR) String() string {
	if name, ok := errName[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// Error is the typed error every fallible votechain operation returns
// internally. Callers of submit_vote/mine_now see only a bool;
// add_transaction returns its bool together with this type as the
// rejection reason.
type Error struct {
	Code       ERR
	Message    string
	WrappedErr error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.WrappedErr == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.WrappedErr)
}

// Is reports whether target carries the same Code.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	var other *Error
	if stderrors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.WrappedErr
}

// New builds an *Error of the given kind. The last variadic argument may be
// an error to wrap (a trailing nil means no wrapped error); remaining
// arguments format message like fmt.Errorf.
func New(code ERR, message string, params ...interface{}) *Error {
	var wrapped error

	if len(params) > 0 {
		if params[len(params)-1] == nil {
			params = params[:len(params)-1]
		} else if err, ok := params[len(params)-1].(error); ok {
			wrapped = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{Code: code, Message: message, WrappedErr: wrapped}
}
