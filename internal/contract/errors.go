package contract

import (
	"errors"
	"fmt"
)

// Error is a contract failure. Code is the numeric value exposed to callers and
// is kept compatible with the deployed contract; Reason distinguishes
// conditions that share a code.
type Error struct {
	Code    uint32
	Reason  string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("contract: %s (#%d): %s", e.Reason, e.Code, e.Message)
}

var (
	// ErrEmptyInput rejects a zero-length greeting.
	ErrEmptyInput = &Error{Code: 1, Reason: "EMPTY_INPUT", Message: "greeting text is empty"}
	// ErrInputTooLong rejects a greeting longer than the character limit.
	ErrInputTooLong = &Error{Code: 2, Reason: "INPUT_TOO_LONG", Message: "greeting text exceeds the character limit"}
	// ErrUnauthorized rejects a privileged call from anyone but the admin.
	ErrUnauthorized = &Error{Code: 3, Reason: "UNAUTHORIZED", Message: "caller is not the admin"}
	// ErrNotInitialized rejects a privileged call before Initialize.
	ErrNotInitialized = &Error{Code: 4, Reason: "NOT_INITIALIZED", Message: "contract is not initialized"}
	// ErrAlreadyInitialized rejects a second Initialize. It shares code 4 with
	// ErrNotInitialized.
	ErrAlreadyInitialized = &Error{Code: 4, Reason: "ALREADY_INITIALIZED", Message: "contract is already initialized"}
	// ErrCounterOverflow rejects an increment past the uint32 range.
	ErrCounterOverflow = &Error{Code: 5, Reason: "COUNTER_OVERFLOW", Message: "counter would overflow"}
	// ErrArchived rejects access to an entry whose retention lapsed. The entry
	// keeps its value and becomes usable again after Restore.
	ErrArchived = &Error{Code: 6, Reason: "ENTRY_ARCHIVED", Message: "entry retention lapsed; restore it before use"}
)

// AsError extracts the contract error from err, if any.
func AsError(err error) (*Error, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

func archivedError(key Key) error {
	return fmt.Errorf("%s: %w", key, ErrArchived)
}
