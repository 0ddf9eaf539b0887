// Package domainerrors defines code-bearing errors shared across modules.
// Services attach a stable machine-readable code so callers and transports
// can branch on failure class without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure independent of its human-readable message.
type Code string

const (
	// CodeConfiguration: a required secret or setting is missing or unusable.
	CodeConfiguration Code = "configuration"
	// CodeInvalidInput: caller-supplied data failed validation.
	CodeInvalidInput Code = "invalid_input"
	// CodeCryptoFailure: decryption, authentication-tag, or parse failure.
	// Unrecoverable for the record in question.
	CodeCryptoFailure Code = "crypto_failure"
	// CodeDeviceIO: a hardware adapter read/write/auth call failed.
	CodeDeviceIO Code = "device_io"
	// CodeIntegrity: a read-back check found missing or malformed data.
	CodeIntegrity Code = "integrity"
	// CodeNotFound: a referenced record does not exist.
	CodeNotFound Code = "not_found"
	// CodeInternal: anything that does not fit a more specific class.
	CodeInternal Code = "internal"
)

// Error couples a Code with a message and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that records err as its cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the domain code from err, walking wrapped causes.
// Errors without a domain code report CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}
