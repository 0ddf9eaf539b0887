package nfccard

import (
	"fmt"
	"regexp"
)

// Function names one provisionable card capability.
type Function string

const (
	FunctionPayment Function = "payment"
	FunctionAuth    Function = "auth"
	FunctionSigning Function = "signing"
)

// IsValid checks if the function is one of the supported enum values.
func (f Function) IsValid() bool {
	switch f {
	case FunctionPayment, FunctionAuth, FunctionSigning:
		return true
	}
	return false
}

// fileForFunction maps a capability to the card file that carries it.
func fileForFunction(f Function) FileID {
	switch f {
	case FunctionPayment:
		return FilePayment
	case FunctionAuth:
		return FileAuth
	case FunctionSigning:
		return FileSigning
	}
	return 0
}

// Result-level error codes. The orchestrator reports these instead of
// propagating errors so callers always receive partial progress alongside
// the failure class.
const (
	CodeInvalidPINFormat    = "INVALID_PIN_FORMAT"
	CodeUnsupportedFunction = "UNSUPPORTED_FUNCTION"
	CodeMissingBoltcardID   = "MISSING_BOLTCARD_ID"
	CodeMissingAuthKeyHash  = "MISSING_AUTH_KEY_HASH"
	CodeMissingFrostShareID = "MISSING_FROST_SHARE_ID"
	CodeNIP05TooLong        = "NIP05_TOO_LONG"
	CodePINAuthFailed       = "PIN_AUTH_FAILED"
)

// fileWriteCode names a failed write by file number, e.g.
// FILE_01_WRITE_FAILED.
func fileWriteCode(file FileID) string {
	return fmt.Sprintf("FILE_%02X_WRITE_FAILED", byte(file))
}

// filePayloadCode names a payload that could not be built for a file.
func filePayloadCode(file FileID) string {
	return fmt.Sprintf("FILE_%02X_PAYLOAD_INVALID", byte(file))
}

// pinRe: card PINs are 4 to 6 digits, enforced before any adapter traffic.
var pinRe = regexp.MustCompile(`^[0-9]{4,6}$`)

// ProgramRequest describes one programming run against a physical card.
type ProgramRequest struct {
	// UserDUID identifies the owner for DB reconciliation. May be empty
	// when no sync is wanted.
	UserDUID string
	// CardUID is the physical card identifier the caller already read.
	CardUID string
	// Functions are written in the order given.
	Functions []Function
	// PIN unlocks protected file writes on the card.
	PIN string

	// BoltcardID is required when Functions includes payment.
	BoltcardID string
	// AuthKeyHash is required when Functions includes auth.
	AuthKeyHash string
	// FrostShareID is required when Functions includes signing.
	FrostShareID string

	// NIP05, when set, is written to the Nostr metadata file and mirrored
	// into a standard NDEF Text record.
	NIP05 string
}

// ProgramResult always carries partial progress: after a mid-run failure,
// ProgrammedFunctions tells the caller exactly which files were written, so
// a retry can avoid re-deriving material for files already on the card.
type ProgramResult struct {
	Success             bool
	ProgrammedFunctions []Function
	VerifiedFunctions   []Function
	// ErrorCode is set exactly when Success is false.
	ErrorCode string
	// Warnings collect best-effort side effects that failed (read-back
	// verification, NDEF mirror, DB sync) on an otherwise successful run.
	Warnings []string
}

// VerifyResult reports a read-back check of programmed files.
type VerifyResult struct {
	Verified          bool
	VerifiedFunctions []Function
	Failures          []string
	// Note is advisory, e.g. when no hardware adapter was attached and
	// verification was skipped rather than failed.
	Note string
}

// DeprovisionResult lists exactly the file numbers the adapter confirmed as
// wiped. Partial wipes are tolerated; unconfirmed files show in Failures.
type DeprovisionResult struct {
	WipedFiles []int
	Failures   []string
}
