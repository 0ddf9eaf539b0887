// Package nfccard orchestrates PIN-gated multi-file programming of NTAG424
// cards through an injected hardware adapter.
//
// Card lifecycle:
//
//	Unprovisioned → Authenticating(PIN) → Writing(file)… → Verifying → Provisioned
//	Provisioned → Deprovisioned (zero-wipe, tolerant of partial failure)
//
// Authentication failure aborts before any write, so no partial state can
// arise from that path. A write failure halts the run at a well-defined
// partially-provisioned state; the caller inspects ProgrammedFunctions
// before retrying. This layer never retries on its own: a card lifted from
// the reader mid-transaction must not be silently written again.
package nfccard

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"time"

	"cardgate/internal/nfccard/metrics"
	"cardgate/internal/nfccard/ndef"
	"cardgate/internal/nfccard/store"
)

// ManagerConfig wires the manager's collaborators. Only File01HMACKey is
// required when payment cards are programmed; everything else has a
// workable zero value.
type ManagerConfig struct {
	// Adapter is the hardware transport. Nil means no reader is attached;
	// the manager substitutes NullAdapter and reports verification as
	// skipped.
	Adapter Adapter
	// Store reconciles boltcard rows after programming. Nil disables sync.
	Store store.BoltcardStore
	// File01HMACKey signs payment file references.
	File01HMACKey string
	Logger        *log.Logger
	Metrics       *metrics.Metrics
	// Rand overrides the CSPRNG used for signing-file nonces; tests only.
	Rand io.Reader
}

// Manager performs card programming, verification, and deprovisioning. It
// holds no per-card state and does no locking; physical card access is
// inherently serial and the transport enforces that.
type Manager struct {
	adapter   Adapter
	store     store.BoltcardStore
	file01Key []byte
	log       *log.Logger
	metrics   *metrics.Metrics
	rand      io.Reader
	offline   bool
}

func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		adapter: cfg.Adapter,
		store:   cfg.Store,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		rand:    cfg.Rand,
	}
	if cfg.File01HMACKey != "" {
		m.file01Key = []byte(cfg.File01HMACKey)
	}
	if m.adapter == nil {
		m.adapter = NullAdapter{}
	}
	if _, ok := m.adapter.(NullAdapter); ok {
		m.offline = true
	}
	if m.log == nil {
		m.log = log.New(io.Discard, "", 0)
	}
	if m.rand == nil {
		m.rand = rand.Reader
	}
	return m
}

// ProgramCard validates the request, authenticates once against the card,
// writes each requested function file in order, and finishes with a
// best-effort read-back, NDEF mirror, and DB sync. All failures come back
// as result codes, never as panics or lost partial progress.
func (m *Manager) ProgramCard(ctx context.Context, req ProgramRequest) ProgramResult {
	start := time.Now()
	result := ProgramResult{ProgrammedFunctions: []Function{}}

	if code := m.validateRequest(req); code != "" {
		result.ErrorCode = code
		m.metrics.IncrementFailures()
		return result
	}

	// Authenticating(PIN). Failure here leaves the card untouched.
	if err := m.adapter.Authenticate(ctx, req.PIN); err != nil {
		m.log.Printf("nfccard: pin auth failed for card %s: %v", req.CardUID, err)
		result.ErrorCode = CodePINAuthFailed
		m.metrics.IncrementFailures()
		return result
	}

	// Writing(file), in request order, halting on the first failure.
	for _, fn := range req.Functions {
		file := fileForFunction(fn)

		payload, err := m.buildPayload(fn, req)
		if err != nil {
			m.log.Printf("nfccard: payload for file %02x rejected: %v", byte(file), err)
			result.ErrorCode = filePayloadCode(file)
			m.metrics.IncrementFailures()
			return result
		}
		if err := m.adapter.WriteFile(ctx, file, payload); err != nil {
			m.log.Printf("nfccard: write to file %02x failed after %d functions: %v",
				byte(file), len(result.ProgrammedFunctions), err)
			result.ErrorCode = fileWriteCode(file)
			m.metrics.IncrementFailures()
			return result
		}
		result.ProgrammedFunctions = append(result.ProgrammedFunctions, fn)
	}

	// Verifying. Read-back is best-effort: a verification miss is reported
	// as a warning, not a failed programming run.
	verify := m.VerifyProgramming(ctx, req.CardUID, req.Functions)
	result.VerifiedFunctions = verify.VerifiedFunctions
	if verify.Note != "" {
		result.Warnings = append(result.Warnings, verify.Note)
	}
	for _, failure := range verify.Failures {
		result.Warnings = append(result.Warnings, "verification: "+failure)
	}

	// Optional Nostr metadata file plus its NDEF mirror.
	if req.NIP05 != "" {
		payload, err := nostrPayload(req.NIP05)
		if err != nil {
			// Length was checked up front; anything here is a real fault.
			result.ErrorCode = filePayloadCode(FileNostr)
			m.metrics.IncrementFailures()
			return result
		}
		if err := m.adapter.WriteFile(ctx, FileNostr, payload); err != nil {
			m.log.Printf("nfccard: write to nostr file failed: %v", err)
			result.ErrorCode = fileWriteCode(FileNostr)
			m.metrics.IncrementFailures()
			return result
		}
		m.mirrorNDEF(ctx, req.NIP05, &result)
	}

	// Best-effort DB reconciliation. Physical success must not be reported
	// as failure because of a bookkeeping error.
	if m.store != nil && req.UserDUID != "" {
		var shareIDs []string
		if req.FrostShareID != "" {
			shareIDs = []string{req.FrostShareID}
		}
		if err := m.SyncAfterProgramming(ctx, req.UserDUID, req.CardUID, req.Functions, shareIDs); err != nil {
			m.log.Printf("nfccard: db sync failed for card %s: %v", req.CardUID, err)
			result.Warnings = append(result.Warnings, "db sync failed: "+err.Error())
		}
	}

	result.Success = true
	m.metrics.IncrementProgrammed()
	m.metrics.ObserveProgram(start)
	m.log.Printf("nfccard: programmed %d functions on card %s", len(result.ProgrammedFunctions), req.CardUID)
	return result
}

// validateRequest rejects everything that can be rejected before touching
// the adapter: PIN shape, per-function prerequisites, NIP-05 length.
func (m *Manager) validateRequest(req ProgramRequest) string {
	if !pinRe.MatchString(req.PIN) {
		return CodeInvalidPINFormat
	}
	for _, fn := range req.Functions {
		switch fn {
		case FunctionPayment:
			if req.BoltcardID == "" {
				return CodeMissingBoltcardID
			}
		case FunctionAuth:
			if req.AuthKeyHash == "" {
				return CodeMissingAuthKeyHash
			}
		case FunctionSigning:
			if req.FrostShareID == "" {
				return CodeMissingFrostShareID
			}
		default:
			return CodeUnsupportedFunction
		}
	}
	if req.NIP05 != "" && len([]byte(req.NIP05)) > nip05MaxLen {
		return CodeNIP05TooLong
	}
	return ""
}

func (m *Manager) buildPayload(fn Function, req ProgramRequest) ([]byte, error) {
	switch fn {
	case FunctionPayment:
		return paymentPayload(req.BoltcardID, m.file01Key)
	case FunctionAuth:
		return authPayload(req.AuthKeyHash, req.CardUID)
	default:
		return signingPayload(req.FrostShareID, m.rand)
	}
}

// mirrorNDEF copies the NIP-05 into a standard NDEF Text record so
// platforms that cannot read custom files still see it. Failures are
// warnings; the card is already fully programmed.
func (m *Manager) mirrorNDEF(ctx context.Context, nip05 string, result *ProgramResult) {
	message, err := ndef.TextMessage("en", nip05)
	if err != nil {
		result.Warnings = append(result.Warnings, "ndef mirror failed: "+err.Error())
		return
	}
	if err := m.adapter.WriteNDEF(ctx, message); err != nil {
		m.log.Printf("nfccard: ndef mirror failed: %v", err)
		result.Warnings = append(result.Warnings, "ndef mirror failed: "+err.Error())
	}
}

// VerifyProgramming reads back the file behind each expected function and
// checks it is exactly FileSize bytes and not all zeros. Without a hardware
// adapter the check is reported as skipped, not failed.
func (m *Manager) VerifyProgramming(ctx context.Context, cardUID string, functions []Function) VerifyResult {
	if m.offline {
		return VerifyResult{
			Verified: true,
			Note:     "verification skipped: no hardware adapter attached",
		}
	}

	result := VerifyResult{VerifiedFunctions: []Function{}}
	for _, fn := range functions {
		file := fileForFunction(fn)
		data, err := m.adapter.ReadFile(ctx, file)
		switch {
		case err != nil:
			result.Failures = append(result.Failures,
				fmt.Sprintf("%s file read failed: %v", fn, err))
		case len(data) != FileSize:
			result.Failures = append(result.Failures,
				string(fn)+" file has wrong length")
		case isAllZero(data):
			result.Failures = append(result.Failures,
				string(fn)+" file is empty")
		default:
			result.VerifiedFunctions = append(result.VerifiedFunctions, fn)
		}
	}
	result.Verified = len(result.Failures) == 0
	if !result.Verified {
		m.log.Printf("nfccard: verification found %d problems on card %s", len(result.Failures), cardUID)
	}
	return result
}

// Deprovision overwrites files 0x01 through 0x04 with zeros and reports
// exactly which files the adapter confirmed as wiped. A partial wipe is not
// an error; the caller sees precisely how far it got.
func (m *Manager) Deprovision(ctx context.Context) DeprovisionResult {
	zero := make([]byte, FileSize)
	result := DeprovisionResult{WipedFiles: []int{}}

	for _, file := range allFiles {
		if err := m.adapter.WriteFile(ctx, file, zero); err != nil {
			m.log.Printf("nfccard: wipe of file %02x failed: %v", byte(file), err)
			result.Failures = append(result.Failures, err.Error())
			continue
		}
		result.WipedFiles = append(result.WipedFiles, int(file))
	}

	if len(result.Failures) == 0 {
		m.metrics.IncrementDeprovisioned()
	}
	return result
}
