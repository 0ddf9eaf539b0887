package nfccard

import "context"

// Adapter abstracts the physical NFC transport (Web NFC bridge, PC/SC
// reader). Implementations live outside this module; card transactions are
// inherently serial, so implementations may assume one outstanding command
// per card and this package performs no locking of its own.
type Adapter interface {
	// Authenticate unlocks protected file access with the card PIN.
	Authenticate(ctx context.Context, pin string) error
	// ReadFile returns the raw contents of a card file, or nil when the
	// file has never been written.
	ReadFile(ctx context.Context, file FileID) ([]byte, error)
	// WriteFile replaces the contents of a card file.
	WriteFile(ctx context.Context, file FileID, data []byte) error
	// CardUID reports the physical card identifier.
	CardUID(ctx context.Context) (string, error)
	// WriteNDEF replaces the card's standard NDEF message.
	WriteNDEF(ctx context.Context, message []byte) error
}

// NullAdapter is the no-hardware stand-in. Every command succeeds and reads
// return nil, which keeps the orchestration paths uniform whether or not a
// reader is attached; verification against it reports itself as skipped.
type NullAdapter struct{}

func (NullAdapter) Authenticate(context.Context, string) error { return nil }

func (NullAdapter) ReadFile(context.Context, FileID) ([]byte, error) { return nil, nil }

func (NullAdapter) WriteFile(context.Context, FileID, []byte) error { return nil }

func (NullAdapter) CardUID(context.Context) (string, error) { return "", nil }

func (NullAdapter) WriteNDEF(context.Context, []byte) error { return nil }
