package nfccard

import (
	"fmt"

	dErrors "cardgate/pkg/domain-errors"
)

// FileID addresses one of the four fixed NTAG424 file slots.
type FileID byte

const (
	// FilePayment holds a 16-byte card reference plus a 16-byte HMAC of it.
	FilePayment FileID = 0x01
	// FileAuth holds SHA-256(authKeyHash || cardUID).
	FileAuth FileID = 0x02
	// FileSigning holds a 16-byte FROST share UUID plus a 16-byte random
	// nonce. Never the share itself.
	FileSigning FileID = 0x03
	// FileNostr holds up to 28 bytes of UTF-8 NIP-05 plus 4 reserved bytes.
	FileNostr FileID = 0x04
)

const (
	// FileSize is the exact length of every card file payload. Shorter
	// inputs are zero-padded on the right; longer inputs are rejected,
	// never truncated.
	FileSize = 32

	// nip05MaxLen caps the UTF-8 NIP-05 stored on FileNostr, leaving the
	// trailing 4 bytes reserved.
	nip05MaxLen = 28
)

// allFiles is the wipe order for deprovisioning.
var allFiles = []FileID{FilePayment, FileAuth, FileSigning, FileNostr}

// padToFileSize right-pads b with zeros to exactly FileSize bytes. An
// oversized input is a hard error.
func padToFileSize(b []byte) ([]byte, error) {
	if len(b) > FileSize {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("payload is %d bytes, card files hold exactly %d", len(b), FileSize))
	}
	out := make([]byte, FileSize)
	copy(out, b)
	return out, nil
}

// isAllZero reports whether b contains only zero bytes. Accumulating over
// the whole buffer keeps the check independent of where a nonzero byte
// sits.
func isAllZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return acc == 0
}
