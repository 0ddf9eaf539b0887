package nfccard

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"github.com/google/uuid"

	dErrors "cardgate/pkg/domain-errors"
)

// paymentPayload builds file 0x01: a 16-byte card reference derived from
// the boltcard ID, followed by the first 16 bytes of
// HMAC-SHA256(reference, deployment key). A reader holding the key can
// check the reference was issued by this deployment.
func paymentPayload(boltcardID string, hmacKey []byte) ([]byte, error) {
	if boltcardID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "boltcard id must not be empty")
	}
	if len(hmacKey) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "file 01 hmac key is not configured")
	}

	refSum := sha256.Sum256([]byte(boltcardID))
	reference := refSum[:16]

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(reference)
	sig := mac.Sum(nil)[:16]

	return padToFileSize(append(reference, sig...))
}

// authPayload builds file 0x02: SHA-256(authKeyHash || cardUID), binding
// the stored auth material to this physical card.
func authPayload(authKeyHash, cardUID string) ([]byte, error) {
	if authKeyHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "auth key hash must not be empty")
	}
	sum := sha256.Sum256([]byte(authKeyHash + cardUID))
	return padToFileSize(sum[:])
}

// signingPayload builds file 0x03: the 16-byte FROST share UUID plus a
// 16-byte random nonce. The share itself never touches the card; the file
// is only a pointer.
func signingPayload(frostShareID string, rand io.Reader) ([]byte, error) {
	shareUUID, err := uuid.Parse(frostShareID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInvalidInput, "frost share id must be a uuid", err)
	}

	nonce := make([]byte, 16)
	if _, err := io.ReadFull(rand, nonce); err != nil {
		return nil, err
	}

	raw := make([]byte, 0, FileSize)
	raw = append(raw, shareUUID[:]...)
	raw = append(raw, nonce...)
	return padToFileSize(raw)
}

// nostrPayload builds file 0x04: up to 28 bytes of UTF-8 NIP-05 followed by
// 4 reserved zero bytes. The plaintext NIP-05 is UX convenience only, never
// proof of ownership; authoritative verification binds the card UID to the
// claimed identity elsewhere.
func nostrPayload(nip05 string) ([]byte, error) {
	raw := []byte(nip05)
	if len(raw) > nip05MaxLen {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			"nip-05 exceeds the 28-byte card field")
	}
	return padToFileSize(raw)
}
