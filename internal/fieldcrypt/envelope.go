package fieldcrypt

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	dErrors "cardgate/pkg/domain-errors"
)

// Kind identifies the wire format an envelope was serialized with.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNobleV2 is the current format: per-record random salt, 12-byte
	// IV, AES-256-GCM ciphertext, all base64url and dot-delimited.
	KindNobleV2
	// KindLegacy is the retired "n2enc" hex format. Parsed for reads only;
	// new writes always use noble-v2.
	KindLegacy
)

const (
	nobleV2Prefix = "noble-v2."
	legacyPrefix  = "n2enc:"
)

// Envelope is the parsed form of a serialized ciphertext, independent of
// which wire format carried it. One decrypt routine consumes both kinds.
type Envelope struct {
	Kind Kind
	// Salt is the per-record KDF salt. Empty for legacy envelopes, which
	// predate per-record salts.
	Salt []byte
	IV   []byte
	// Cipher carries the ciphertext with the GCM tag appended, as produced
	// by the AEAD seal.
	Cipher []byte
}

// ParseEnvelope dispatches on the serialization prefix and returns the
// tagged parsed form.
func ParseEnvelope(serialized string) (Envelope, error) {
	switch {
	case strings.HasPrefix(serialized, nobleV2Prefix):
		return parseNobleV2(serialized)
	case strings.HasPrefix(serialized, legacyPrefix):
		return parseLegacy(serialized)
	default:
		return Envelope{}, dErrors.New(dErrors.CodeCryptoFailure, "unrecognized envelope format")
	}
}

func parseNobleV2(serialized string) (Envelope, error) {
	parts := strings.Split(serialized, ".")
	if len(parts) != 4 {
		return Envelope{}, dErrors.New(dErrors.CodeCryptoFailure,
			fmt.Sprintf("malformed noble-v2 envelope: expected 4 segments, got %d", len(parts)))
	}

	salt, err := decodeB64URL(parts[1])
	if err != nil {
		return Envelope{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "malformed noble-v2 salt", err)
	}
	iv, err := decodeB64URL(parts[2])
	if err != nil {
		return Envelope{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "malformed noble-v2 iv", err)
	}
	cipherText, err := decodeB64URL(parts[3])
	if err != nil {
		return Envelope{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "malformed noble-v2 ciphertext", err)
	}

	if len(salt) != saltSize {
		return Envelope{}, dErrors.New(dErrors.CodeCryptoFailure,
			fmt.Sprintf("noble-v2 salt must be %d bytes, got %d", saltSize, len(salt)))
	}
	if len(iv) != ivSize {
		return Envelope{}, dErrors.New(dErrors.CodeCryptoFailure,
			fmt.Sprintf("noble-v2 iv must be %d bytes, got %d", ivSize, len(iv)))
	}

	return Envelope{Kind: KindNobleV2, Salt: salt, IV: iv, Cipher: cipherText}, nil
}

func parseLegacy(serialized string) (Envelope, error) {
	parts := strings.Split(serialized, ":")
	if len(parts) != 3 {
		return Envelope{}, dErrors.New(dErrors.CodeCryptoFailure,
			fmt.Sprintf("malformed n2enc envelope: expected 3 segments, got %d", len(parts)))
	}

	iv, err := hex.DecodeString(parts[1])
	if err != nil {
		return Envelope{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "malformed n2enc iv", err)
	}
	cipherText, err := hex.DecodeString(parts[2])
	if err != nil {
		return Envelope{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "malformed n2enc ciphertext", err)
	}
	if len(iv) != ivSize {
		return Envelope{}, dErrors.New(dErrors.CodeCryptoFailure,
			fmt.Sprintf("n2enc iv must be %d bytes, got %d", ivSize, len(iv)))
	}

	return Envelope{Kind: KindLegacy, IV: iv, Cipher: cipherText}, nil
}

// String serializes the envelope in the current wire format. Only noble-v2
// is ever written; legacy envelopes exist for reads alone.
func (e Envelope) String() string {
	return nobleV2Prefix +
		base64.RawURLEncoding.EncodeToString(e.Salt) + "." +
		base64.RawURLEncoding.EncodeToString(e.IV) + "." +
		base64.RawURLEncoding.EncodeToString(e.Cipher)
}

// decodeB64URL accepts both padded and unpadded base64url, since upstream
// producers disagree on padding.
func decodeB64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
