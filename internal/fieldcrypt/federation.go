package fieldcrypt

import (
	"crypto/aes"
	"encoding/json"
	"fmt"

	dErrors "cardgate/pkg/domain-errors"
)

// FederationEnvelope is the JSON shape federation peers exchange for
// encrypted fields. All four values are base64url strings. Tag may be
// detached or already appended to Encrypted; see DecryptFederationField.
type FederationEnvelope struct {
	Encrypted string `json:"encrypted"`
	Salt      string `json:"salt"`
	IV        string `json:"iv"`
	Tag       string `json:"tag,omitempty"`
}

// ParseFederationEnvelope unmarshals the JSON serialization of a federation
// envelope.
func ParseFederationEnvelope(raw string) (FederationEnvelope, error) {
	var env FederationEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return FederationEnvelope{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "parse federation envelope", err)
	}
	if env.Encrypted == "" || env.Salt == "" || env.IV == "" {
		return FederationEnvelope{}, dErrors.New(dErrors.CodeCryptoFailure,
			"federation envelope missing encrypted, salt, or iv")
	}
	return env, nil
}

// DecryptFederationField decrypts one federation-synced field. Unlike user
// field decryption the key is stretched from the provider's master secret,
// not a per-user salt. A detached Tag is appended to the ciphertext before
// the AEAD open; an absent Tag means the producer shipped the combined form
// and the ciphertext already ends in the GCM tag. There is no
// unauthenticated mode: a combined buffer shorter than one tag fails
// authentication like any other tamper.
func (p *Provider) DecryptFederationField(env FederationEnvelope, fieldName string) (string, error) {
	if len(p.masterSecret) == 0 {
		return "", dErrors.New(dErrors.CodeConfiguration, "privacy master key is not configured")
	}

	wrap := func(err error) error {
		return dErrors.Wrap(dErrors.CodeCryptoFailure,
			fmt.Sprintf("decrypt federation field %s", fieldName), err)
	}

	cipherText, err := decodeB64URL(env.Encrypted)
	if err != nil {
		return "", wrap(err)
	}
	salt, err := decodeB64URL(env.Salt)
	if err != nil {
		return "", wrap(err)
	}
	iv, err := decodeB64URL(env.IV)
	if err != nil {
		return "", wrap(err)
	}
	if env.Tag != "" {
		tag, err := decodeB64URL(env.Tag)
		if err != nil {
			return "", wrap(err)
		}
		cipherText = append(cipherText, tag...)
	}
	if len(iv) != ivSize {
		return "", wrap(fmt.Errorf("iv must be %d bytes, got %d", ivSize, len(iv)))
	}
	if len(cipherText) < aes.BlockSize {
		return "", wrap(fmt.Errorf("ciphertext too short to carry an authentication tag"))
	}

	aead, err := p.newAEAD(p.masterSecret, salt)
	if err != nil {
		return "", wrap(err)
	}
	plaintext, err := aead.Open(nil, iv, cipherText, nil)
	if err != nil {
		return "", wrap(err)
	}
	return string(plaintext), nil
}

// DecryptFederationFieldJSON parses raw and decrypts it in one step, for
// callers holding the string form straight out of a row.
func (p *Provider) DecryptFederationFieldJSON(raw, fieldName string) (string, error) {
	env, err := ParseFederationEnvelope(raw)
	if err != nil {
		return "", err
	}
	return p.DecryptFederationField(env, fieldName)
}
