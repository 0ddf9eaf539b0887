// Package fieldcrypt encrypts individual record fields with AES-256-GCM
// under keys stretched from caller-held salts via PBKDF2-SHA256. It is
// stateless and safe for unbounded concurrent use; every seal draws a fresh
// random salt and IV, so two encryptions of the same plaintext never share
// key material.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/pbkdf2"

	dErrors "cardgate/pkg/domain-errors"
)

const (
	// DefaultIterations is the PBKDF2 work factor. Matches what existing
	// records were written with; lowering it breaks decryption of nothing
	// but raising it silently forks key derivation, so treat as frozen.
	DefaultIterations = 100000

	saltSize = 32
	ivSize   = 12
	keySize  = 32
)

// legacyKDFSalt stands in for the per-record salt that n2enc records never
// carried.
var legacyKDFSalt = []byte("n2enc")

// Config parameterizes a Provider. The zero value is usable for user-salt
// operations; federation decryption additionally needs MasterSecret.
type Config struct {
	// MasterSecret keys federation field envelopes. Distinct from user
	// salts on purpose: federation records are encrypted server-side.
	MasterSecret string
	// Iterations overrides DefaultIterations when positive.
	Iterations int
	// Rand overrides the system CSPRNG; tests only.
	Rand io.Reader
}

// Provider performs field encryption and decryption. Construct one and pass
// it by reference; there is no package-level state.
type Provider struct {
	masterSecret []byte
	iterations   int
	rand         io.Reader
}

// New builds a Provider from cfg, applying defaults for unset fields.
func New(cfg Config) *Provider {
	p := &Provider{
		iterations: cfg.Iterations,
		rand:       cfg.Rand,
	}
	if cfg.MasterSecret != "" {
		p.masterSecret = []byte(cfg.MasterSecret)
	}
	if p.iterations <= 0 {
		p.iterations = DefaultIterations
	}
	if p.rand == nil {
		p.rand = rand.Reader
	}
	return p
}

// FieldComponents is the column-oriented split of one encrypted field: the
// same material as a noble-v2 envelope, stored as three discrete values.
// Tag carries the KDF salt, not the GCM tag (which stays appended to
// Cipher); the name is kept for storage-schema compatibility.
type FieldComponents struct {
	Cipher string
	IV     string
	Tag    string
}

// EncryptSecretSimple seals plaintext under a key derived from userSalt and
// returns the dot-delimited noble-v2 serialization.
func (p *Provider) EncryptSecretSimple(plaintext, userSalt string) (string, error) {
	env, err := p.seal(plaintext, userSalt)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "encrypt secret", err)
	}
	return env.String(), nil
}

// DecryptSecretSimple reverses EncryptSecretSimple. Legacy n2enc
// serializations are accepted for reads.
func (p *Provider) DecryptSecretSimple(serialized, userSalt string) (string, error) {
	env, err := ParseEnvelope(serialized)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "decrypt secret", err)
	}
	plaintext, err := p.open(env, []byte(userSalt))
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "decrypt secret", err)
	}
	return string(plaintext), nil
}

// EncryptField seals value like EncryptSecretSimple but returns the three
// discrete components used by column storage.
func (p *Provider) EncryptField(value, userSalt string) (FieldComponents, error) {
	env, err := p.seal(value, userSalt)
	if err != nil {
		return FieldComponents{}, dErrors.Wrap(dErrors.CodeCryptoFailure, "encrypt field", err)
	}
	return FieldComponents{
		Cipher: base64.RawURLEncoding.EncodeToString(env.Cipher),
		IV:     base64.RawURLEncoding.EncodeToString(env.IV),
		Tag:    base64.RawURLEncoding.EncodeToString(env.Salt),
	}, nil
}

// DecryptField reverses EncryptField.
func (p *Provider) DecryptField(comp FieldComponents, userSalt string) (string, error) {
	cipherText, err := decodeB64URL(comp.Cipher)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "decrypt field: malformed cipher", err)
	}
	iv, err := decodeB64URL(comp.IV)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "decrypt field: malformed iv", err)
	}
	salt, err := decodeB64URL(comp.Tag)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "decrypt field: malformed tag", err)
	}

	env := Envelope{Kind: KindNobleV2, Salt: salt, IV: iv, Cipher: cipherText}
	if len(salt) != saltSize || len(iv) != ivSize {
		return "", dErrors.New(dErrors.CodeCryptoFailure, "decrypt field: component length mismatch")
	}

	plaintext, err := p.open(env, []byte(userSalt))
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeCryptoFailure, "decrypt field", err)
	}
	return string(plaintext), nil
}

// seal derives a fresh key from secret and a random salt, then runs
// AES-256-GCM with a random 12-byte IV. Salt and IV reuse is forbidden, so
// both are drawn per call.
func (p *Provider) seal(plaintext, secret string) (Envelope, error) {
	if plaintext == "" {
		return Envelope{}, dErrors.New(dErrors.CodeInvalidInput, "plaintext must not be empty")
	}
	if secret == "" {
		return Envelope{}, dErrors.New(dErrors.CodeInvalidInput, "salt must not be empty")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(p.rand, salt); err != nil {
		return Envelope{}, err
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(p.rand, iv); err != nil {
		return Envelope{}, err
	}

	aead, err := p.newAEAD([]byte(secret), salt)
	if err != nil {
		return Envelope{}, err
	}

	cipherText := aead.Seal(nil, iv, []byte(plaintext), nil)
	return Envelope{Kind: KindNobleV2, Salt: salt, IV: iv, Cipher: cipherText}, nil
}

// open is the single decrypt routine for every envelope kind. A GCM tag
// mismatch is unrecoverable for the record; no partial plaintext exists.
func (p *Provider) open(env Envelope, secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "salt must not be empty")
	}

	kdfSalt := env.Salt
	if env.Kind == KindLegacy {
		kdfSalt = legacyKDFSalt
	}

	aead, err := p.newAEAD(secret, kdfSalt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, env.IV, env.Cipher, nil)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeCryptoFailure, "authentication failed", err)
	}
	return plaintext, nil
}

func (p *Provider) newAEAD(secret, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(secret, salt, p.iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
