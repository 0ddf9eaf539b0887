// Package duid derives deterministic privacy-preserving identifiers from
// Nostr public keys. The public DUID is a plain hash anyone can compute;
// the index is keyed with a server secret so an attacker who knows or
// guesses the public value still cannot produce a valid storage key, which
// defeats enumeration of the user table.
package duid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	dErrors "cardgate/pkg/domain-errors"
)

const (
	// publicPrefix is the domain-separation tag hashed in front of the
	// npub. Changing it forks every stored identifier; treat as frozen.
	publicPrefix = "DUIDv1"

	// minSecretLen guards against weak HMAC keys from misconfigured
	// deployments.
	minSecretLen = 32

	npubHRP = "npub"
)

var hex64Re = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Generator computes secret-keyed DUID indexes. It is stateless after
// construction and safe for concurrent use.
type Generator struct {
	secret []byte
	log    *log.Logger
}

// NewGenerator validates the server secret up front so a short key fails at
// startup rather than on the first lookup.
func NewGenerator(secret string, logger *log.Logger) (*Generator, error) {
	if len(secret) < minSecretLen {
		return nil, dErrors.New(dErrors.CodeConfiguration,
			"duid server secret must be at least 32 characters")
	}
	return &Generator{secret: []byte(secret), log: logger}, nil
}

// PublicFromNpub computes the shareable DUID for a Nostr public key:
// SHA-256("DUIDv1" || npub) in lowercase hex. The npub must be a valid
// bech32 string with the npub human-readable part.
func PublicFromNpub(npub string) (string, error) {
	if !strings.HasPrefix(npub, npubHRP+"1") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "npub must start with npub1")
	}
	hrp, _, err := bech32.Decode(npub)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInvalidInput, "npub is not valid bech32", err)
	}
	if hrp != npubHRP {
		return "", dErrors.New(dErrors.CodeInvalidInput, "npub has wrong bech32 prefix")
	}

	sum := sha256.Sum256([]byte(publicPrefix + npub))
	return hex.EncodeToString(sum[:]), nil
}

// GenerateIndex computes the server-side storage index for a public DUID:
// HMAC-SHA256(secret, duidPublic) in lowercase hex.
func (g *Generator) GenerateIndex(duidPublic string) (string, error) {
	if !hex64Re.MatchString(duidPublic) {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			"duid public must be 64 lowercase hex characters")
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(duidPublic))
	index := hex.EncodeToString(mac.Sum(nil))

	if g.log != nil {
		// Only prefixes; full identifiers never hit logs.
		g.log.Printf("duid: generated index %s… for public %s…", index[:8], duidPublic[:8])
	}
	return index, nil
}

// GenerateIndexFromNpub derives the public DUID from npub and indexes it.
func (g *Generator) GenerateIndexFromNpub(npub string) (string, error) {
	duidPublic, err := PublicFromNpub(npub)
	if err != nil {
		return "", err
	}
	return g.GenerateIndex(duidPublic)
}

// VerifyIndex reports whether duidIndex is the index for duidPublic under
// this generator's secret. The comparison is constant-time; the index is
// secret-derived and must not leak through timing.
func (g *Generator) VerifyIndex(duidPublic, duidIndex string) bool {
	expected, err := g.GenerateIndex(duidPublic)
	if err != nil {
		return false
	}

	expectedRaw, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	gotRaw, err := hex.DecodeString(duidIndex)
	if err != nil {
		return false
	}
	return hmac.Equal(expectedRaw, gotRaw)
}

// BatchResult is the outcome for one item of a batch generation. Exactly
// one of Index and Err is set.
type BatchResult struct {
	DUIDPublic string `json:"duid_public"`
	Index      string `json:"duid_index,omitempty"`
	Err        string `json:"error,omitempty"`
}

// BatchGenerateIndexes indexes each public DUID independently. One bad item
// never aborts the batch; its result carries the error instead.
func (g *Generator) BatchGenerateIndexes(duidPublics []string) []BatchResult {
	results := make([]BatchResult, 0, len(duidPublics))
	for _, pub := range duidPublics {
		res := BatchResult{DUIDPublic: pub}
		index, err := g.GenerateIndex(pub)
		if err != nil {
			res.Err = err.Error()
		} else {
			res.Index = index
		}
		results = append(results, res)
	}
	return results
}
