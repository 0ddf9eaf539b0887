package config

import (
	"os"
	"strconv"
)

// Secrets captures the environment-provided key material this layer consumes.
// Nothing here generates secrets; deployment tooling owns rotation.
type Secrets struct {
	// DUIDServerSecret keys the HMAC behind DUID indexes. Must be at least
	// 32 characters; the duid package enforces this at construction.
	DUIDServerSecret string
	// File01HMACKey signs NFC payment file references. Falls back to the
	// DUID server secret when the deployment does not split the keys.
	File01HMACKey string
	// PrivacyMasterKey decrypts federation field envelopes.
	PrivacyMasterKey string
}

// Config is the full runtime configuration for the credential layer.
type Config struct {
	Secrets     Secrets
	DatabaseURL string
	// KDFIterations overrides the PBKDF2 iteration count. Zero means the
	// fieldcrypt default (100000); only tests should lower it.
	KDFIterations int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	duidSecret := os.Getenv("DUID_SERVER_SECRET")

	file01Key := os.Getenv("NTAG424_FILE01_HMAC_KEY")
	if file01Key == "" {
		file01Key = duidSecret
	}

	iters := 0
	if raw := os.Getenv("FIELD_KDF_ITERATIONS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			iters = n
		}
	}

	return Config{
		Secrets: Secrets{
			DUIDServerSecret: duidSecret,
			File01HMACKey:    file01Key,
			PrivacyMasterKey: os.Getenv("PRIVACY_MASTER_KEY"),
		},
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		KDFIterations: iters,
	}
}
