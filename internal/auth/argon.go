package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These follow the OWASP baseline for interactive
// logins; a team server sees login bursts at shift start, so memory is the
// knob to lower first if hashing ever shows up in profiles.
const (
	argonMemoryKiB = 64 * 1024
	argonTime      = 3
	argonThreads   = 4
	argonSaltBytes = 16
	argonKeyBytes  = 32

	// Cap hashing input so oversized passwords can't burn CPU.
	maxPasswordBytes = 1024
)

// HashPassword derives an Argon2id hash and returns it in the standard
// PHC string format, parameters included.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordBytes {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, argonSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemoryKiB, argonThreads, argonKeyBytes)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemoryKiB,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// VerifyPassword checks a password against a PHC-formatted Argon2id hash.
// The stored parameters are honored, so hashes created under older
// settings keep verifying after the constants change.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}

	salt, key, params, err := parsePHC(encodedHash)
	if err != nil {
		// A malformed hash verifies as a mismatch; the caller's error
		// message must not distinguish the two.
		return false, nil //nolint:nilerr
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memoryKiB, params.threads, params.keyBytes)

	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

type phcParams struct {
	memoryKiB uint32
	time      uint32
	threads   uint8
	keyBytes  uint32
}

// parsePHC splits a $argon2id$v=..$m=..,t=..,p=..$salt$key string.
func parsePHC(encodedHash string) ([]byte, []byte, *phcParams, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params := &phcParams{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memoryKiB, &params.time, &params.threads); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid salt encoding: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid hash encoding: %w", err)
	}

	params.keyBytes = uint32(len(key)) //nolint:gosec // key length is argonKeyBytes

	return salt, key, params, nil
}
