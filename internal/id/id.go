// Package id generates prefixed unique identifiers.
//
// IDs look like "chan-V1StGXR8_Z5jdHi6B-myT": a short type prefix, a
// dash, then a 21-character NanoID. The prefix makes IDs self-describing
// in logs and API payloads, and NanoIDs stay URL-safe without the bulk
// of a UUID.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate returns a new ID with the given type prefix. It fails only
// when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	suffix, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// MustGenerate is Generate for call sites where entropy failure should
// crash the program, such as initialization.
func MustGenerate(prefix string) string {
	generated, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return generated
}
