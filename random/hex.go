// Package random produces secrets for settings that were left unconfigured.
package random

import (
	"crypto/rand"
	"encoding/hex"
)

// Secret returns n bytes from the system random source.
func Secret(n int) []byte {
	secret := make([]byte, n)

	_, err := rand.Read(secret)
	if err != nil {
		panic(err)
	}

	return secret
}

// Hex returns n random bytes hex encoded, so the result is 2n characters long.
func Hex(n int) string {
	return hex.EncodeToString(Secret(n))
}
