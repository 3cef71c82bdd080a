package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. N must stay a power of two; changing any of these
// invalidates every stored credential, so treat them as frozen.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// credentialSep joins the derived key and the salt in the stored form
// hex(key) + "." + hex(salt).
const credentialSep = "."

// HashPassword derives a 64-byte scrypt key from the plaintext under a fresh
// random 16-byte salt and returns the combined credential string. The
// plaintext is never logged or retained.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	return hex.EncodeToString(key) + credentialSep + hex.EncodeToString(salt), nil
}

// VerifyPassword re-derives the key from the supplied plaintext and the
// stored salt and compares the two keys in constant time. A stored credential
// without the separator, with an empty side, or with invalid hex fails
// closed: false, no error. This guards unmigrated or malformed rows. Only a
// failure of the KDF itself is reported as an error.
func VerifyPassword(stored, plain string) (bool, error) {
	keyHex, saltHex, ok := strings.Cut(stored, credentialSep)
	if !ok || keyHex == "" || saltHex == "" {
		return false, nil
	}
	storedKey, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, nil
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, nil
	}
	derived, err := scrypt.Key([]byte(plain), salt, scryptN, scryptR, scryptP, len(storedKey))
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}
	return subtle.ConstantTimeCompare(storedKey, derived) == 1, nil
}
