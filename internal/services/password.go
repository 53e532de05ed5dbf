package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordSaltSize = 16
	passwordKeySize  = 32
	passwordHashAlg  = "SHA256"
)

// passwordIterations is lowered by tests; stored hashes carry their own count.
var passwordIterations = 350000

// HashPassword encodes as base64(salt);base64(key);iterations;SHA256.
func HashPassword(password string) (string, error) {
	salt := make([]byte, passwordSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, passwordIterations, passwordKeySize, sha256.New)

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
		strconv.Itoa(passwordIterations),
		passwordHashAlg,
	}, ";"), nil
}

// VerifyPassword reports whether password matches the encoded hash. Malformed
// hashes never match.
func VerifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, ";")
	if len(parts) != 4 || parts[3] != passwordHashAlg {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(want) == 0 {
		return false
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations <= 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
