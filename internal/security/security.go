// Package security hashes and verifies passwords and validates user input
// formats used by registration and login.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor applied to every password.
	Iterations = 100_000
	saltBytes  = 16
	keyLength  = 32
	separator  = "$"

	// Symbols lists the punctuation accepted as a password special character.
	Symbols = `!@#$%^&*(),.?":{}|<>`
)

var (
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`\d`)
	phonePattern = regexp.MustCompile(`^(\+62|62|0)\d{9,12}$`)
)

// Hash derives a PBKDF2-SHA256 digest of password and returns it as
// "salt$digest". A fresh random salt is generated when salt is empty.
func Hash(password, salt string) (string, error) {
	if salt == "" {
		buf := make([]byte, saltBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(buf)
	}
	return salt + separator + digest(password, salt), nil
}

// Verify reports whether candidate matches the stored "salt$digest" value.
func Verify(stored, candidate string) bool {
	salt, want, ok := strings.Cut(stored, separator)
	if !ok || salt == "" || want == "" {
		return false
	}
	got := digest(candidate, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func digest(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), Iterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

// ValidatePasswordStrength checks the password rules in order and returns the
// message of the first one that fails.
func ValidatePasswordStrength(password string) (bool, string) {
	switch {
	case utf8.RuneCountInString(password) < 8:
		return false, "Password must be at least 8 characters long"
	case !upperPattern.MatchString(password):
		return false, "Password must contain at least one uppercase letter"
	case !lowerPattern.MatchString(password):
		return false, "Password must contain at least one lowercase letter"
	case !digitPattern.MatchString(password):
		return false, "Password must contain at least one number"
	case !strings.ContainsAny(password, Symbols):
		return false, "Password must contain at least one special character"
	}
	return true, "Password is strong"
}

// ValidatePhone accepts Indonesian mobile numbers written as 0…, 62… or +62…
// followed by 9 to 12 digits. The input is not normalized.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// DeviceHash tags a (device, user) pair. It is an integrity marker for the
// binding row, not a secret.
func DeviceHash(deviceID string, userID int64) string {
	sum := sha256.Sum256([]byte(deviceID + strconv.FormatInt(userID, 10)))
	return hex.EncodeToString(sum[:])
}
