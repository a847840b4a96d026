package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CheckAdminCredentials validates an admin login attempt.  When a bcrypt
// hash is configured it wins; otherwise the configured plain password is
// compared in constant time.  An empty configuration never matches.
func CheckAdminCredentials(username, password, cfgUser, cfgPass, cfgHash string) bool {
	if username != cfgUser {
		return false
	}
	if cfgHash != "" {
		return VerifyPassword(cfgHash, password)
	}
	if cfgPass == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(cfgPass)) == 1
}
