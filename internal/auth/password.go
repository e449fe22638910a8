package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plain password using bcrypt. Used only for local
// bootstrap accounts; regular users authenticate via the campus SSO.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plain password with a bcrypt hash.
func CheckPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
