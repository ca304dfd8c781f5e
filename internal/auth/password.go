package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash of the clear-text password.
func HashPassword(clear string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(clear), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the clear-text password matches the hash.
func CheckPassword(hash, clear string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(clear)) == nil
}
