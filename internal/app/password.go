package app

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a one-way salted hash of a plaintext password.
// bcrypt.DefaultCost is 10.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored hash. The
// comparison is delegated to bcrypt, which is constant-time on the digest;
// never compare secrets with plain string equality.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
