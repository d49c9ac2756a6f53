package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword salts and hashes plain with bcrypt at cost. Callers pass the
// configured BCRYPT_COST; tests use bcrypt.MinCost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash. OAuth accounts store
// no hash, so an empty hash never matches.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
