package auth

import (
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
)

// argon2id 参数，与 passlib 默认值一致
var hashParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

var errMalformedHash = errors.New("malformed password hash")

// HashPassword returns a PHC encoded argon2id hash of password.
func HashPassword(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, hashParams)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword reports whether password matches the encoded hash.
func VerifyPassword(encoded, password string) (bool, error) {
	ok, err := argon2id.ComparePasswordAndHash(password, encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %w", errMalformedHash, err)
	}
	return ok, nil
}
