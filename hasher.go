package membership

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"math/big"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes generated per credential salt
	SaltSize = 32
	// DerivedKeySize is the length of the PBKDF2 output
	DerivedKeySize = 32
)

// GenerateSalt returns a fresh cryptographically secure salt
func GenerateSalt() ([]byte, error) {
	buf := make([]byte, SaltSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate salt")
	}
	return buf, nil
}

// PickIterationCount selects a hashing cost factor uniformly in [min, max],
// both inclusive, straight from the secure random source. Randomizing the
// cost per account defeats precomputed-cost attacks and smooths load.
func PickIterationCount(min, max int) (int, error) {
	if min < 1 || max < min {
		return 0, goerrors.New("iteration bounds must satisfy 1 <= min <= max", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"min": min, "max": max})
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min+1)))
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to pick iteration count")
	}

	return min + int(n.Int64()), nil
}

// DeriveKey produces the PBKDF2 derivation of secret under salt and the given
// iteration count. Deterministic for identical inputs, which later
// verification depends on.
func DeriveKey(secret string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(secret), salt, iterations, DerivedKeySize, sha256.New)
}

// VerifyDerivedKey recomputes the derivation of secret and compares it to
// want in constant time
func VerifyDerivedKey(secret string, salt []byte, iterations int, want []byte) bool {
	got := DeriveKey(secret, salt, iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// PasswordHasher generates credential material and verifies candidates
// against stored derivations
type PasswordHasher interface {
	GenerateSalt() ([]byte, error)
	PickIterationCount(min, max int) (int, error)
	DeriveKey(secret string, salt []byte, iterations int) []byte
	VerifyDerivedKey(secret string, salt []byte, iterations int, want []byte) bool
}

type pbkdf2Hasher struct{}

// DefaultHasher is the PBKDF2-SHA256 hasher used unless a provider is
// configured with a custom one
var DefaultHasher PasswordHasher = pbkdf2Hasher{}

func (pbkdf2Hasher) GenerateSalt() ([]byte, error) {
	return GenerateSalt()
}

func (pbkdf2Hasher) PickIterationCount(min, max int) (int, error) {
	return PickIterationCount(min, max)
}

func (pbkdf2Hasher) DeriveKey(secret string, salt []byte, iterations int) []byte {
	return DeriveKey(secret, salt, iterations)
}

func (pbkdf2Hasher) VerifyDerivedKey(secret string, salt []byte, iterations int, want []byte) bool {
	return VerifyDerivedKey(secret, salt, iterations, want)
}
