package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	SchemePlain  = "plain"
	SchemeBcrypt = "bcrypt"
)

// PasswordScheme turns a submitted password into the stored credential and
// checks one against the other.
type PasswordScheme interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// NewPasswordScheme returns the scheme registered under name.
func NewPasswordScheme(name string) (PasswordScheme, error) {
	switch name {
	case "", SchemePlain:
		return PlainScheme{}, nil
	case SchemeBcrypt:
		return BcryptScheme{Cost: bcrypt.DefaultCost}, nil
	}
	return nil, fmt.Errorf("unknown password scheme %q", name)
}

// PlainScheme stores passwords as given. Kept for compatibility with existing
// plaintext credentials.
type PlainScheme struct{}

func (PlainScheme) Hash(password string) (string, error) {
	return password, nil
}

func (PlainScheme) Verify(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

type BcryptScheme struct {
	Cost int
}

func (s BcryptScheme) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s BcryptScheme) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
