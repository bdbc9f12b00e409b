package auth

import (
	"errors"
	"strings"
)

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID    string
	Email string
	Hash  []byte
}

// UserStore is what the HTTP layer and the token middleware need from user storage.
type UserStore interface {
	Create(email, password string) (User, error)
	Verify(email, password string) (User, error)
	Exists(email string) bool
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
