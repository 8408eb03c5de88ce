package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no account matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Insert when the email is already registered.
	// Stores must detect this atomically with the insert itself.
	ErrEmailTaken = errors.New("email already registered")
)

// Store persists accounts. Email lookups are exact matches on the stored value.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// Insert stores u, filling in the generated ID and Date.
	Insert(ctx context.Context, u *User) error
}
