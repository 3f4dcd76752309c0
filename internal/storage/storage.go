// Package storage declares the persistence contract shared by all backends
// and the sentinel errors they surface instead of store-specific codes.
package storage

import (
	"context"
	"errors"

	"extracker/internal/user"
)

// ErrUsernameTaken is returned by CreateUser when the username already exists.
// Backends translate their native unique-constraint violations into it.
var ErrUsernameTaken = errors.New("username already taken")

// ErrUserNotFound is returned when the referenced user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// Storage is the document-store abstraction the service layer consumes.
// Implementations generate user ids and keep exercises in append order.
type Storage interface {
	CreateUser(ctx context.Context, username string) (*user.User, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	GetAllUsers(ctx context.Context) ([]*user.User, error)

	AppendExercise(ctx context.Context, userID string, exercise user.Exercise) (*user.User, error)

	Ping(ctx context.Context) error

	Close() error
}
