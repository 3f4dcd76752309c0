// Package mockstorage provides a testify-based mock of the storage contract.
// It is used in router tests to simulate persistence failures that the real
// backends cannot produce on demand.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"extracker/internal/user"
)

// StorageMock implements storage.Storage via testify's mock machinery.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user creation.
func (m *StorageMock) CreateUser(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetUserByID mocks fetching a user by id.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// GetAllUsers mocks listing all users.
func (m *StorageMock) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*user.User)
	return users, args.Error(1)
}

// AppendExercise mocks appending an exercise to a user's log.
func (m *StorageMock) AppendExercise(
	ctx context.Context,
	userID string,
	exercise user.Exercise,
) (*user.User, error) {
	args := m.Called(ctx, userID, exercise)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
