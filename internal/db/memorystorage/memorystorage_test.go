package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracker/internal/storage"
	"extracker/internal/user"
)

func Test(t *testing.T) {
	theStorage, err := New()
	require.NoError(t, err)
	require.NotNil(t, theStorage)

	usr, err := theStorage.CreateUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, usr.ID)

	_, err = theStorage.CreateUser(context.Background(), "alice")
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)

	updated, err := theStorage.AppendExercise(context.Background(), usr.ID, user.Exercise{
		Description: "running",
		Duration:    30,
	})
	require.NoError(t, err)
	assert.Len(t, updated.Exercises, 1)

	assert.NoError(t, theStorage.Ping(context.Background()))
	assert.NoError(t, theStorage.Close())
}
