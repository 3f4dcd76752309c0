package jsondb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extracker/internal/storage"
	"extracker/internal/user"
)

const testDBFileName = "db_test.json"

func Test(t *testing.T) {
	t.Run("The base jsondb package test", func(t *testing.T) {
		theStorage, err := New(testDBFileName)
		require.NoError(t, err)
		require.NotNil(t, theStorage)
		defer func() {
			err = os.Remove(testDBFileName)
			require.NoError(t, err)
		}()

		usr, err := theStorage.CreateUser(context.Background(), "alice")
		require.NoError(t, err)
		require.NotEmpty(t, usr.ID)
		assert.Equal(t, "alice", usr.Username)
		assert.Empty(t, usr.Exercises)

		_, err = theStorage.CreateUser(context.Background(), "alice")
		assert.ErrorIs(t, err, storage.ErrUsernameTaken)

		second, err := theStorage.CreateUser(context.Background(), "bob")
		require.NoError(t, err)
		require.NotEqual(t, usr.ID, second.ID)

		found, err := theStorage.GetUserByID(context.Background(), usr.ID)
		require.NoError(t, err)
		assert.Equal(t, usr, found)

		_, err = theStorage.GetUserByID(context.Background(), "no-such-id")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		all, err := theStorage.GetAllUsers(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "alice", all[0].Username, "insertion order is preserved")
		assert.Equal(t, "bob", all[1].Username)

		date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		updated, err := theStorage.AppendExercise(context.Background(), usr.ID, user.Exercise{
			Description: "running",
			Duration:    30,
			Date:        &date,
		})
		require.NoError(t, err)
		require.Len(t, updated.Exercises, 1)
		assert.Equal(t, "running", updated.Exercises[0].Description)

		_, err = theStorage.AppendExercise(context.Background(), "no-such-id", user.Exercise{})
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		err = theStorage.Ping(context.Background())
		assert.NoError(t, err, "The jsondb.Ping() should not return error")

		err = theStorage.Close()
		assert.NoError(t, err, "The jsondb.Close() should not return error")

		// Close flushed the cache; a fresh instance must see the same data.
		reopened, err := New(testDBFileName)
		require.NoError(t, err)

		found, err = reopened.GetUserByID(context.Background(), usr.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
		require.Len(t, found.Exercises, 1)
		assert.Equal(t, 30, found.Exercises[0].Duration)
		require.NotNil(t, found.Exercises[0].Date)
		assert.True(t, date.Equal(*found.Exercises[0].Date))

		_, err = reopened.CreateUser(context.Background(), "alice")
		assert.ErrorIs(t, err, storage.ErrUsernameTaken, "uniqueness survives a reload")
	})
}
