// Package jsondb implements the storage contract on top of a single JSON
// file. The whole document set is cached in memory and flushed on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"extracker/internal/storage"
	"extracker/internal/user"
)

type JSONDB struct {
	fileName string

	// The cache maps may not be touched concurrently; net/http serves every
	// request on its own goroutine.
	mu    sync.RWMutex
	Cache CacheStruct
}

type CacheStruct struct {
	Users        map[string]*user.User
	UsersOrder   []string
	UsernameToID map[string]string
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"UsersOrder": [],
	"UsernameToID": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

func New(fileName string) (*JSONDB, error) {
	theDB := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(theDB.fileName, &theDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(theDB.fileName, &theDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	if theDB.Cache.Users == nil {
		theDB.Cache.Users = map[string]*user.User{}
	}
	if theDB.Cache.UsernameToID == nil {
		theDB.Cache.UsernameToID = map[string]string{}
	}

	return &theDB, nil
}

// CreateUser stores a new user with an empty exercise log and a generated id.
func (db *JSONDB) CreateUser(ctx context.Context, username string) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.Cache.UsernameToID[username]; exists {
		return nil, storage.ErrUsernameTaken
	}

	usr := &user.User{
		ID:        uuid.New().String(),
		Username:  username,
		Exercises: []user.Exercise{},
	}
	db.Cache.Users[usr.ID] = usr
	db.Cache.UsersOrder = append(db.Cache.UsersOrder, usr.ID)
	db.Cache.UsernameToID[username] = usr.ID

	return cloneUser(usr), nil
}

// GetUserByID returns a copy of the stored user document.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, storage.ErrUserNotFound
	}

	return cloneUser(usr), nil
}

// GetAllUsers returns all users in insertion order.
func (db *JSONDB) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*user.User, 0, len(db.Cache.UsersOrder))
	for _, userID := range db.Cache.UsersOrder {
		result = append(result, cloneUser(db.Cache.Users[userID]))
	}

	return result, nil
}

// AppendExercise adds the exercise to the end of the user's log and returns
// the updated user.
func (db *JSONDB) AppendExercise(
	ctx context.Context,
	userID string,
	exercise user.Exercise,
) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, storage.ErrUserNotFound
	}

	usr.Exercises = append(usr.Exercises, exercise)

	return cloneUser(usr), nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	err := writeToJSONFile(db.fileName, db.Cache)
	if err != nil {
		return err
	}

	return nil
}

func cloneUser(usr *user.User) *user.User {
	clone := *usr
	clone.Exercises = make([]user.Exercise, len(usr.Exercises))
	copy(clone.Exercises, usr.Exercises)

	return &clone
}
