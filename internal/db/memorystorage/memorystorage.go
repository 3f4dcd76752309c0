package memorystorage

import (
	"context"

	"extracker/internal/db/jsondb"
	"extracker/internal/user"
)

// MemoryStorage is the jsondb cache without a backing file.
type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:        map[string]*user.User{},
				UsersOrder:   []string{},
				UsernameToID: map[string]string{},
			},
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
