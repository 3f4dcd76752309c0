// Package postgresdb provides the PostgreSQL-backed implementation of the
// storage contract. It runs schema migrations on startup and translates
// unique-constraint violations into the typed storage errors.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"extracker/internal/storage"
	"extracker/internal/user"
)

// PostgresDB persists users and their exercise logs in PostgreSQL.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSTATE for unique-constraint violations.
const uniqueViolationCode = "23505"

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

// CreateUser inserts a new user record and returns it with the id assigned
// by the database. A duplicate username surfaces as storage.ErrUsernameTaken.
func (db *PostgresDB) CreateUser(ctx context.Context, username string) (*user.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (username) VALUES ($1) RETURNING id`,
		username,
	)
	var userID string
	err := row.Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, storage.ErrUsernameTaken
		}
		return nil, err
	}

	return &user.User{
		ID:        userID,
		Username:  username,
		Exercises: []user.Exercise{},
	}, nil
}

// GetUserByID fetches a user by their UUID together with the full exercise
// log in append order.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	return getUserByID(ctx, db.database, userID)
}

// GetAllUsers returns all users in insertion order, without exercise logs.
func (db *PostgresDB) GetAllUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, username FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*user.User{}
	for rows.Next() {
		usr := &user.User{}
		err = rows.Scan(&usr.ID, &usr.Username)
		if err != nil {
			return nil, err
		}

		result = append(result, usr)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AppendExercise adds an exercise row for the user and returns the updated
// user document.
func (db *PostgresDB) AppendExercise(
	ctx context.Context,
	userID string,
	exercise user.Exercise,
) (*user.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, storage.ErrUserNotFound
	}

	transaction, err := db.database.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	row := transaction.QueryRowContext(
		ctx,
		`SELECT id FROM users WHERE id = $1`,
		userID,
	)
	var foundID string
	if err := row.Scan(&foundID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}

	var date sql.NullTime
	if exercise.Date != nil {
		date = sql.NullTime{Time: *exercise.Date, Valid: true}
	}

	_, err = transaction.ExecContext(
		ctx,
		`INSERT INTO exercises (user_id, description, duration, date) VALUES ($1, $2, $3, $4)`,
		userID,
		exercise.Description,
		exercise.Duration,
		date,
	)
	if err != nil {
		return nil, err
	}

	if err := transaction.Commit(); err != nil {
		return nil, err
	}

	return getUserByID(ctx, db.database, userID)
}

func getUserByID(ctx context.Context, database queryer, userID string) (*user.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, storage.ErrUserNotFound
	}

	row := database.QueryRowContext(
		ctx,
		`SELECT id, username FROM users WHERE id = $1`,
		userID,
	)
	usr := &user.User{Exercises: []user.Exercise{}}
	err := row.Scan(&usr.ID, &usr.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}

	rows, err := database.QueryContext(
		ctx,
		`SELECT description, duration, date FROM exercises WHERE user_id = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var exercise user.Exercise
		var date sql.NullTime
		err = rows.Scan(&exercise.Description, &exercise.Duration, &date)
		if err != nil {
			return nil, err
		}
		if date.Valid {
			dateValue := date.Time
			exercise.Date = &dateValue
		}

		usr.Exercises = append(usr.Exercises, exercise)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return usr, nil
}

// Ping verifies connectivity with the PostgreSQL database within the
// configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	err := db.database.Close()
	if err != nil {
		return err
	}

	return nil
}
