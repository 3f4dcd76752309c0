// Package service implements the application core: input validation,
// date handling, and the exercise log query pipeline. Handlers stay thin and
// translate the sentinel errors declared here into HTTP status codes.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/thoas/go-funk"

	"extracker/internal/models"
	"extracker/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, username string) (*user.User, error)

	GetUserByID(ctx context.Context, userID string) (*user.User, error)

	GetAllUsers(ctx context.Context) ([]*user.User, error)

	AppendExercise(ctx context.Context, userID string, exercise user.Exercise) (*user.User, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	pinger
}

// ErrUsernameRequired is returned when a user is created without a username.
var ErrUsernameRequired = errors.New("username is required")

// ErrExerciseFieldsRequired is returned when description or duration is absent.
var ErrExerciseFieldsRequired = errors.New("description and duration are required")

// ErrInvalidDuration is returned when duration does not coerce to an integer.
var ErrInvalidDuration = errors.New("duration must be an integer")

// ErrInvalidLimit is returned when the limit query parameter does not coerce
// to a non-negative integer.
var ErrInvalidLimit = errors.New("limit must be a non-negative integer")

// dayFormat is the fixed day-level rendering of exercise dates,
// e.g. "Mon Jan 01 2024". Log filtering re-parses this exact text.
const dayFormat = "Mon Jan 02 2006"

// clientDateLayouts are the accepted spellings for dates supplied by clients.
var clientDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	dayFormat,
	"January 2, 2006",
	"01/02/2006",
}

type Service struct {
	db  storage
	now func() time.Time
}

func New(db storage) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// CreateUser validates the username and persists a new user with an empty
// exercise log. A duplicate username surfaces as storage.ErrUsernameTaken.
func (s *Service) CreateUser(ctx context.Context, username string) (models.UserResponse, error) {
	if username == "" {
		return models.UserResponse{}, ErrUsernameRequired
	}

	usr, err := s.db.CreateUser(ctx, username)
	if err != nil {
		return models.UserResponse{}, err
	}

	return models.UserResponse{
		Username: usr.Username,
		ID:       usr.ID,
	}, nil
}

// ListUsers returns every user projected to username and id only.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserResponse, error) {
	users, err := s.db.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	return funk.Map(users, func(usr *user.User) models.UserResponse {
		return models.UserResponse{
			Username: usr.Username,
			ID:       usr.ID,
		}
	}).([]models.UserResponse), nil
}

// AddExercise validates the raw inputs, appends the exercise to the user's
// log, and returns the wire representation with the day-level date text.
// An unparseable date falls back to the current date rather than failing.
func (s *Service) AddExercise(
	ctx context.Context,
	userID string,
	description string,
	durationRaw string,
	dateRaw string,
) (models.ExerciseResponse, error) {
	if description == "" || durationRaw == "" {
		return models.ExerciseResponse{}, ErrExerciseFieldsRequired
	}

	duration, err := strconv.Atoi(strings.TrimSpace(durationRaw))
	if err != nil {
		return models.ExerciseResponse{}, ErrInvalidDuration
	}

	exerciseDate := s.now()
	if dateRaw != "" {
		if parsed, ok := parseClientDate(dateRaw); ok {
			exerciseDate = parsed
		}
	}

	exercise := user.Exercise{
		Description: description,
		Duration:    duration,
		Date:        &exerciseDate,
	}

	usr, err := s.db.AppendExercise(ctx, userID, exercise)
	if err != nil {
		return models.ExerciseResponse{}, err
	}

	return models.ExerciseResponse{
		ID:          usr.ID,
		Username:    usr.Username,
		Date:        exerciseDate.Format(dayFormat),
		Duration:    duration,
		Description: description,
	}, nil
}

// GetLogs produces the filtered and truncated projection of a user's log.
// Exercises are first rendered to day-level text; the from/to filters then
// compare dates re-parsed from that rendered text, and limit truncates last.
func (s *Service) GetLogs(
	ctx context.Context,
	userID string,
	from string,
	to string,
	limitRaw string,
) (models.LogsResponse, error) {
	usr, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return models.LogsResponse{}, err
	}

	log := funk.Map(usr.Exercises, func(exercise user.Exercise) models.LogEntry {
		entry := models.LogEntry{
			Description: exercise.Description,
			Duration:    exercise.Duration,
		}
		if exercise.Date != nil {
			entry.Date = exercise.Date.Format(dayFormat)
		}
		return entry
	}).([]models.LogEntry)

	if from != "" {
		fromDate, okFrom := parseClientDate(from)
		log = funk.Filter(log, func(entry models.LogEntry) bool {
			return okFrom && !parseRenderedDay(entry.Date).Before(fromDate)
		}).([]models.LogEntry)
	}

	if to != "" {
		toDate, okTo := parseClientDate(to)
		log = funk.Filter(log, func(entry models.LogEntry) bool {
			return okTo && !parseRenderedDay(entry.Date).After(toDate)
		}).([]models.LogEntry)
	}

	if limitRaw != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(limitRaw))
		if err != nil || limit < 0 {
			return models.LogsResponse{}, ErrInvalidLimit
		}
		if limit < len(log) {
			log = log[:limit]
		}
	}

	return models.LogsResponse{
		ID:       usr.ID,
		Username: usr.Username,
		Count:    len(log),
		Log:      log,
	}, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func parseClientDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range clientDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// parseRenderedDay turns the already-rendered day text back into a date for
// filter comparisons. Absent or malformed text yields the zero time, so such
// entries sort before any real date.
func parseRenderedDay(rendered string) time.Time {
	if rendered == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(dayFormat, rendered)
	if err != nil {
		return time.Time{}
	}

	return parsed
}
