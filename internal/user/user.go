// Package user defines the domain entities persisted by the storage layer:
// users and the exercise entries embedded in them.
package user

import "time"

// Exercise is a single timed entry in a user's log.
// Date is nil when the stored document carries no date value; entries created
// through the API always get one.
type Exercise struct {
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	Date        *time.Time `json:"date,omitempty"`
}

// User represents a tracked user together with their exercise log.
// Exercises keep append order; the logs endpoint relies on it.
type User struct {
	// ID is the unique identifier of the user, assigned by the storage backend.
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Exercises []Exercise `json:"exercises"`
}
