package models

// UserResponse is the projection of a user without their exercise log.
// The identifier key is `_id` on the wire.
type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"_id"`
}

// ExerciseResponse is returned after appending an exercise to a user's log.
// Date carries the day-level textual rendering, e.g. "Mon Jan 01 2024".
type ExerciseResponse struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntry is a single projected exercise in a logs response. Date is omitted
// entirely when the stored exercise has no date value.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date,omitempty"`
}

// LogsResponse is the filtered, truncated view of a user's exercise log.
// Count always equals len(Log).
type LogsResponse struct {
	ID       string     `json:"_id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

// ErrorResponse is the uniform error payload; no internal detail leaks here.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
