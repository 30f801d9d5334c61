// Package view holds the types shared by every view-state controller.
package view

import "errors"

// State is the fetch lifecycle of a controller.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Result is the uniform outcome of a controller mutation.
type Result struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	ID      string            `json:"id,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// Invalid reports a validation failure caught before any request was issued.
func Invalid(message string, fields map[string]string) Result {
	return Result{Success: false, Message: message, Fields: fields}
}

// Status is the read-only lifecycle part of every published view.
type Status struct {
	State   State  `json:"state"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Observer receives every republished view of a controller.
// Domain is one of "employees", "attendance", "leaves" or "dashboard".
type Observer func(domain string, snapshot any)

// Domain names used when publishing.
const (
	DomainEmployees  = "employees"
	DomainAttendance = "attendance"
	DomainLeaves     = "leaves"
	DomainDashboard  = "dashboard"
)

// Snapshot is the published state of a searchable controller: the filtered
// records, the size of the canonical collection, stats and the search spec.
type Snapshot[R, S, St any] struct {
	Status
	Records []R `json:"records"`
	Total   int `json:"total"`
	Stats   St  `json:"stats"`
	Search  S   `json:"search"`
}

// UserMessage is implemented by errors that carry a message fit for display.
type UserMessage interface {
	UserMessage() string
}

// Message extracts a displayable message from err, or returns fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var um UserMessage
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}
