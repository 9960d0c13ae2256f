// Package backend selects the calendar the reminder events are written to.
package backend

import (
	"context"

	"financas/internal/calendar"
)

// Backend is a calendar that can both write and remove reminder events.
type Backend interface {
	calendar.EventWriter
	calendar.EventDeleter
}

// CleanupFunc releases connections held by a calendar client.
type CleanupFunc func() error

// BackendResult is a ready calendar plus whatever must run when the worker exits.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory builds the calendar named by Config.Type.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects the calendar and carries the Google credentials. Inline JSON
// wins over the file variant of the same secret.
type Config struct {
	Type BackendType

	GoogleCalendarID         string
	GoogleOAuthClientFile    string
	GoogleOAuthTokenFile     string
	GoogleOAuthClientJSON    string
	GoogleOAuthTokenJSON     string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType names a calendar implementation.
type BackendType string

const (
	GoogleBackend BackendType = "google"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt is a calendar this binary can build.
func (bt BackendType) IsValid() bool {
	switch bt {
	case GoogleBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
