package backend

import (
	"context"
	"fmt"
	"log/slog"

	gcal "financas/internal/calendar/google"
	"financas/internal/calendar/memory"
)

type gcalConfig = gcal.Config

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case GoogleBackend:
		return f.createGoogleBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createGoogleBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gcal.New(ctx, config.googleConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Calendar client: %w", err)
	}

	f.logger.Info("Initialized Google Calendar backend", "calendar_id", config.GoogleCalendarID)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory calendar backend, events are not persisted")
	return &BackendResult{Backend: memory.New()}, nil
}
