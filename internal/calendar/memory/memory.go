// Package memory is the in-process calendar used in tests and when calendar
// sync is not configured.
package memory

import (
	"context"
	"sort"
	"sync"

	ports "financas/internal/calendar"
)

type Calendar struct {
	mu     sync.Mutex
	events map[string]ports.Event
	writes int
}

var (
	_ ports.EventWriter  = (*Calendar)(nil)
	_ ports.EventDeleter = (*Calendar)(nil)
)

func New() *Calendar {
	return &Calendar{events: make(map[string]ports.Event)}
}

func (c *Calendar) UpsertReminder(_ context.Context, e ports.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[e.ID] = e
	c.writes++
	return nil
}

func (c *Calendar) DeleteReminder(_ context.Context, reminderID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, ports.EventID(reminderID))
	return nil
}

// Events returns the stored events ordered by date, then id.
func (c *Calendar) Events() []ports.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ports.Event, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Writes counts upserts, including overwrites.
func (c *Calendar) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}
