package models

import "time"

// Event is one entry in the event bus's ring buffer. Events are created by
// Emit, assigned an id and timestamp, and read-only afterwards.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data,omitempty"`
	Project   string         `json:"project,omitempty"`
}
