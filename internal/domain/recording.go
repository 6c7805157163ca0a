package domain

import (
	"encoding/json"
	"time"
)

// Recording is a persisted timeline document plus its catalog row.
type Recording struct {
	RecordingID string          `json:"recording_id"`
	Name        string          `json:"name"`
	MapName     string          `json:"map_name,omitempty"`
	Document    json.RawMessage `json:"document"`
	ActionCount int             `json:"action_count"`
	Duration    float64         `json:"duration"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecordingSummary is the catalog view of a recording, without the document.
type RecordingSummary struct {
	RecordingID string    `json:"recording_id"`
	Name        string    `json:"name"`
	MapName     string    `json:"map_name,omitempty"`
	ActionCount int       `json:"action_count"`
	Duration    float64   `json:"duration"`
	CreatedAt   time.Time `json:"created_at"`
}
