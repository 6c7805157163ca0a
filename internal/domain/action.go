package domain

import "time"

// RecordedAction is one entry on an action timeline. Timestamps are seconds
// from the start of the recording. ActionData is the JSON payload whose shape
// depends on ActionType.
type RecordedAction struct {
	Timestamp  float64           `json:"timestamp"`
	ActionType ActionType        `json:"actionType"`
	ActionName string            `json:"actionName"`
	ActionData string            `json:"actionData"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SamePayload reports whether two actions are exact duplicates apart from
// their timestamps.
func (a RecordedAction) SamePayload(b RecordedAction) bool {
	return a.ActionType == b.ActionType &&
		a.ActionName == b.ActionName &&
		a.ActionData == b.ActionData
}

// RecordingMetadata describes a timeline as a whole. Duration and ActionCount
// are derived from the actions and refreshed on every mutation.
type RecordingMetadata struct {
	RecordingName string    `json:"recordingName"`
	Description   string    `json:"description"`
	MapName       string    `json:"mapName"`
	CreatedAt     time.Time `json:"createdAt"`
	Duration      float64   `json:"duration"`
	ActionCount   int       `json:"actionCount"`
	Tags          []string  `json:"tags"`
}

// MovementActionData is the payload of a Movement action.
type MovementActionData struct {
	X                float64      `json:"x"`
	Y                float64      `json:"y"`
	Z                float64      `json:"z"`
	AcceptanceRadius float64      `json:"acceptanceRadius"`
	SpeedMultiplier  float64      `json:"speedMultiplier"`
	ShouldSprint     bool         `json:"shouldSprint"`
	MovementMode     MovementMode `json:"movementMode"`
}

// RotationActionData is the payload of a Rotation action.
type RotationActionData struct {
	Pitch           float64 `json:"pitch"`
	Yaw             float64 `json:"yaw"`
	Roll            float64 `json:"roll"`
	RotationSpeed   float64 `json:"rotationSpeed"`
	AcceptanceAngle float64 `json:"acceptanceAngle"`
}

// InputActionData is the payload of an Input action.
type InputActionData struct {
	ActionName string  `json:"actionName"`
	Value      float64 `json:"value"`
	Duration   float64 `json:"duration"`
}

// UIClickActionData is the payload of a UIClick action. The widget name
// travels in the action's ActionName field.
type UIClickActionData struct {
	ClickType  ClickType `json:"clickType"`
	ClickCount int       `json:"clickCount"`
}
