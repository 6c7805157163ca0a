// Package timeline implements the ordered, timestamped log of recorded
// automation actions plus its JSON export/import.
package timeline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/xiaot623/autopilot/internal/domain"
)

// Timeline is an action log kept sorted ascending by timestamp. It is not
// safe for concurrent use; a timeline is owned by exactly one recorder or
// playback session at a time.
type Timeline struct {
	actions  []domain.RecordedAction
	metadata domain.RecordingMetadata
}

// New creates an empty timeline.
func New() *Timeline {
	return &Timeline{
		metadata: domain.RecordingMetadata{
			RecordingName: "Untitled Recording",
			CreatedAt:     time.Now().UTC(),
		},
	}
}

// AddAction appends an action and restores timestamp order.
func (t *Timeline) AddAction(action domain.RecordedAction) {
	t.actions = append(t.actions, action)
	t.sortActions()
	t.updateMetadata()
}

// AddMovementAction appends a Movement action with the typed payload.
func (t *Timeline) AddMovementAction(timestamp float64, target domain.Vector, params domain.MoveParams) error {
	data, err := json.Marshal(domain.MovementActionData{
		X:                target.X,
		Y:                target.Y,
		Z:                target.Z,
		AcceptanceRadius: params.AcceptanceRadius,
		SpeedMultiplier:  params.SpeedMultiplier,
		ShouldSprint:     params.ShouldSprint,
		MovementMode:     params.MovementMode,
	})
	if err != nil {
		return fmt.Errorf("marshal movement action: %w", err)
	}
	t.AddAction(domain.RecordedAction{
		Timestamp:  timestamp,
		ActionType: domain.ActionTypeMovement,
		ActionName: "MoveToLocation",
		ActionData: string(data),
	})
	return nil
}

// AddRotationAction appends a Rotation action with the typed payload.
func (t *Timeline) AddRotationAction(timestamp float64, target domain.Rotator, params domain.RotateParams) error {
	data, err := json.Marshal(domain.RotationActionData{
		Pitch:           target.Pitch,
		Yaw:             target.Yaw,
		Roll:            target.Roll,
		RotationSpeed:   params.RotationSpeed,
		AcceptanceAngle: params.AcceptanceAngle,
	})
	if err != nil {
		return fmt.Errorf("marshal rotation action: %w", err)
	}
	t.AddAction(domain.RecordedAction{
		Timestamp:  timestamp,
		ActionType: domain.ActionTypeRotation,
		ActionName: "RotateTo",
		ActionData: string(data),
	})
	return nil
}

// AddInputAction appends an Input action with the typed payload.
func (t *Timeline) AddInputAction(timestamp float64, actionName string, value, duration float64) error {
	data, err := json.Marshal(domain.InputActionData{
		ActionName: actionName,
		Value:      value,
		Duration:   duration,
	})
	if err != nil {
		return fmt.Errorf("marshal input action: %w", err)
	}
	t.AddAction(domain.RecordedAction{
		Timestamp:  timestamp,
		ActionType: domain.ActionTypeInput,
		ActionName: actionName,
		ActionData: string(data),
	})
	return nil
}

// AddUIClickAction appends a UIClick action; the widget name travels in the
// action name.
func (t *Timeline) AddUIClickAction(timestamp float64, widgetName string, params domain.ClickParams) error {
	data, err := json.Marshal(domain.UIClickActionData{
		ClickType:  params.ClickType,
		ClickCount: params.ClickCount,
	})
	if err != nil {
		return fmt.Errorf("marshal ui click action: %w", err)
	}
	t.AddAction(domain.RecordedAction{
		Timestamp:  timestamp,
		ActionType: domain.ActionTypeUIClick,
		ActionName: widgetName,
		ActionData: string(data),
	})
	return nil
}

// Actions returns the sorted action slice. Callers must not mutate it.
func (t *Timeline) Actions() []domain.RecordedAction {
	return t.actions
}

// ActionCount returns the number of actions on the timeline.
func (t *Timeline) ActionCount() int { return len(t.actions) }

// IsEmpty reports whether the timeline holds no actions.
func (t *Timeline) IsEmpty() bool { return len(t.actions) == 0 }

// ActionsInRange returns all actions with start <= timestamp <= end.
func (t *Timeline) ActionsInRange(start, end float64) []domain.RecordedAction {
	var out []domain.RecordedAction
	for _, a := range t.actions {
		if a.Timestamp >= start && a.Timestamp <= end {
			out = append(out, a)
		}
	}
	return out
}

// Duration returns the largest timestamp on the timeline, 0 when empty.
func (t *Timeline) Duration() float64 {
	max := 0.0
	for _, a := range t.actions {
		if a.Timestamp > max {
			max = a.Timestamp
		}
	}
	return max
}

// Clear drops all actions but keeps the recording info.
func (t *Timeline) Clear() {
	t.actions = nil
	t.updateMetadata()
}

// TrimOldest removes actions oldest-first until at most max remain.
func (t *Timeline) TrimOldest(max int) {
	if max < 0 || len(t.actions) <= max {
		return
	}
	t.actions = append([]domain.RecordedAction(nil), t.actions[len(t.actions)-max:]...)
	t.updateMetadata()
}

// Metadata returns a copy of the timeline metadata.
func (t *Timeline) Metadata() domain.RecordingMetadata { return t.metadata }

// SetMetadata replaces the timeline metadata; derived fields are recomputed.
func (t *Timeline) SetMetadata(md domain.RecordingMetadata) {
	t.metadata = md
	t.updateMetadata()
}

// SetRecordingInfo sets the recording name and description.
func (t *Timeline) SetRecordingInfo(name, description string) {
	t.metadata.RecordingName = name
	t.metadata.Description = description
}

// AddTag appends a tag unless it is already present.
func (t *Timeline) AddTag(tag string) {
	for _, existing := range t.metadata.Tags {
		if existing == tag {
			return
		}
	}
	t.metadata.Tags = append(t.metadata.Tags, tag)
}

// Optimize removes actions that duplicate the immediately preceding action's
// type, name and payload.
func (t *Timeline) Optimize() {
	if len(t.actions) < 2 {
		return
	}
	out := t.actions[:1]
	for _, a := range t.actions[1:] {
		if a.SamePayload(out[len(out)-1]) {
			continue
		}
		out = append(out, a)
	}
	t.actions = out
	t.updateMetadata()
}

// Compress runs Optimize then rounds every timestamp to the nearest multiple
// of timeTolerance and re-sorts.
func (t *Timeline) Compress(timeTolerance float64) {
	t.Optimize()
	if timeTolerance <= 0 {
		return
	}
	for i := range t.actions {
		t.actions[i].Timestamp = math.Round(t.actions[i].Timestamp/timeTolerance) * timeTolerance
	}
	t.sortActions()
	t.updateMetadata()
}

// document is the persisted timeline format.
type document struct {
	Metadata domain.RecordingMetadata `json:"metadata"`
	Actions  []domain.RecordedAction  `json:"actions"`
}

// ExportJSON serializes the timeline to the portable document format.
func (t *Timeline) ExportJSON() ([]byte, error) {
	doc := document{Metadata: t.metadata, Actions: t.actions}
	if doc.Actions == nil {
		doc.Actions = []domain.RecordedAction{}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export timeline: %w", err)
	}
	return out, nil
}

// ImportJSON replaces the timeline contents with the parsed document.
func (t *Timeline) ImportJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("import timeline: %w", err)
	}
	t.metadata = doc.Metadata
	t.actions = doc.Actions
	t.sortActions()
	t.updateMetadata()
	return nil
}

// SaveFile writes the exported document to path.
func (t *Timeline) SaveFile(path string) error {
	data, err := t.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save timeline: %w", err)
	}
	return nil
}

// LoadFile reads and imports a document from path.
func (t *Timeline) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load timeline: %w", err)
	}
	return t.ImportJSON(data)
}

func (t *Timeline) updateMetadata() {
	t.metadata.ActionCount = len(t.actions)
	t.metadata.Duration = t.Duration()
}

func (t *Timeline) sortActions() {
	sort.SliceStable(t.actions, func(i, j int) bool {
		return t.actions[i].Timestamp < t.actions[j].Timestamp
	})
}
