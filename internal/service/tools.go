package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/tools"
)

func objectSchema(properties string, required ...string) json.RawMessage {
	req, _ := json.Marshal(required)
	return json.RawMessage(`{"type":"object","properties":` + properties + `,"required":` + string(req) + `}`)
}

// RegisterTools wires every remote control tool into the registry.
func (s *Service) RegisterTools(reg *tools.Registry) {
	s.registerDriverTools(reg)
	s.registerCacheTools(reg)
	s.registerRecordingTools(reg)
	s.registerPlaybackTools(reg)
}

func (s *Service) registerDriverTools(reg *tools.Registry) {
	reg.MustRegister(tools.Tool{
		Name:        "driver/move_to_location",
		Description: "Move the driven actor to a world location",
		InputSchema: objectSchema(`{"x":{"type":"number"},"y":{"type":"number"},"z":{"type":"number"},"acceptance_radius":{"type":"number"},"speed_multiplier":{"type":"number"},"should_sprint":{"type":"boolean"},"movement_mode":{"type":"string"},"timeout":{"type":"number"}}`, "x", "y", "z"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			X                float64             `json:"x"`
			Y                float64             `json:"y"`
			Z                float64             `json:"z"`
			AcceptanceRadius float64             `json:"acceptance_radius"`
			SpeedMultiplier  float64             `json:"speed_multiplier"`
			ShouldSprint     bool                `json:"should_sprint"`
			MovementMode     domain.MovementMode `json:"movement_mode"`
			Timeout          float64             `json:"timeout"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		params := domain.DefaultMoveParams()
		if in.AcceptanceRadius > 0 {
			params.AcceptanceRadius = in.AcceptanceRadius
		}
		if in.SpeedMultiplier > 0 {
			params.SpeedMultiplier = in.SpeedMultiplier
		}
		if in.MovementMode != "" {
			params.MovementMode = in.MovementMode
		}
		params.ShouldSprint = in.ShouldSprint
		params.Timeout = in.Timeout
		return s.MoveTo(domain.Vector{X: in.X, Y: in.Y, Z: in.Z}, params)
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/rotate_to",
		Description: "Rotate the driven actor to an orientation",
		InputSchema: objectSchema(`{"pitch":{"type":"number"},"yaw":{"type":"number"},"roll":{"type":"number"},"rotation_speed":{"type":"number"},"acceptance_angle":{"type":"number"},"timeout":{"type":"number"}}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Pitch           float64 `json:"pitch"`
			Yaw             float64 `json:"yaw"`
			Roll            float64 `json:"roll"`
			RotationSpeed   float64 `json:"rotation_speed"`
			AcceptanceAngle float64 `json:"acceptance_angle"`
			Timeout         float64 `json:"timeout"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		params := domain.DefaultRotateParams()
		if in.RotationSpeed > 0 {
			params.RotationSpeed = in.RotationSpeed
		}
		if in.AcceptanceAngle > 0 {
			params.AcceptanceAngle = in.AcceptanceAngle
		}
		params.Timeout = in.Timeout
		return s.RotateTo(domain.Rotator{Pitch: in.Pitch, Yaw: in.Yaw, Roll: in.Roll}, params)
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/press_input",
		Description: "Inject a synthetic input press or axis hold",
		InputSchema: objectSchema(`{"action_name":{"type":"string"},"value":{"type":"number"},"duration":{"type":"number"},"axis":{"type":"boolean"}}`, "action_name"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			ActionName string  `json:"action_name"`
			Value      float64 `json:"value"`
			Duration   float64 `json:"duration"`
			Axis       bool    `json:"axis"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if in.ActionName == "" {
			return "", fmt.Errorf("action_name is required")
		}
		if in.Value == 0 && !in.Axis {
			in.Value = 1.0
		}
		return s.PressInput(in.ActionName, in.Value, in.Duration, in.Axis)
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/click_widget",
		Description: "Click a UI widget by name",
		InputSchema: objectSchema(`{"widget_name":{"type":"string"},"click_type":{"type":"string"},"click_count":{"type":"integer"}}`, "widget_name"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			WidgetName string           `json:"widget_name"`
			ClickType  domain.ClickType `json:"click_type"`
			ClickCount int              `json:"click_count"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if in.WidgetName == "" {
			return "", fmt.Errorf("widget_name is required")
		}
		params := domain.DefaultClickParams()
		if in.ClickType != "" {
			params.ClickType = in.ClickType
		}
		if in.ClickCount > 0 {
			params.ClickCount = in.ClickCount
		}
		return s.ClickWidget(in.WidgetName, params)
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/read_widget",
		Description: "Read the text of a UI widget",
		InputSchema: objectSchema(`{"widget_name":{"type":"string"},"timeout":{"type":"number"}}`, "widget_name"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			WidgetName string  `json:"widget_name"`
			Timeout    float64 `json:"timeout"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if in.WidgetName == "" {
			return "", fmt.Errorf("widget_name is required")
		}
		return s.ReadWidget(in.WidgetName, in.Timeout)
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/wait_for_widget",
		Description: "Wait for a UI widget to appear or disappear",
		InputSchema: objectSchema(`{"widget_name":{"type":"string"},"appear":{"type":"boolean"},"timeout":{"type":"number"}}`, "widget_name"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			WidgetName string  `json:"widget_name"`
			Appear     *bool   `json:"appear"`
			Timeout    float64 `json:"timeout"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if in.WidgetName == "" {
			return "", fmt.Errorf("widget_name is required")
		}
		appear := true
		if in.Appear != nil {
			appear = *in.Appear
		}
		if in.Timeout <= 0 {
			in.Timeout = 10.0
		}
		return s.WaitForWidget(in.WidgetName, appear, in.Timeout)
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/stop_command",
		Description: "Cancel the active command",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		return s.StopCommand(), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/query_status",
		Description: "Snapshot the engine state",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		out, err := json.Marshal(s.QueryStatus())
		if err != nil {
			return "", err
		}
		return string(out), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "driver/set_enabled",
		Description: "Enable or disable the driver",
		InputSchema: objectSchema(`{"enabled":{"type":"boolean"}}`, "enabled"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Enabled bool `json:"enabled"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		return s.SetEnabled(in.Enabled), nil
	})
}

func (s *Service) registerCacheTools(reg *tools.Registry) {
	reg.MustRegister(tools.Tool{
		Name:        "cache/stats",
		Description: "Report spatial query cache hit/miss counters",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		hits, misses, size := s.CacheStats()
		out, err := json.Marshal(map[string]interface{}{
			"hits":   hits,
			"misses": misses,
			"size":   size,
		})
		if err != nil {
			return "", err
		}
		return string(out), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "cache/clear",
		Description: "Drop all spatial query cache entries",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		s.CacheClear()
		return "cache cleared", nil
	})
}

func (s *Service) registerRecordingTools(reg *tools.Registry) {
	reg.MustRegister(tools.Tool{
		Name:        "recording/start",
		Description: "Start recording the driven actor",
		InputSchema: objectSchema(`{"name":{"type":"string"}}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if err := s.RecordingStart(in.Name); err != nil {
			return "", err
		}
		return "recording started", nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "recording/stop",
		Description: "Stop the active recording",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		actions, duration, err := s.RecordingStop()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("recording stopped: %d actions over %.2f seconds", actions, duration), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "recording/save",
		Description: "Persist the last stopped recording",
		InputSchema: objectSchema(`{"description":{"type":"string"}}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Description string `json:"description"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		id, err := s.RecordingSave(ctx, in.Description)
		if err != nil {
			return "", err
		}
		return "saved recording " + id, nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "recording/list",
		Description: "List persisted recordings",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		list, err := s.RecordingList(ctx)
		if err != nil {
			return "", err
		}
		if list == nil {
			list = []domain.RecordingSummary{}
		}
		out, err := json.Marshal(list)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "recording/delete",
		Description: "Delete a persisted recording",
		InputSchema: objectSchema(`{"recording_id":{"type":"string"}}`, "recording_id"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			RecordingID string `json:"recording_id"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if in.RecordingID == "" {
			return "", fmt.Errorf("recording_id is required")
		}
		if err := s.RecordingDelete(ctx, in.RecordingID); err != nil {
			return "", err
		}
		return "deleted recording " + in.RecordingID, nil
	})
}

func (s *Service) registerPlaybackTools(reg *tools.Registry) {
	reg.MustRegister(tools.Tool{
		Name:        "playback/play",
		Description: "Replay a persisted recording by id or name",
		InputSchema: objectSchema(`{"recording_id":{"type":"string"},"mode":{"type":"string","enum":["once","loop","loop_count"]},"loop_count":{"type":"integer"},"speed":{"type":"number"}}`, "recording_id"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			RecordingID string              `json:"recording_id"`
			Mode        domain.PlaybackMode `json:"mode"`
			LoopCount   int                 `json:"loop_count"`
			Speed       float64             `json:"speed"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if in.RecordingID == "" {
			return "", fmt.Errorf("recording_id is required")
		}
		if err := s.PlaybackPlay(ctx, in.RecordingID, in.Mode, in.LoopCount, in.Speed); err != nil {
			return "", err
		}
		return "playback started", nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "playback/pause",
		Description: "Pause playback",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		if err := s.PlaybackPause(); err != nil {
			return "", err
		}
		return "playback paused", nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "playback/resume",
		Description: "Resume paused playback",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		if err := s.PlaybackResume(); err != nil {
			return "", err
		}
		return "playback resumed", nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "playback/stop",
		Description: "Stop playback",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		s.PlaybackStop()
		return "playback stopped", nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "playback/seek",
		Description: "Seek the playback clock to a time in seconds",
		InputSchema: objectSchema(`{"time":{"type":"number"}}`, "time"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Time float64 `json:"time"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if err := s.PlaybackSeek(in.Time); err != nil {
			return "", err
		}
		return fmt.Sprintf("seeked to %.2f", in.Time), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "playback/set_speed",
		Description: "Set the playback speed multiplier",
		InputSchema: objectSchema(`{"speed":{"type":"number"}}`, "speed"),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		var in struct {
			Speed float64 `json:"speed"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		s.PlaybackSetSpeed(in.Speed)
		return fmt.Sprintf("speed set to %.2f", in.Speed), nil
	})

	reg.MustRegister(tools.Tool{
		Name:        "playback/status",
		Description: "Snapshot the playback state",
		InputSchema: objectSchema(`{}`),
	}, func(ctx context.Context, args json.RawMessage) (string, error) {
		out, err := json.Marshal(s.QueryPlayback())
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}
