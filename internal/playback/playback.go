// Package playback replays recorded timelines by dispatching their actions
// through the driver as they fall due.
package playback

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/driver"
	"github.com/xiaot623/autopilot/internal/timeline"
)

// DefaultTolerance is how far past its timestamp an action may fire, in
// seconds. It absorbs tick-rate jitter.
const DefaultTolerance = 0.05

// Executor receives the commands reconstructed from recorded actions.
// *driver.Driver satisfies it.
type Executor interface {
	ExecuteCommand(cmd driver.Command) bool
}

// Player steps through a timeline on the cooperative tick loop. It is not
// safe for concurrent use.
type Player struct {
	exec Executor
	tl   *timeline.Timeline

	state       domain.PlaybackState
	mode        domain.PlaybackMode
	speed       float64
	tolerance   float64
	currentTime float64
	cursor      int

	loopTarget     int
	loopsCompleted int
}

// New creates an idle player dispatching into exec.
func New(exec Executor) *Player {
	return &Player{
		exec:      exec,
		state:     domain.PlaybackStateIdle,
		mode:      domain.PlaybackModeOnce,
		speed:     1.0,
		tolerance: DefaultTolerance,
	}
}

// State returns the playback state.
func (p *Player) State() domain.PlaybackState { return p.state }

// IsPlaying reports whether the player is actively advancing.
func (p *Player) IsPlaying() bool { return p.state == domain.PlaybackStatePlaying }

// CurrentTime returns the playback clock in timeline seconds.
func (p *Player) CurrentTime() float64 { return p.currentTime }

// Speed returns the playback speed multiplier.
func (p *Player) Speed() float64 { return p.speed }

// Mode returns the loop mode.
func (p *Player) Mode() domain.PlaybackMode { return p.mode }

// LoopsCompleted returns how many full passes have finished.
func (p *Player) LoopsCompleted() int { return p.loopsCompleted }

// Play starts replaying tl from the beginning.
func (p *Player) Play(tl *timeline.Timeline, mode domain.PlaybackMode, loopCount int) error {
	if tl == nil || tl.IsEmpty() {
		return fmt.Errorf("timeline is empty")
	}
	if mode == domain.PlaybackModeLoopCount && loopCount <= 0 {
		return fmt.Errorf("loop count must be positive")
	}

	p.tl = tl
	p.mode = mode
	p.loopTarget = loopCount
	p.loopsCompleted = 0
	p.currentTime = 0
	p.cursor = 0
	p.state = domain.PlaybackStatePlaying

	log.Printf("playback: playing %q, %d actions, mode %s",
		tl.Metadata().RecordingName, tl.ActionCount(), mode)
	return nil
}

// Stop ends playback and discards position.
func (p *Player) Stop() {
	if p.state == domain.PlaybackStateIdle {
		return
	}
	p.state = domain.PlaybackStateIdle
	p.currentTime = 0
	p.cursor = 0
	log.Printf("playback: stopped")
}

// Pause freezes the playback clock.
func (p *Player) Pause() {
	if p.state == domain.PlaybackStatePlaying {
		p.state = domain.PlaybackStatePaused
	}
}

// Resume continues a paused playback.
func (p *Player) Resume() {
	if p.state == domain.PlaybackStatePaused {
		p.state = domain.PlaybackStatePlaying
	}
}

// Restart rewinds to the beginning without changing mode or speed.
func (p *Player) Restart() error {
	if p.tl == nil {
		return fmt.Errorf("nothing to restart")
	}
	p.currentTime = 0
	p.cursor = 0
	p.loopsCompleted = 0
	p.state = domain.PlaybackStatePlaying
	return nil
}

// SetSpeed sets the playback speed multiplier. Negative values are clamped
// to 0, which freezes the playback clock.
func (p *Player) SetSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	p.speed = speed
}

// SeekToTime jumps the playback clock to t, clamped to the timeline
// duration. Actions at or before t are treated as already fired.
func (p *Player) SeekToTime(t float64) error {
	if p.tl == nil {
		return fmt.Errorf("nothing to seek in")
	}
	if t < 0 {
		t = 0
	}
	if d := p.tl.Duration(); t > d {
		t = d
	}

	p.currentTime = t
	p.cursor = len(p.tl.Actions())
	for i, action := range p.tl.Actions() {
		if action.Timestamp > t {
			p.cursor = i
			break
		}
	}
	return nil
}

// Progress returns playback completion in [0, 1] for the current pass.
func (p *Player) Progress() float64 {
	if p.tl == nil {
		return 0
	}
	d := p.tl.Duration()
	if d <= 0 {
		return 1
	}
	progress := p.currentTime / d
	if progress > 1 {
		return 1
	}
	return progress
}

// Tick advances the playback clock and dispatches due actions.
func (p *Player) Tick(dt float64) {
	if p.state != domain.PlaybackStatePlaying {
		return
	}

	p.currentTime += dt * p.speed
	actions := p.tl.Actions()

	for p.cursor < len(actions) && actions[p.cursor].Timestamp <= p.currentTime+p.tolerance {
		p.dispatch(actions[p.cursor])
		p.cursor++
	}

	if p.cursor >= len(actions) && p.currentTime >= p.tl.Duration() {
		p.completePass()
	}
}

func (p *Player) completePass() {
	p.loopsCompleted++

	switch p.mode {
	case domain.PlaybackModeLoop:
		p.currentTime = 0
		p.cursor = 0
	case domain.PlaybackModeLoopCount:
		if p.loopsCompleted < p.loopTarget {
			p.currentTime = 0
			p.cursor = 0
			return
		}
		p.finish()
	default:
		p.finish()
	}
}

func (p *Player) finish() {
	p.state = domain.PlaybackStateFinished
	log.Printf("playback: finished after %d pass(es)", p.loopsCompleted)
}

// dispatch reconstructs a command from a recorded action and hands it to
// the executor. Undecodable or unknown actions are skipped with a warning.
func (p *Player) dispatch(action domain.RecordedAction) {
	cmd, err := commandFor(action)
	if err != nil {
		log.Printf("playback: skipping action %q at %.2fs: %v", action.ActionName, action.Timestamp, err)
		return
	}
	if cmd == nil {
		return
	}
	if !p.exec.ExecuteCommand(cmd) {
		log.Printf("playback: driver rejected action %q at %.2fs", action.ActionName, action.Timestamp)
	}
}

func commandFor(action domain.RecordedAction) (driver.Command, error) {
	switch action.ActionType {
	case domain.ActionTypeMovement:
		var data domain.MovementActionData
		if err := json.Unmarshal([]byte(action.ActionData), &data); err != nil {
			return nil, fmt.Errorf("decode movement data: %w", err)
		}
		cmd := NewMoveFromData(data)
		return cmd, nil

	case domain.ActionTypeRotation:
		var data domain.RotationActionData
		if err := json.Unmarshal([]byte(action.ActionData), &data); err != nil {
			return nil, fmt.Errorf("decode rotation data: %w", err)
		}
		return NewRotateFromData(data), nil

	case domain.ActionTypeInput:
		var data domain.InputActionData
		if err := json.Unmarshal([]byte(action.ActionData), &data); err != nil {
			return nil, fmt.Errorf("decode input data: %w", err)
		}
		if data.Duration > 0 {
			return driver.NewAxisCommand(data.ActionName, data.Value, data.Duration), nil
		}
		return driver.NewInputCommand(data.ActionName, data.Value, 0), nil

	case domain.ActionTypeUIClick:
		var data domain.UIClickActionData
		if err := json.Unmarshal([]byte(action.ActionData), &data); err != nil {
			return nil, fmt.Errorf("decode click data: %w", err)
		}
		params := domain.ClickParams{ClickType: data.ClickType, ClickCount: data.ClickCount}
		if params.ClickCount <= 0 {
			params.ClickCount = 1
		}
		return driver.NewClickWidgetCommand(action.ActionName, params), nil

	default:
		return nil, fmt.Errorf("unknown action type %q", action.ActionType)
	}
}

// NewMoveFromData rebuilds a movement command from its recorded payload.
func NewMoveFromData(data domain.MovementActionData) *driver.MoveCommand {
	cmd := driver.NewMoveCommand(domain.Vector{X: data.X, Y: data.Y, Z: data.Z}, data.AcceptanceRadius)
	if data.SpeedMultiplier > 0 {
		cmd.Params.SpeedMultiplier = data.SpeedMultiplier
	}
	cmd.Params.ShouldSprint = data.ShouldSprint
	if data.MovementMode != "" {
		cmd.Params.MovementMode = data.MovementMode
	}
	return cmd
}

// NewRotateFromData rebuilds a rotation command from its recorded payload.
func NewRotateFromData(data domain.RotationActionData) *driver.RotateCommand {
	cmd := driver.NewRotateCommand(domain.Rotator{Pitch: data.Pitch, Yaw: data.Yaw, Roll: data.Roll}, data.RotationSpeed)
	if data.AcceptanceAngle > 0 {
		cmd.Params.AcceptanceAngle = data.AcceptanceAngle
	}
	return cmd
}
