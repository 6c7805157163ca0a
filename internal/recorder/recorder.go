// Package recorder samples the driven actor's observable state into an
// action timeline at a bounded rate.
package recorder

import (
	"fmt"
	"log"

	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/timeline"
)

// ActorState exposes the observable state the recorder samples.
type ActorState interface {
	Position() domain.Vector
	Rotation() domain.Rotator
}

// Options configures a recorder. Zero values fall back to the defaults.
type Options struct {
	// Interval is the sampling period in seconds.
	Interval float64
	// MovementThreshold is the minimum positional change (world units)
	// between recorded movement samples.
	MovementThreshold float64
	// RotationThreshold is the minimum orientation change (degrees, larger
	// of yaw/pitch) between recorded rotation samples.
	RotationThreshold float64
	// MaxDuration stops the recording when exceeded; 0 means unlimited.
	MaxDuration float64
	// BufferSize bounds the timeline; oldest actions are dropped first.
	BufferSize int
	// MapName is stamped into the recording metadata.
	MapName string

	RecordMovement bool
	RecordRotation bool
}

// DefaultOptions returns the stock recorder configuration.
func DefaultOptions() Options {
	return Options{
		Interval:          0.1,
		MovementThreshold: 10.0,
		RotationThreshold: 1.0,
		BufferSize:        10000,
		RecordMovement:    true,
		RecordRotation:    true,
	}
}

// Recorder observes an actor and appends actions to a timeline. It is driven
// by the cooperative tick loop and is not safe for concurrent use.
type Recorder struct {
	opts  Options
	state ActorState
	tl    *timeline.Timeline

	recState        domain.RecordingState
	recordingTime   float64
	sinceLastSample float64
	lastPosition    domain.Vector
	lastRotation    domain.Rotator
}

// New creates an idle recorder observing state.
func New(state ActorState, opts Options) *Recorder {
	if opts.Interval <= 0 {
		opts.Interval = 0.1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 10000
	}
	return &Recorder{
		opts:     opts,
		state:    state,
		tl:       timeline.New(),
		recState: domain.RecordingStateIdle,
	}
}

// State returns the recorder state machine state.
func (r *Recorder) State() domain.RecordingState { return r.recState }

// IsRecording reports whether samples are being captured.
func (r *Recorder) IsRecording() bool { return r.recState == domain.RecordingStateRecording }

// RecordingTime returns seconds since the recording started.
func (r *Recorder) RecordingTime() float64 { return r.recordingTime }

// Timeline returns the timeline currently being recorded into.
func (r *Recorder) Timeline() *timeline.Timeline { return r.tl }

// Start begins a fresh recording, clearing the current timeline.
func (r *Recorder) Start(name string) error {
	if r.recState == domain.RecordingStateRecording {
		return fmt.Errorf("already recording")
	}

	r.tl.Clear()
	r.tl.SetRecordingInfo(name, "")
	md := r.tl.Metadata()
	md.MapName = r.opts.MapName
	r.tl.SetMetadata(md)

	r.recordingTime = 0
	r.sinceLastSample = 0
	if r.state != nil {
		r.lastPosition = r.state.Position()
		r.lastRotation = r.state.Rotation()
	}

	r.recState = domain.RecordingStateRecording
	log.Printf("recorder: started recording %q", name)
	return nil
}

// Stop ends the recording and returns to idle.
func (r *Recorder) Stop() {
	if r.recState == domain.RecordingStateIdle {
		return
	}
	r.recState = domain.RecordingStateIdle
	log.Printf("recorder: stopped after %.2f seconds, %d actions", r.recordingTime, r.tl.ActionCount())
}

// Pause freezes sampling without ending the recording.
func (r *Recorder) Pause() {
	if r.recState == domain.RecordingStateRecording {
		r.recState = domain.RecordingStatePaused
	}
}

// Resume continues a paused recording.
func (r *Recorder) Resume() {
	if r.recState == domain.RecordingStatePaused {
		r.recState = domain.RecordingStateRecording
	}
}

// Detach hands off the recorded timeline to the caller and installs a fresh
// one. Recording must be stopped first.
func (r *Recorder) Detach() (*timeline.Timeline, error) {
	if r.recState != domain.RecordingStateIdle {
		return nil, fmt.Errorf("cannot detach timeline while recording")
	}
	out := r.tl
	r.tl = timeline.New()
	return out, nil
}

// Tick advances the recording clock and captures interval samples.
func (r *Recorder) Tick(dt float64) {
	if r.recState != domain.RecordingStateRecording {
		return
	}

	r.recordingTime += dt
	r.sinceLastSample += dt

	if r.opts.MaxDuration > 0 && r.recordingTime >= r.opts.MaxDuration {
		log.Printf("recorder: reached max duration %.2f seconds", r.opts.MaxDuration)
		r.Stop()
		return
	}

	if r.sinceLastSample < r.opts.Interval {
		return
	}
	r.sinceLastSample = 0

	r.sampleMovement()
	r.sampleRotation()
	r.tl.TrimOldest(r.opts.BufferSize)
}

// RecordInputAction appends an input action immediately, bypassing the
// sampling interval and thresholds.
func (r *Recorder) RecordInputAction(actionName string, value, duration float64) error {
	if !r.IsRecording() {
		return fmt.Errorf("not recording")
	}
	if err := r.tl.AddInputAction(r.recordingTime, actionName, value, duration); err != nil {
		return err
	}
	r.tl.TrimOldest(r.opts.BufferSize)
	return nil
}

// RecordUIClickAction appends a UI click action immediately.
func (r *Recorder) RecordUIClickAction(widgetName string, params domain.ClickParams) error {
	if !r.IsRecording() {
		return fmt.Errorf("not recording")
	}
	if err := r.tl.AddUIClickAction(r.recordingTime, widgetName, params); err != nil {
		return err
	}
	r.tl.TrimOldest(r.opts.BufferSize)
	return nil
}

// RecordCustomAction appends an arbitrary action immediately.
func (r *Recorder) RecordCustomAction(actionType domain.ActionType, actionName, actionData string) error {
	if !r.IsRecording() {
		return fmt.Errorf("not recording")
	}
	r.tl.AddAction(domain.RecordedAction{
		Timestamp:  r.recordingTime,
		ActionType: actionType,
		ActionName: actionName,
		ActionData: actionData,
	})
	r.tl.TrimOldest(r.opts.BufferSize)
	return nil
}

func (r *Recorder) sampleMovement() {
	if !r.opts.RecordMovement || r.state == nil {
		return
	}
	pos := r.state.Position()
	if domain.Dist(pos, r.lastPosition) < r.opts.MovementThreshold {
		return
	}

	params := domain.MoveParams{
		AcceptanceRadius: 50.0,
		SpeedMultiplier:  1.0,
		MovementMode:     domain.MovementModeDirect,
	}
	if err := r.tl.AddMovementAction(r.recordingTime, pos, params); err != nil {
		log.Printf("recorder: dropped movement sample: %v", err)
		return
	}
	r.lastPosition = pos
}

func (r *Recorder) sampleRotation() {
	if !r.opts.RecordRotation || r.state == nil {
		return
	}
	rot := r.state.Rotation()
	if domain.AngularDelta(rot, r.lastRotation) < r.opts.RotationThreshold {
		return
	}

	params := domain.RotateParams{
		RotationSpeed:   180.0,
		AcceptanceAngle: 1.0,
	}
	if err := r.tl.AddRotationAction(r.recordingTime, rot, params); err != nil {
		log.Printf("recorder: dropped rotation sample: %v", err)
		return
	}
	r.lastRotation = rot
}
