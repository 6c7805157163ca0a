// Package domain defines the core domain models for the autopilot.
package domain

// CommandStatus represents the terminal or in-flight status of a driver command.
type CommandStatus string

const (
	CommandStatusSuccess   CommandStatus = "SUCCESS"
	CommandStatusRunning   CommandStatus = "RUNNING"
	CommandStatusFailed    CommandStatus = "FAILED"
	CommandStatusCancelled CommandStatus = "CANCELLED"
)

// MovementMode selects how a move command steers the actor.
type MovementMode string

const (
	MovementModeDirect          MovementMode = "direct"
	MovementModeNavigation      MovementMode = "navigation"
	MovementModeInputSimulation MovementMode = "input_simulation"
)

// ActionType classifies a recorded action on the timeline.
type ActionType string

const (
	ActionTypeMovement ActionType = "Movement"
	ActionTypeRotation ActionType = "Rotation"
	ActionTypeInput    ActionType = "Input"
	ActionTypeUIClick  ActionType = "UIClick"
	ActionTypeCustom   ActionType = "Custom"
)

// RecordingState represents the recorder state machine.
type RecordingState string

const (
	RecordingStateIdle      RecordingState = "IDLE"
	RecordingStateRecording RecordingState = "RECORDING"
	RecordingStatePaused    RecordingState = "PAUSED"
)

// PlaybackState represents the playback state machine.
type PlaybackState string

const (
	PlaybackStateIdle     PlaybackState = "IDLE"
	PlaybackStatePlaying  PlaybackState = "PLAYING"
	PlaybackStatePaused   PlaybackState = "PAUSED"
	PlaybackStateFinished PlaybackState = "FINISHED"
)

// PlaybackMode controls looping behavior of a playback session.
type PlaybackMode string

const (
	PlaybackModeOnce      PlaybackMode = "once"
	PlaybackModeLoop      PlaybackMode = "loop"
	PlaybackModeLoopCount PlaybackMode = "loop_count"
)

// ClickType identifies the mouse button used for a synthetic click.
type ClickType string

const (
	ClickTypeLeft   ClickType = "Left"
	ClickTypeRight  ClickType = "Right"
	ClickTypeMiddle ClickType = "Middle"
)
