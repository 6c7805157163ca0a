// Package service composes the driver, cache, recorder, playback and store
// behind a single lock and runs the tick loop.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/driver"
	"github.com/xiaot623/autopilot/internal/navcache"
	"github.com/xiaot623/autopilot/internal/playback"
	"github.com/xiaot623/autopilot/internal/recorder"
	"github.com/xiaot623/autopilot/internal/store"
	"github.com/xiaot623/autopilot/internal/timeline"
)

// Stepper advances the simulated world. The tick loop calls it before the
// driver so commands observe fresh state.
type Stepper interface {
	Step(dt float64)
}

// Options wires the service's collaborators.
type Options struct {
	Driver   *driver.Driver
	Context  *driver.Context
	Cache    *navcache.Cache
	Recorder *recorder.Recorder
	Player   *playback.Player
	Store    store.Store
	Stepper  Stepper
	// TickRateHz is the tick loop frequency. Defaults to 30.
	TickRateHz int
}

// Service is the single entry point for remote control operations. All
// methods take the service lock; the tick loop holds it for each frame.
type Service struct {
	mu sync.Mutex

	drv    *driver.Driver
	ctx    *driver.Context
	cache  *navcache.Cache
	rec    *recorder.Recorder
	player *playback.Player
	store  store.Store
	step   Stepper

	tickRate int
}

// New creates a service from wired collaborators.
func New(opts Options) *Service {
	rate := opts.TickRateHz
	if rate <= 0 {
		rate = 30
	}
	return &Service{
		drv:      opts.Driver,
		ctx:      opts.Context,
		cache:    opts.Cache,
		rec:      opts.Recorder,
		player:   opts.Player,
		store:    opts.Store,
		step:     opts.Stepper,
		tickRate: rate,
	}
}

// Run drives the tick loop until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(s.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("service: tick loop running at %d Hz", s.tickRate)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Printf("service: tick loop stopped")
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.TickOnce(dt)
		}
	}
}

// TickOnce advances every ticked subsystem by dt seconds.
func (s *Service) TickOnce(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != nil {
		s.step.Step(dt)
	}
	s.drv.Tick(dt)
	s.rec.Tick(dt)
	s.player.Tick(dt)
}

// --- driver operations ---

// MoveTo starts a movement command towards target.
func (s *Service) MoveTo(target domain.Vector, params domain.MoveParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := driver.NewMoveCommand(target, params.AcceptanceRadius)
	cmd.Params = params
	return s.execute(cmd)
}

// RotateTo starts a rotation command towards target.
func (s *Service) RotateTo(target domain.Rotator, params domain.RotateParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd := driver.NewRotateCommand(target, params.RotationSpeed)
	cmd.Params = params
	return s.execute(cmd)
}

// PressInput starts a synthetic input press or axis hold.
func (s *Service) PressInput(actionName string, value, duration float64, axis bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cmd driver.Command
	if axis {
		cmd = driver.NewAxisCommand(actionName, value, duration)
	} else {
		cmd = driver.NewInputCommand(actionName, value, duration)
	}
	msg, err := s.execute(cmd)
	if err == nil && s.rec.IsRecording() {
		if rerr := s.rec.RecordInputAction(actionName, value, duration); rerr != nil {
			log.Printf("service: failed to record input action: %v", rerr)
		}
	}
	return msg, err
}

// ClickWidget clicks a named widget.
func (s *Service) ClickWidget(widgetName string, params domain.ClickParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.execute(driver.NewClickWidgetCommand(widgetName, params))
	if err == nil && s.rec.IsRecording() {
		if rerr := s.rec.RecordUIClickAction(widgetName, params); rerr != nil {
			log.Printf("service: failed to record click action: %v", rerr)
		}
	}
	return msg, err
}

// ReadWidget reads a widget's text, waiting up to timeout for it to appear.
func (s *Service) ReadWidget(widgetName string, timeout float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.execute(driver.NewReadWidgetCommand(widgetName, timeout))
}

// WaitForWidget waits for a widget to appear or disappear.
func (s *Service) WaitForWidget(widgetName string, appear bool, timeout float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cmd driver.Command
	if appear {
		cmd = driver.NewWaitForWidgetCommand(widgetName, timeout)
	} else {
		cmd = driver.NewWaitForWidgetToDisappearCommand(widgetName, timeout)
	}
	return s.execute(cmd)
}

// execute starts cmd under the held lock. Synchronously finished commands
// report their terminal message, or an error when they finished in a
// non-success state; in-flight ones report the description.
func (s *Service) execute(cmd driver.Command) (string, error) {
	if !s.drv.ExecuteCommand(cmd) {
		res := cmd.Result()
		if res.Message != "" {
			return "", fmt.Errorf("%s", res.Message)
		}
		return "", fmt.Errorf("command rejected")
	}
	if !cmd.IsRunning() {
		res := cmd.Result()
		if !res.IsSuccess() {
			if res.Message != "" {
				return "", fmt.Errorf("%s", res.Message)
			}
			return "", fmt.Errorf("command failed")
		}
		return res.Message, nil
	}
	return "started: " + cmd.Description(), nil
}

// StopCommand cancels the active command.
func (s *Service) StopCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.drv.IsExecutingCommand() {
		return "no command running"
	}
	desc := s.drv.CurrentDescription()
	s.drv.StopCurrentCommand()
	return "stopped: " + desc
}

// SetEnabled toggles the driver.
func (s *Service) SetEnabled(enabled bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drv.SetEnabled(enabled)
	if enabled {
		return "driver enabled"
	}
	return "driver disabled"
}

// Status is a point-in-time snapshot of the whole engine.
type Status struct {
	Enabled          bool                  `json:"enabled"`
	ExecutingCommand bool                  `json:"executing_command"`
	CurrentCommand   string                `json:"current_command,omitempty"`
	Position         domain.Vector         `json:"position"`
	Rotation         domain.Rotator        `json:"rotation"`
	RecordingState   domain.RecordingState `json:"recording_state"`
	RecordingTime    float64               `json:"recording_time"`
	PlaybackState    domain.PlaybackState  `json:"playback_state"`
	PlaybackTime     float64               `json:"playback_time"`
	PlaybackProgress float64               `json:"playback_progress"`
}

// QueryStatus returns the engine snapshot.
func (s *Service) QueryStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Enabled:          s.drv.IsEnabled(),
		ExecutingCommand: s.drv.IsExecutingCommand(),
		CurrentCommand:   s.drv.CurrentDescription(),
		RecordingState:   s.rec.State(),
		RecordingTime:    s.rec.RecordingTime(),
		PlaybackState:    s.player.State(),
		PlaybackTime:     s.player.CurrentTime(),
		PlaybackProgress: s.player.Progress(),
	}
	if s.ctx != nil && s.ctx.Actuator != nil {
		st.Position = s.ctx.Actuator.Position()
		st.Rotation = s.ctx.Actuator.Rotation()
	}
	return st
}

// --- cache operations ---

// CacheStats returns hit/miss counters and the entry count.
func (s *Service) CacheStats() (hits, misses, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

// CacheClear drops all cache entries and counters.
func (s *Service) CacheClear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
}

// --- recording operations ---

// RecordingStart begins capturing a new recording.
func (s *Service) RecordingStart(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player.IsPlaying() {
		return fmt.Errorf("cannot record while playback is running")
	}
	if name == "" {
		name = "Recording " + time.Now().UTC().Format("2006-01-02 15:04:05")
	}
	return s.rec.Start(name)
}

// RecordingStop ends the active recording and reports how much it captured.
func (s *Service) RecordingStop() (actions int, duration float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.State() == domain.RecordingStateIdle {
		return 0, 0, fmt.Errorf("no recording in progress")
	}
	s.rec.Stop()
	tl := s.rec.Timeline()
	return tl.ActionCount(), tl.Duration(), nil
}

// RecordingSave persists the last stopped recording and returns its ID.
func (s *Service) RecordingSave(ctx context.Context, description string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tl, err := s.rec.Detach()
	if err != nil {
		return "", err
	}
	if tl.IsEmpty() {
		return "", fmt.Errorf("nothing to save")
	}
	if description != "" {
		md := tl.Metadata()
		md.Description = description
		tl.SetMetadata(md)
	}

	doc, err := tl.ExportJSON()
	if err != nil {
		return "", err
	}
	md := tl.Metadata()
	rec := &domain.Recording{
		RecordingID: uuid.New().String(),
		Name:        md.RecordingName,
		MapName:     md.MapName,
		Document:    doc,
		ActionCount: md.ActionCount,
		Duration:    md.Duration,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveRecording(ctx, rec); err != nil {
		return "", fmt.Errorf("save recording: %w", err)
	}
	log.Printf("service: saved recording %s (%q, %d actions)", rec.RecordingID, rec.Name, rec.ActionCount)
	return rec.RecordingID, nil
}

// RecordingList lists persisted recordings.
func (s *Service) RecordingList(ctx context.Context) ([]domain.RecordingSummary, error) {
	return s.store.ListRecordings(ctx)
}

// RecordingDelete removes a persisted recording.
func (s *Service) RecordingDelete(ctx context.Context, recordingID string) error {
	deleted, err := s.store.DeleteRecording(ctx, recordingID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("recording %s not found", recordingID)
	}
	return nil
}

// --- playback operations ---

// PlaybackPlay loads a persisted recording and starts replaying it.
func (s *Service) PlaybackPlay(ctx context.Context, recordingID string, mode domain.PlaybackMode, loopCount int, speed float64) error {
	rec, err := s.store.GetRecording(ctx, recordingID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec, err = s.store.GetRecordingByName(ctx, recordingID)
		if err != nil {
			return err
		}
	}
	if rec == nil {
		return fmt.Errorf("recording %s not found", recordingID)
	}

	tl := timeline.New()
	if err := tl.ImportJSON(rec.Document); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.IsRecording() {
		return fmt.Errorf("cannot play back while recording")
	}
	if mode == "" {
		mode = domain.PlaybackModeOnce
	}
	if err := s.player.Play(tl, mode, loopCount); err != nil {
		return err
	}
	if speed > 0 {
		s.player.SetSpeed(speed)
	}
	return nil
}

// PlaybackPause freezes playback.
func (s *Service) PlaybackPause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.player.IsPlaying() {
		return fmt.Errorf("playback is not running")
	}
	s.player.Pause()
	return nil
}

// PlaybackResume continues a paused playback.
func (s *Service) PlaybackResume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player.State() != domain.PlaybackStatePaused {
		return fmt.Errorf("playback is not paused")
	}
	s.player.Resume()
	return nil
}

// PlaybackStop ends playback and the command it may have left running.
func (s *Service) PlaybackStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Stop()
	s.drv.StopCurrentCommand()
}

// PlaybackSeek jumps the playback clock.
func (s *Service) PlaybackSeek(t float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.SeekToTime(t)
}

// PlaybackSetSpeed changes the playback speed multiplier.
func (s *Service) PlaybackSetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.SetSpeed(speed)
}

// PlaybackStatus reports the playback position.
type PlaybackStatus struct {
	State          domain.PlaybackState `json:"state"`
	Mode           domain.PlaybackMode  `json:"mode"`
	CurrentTime    float64              `json:"current_time"`
	Speed          float64              `json:"speed"`
	Progress       float64              `json:"progress"`
	LoopsCompleted int                  `json:"loops_completed"`
}

// QueryPlayback returns the playback snapshot.
func (s *Service) QueryPlayback() PlaybackStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PlaybackStatus{
		State:          s.player.State(),
		Mode:           s.player.Mode(),
		CurrentTime:    s.player.CurrentTime(),
		Speed:          s.player.Speed(),
		Progress:       s.player.Progress(),
		LoopsCompleted: s.player.LoopsCompleted(),
	}
}
