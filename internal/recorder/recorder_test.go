package recorder

import (
	"testing"

	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/sim"
)

func newTestRecorder(opts Options) (*Recorder, *sim.Actor) {
	actor := sim.NewActor()
	return New(actor, opts), actor
}

func TestStartResetsStateAndStampsMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.MapName = "TestLevel"
	r, _ := newTestRecorder(opts)

	if err := r.Start("run-01"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !r.IsRecording() {
		t.Fatalf("recorder should be recording")
	}
	if err := r.Start("again"); err == nil {
		t.Fatalf("second start must be rejected")
	}

	md := r.Timeline().Metadata()
	if md.RecordingName != "run-01" || md.MapName != "TestLevel" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
}

func TestMovementSampledOnlyPastThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.RecordRotation = false
	r, actor := newTestRecorder(opts)
	r.Start("move")

	// Below the threshold of 10 units: no sample.
	actor.Pos = domain.Vector{X: 5}
	r.Tick(0.1)
	if n := r.Timeline().ActionCount(); n != 0 {
		t.Fatalf("sub-threshold movement recorded: %d actions", n)
	}

	// Past the threshold: one sample.
	actor.Pos = domain.Vector{X: 20}
	r.Tick(0.1)
	if n := r.Timeline().ActionCount(); n != 1 {
		t.Fatalf("expected one movement sample, got %d", n)
	}

	// Holding still records nothing further.
	r.Tick(0.1)
	r.Tick(0.1)
	if n := r.Timeline().ActionCount(); n != 1 {
		t.Fatalf("stationary actor must not accumulate samples, got %d", n)
	}
}

func TestSamplingRespectsInterval(t *testing.T) {
	opts := DefaultOptions()
	opts.RecordRotation = false
	r, actor := newTestRecorder(opts)
	r.Start("interval")

	// Each small tick moves far past the threshold, but samples may only
	// land once per 0.1s interval.
	for i := 0; i < 10; i++ {
		actor.Pos.X += 100
		r.Tick(0.02)
	}
	if n := r.Timeline().ActionCount(); n != 2 {
		t.Fatalf("expected 2 interval samples over 0.2s, got %d", n)
	}
}

func TestRotationSampledByLargestAxisDelta(t *testing.T) {
	opts := DefaultOptions()
	opts.RecordMovement = false
	r, actor := newTestRecorder(opts)
	r.Start("rot")

	// 0.5 degrees of yaw stays under the 1 degree threshold.
	actor.Rot.Yaw = 0.5
	r.Tick(0.1)
	if n := r.Timeline().ActionCount(); n != 0 {
		t.Fatalf("sub-threshold rotation recorded: %d actions", n)
	}

	// Pitch alone crossing the threshold is enough.
	actor.Rot.Pitch = 2.0
	r.Tick(0.1)
	if n := r.Timeline().ActionCount(); n != 1 {
		t.Fatalf("expected one rotation sample, got %d", n)
	}
}

func TestExplicitRecordsBypassInterval(t *testing.T) {
	r, _ := newTestRecorder(DefaultOptions())
	r.Start("input")

	r.Tick(0.01)
	if err := r.RecordInputAction("Jump", 1.0, 0); err != nil {
		t.Fatalf("record input failed: %v", err)
	}
	if err := r.RecordUIClickAction("StartButton", domain.DefaultClickParams()); err != nil {
		t.Fatalf("record click failed: %v", err)
	}
	if err := r.RecordCustomAction(domain.ActionTypeCustom, "Checkpoint", `{"id":3}`); err != nil {
		t.Fatalf("record custom failed: %v", err)
	}

	if n := r.Timeline().ActionCount(); n != 3 {
		t.Fatalf("expected 3 explicit actions, got %d", n)
	}

	r.Stop()
	if err := r.RecordInputAction("Jump", 1.0, 0); err == nil {
		t.Fatalf("explicit record after stop must fail")
	}
}

func TestPauseFreezesSampling(t *testing.T) {
	opts := DefaultOptions()
	opts.RecordRotation = false
	r, actor := newTestRecorder(opts)
	r.Start("pause")
	r.Pause()

	actor.Pos = domain.Vector{X: 500}
	r.Tick(0.2)
	if n := r.Timeline().ActionCount(); n != 0 {
		t.Fatalf("paused recorder captured %d actions", n)
	}
	if got := r.RecordingTime(); got != 0 {
		t.Fatalf("paused recorder advanced the clock to %v", got)
	}

	r.Resume()
	r.Tick(0.1)
	if n := r.Timeline().ActionCount(); n != 1 {
		t.Fatalf("resumed recorder should sample, got %d actions", n)
	}
}

func TestMaxDurationAutoStops(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDuration = 0.3
	r, _ := newTestRecorder(opts)
	r.Start("bounded")

	for i := 0; i < 5; i++ {
		r.Tick(0.1)
	}
	if r.IsRecording() {
		t.Fatalf("recorder must auto-stop at max duration")
	}
	if r.State() != domain.RecordingStateIdle {
		t.Fatalf("expected idle, got %s", r.State())
	}
}

func TestBufferTrimsOldestFirst(t *testing.T) {
	opts := DefaultOptions()
	opts.BufferSize = 3
	r, _ := newTestRecorder(opts)
	r.Start("trim")

	names := []string{"A", "B", "C", "D", "E"}
	for i, name := range names {
		r.Tick(0.1)
		if err := r.RecordInputAction(name, float64(i), 0); err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}

	actions := r.Timeline().Actions()
	if len(actions) != 3 {
		t.Fatalf("expected buffer of 3, got %d", len(actions))
	}
	for i, want := range []string{"C", "D", "E"} {
		if actions[i].ActionName != want {
			t.Fatalf("action %d: want %s, got %s", i, want, actions[i].ActionName)
		}
	}
}

func TestDetachHandsOffTimeline(t *testing.T) {
	r, _ := newTestRecorder(DefaultOptions())
	r.Start("detach")

	if _, err := r.Detach(); err == nil {
		t.Fatalf("detach while recording must fail")
	}

	r.Tick(0.1)
	r.RecordInputAction("Jump", 1.0, 0)
	r.Stop()

	tl, err := r.Detach()
	if err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if tl.ActionCount() != 1 {
		t.Fatalf("detached timeline lost actions: %d", tl.ActionCount())
	}
	if !r.Timeline().IsEmpty() {
		t.Fatalf("recorder must hold a fresh timeline after detach")
	}
}
