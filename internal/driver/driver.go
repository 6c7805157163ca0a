package driver

import (
	"log"

	"github.com/xiaot623/autopilot/internal/domain"
)

// CompletionListener is notified exactly once when a command reaches a
// terminal state under the driver.
type CompletionListener func(result domain.CommandResult)

// Driver owns at most one active command for a driven actor. Starting a new
// command cancels the previous one first; a disabled driver rejects commands
// and stops the active one. Driver is driven by the cooperative tick loop and
// is not safe for concurrent use.
type Driver struct {
	ctx       *Context
	enabled   bool
	current   Command
	listeners []CompletionListener
}

// New creates an enabled driver bound to the given collaborator context.
func New(ctx *Context) *Driver {
	return &Driver{ctx: ctx, enabled: true}
}

// AddCompletionListener registers a callback for command completion.
func (d *Driver) AddCompletionListener(fn CompletionListener) {
	d.listeners = append(d.listeners, fn)
}

// ExecuteCommand cancels any active command, installs cmd and starts it.
// Returns false without state change when the driver is disabled or cmd is
// nil, and false (slot left empty) when the command fails to start; the
// terminal result is then available from cmd directly.
func (d *Driver) ExecuteCommand(cmd Command) bool {
	if !d.enabled {
		log.Printf("driver: cannot execute command, driver is disabled")
		return false
	}
	if cmd == nil {
		log.Printf("driver: invalid command")
		return false
	}

	d.StopCurrentCommand()

	cmd.Initialize(d.ctx)
	if !cmd.Execute() {
		log.Printf("driver: command failed to start: %s", cmd.Result().Message)
		return false
	}

	d.current = cmd
	return true
}

// Tick advances the active command. When the command finishes during the
// tick, the result is read, completion listeners fire once, and the slot is
// cleared within the same call.
func (d *Driver) Tick(dt float64) {
	if !d.enabled || d.current == nil {
		return
	}

	if d.current.IsRunning() {
		d.current.Tick(dt)
	}

	if !d.current.IsRunning() {
		result := d.current.Result()
		d.current = nil
		d.notify(result)
	}
}

// StopCurrentCommand cancels and clears the active command, notifying
// listeners with the cancelled result.
func (d *Driver) StopCurrentCommand() {
	if d.current == nil {
		return
	}
	d.current.Cancel()
	result := d.current.Result()
	d.current = nil
	d.notify(result)
}

// SetEnabled toggles the driver. Disabling stops the current command;
// re-enabling does not resume anything.
func (d *Driver) SetEnabled(enabled bool) {
	if d.enabled == enabled {
		return
	}
	d.enabled = enabled
	if !enabled {
		d.StopCurrentCommand()
	}
}

// IsEnabled reports whether the driver accepts commands.
func (d *Driver) IsEnabled() bool { return d.enabled }

// IsExecutingCommand reports whether a command is active.
func (d *Driver) IsExecutingCommand() bool { return d.current != nil }

// CurrentDescription returns the active command's description, or "" when idle.
func (d *Driver) CurrentDescription() string {
	if d.current == nil {
		return ""
	}
	return d.current.Description()
}

func (d *Driver) notify(result domain.CommandResult) {
	for _, fn := range d.listeners {
		fn(result)
	}
}
