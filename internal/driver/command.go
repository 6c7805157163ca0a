// Package driver implements the command lifecycle and the per-actor
// orchestrator that runs at most one command at a time.
package driver

import (
	"github.com/xiaot623/autopilot/internal/domain"
)

// Command is a single automation task with an explicit lifecycle:
// Initialize binds collaborators, Execute starts the work, Tick advances it
// every frame until a terminal state, Cancel aborts it. Commands never block;
// waiting is expressed by staying running across ticks.
type Command interface {
	Initialize(ctx *Context)
	Execute() bool
	Tick(dt float64)
	Cancel()
	IsRunning() bool
	Result() domain.CommandResult
	Description() string
}

// base carries the state shared by all commands.
type base struct {
	ctx     *Context
	running bool
	elapsed float64
	result  domain.CommandResult
}

func (b *base) Initialize(ctx *Context) { b.ctx = ctx }

func (b *base) IsRunning() bool { return b.running }

func (b *base) Result() domain.CommandResult { return b.result }

// start marks the command running and resets its clock.
func (b *base) start(message string) {
	b.running = true
	b.elapsed = 0
	b.result = domain.CommandResult{Status: domain.CommandStatusRunning, Message: message}
}

// complete transitions to Success or Failed with the elapsed time attached.
func (b *base) complete(success bool, message string) {
	b.running = false
	status := domain.CommandStatusFailed
	if success {
		status = domain.CommandStatusSuccess
	}
	b.result = domain.CommandResult{Status: status, Message: message, ElapsedTime: b.elapsed}
}

// fail records a terminal failure. Safe to call before start.
func (b *base) fail(message string) {
	b.complete(false, message)
}

// Cancel transitions to Cancelled. Safe to call at any point, including
// before Execute and after a terminal state (terminal states are absorbing).
func (b *base) Cancel() {
	if !b.running && b.result.Status != "" && b.result.Status != domain.CommandStatusRunning {
		return
	}
	b.running = false
	b.result = domain.CommandResult{
		Status:      domain.CommandStatusCancelled,
		Message:     "command cancelled",
		ElapsedTime: b.elapsed,
	}
}
