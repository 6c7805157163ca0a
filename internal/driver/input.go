package driver

import (
	"fmt"

	"github.com/xiaot623/autopilot/internal/domain"
)

// InputCommand injects a synthetic input press or axis value. With a zero
// duration the press completes immediately; with a positive duration the
// input is held and released when the duration elapses.
type InputCommand struct {
	base
	Params domain.InputParams
	Axis   bool
}

// NewInputCommand builds a press command for a named input action.
func NewInputCommand(actionName string, value, duration float64) *InputCommand {
	return &InputCommand{Params: domain.InputParams{
		ActionName: actionName,
		Value:      value,
		Duration:   duration,
	}}
}

// NewAxisCommand builds an axis command holding value for duration seconds.
func NewAxisCommand(actionName string, value, duration float64) *InputCommand {
	cmd := NewInputCommand(actionName, value, duration)
	cmd.Axis = true
	return cmd
}

func (c *InputCommand) Execute() bool {
	if c.ctx == nil || c.ctx.Actuator == nil {
		c.fail("no input component available")
		return false
	}
	if c.Params.ActionName == "" {
		c.fail("input action name is required")
		return false
	}

	var accepted bool
	if c.Axis {
		accepted = c.ctx.Actuator.SetAxis(c.Params.ActionName, c.Params.Value)
	} else {
		accepted = c.ctx.Actuator.PressInput(c.Params.ActionName)
	}
	if !accepted {
		c.fail(fmt.Sprintf("input %q rejected", c.Params.ActionName))
		return false
	}

	c.start("holding input")
	c.elapsed = 0
	if c.Params.Duration <= 0 {
		c.complete(true, fmt.Sprintf("pressed %q", c.Params.ActionName))
	}
	return true
}

func (c *InputCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt

	if c.elapsed >= c.Params.Duration {
		if c.Axis {
			c.ctx.Actuator.SetAxis(c.Params.ActionName, 0)
		}
		c.complete(true, fmt.Sprintf("held %q for %.2f seconds", c.Params.ActionName, c.elapsed))
	}
}

func (c *InputCommand) Cancel() {
	wasRunning := c.running
	c.base.Cancel()
	if wasRunning && c.Axis && c.ctx != nil && c.ctx.Actuator != nil {
		c.ctx.Actuator.SetAxis(c.Params.ActionName, 0)
	}
}

func (c *InputCommand) Description() string {
	kind := "Press"
	if c.Axis {
		kind = "Axis"
	}
	return fmt.Sprintf("%s %s (value %.2f, duration %.2f)", kind, c.Params.ActionName, c.Params.Value, c.Params.Duration)
}
