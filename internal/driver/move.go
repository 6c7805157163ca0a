package driver

import (
	"fmt"

	"github.com/xiaot623/autopilot/internal/domain"
)

// MoveCommand drives the actor towards a target position until it is within
// the acceptance radius.
type MoveCommand struct {
	base
	Target domain.Vector
	Params domain.MoveParams
}

// NewMoveCommand builds a move command with default parameters.
func NewMoveCommand(target domain.Vector, acceptanceRadius float64) *MoveCommand {
	params := domain.DefaultMoveParams()
	if acceptanceRadius > 0 {
		params.AcceptanceRadius = acceptanceRadius
	}
	return &MoveCommand{Target: target, Params: params}
}

func (c *MoveCommand) Execute() bool {
	if c.ctx == nil || c.ctx.Actuator == nil {
		c.fail("no movement component available")
		return false
	}
	if !c.ctx.IsReachable(c.Target) {
		c.fail(fmt.Sprintf("target (%.1f, %.1f, %.1f) is not reachable", c.Target.X, c.Target.Y, c.Target.Z))
		return false
	}
	if !c.ctx.Actuator.MoveTowards(c.Target, c.Params) {
		c.fail("movement request rejected")
		return false
	}

	c.start("moving to target")
	return true
}

func (c *MoveCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt

	if c.Params.Timeout > 0 && c.elapsed > c.Params.Timeout {
		c.fail(fmt.Sprintf("movement timed out after %.1f seconds", c.elapsed))
		c.ctx.Actuator.StopMovement()
		return
	}

	if domain.Dist(c.ctx.Actuator.Position(), c.Target) <= c.Params.AcceptanceRadius {
		c.complete(true, fmt.Sprintf("reached target in %.2f seconds", c.elapsed))
		return
	}

	// Direct mode re-steers every frame; navigation mode trusts the host's
	// path following started at Execute.
	if c.Params.MovementMode == domain.MovementModeDirect {
		c.ctx.Actuator.MoveTowards(c.Target, c.Params)
	}
}

func (c *MoveCommand) Cancel() {
	wasRunning := c.running
	c.base.Cancel()
	if wasRunning && c.ctx != nil && c.ctx.Actuator != nil {
		c.ctx.Actuator.StopMovement()
	}
}

func (c *MoveCommand) Description() string {
	return fmt.Sprintf("Move to (%.1f, %.1f, %.1f) radius %.1f",
		c.Target.X, c.Target.Y, c.Target.Z, c.Params.AcceptanceRadius)
}
