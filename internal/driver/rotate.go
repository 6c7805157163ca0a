package driver

import (
	"fmt"

	"github.com/xiaot623/autopilot/internal/domain"
)

// RotateCommand turns the actor towards a target orientation until the
// angular difference (larger of yaw and pitch deltas) is within the
// acceptance angle.
type RotateCommand struct {
	base
	Target domain.Rotator
	Params domain.RotateParams
}

// NewRotateCommand builds a rotate command with default parameters.
func NewRotateCommand(target domain.Rotator, rotationSpeed float64) *RotateCommand {
	params := domain.DefaultRotateParams()
	if rotationSpeed > 0 {
		params.RotationSpeed = rotationSpeed
	}
	return &RotateCommand{Target: target, Params: params}
}

func (c *RotateCommand) Execute() bool {
	if c.ctx == nil || c.ctx.Actuator == nil {
		c.fail("no movement component available")
		return false
	}
	if !c.ctx.Actuator.RotateTowards(c.Target, c.Params) {
		c.fail("rotation request rejected")
		return false
	}

	c.start("rotating to target")
	return true
}

func (c *RotateCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt

	if c.Params.Timeout > 0 && c.elapsed > c.Params.Timeout {
		c.fail(fmt.Sprintf("rotation timed out after %.1f seconds", c.elapsed))
		return
	}

	if domain.AngularDelta(c.ctx.Actuator.Rotation(), c.Target) <= c.Params.AcceptanceAngle {
		c.complete(true, fmt.Sprintf("reached target rotation in %.2f seconds", c.elapsed))
		return
	}

	c.ctx.Actuator.RotateTowards(c.Target, c.Params)
}

func (c *RotateCommand) Description() string {
	return fmt.Sprintf("Rotate to (pitch %.1f, yaw %.1f) at %.1f deg/s",
		c.Target.Pitch, c.Target.Yaw, c.Params.RotationSpeed)
}
