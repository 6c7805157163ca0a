package driver

import "fmt"

// WaitCommand runs for a fixed duration and then succeeds. Useful as a
// scripted pause between other commands.
type WaitCommand struct {
	base
	Duration float64
}

// NewWaitCommand builds a wait for the given number of seconds.
func NewWaitCommand(seconds float64) *WaitCommand {
	return &WaitCommand{Duration: seconds}
}

func (c *WaitCommand) Execute() bool {
	if c.Duration < 0 {
		c.fail("wait duration must not be negative")
		return false
	}
	c.start("waiting")
	if c.Duration == 0 {
		c.complete(true, "waited 0.00 seconds")
	}
	return true
}

func (c *WaitCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt
	if c.elapsed >= c.Duration {
		c.complete(true, fmt.Sprintf("waited %.2f seconds", c.elapsed))
	}
}

func (c *WaitCommand) Description() string {
	return fmt.Sprintf("Wait %.2f seconds", c.Duration)
}
