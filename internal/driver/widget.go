package driver

import (
	"fmt"

	"github.com/xiaot623/autopilot/internal/domain"
)

const (
	defaultPollInterval = 0.1
	defaultClickTimeout = 5.0
)

// ClickWidgetCommand polls for a widget and issues a synthetic click,
// retrying every poll interval until the click lands or the timeout elapses.
// A widget that is not on screen yet, or not yet clickable, gets more chances.
type ClickWidgetCommand struct {
	base
	Query        domain.WidgetQuery
	Params       domain.ClickParams
	Timeout      float64
	PollInterval float64

	sinceLastPoll float64
}

// NewClickWidgetCommand builds a left-click command for a widget by name.
func NewClickWidgetCommand(widgetName string, params domain.ClickParams) *ClickWidgetCommand {
	if params.ClickCount <= 0 {
		params = domain.DefaultClickParams()
	}
	return &ClickWidgetCommand{
		Query:        domain.WidgetQueryByWidgetName(widgetName),
		Params:       params,
		Timeout:      defaultClickTimeout,
		PollInterval: defaultPollInterval,
	}
}

func (c *ClickWidgetCommand) Execute() bool {
	if c.ctx == nil || c.ctx.Widgets == nil {
		c.fail("no widget surface available")
		return false
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultClickTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}

	c.start("clicking widget")
	c.sinceLastPoll = 0
	c.tryClick()
	return true
}

func (c *ClickWidgetCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt
	c.sinceLastPoll += dt

	if c.elapsed >= c.Timeout {
		c.fail(fmt.Sprintf("timeout: could not click %s after %.2f seconds", c.Query.Describe(), c.elapsed))
		return
	}

	if c.sinceLastPoll < c.PollInterval {
		return
	}
	c.sinceLastPoll = 0
	c.tryClick()
}

func (c *ClickWidgetCommand) Description() string {
	return fmt.Sprintf("Click %s (%s x%d)", c.Query.Describe(), c.Params.ClickType, c.Params.ClickCount)
}

// tryClick attempts one find-and-click pass. The command stays running when
// the widget is missing or the click is rejected.
func (c *ClickWidgetCommand) tryClick() {
	info := c.ctx.Widgets.FindWidget(c.Query)
	if !info.IsValid() {
		return
	}
	if !c.ctx.Widgets.Click(info.Name, c.Params) {
		return
	}
	c.complete(true, fmt.Sprintf("clicked %s", info.Name))
}

// WaitForWidgetCommand polls the widget surface until a widget appears (or
// disappears), failing when the timeout elapses first.
type WaitForWidgetCommand struct {
	base
	Query         domain.WidgetQuery
	WaitForAppear bool
	Timeout       float64
	PollInterval  float64

	sinceLastPoll float64
}

// NewWaitForWidgetCommand waits for a widget by name to appear.
func NewWaitForWidgetCommand(widgetName string, timeout float64) *WaitForWidgetCommand {
	return &WaitForWidgetCommand{
		Query:         domain.WidgetQueryByWidgetName(widgetName),
		WaitForAppear: true,
		Timeout:       timeout,
		PollInterval:  defaultPollInterval,
	}
}

// NewWaitForWidgetToDisappearCommand waits for a widget by name to go away.
func NewWaitForWidgetToDisappearCommand(widgetName string, timeout float64) *WaitForWidgetCommand {
	cmd := NewWaitForWidgetCommand(widgetName, timeout)
	cmd.WaitForAppear = false
	return cmd
}

func (c *WaitForWidgetCommand) Execute() bool {
	if c.ctx == nil || c.ctx.Widgets == nil {
		c.fail("no widget surface available")
		return false
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}

	if c.WaitForAppear {
		c.start("waiting for widget to appear")
	} else {
		c.start("waiting for widget to disappear")
	}
	c.sinceLastPoll = 0

	// Check immediately so an already-satisfied condition completes without
	// waiting a poll interval.
	if c.conditionMet() {
		c.complete(true, c.successMessage())
	}
	return true
}

func (c *WaitForWidgetCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt
	c.sinceLastPoll += dt

	if c.elapsed >= c.Timeout {
		verb := "did not appear"
		if !c.WaitForAppear {
			verb = "did not disappear"
		}
		c.fail(fmt.Sprintf("timeout: %s %s after %.2f seconds", c.Query.Describe(), verb, c.elapsed))
		return
	}

	if c.sinceLastPoll < c.PollInterval {
		return
	}
	c.sinceLastPoll = 0

	if c.conditionMet() {
		c.complete(true, c.successMessage())
	}
}

func (c *WaitForWidgetCommand) Description() string {
	if c.WaitForAppear {
		return fmt.Sprintf("WaitForWidget (%s)", c.Query.Describe())
	}
	return fmt.Sprintf("WaitForWidgetToDisappear (%s)", c.Query.Describe())
}

func (c *WaitForWidgetCommand) conditionMet() bool {
	found := c.ctx.Widgets.FindWidget(c.Query).IsValid()
	if c.WaitForAppear {
		return found
	}
	return !found
}

func (c *WaitForWidgetCommand) successMessage() string {
	if c.WaitForAppear {
		return fmt.Sprintf("%s appeared", c.Query.Describe())
	}
	return fmt.Sprintf("%s disappeared", c.Query.Describe())
}

// ReadWidgetCommand polls for a widget and reports its text content in the
// result message.
type ReadWidgetCommand struct {
	base
	Query        domain.WidgetQuery
	Timeout      float64
	PollInterval float64

	sinceLastPoll float64

	// Text holds the widget text after a successful read.
	Text string
}

// NewReadWidgetCommand reads the text of a widget by name.
func NewReadWidgetCommand(widgetName string, timeout float64) *ReadWidgetCommand {
	return &ReadWidgetCommand{
		Query:        domain.WidgetQueryByWidgetName(widgetName),
		Timeout:      timeout,
		PollInterval: defaultPollInterval,
	}
}

func (c *ReadWidgetCommand) Execute() bool {
	if c.ctx == nil || c.ctx.Widgets == nil {
		c.fail("no widget surface available")
		return false
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}

	c.start("reading widget")
	c.sinceLastPoll = 0
	c.tryRead()
	return true
}

func (c *ReadWidgetCommand) Tick(dt float64) {
	if !c.running {
		return
	}
	c.elapsed += dt
	c.sinceLastPoll += dt

	if c.elapsed >= c.Timeout {
		c.fail(fmt.Sprintf("timeout: %s not found after %.2f seconds", c.Query.Describe(), c.elapsed))
		return
	}

	if c.sinceLastPoll < c.PollInterval {
		return
	}
	c.sinceLastPoll = 0
	c.tryRead()
}

func (c *ReadWidgetCommand) Description() string {
	return fmt.Sprintf("ReadWidget (%s)", c.Query.Describe())
}

func (c *ReadWidgetCommand) tryRead() {
	info := c.ctx.Widgets.FindWidget(c.Query)
	if !info.IsValid() {
		return
	}
	c.Text = info.Text
	c.complete(true, info.Text)
}
