package driver

import (
	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/navcache"
)

// Actuator is the host-environment collaborator that owns the driven actor's
// physical movement and input. Each call returns whether the request was
// accepted; the actual motion happens in the host's own update loop.
type Actuator interface {
	MoveTowards(target domain.Vector, params domain.MoveParams) bool
	RotateTowards(target domain.Rotator, params domain.RotateParams) bool
	PressInput(name string) bool
	SetAxis(name string, value float64) bool
	StopMovement()

	// Observable state of the driven actor.
	Position() domain.Vector
	Rotation() domain.Rotator
}

// WidgetSurface is the UI inspection and synthetic-click collaborator.
type WidgetSurface interface {
	FindWidget(query domain.WidgetQuery) domain.WidgetInfo
	Click(widgetName string, params domain.ClickParams) bool
}

// Context binds the external collaborators a command needs. Commands receive
// it once through Initialize before Execute.
type Context struct {
	Actuator Actuator
	Widgets  WidgetSurface

	// Nav and Finder back the cached reachability check move commands run
	// before starting. Both optional; without them no precheck happens.
	Nav    *navcache.Cache
	Finder navcache.PathFinder
}

// IsReachable runs a cached reachability query from the actor's position to
// the target. Returns true when no spatial querier is configured.
func (c *Context) IsReachable(target domain.Vector) bool {
	if c.Nav == nil || c.Finder == nil || c.Actuator == nil {
		return true
	}
	res := c.Nav.Query(c.Finder, c.Actuator.Position(), target)
	return res.Reachable
}
