// Package sim provides in-process stand-ins for the host environment: a
// kinematic driven actor, a widget surface and a straight-line spatial
// querier. The binary composes them so the autopilot is drivable end to end
// without a host engine; tests use them the same way.
package sim

import (
	"math"

	"github.com/xiaot623/autopilot/internal/domain"
	"github.com/xiaot623/autopilot/internal/navcache"
)

// Actor is a kinematic model of the driven entity. Movement and rotation
// requests set targets; Step advances towards them. Actor implements
// driver.Actuator.
type Actor struct {
	Pos domain.Vector
	Rot domain.Rotator

	// MoveSpeed is the base linear speed in units per second.
	MoveSpeed float64

	moveTarget   *domain.Vector
	moveParams   domain.MoveParams
	rotateTarget *domain.Rotator
	rotateParams domain.RotateParams

	axes    map[string]float64
	presses []string
}

// NewActor creates an actor at the origin with a default speed.
func NewActor() *Actor {
	return &Actor{MoveSpeed: 300.0, axes: make(map[string]float64)}
}

// MoveTowards accepts a movement request towards target.
func (a *Actor) MoveTowards(target domain.Vector, params domain.MoveParams) bool {
	t := target
	a.moveTarget = &t
	a.moveParams = params
	return true
}

// RotateTowards accepts a rotation request towards target.
func (a *Actor) RotateTowards(target domain.Rotator, params domain.RotateParams) bool {
	t := target
	a.rotateTarget = &t
	a.rotateParams = params
	return true
}

// PressInput records a synthetic input press.
func (a *Actor) PressInput(name string) bool {
	if name == "" {
		return false
	}
	a.presses = append(a.presses, name)
	return true
}

// SetAxis records a synthetic axis value.
func (a *Actor) SetAxis(name string, value float64) bool {
	if name == "" {
		return false
	}
	a.axes[name] = value
	return true
}

// StopMovement drops the current movement target.
func (a *Actor) StopMovement() {
	a.moveTarget = nil
}

// Position returns the actor's position.
func (a *Actor) Position() domain.Vector { return a.Pos }

// Rotation returns the actor's orientation.
func (a *Actor) Rotation() domain.Rotator { return a.Rot }

// Presses returns the input presses recorded so far.
func (a *Actor) Presses() []string { return a.presses }

// Axis returns the last value set for an axis.
func (a *Actor) Axis(name string) float64 { return a.axes[name] }

// Step advances the actor by dt seconds towards its current targets.
func (a *Actor) Step(dt float64) {
	if a.moveTarget != nil {
		speed := a.MoveSpeed
		if a.moveParams.SpeedMultiplier > 0 {
			speed *= a.moveParams.SpeedMultiplier
		}
		if a.moveParams.ShouldSprint {
			speed *= 1.5
		}

		delta := a.moveTarget.Sub(a.Pos)
		stepLen := speed * dt
		if delta.Length() <= stepLen {
			a.Pos = *a.moveTarget
			a.moveTarget = nil
		} else {
			a.Pos = a.Pos.Add(delta.Normalized().Scale(stepLen))
		}
	}

	if a.rotateTarget != nil {
		speed := a.rotateParams.RotationSpeed
		if speed <= 0 {
			speed = 180.0
		}
		maxStep := speed * dt

		a.Rot.Yaw = stepAngle(a.Rot.Yaw, a.rotateTarget.Yaw, maxStep)
		a.Rot.Pitch = stepAngle(a.Rot.Pitch, a.rotateTarget.Pitch, maxStep)
		a.Rot.Roll = stepAngle(a.Rot.Roll, a.rotateTarget.Roll, maxStep)

		if domain.AngularDelta(a.Rot, *a.rotateTarget) == 0 {
			a.rotateTarget = nil
		}
	}
}

// stepAngle moves current towards target by at most maxStep degrees along
// the shortest arc.
func stepAngle(current, target, maxStep float64) float64 {
	diff := domain.NormalizeAngle(target - current)
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return current + maxStep
	}
	return current - maxStep
}

// GridQuerier is a straight-line path finder with rectangular blocked
// regions. It implements navcache.PathFinder.
type GridQuerier struct {
	blocked []region
}

type region struct {
	min, max domain.Vector
}

// NewGridQuerier creates a querier with no blocked regions.
func NewGridQuerier() *GridQuerier { return &GridQuerier{} }

// Block marks the axis-aligned box between min and max as unreachable.
func (g *GridQuerier) Block(min, max domain.Vector) {
	g.blocked = append(g.blocked, region{min: min, max: max})
}

// FindPath reports straight-line reachability and length. A destination
// inside a blocked region is unreachable.
func (g *GridQuerier) FindPath(from, to domain.Vector) navcache.PathResult {
	for _, r := range g.blocked {
		if to.X >= r.min.X && to.X <= r.max.X &&
			to.Y >= r.min.Y && to.Y <= r.max.Y &&
			to.Z >= r.min.Z && to.Z <= r.max.Z {
			return navcache.PathResult{}
		}
	}
	return navcache.PathResult{Reachable: true, PathLength: domain.Dist(from, to)}
}
