// Package motion plays short procedural motions against a rig.
//
// A motion is a function of time since start that writes joint rotations,
// joint positions and morph channel values relative to the pose captured
// when it began. The player owns at most one motion and restores the
// captured pose when that motion stops, completes or is replaced.
package motion

import (
	"math/rand"

	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/math"
)

// Motion is one running procedural motion.
type Motion interface {
	// Update writes the pose for local time t (seconds since start).
	// dt is the frame delta, only used by motions that converge toward a
	// target rather than evaluate a closed-form curve.
	Update(t, dt float64)

	// Done reports whether the motion has finished at local time t.
	Done(t float64) bool
}

// finite is embedded by every motion with a fixed duration.
type finite struct {
	duration float64
}

func (f finite) Done(t float64) bool {
	return t >= f.duration
}

func (f finite) progress(t float64) float64 {
	return math.Clamp01(t / f.duration)
}

// env is what a constructor sees: the rig, the rest pose captured at start
// and the random source.
type env struct {
	rig  *rig.Rig
	base *Pose
	rnd  *rand.Rand
}

// joint returns the first present joint among roles.
func (e *env) joint(roles ...rig.Role) rig.Joint {
	for _, role := range roles {
		if j := e.rig.Joint(role); j.Ok() {
			return j
		}
	}
	return rig.Joint{}
}

// channel returns the first present channel among names.
func (e *env) channel(names ...string) rig.Channel {
	for _, name := range names {
		if ch := e.rig.Channel(name); ch.Ok() {
			return ch
		}
	}
	return rig.Channel{}
}

// rotate sets j's rotation to its rest rotation plus offset.
func (e *env) rotate(j rig.Joint, offset math.Euler) {
	if !j.Ok() {
		return
	}
	j.Node().Rotation = e.base.RotationOf(j.Node()).Add(offset)
}

// translate sets j's position to its rest position plus offset.
func (e *env) translate(j rig.Joint, offset math.Vec3) {
	if !j.Ok() {
		return
	}
	j.Node().Position = e.base.PositionOf(j.Node()).Add(offset)
}

func (e *env) set(ch rig.Channel, v float64) {
	e.rig.SetValue(ch, float32(v))
}

// uniform returns a value in [lo, hi).
func (e *env) uniform(lo, hi float64) float64 {
	return lo + e.rnd.Float64()*(hi-lo)
}
