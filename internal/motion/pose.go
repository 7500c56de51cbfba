package motion

import (
	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

type jointPose struct {
	node     *scene.Node
	position math.Vec3
	rotation math.Euler
}

type channelValue struct {
	ch    rig.Channel
	value float32
}

// Pose is the rest pose captured when a motion starts: the root transform,
// every tracked joint's local transform and every cached channel value.
// It is never modified after capture.
type Pose struct {
	root     *scene.Node
	joints   []jointPose
	byNode   map[*scene.Node]int
	channels []channelValue
}

// capturePose records the current transforms. Returns nil without a root.
func capturePose(r *rig.Rig) *Pose {
	root := r.Root()
	if root == nil {
		return nil
	}

	p := &Pose{
		root:   root,
		byNode: make(map[*scene.Node]int),
	}
	p.add(root)
	for _, role := range r.Tracked() {
		p.add(r.Joint(role).Node())
	}
	for _, ch := range r.Channels() {
		p.channels = append(p.channels, channelValue{ch: ch, value: r.Value(ch)})
	}
	return p
}

func (p *Pose) add(n *scene.Node) {
	if _, seen := p.byNode[n]; seen {
		return
	}
	p.byNode[n] = len(p.joints)
	p.joints = append(p.joints, jointPose{node: n, position: n.Position, rotation: n.Rotation})
}

// restore writes the captured values back. Nothing is written when the rig
// has since moved to another root.
func (p *Pose) restore(r *rig.Rig) {
	if p == nil || r.Root() != p.root {
		return
	}
	for _, j := range p.joints {
		j.node.Position = j.position
		j.node.Rotation = j.rotation
	}
	for _, c := range p.channels {
		r.SetValue(c.ch, c.value)
	}
}

// Root returns the root the pose was captured from.
func (p *Pose) Root() *scene.Node {
	return p.root
}

// RotationOf returns the captured rotation of n, zero when n was not tracked.
func (p *Pose) RotationOf(n *scene.Node) math.Euler {
	if i, ok := p.byNode[n]; ok {
		return p.joints[i].rotation
	}
	return math.Euler{}
}

// PositionOf returns the captured position of n, zero when n was not tracked.
func (p *Pose) PositionOf(n *scene.Node) math.Vec3 {
	if i, ok := p.byNode[n]; ok {
		return p.joints[i].position
	}
	return math.Vec3{}
}

// Tracks reports whether n is part of the pose.
func (p *Pose) Tracks(n *scene.Node) bool {
	_, ok := p.byNode[n]
	return ok
}

// ChannelValue returns the captured value of ch.
func (p *Pose) ChannelValue(ch rig.Channel) (float32, bool) {
	for _, c := range p.channels {
		if c.ch == ch {
			return c.value, true
		}
	}
	return 0, false
}
