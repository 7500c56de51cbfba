// Package rig resolves canonical joints and morph channels against a scene
// tree that the rig does not own.
//
// Every lookup degrades to an absent Joint or Channel instead of an error, so
// one motion library runs across partial or differently named rigs. Callers
// branch on Ok() before touching anything.
package rig

import (
	"strings"

	"github.com/Faultbox/rigscope/pkg/scene"
)

// Joint is an optional reference to a skeleton node.
type Joint struct {
	node *scene.Node
}

// Ok reports whether the joint was found.
func (j Joint) Ok() bool {
	return j.node != nil
}

// Node returns the underlying node, nil when absent.
func (j Joint) Node() *scene.Node {
	return j.node
}

// Channel is an optional reference to one morph influence slot.
type Channel struct {
	name  string
	mesh  *scene.Mesh
	index int
}

// Ok reports whether the channel was found.
func (c Channel) Ok() bool {
	return c.mesh != nil
}

// Name returns the channel's name on the rig.
func (c Channel) Name() string {
	return c.name
}

// MatchMode selects how ZeroChannels compares names against prefixes.
type MatchMode int

const (
	MatchPrefix   MatchMode = iota // name starts with the prefix
	MatchContains                  // name contains the prefix
)

// Rig resolves joints and channels against the current root.
//
// Joint lookups are cached per root, channel lookups are a flat map built
// on first use. Both caches are dropped when the root getter starts
// returning a different node, or explicitly through Invalidate.
type Rig struct {
	getRoot func() *scene.Node

	cachedRoot *scene.Node
	joints     map[Role]Joint
	channels   map[string]Channel
	order      []string // channel names in discovery order
}

// New creates a rig accessor over the given root getter.
func New(getRoot func() *scene.Node) *Rig {
	return &Rig{getRoot: getRoot}
}

// Root returns the current root, nil when nothing is loaded.
func (r *Rig) Root() *scene.Node {
	if r.getRoot == nil {
		return nil
	}
	return r.getRoot()
}

// RootJoint wraps the current root so motions can move the whole model
// through the same optional type as any other joint.
func (r *Rig) RootJoint() Joint {
	return Joint{node: r.Root()}
}

// Invalidate drops the joint and channel caches.
func (r *Rig) Invalidate() {
	r.cachedRoot = nil
	r.joints = nil
	r.channels = nil
	r.order = nil
}

// sync returns the current root and drops caches built for another root.
func (r *Rig) sync() *scene.Node {
	root := r.Root()
	if root != r.cachedRoot {
		r.Invalidate()
		r.cachedRoot = root
	}
	return root
}

// Joint resolves a canonical role. The first node in traversal order that
// matches the highest-priority variant wins.
func (r *Rig) Joint(role Role) Joint {
	root := r.sync()
	if root == nil {
		return Joint{}
	}
	if j, ok := r.joints[role]; ok {
		return j
	}

	j := Joint{node: findJoint(root, roleAliases[role])}
	if r.joints == nil {
		r.joints = make(map[Role]Joint)
	}
	r.joints[role] = j
	return j
}

// Has reports whether role resolves on the current rig.
func (r *Rig) Has(role Role) bool {
	return r.Joint(role).Ok()
}

// Tracked returns every role that resolves, in Roles order.
func (r *Rig) Tracked() []Role {
	var out []Role
	for _, role := range Roles() {
		if r.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

func findJoint(root *scene.Node, a aliases) *scene.Node {
	for _, want := range a.Exact {
		want = strings.ToLower(want)
		if n := firstBone(root, func(name string) bool {
			return name == want || stripNamespace(name) == want
		}); n != nil {
			return n
		}
	}
	for _, sub := range a.Contains {
		if n := firstBone(root, func(name string) bool {
			return strings.Contains(name, sub)
		}); n != nil {
			return n
		}
	}
	for _, suffix := range a.Suffix {
		if n := firstBone(root, func(name string) bool {
			return strings.HasSuffix(name, suffix)
		}); n != nil {
			return n
		}
	}
	return nil
}

// firstBone returns the first bone in traversal order whose lowercased name
// satisfies match.
func firstBone(root *scene.Node, match func(lower string) bool) *scene.Node {
	var hit *scene.Node
	root.Traverse(func(n *scene.Node) {
		if hit != nil || !n.IsBone() {
			return
		}
		if match(strings.ToLower(n.Name)) {
			hit = n
		}
	})
	return hit
}

// stripNamespace removes a "mixamorig:" or "Armature|" style prefix.
func stripNamespace(name string) string {
	if i := strings.LastIndexAny(name, ":|"); i >= 0 {
		return name[i+1:]
	}
	return name
}
