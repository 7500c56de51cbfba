package rig

import (
	"strings"

	"github.com/Faultbox/rigscope/pkg/scene"
)

// buildChannels walks the whole tree once and records the first occurrence
// of every channel name.
func (r *Rig) buildChannels(root *scene.Node) {
	r.channels = make(map[string]Channel)
	r.order = r.order[:0]
	root.Traverse(func(n *scene.Node) {
		if !n.IsMesh() || !n.Mesh.HasMorphs() {
			return
		}
		// Sorted so that discovery order inside one mesh is stable.
		for _, name := range n.Mesh.MorphChannelNames() {
			if _, seen := r.channels[name]; seen {
				continue
			}
			idx := n.Mesh.MorphNames[name]
			if idx < 0 || idx >= len(n.Mesh.Influences) {
				continue
			}
			r.channels[name] = Channel{name: name, mesh: n.Mesh, index: idx}
			r.order = append(r.order, name)
		}
	})
}

func (r *Rig) channelTable() map[string]Channel {
	root := r.sync()
	if root == nil {
		return nil
	}
	if r.channels == nil {
		r.buildChannels(root)
	}
	return r.channels
}

// Channel resolves a morph channel by exact name, falling back to the alias
// list when name is one of the canonical channel names.
func (r *Rig) Channel(name string) Channel {
	table := r.channelTable()
	if table == nil {
		return Channel{}
	}
	if ch, ok := table[name]; ok {
		return ch
	}
	for _, alias := range channelAliases[name] {
		if ch, ok := table[alias]; ok {
			return ch
		}
	}
	return Channel{}
}

// HasChannel reports whether name resolves on the current rig.
func (r *Rig) HasChannel(name string) bool {
	return r.Channel(name).Ok()
}

// Channels returns every cached channel in discovery order.
func (r *Rig) Channels() []Channel {
	table := r.channelTable()
	out := make([]Channel, 0, len(table))
	for _, name := range r.order {
		out = append(out, table[name])
	}
	return out
}

// Value reads a channel. Absent channels read as zero.
func (r *Rig) Value(ch Channel) float32 {
	if !ch.Ok() {
		return 0
	}
	return ch.mesh.Influences[ch.index]
}

// SetValue writes a channel without clamping. Absent channels are ignored.
func (r *Rig) SetValue(ch Channel, v float32) {
	if !ch.Ok() {
		return
	}
	ch.mesh.Influences[ch.index] = v
}

// ZeroChannels sets every cached channel whose name matches any of prefixes
// (case-insensitively, per mode) to zero and returns how many were reset.
func (r *Rig) ZeroChannels(prefixes []string, mode MatchMode) int {
	n := 0
	for _, ch := range r.Channels() {
		name := strings.ToLower(ch.name)
		for _, p := range prefixes {
			p = strings.ToLower(p)
			hit := strings.HasPrefix(name, p)
			if mode == MatchContains {
				hit = strings.Contains(name, p)
			}
			if hit {
				r.SetValue(ch, 0)
				n++
				break
			}
		}
	}
	return n
}
