package session

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/pkg/formats"
	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// ErrUnknownClip is returned for a clip index the model does not have.
var ErrUnknownClip = errors.New("unknown clip")

// Clip speed limits.
const (
	MinClipSpeed = 0.1
	MaxClipSpeed = 3.0
)

type nodeRest struct {
	node     *scene.Node
	position math.Vec3
	rotation math.Euler
	scale    math.Vec3
}

type clipPlayback struct {
	clip    *formats.Clip
	index   int
	time    float64
	running bool
	nodes   []nodeRest
	morphs  map[*scene.Mesh][]float32
}

// ClipStatus describes the clip player for display.
type ClipStatus struct {
	Index    int // -1 when no clip is selected
	Name     string
	Time     float64
	Duration float64
	Playing  bool
	Speed    float64
	Loop     bool
}

// PlayClip starts the clip at index from time zero. Any running motion is
// stopped first and its writes undone, and a clip already playing is
// replaced.
func (s *Session) PlayClip(index int) error {
	if s.root == nil {
		return ErrNoModel
	}
	if index < 0 || index >= len(s.model.Clips) {
		return fmt.Errorf("%w: %d", ErrUnknownClip, index)
	}
	s.player.Stop()
	s.StopClip()

	c := &s.model.Clips[index]
	pb := &clipPlayback{clip: c, index: index, running: true, morphs: make(map[*scene.Mesh][]float32)}
	for _, n := range c.Nodes() {
		pb.nodes = append(pb.nodes, nodeRest{node: n, position: n.Position, rotation: n.Rotation, scale: n.Scale})
	}
	for _, tr := range c.Tracks {
		if tr.Path != formats.TrackWeights {
			continue
		}
		tr.Node.Traverse(func(n *scene.Node) {
			if n.Mesh != nil && n.Mesh.HasMorphs() {
				if _, seen := pb.morphs[n.Mesh]; !seen {
					pb.morphs[n.Mesh] = append([]float32(nil), n.Mesh.Influences...)
				}
			}
		})
	}
	s.clip = pb
	c.Apply(0)

	s.log.Info("clip started",
		zap.String("clip", c.Name),
		zap.Float64("duration", c.Duration),
		zap.Int("tracks", len(c.Tracks)),
	)
	return nil
}

// StopClip stops the clip and puts back every transform and morph weight
// it wrote. It is a no-op when no clip is selected.
func (s *Session) StopClip() {
	pb := s.clip
	if pb == nil {
		return
	}
	s.clip = nil
	for _, r := range pb.nodes {
		r.node.Position = r.position
		r.node.Rotation = r.rotation
		r.node.Scale = r.scale
	}
	for mesh, w := range pb.morphs {
		copy(mesh.Influences, w)
	}
	s.log.Debug("clip stopped", zap.String("clip", pb.clip.Name), zap.Float64("t", pb.time))
}

// SetClipSpeed sets the playback rate, clamped to [MinClipSpeed, MaxClipSpeed].
func (s *Session) SetClipSpeed(speed float64) float64 {
	s.clipSpeed = gomath.Max(MinClipSpeed, gomath.Min(MaxClipSpeed, speed))
	return s.clipSpeed
}

// SetClipLoop selects whether clips wrap around at the end or hold the
// last frame.
func (s *Session) SetClipLoop(loop bool) {
	s.clipLoop = loop
}

// ClipStatus reports the current clip.
func (s *Session) ClipStatus() ClipStatus {
	st := ClipStatus{Index: -1, Speed: s.clipSpeed, Loop: s.clipLoop}
	if pb := s.clip; pb != nil {
		st.Index = pb.index
		st.Name = pb.clip.Name
		st.Time = pb.time
		st.Duration = pb.clip.Duration
		st.Playing = pb.running
	}
	return st
}

// advanceClip moves the clip forward by dt scaled by the speed. Without
// looping the clip holds its last frame once it reaches the end.
func (s *Session) advanceClip(dt float64) {
	pb := s.clip
	if pb == nil || !pb.running {
		return
	}
	pb.time += dt * s.clipSpeed
	if d := pb.clip.Duration; pb.time >= d {
		if s.clipLoop && d > 0 {
			pb.time = gomath.Mod(pb.time, d)
		} else {
			pb.time = d
			pb.running = false
			s.log.Debug("clip finished", zap.String("clip", pb.clip.Name))
		}
	}
	pb.clip.Apply(pb.time)
}
