package session

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/rig"
)

// Frame is one sampled step of a recorded motion.
type Frame struct {
	Time     float64                 `yaml:"t"`
	Root     [3]float32              `yaml:"root"`
	Joints   map[rig.Role][3]float32 `yaml:"joints,omitempty"`
	Channels map[string]float32      `yaml:"channels,omitempty"`
}

// Trace is a headless recording of one motion run from start to completion.
// Joint values are local Euler rotations in radians.
type Trace struct {
	Motion   motion.Key `yaml:"motion"`
	FPS      int        `yaml:"fps"`
	Duration float64    `yaml:"duration"`
	Frames   []Frame    `yaml:"frames"`
}

// maxTraceSeconds bounds a recording in case a motion never reports done.
const maxTraceSeconds = 60

// Record plays key from time zero and samples the rig every 1/fps seconds
// until the motion completes. The rest pose is restored afterwards.
func (s *Session) Record(key motion.Key, fps int) (*Trace, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", fps)
	}
	if s.root == nil {
		return nil, ErrNoModel
	}
	if _, ok := motion.Lookup(key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMotion, key)
	}
	if !s.player.Available(key) {
		return nil, fmt.Errorf("%w: %s", ErrMotionNotUsable, key)
	}
	s.StopClip()
	if !s.player.PlayAt(key, 0) {
		return nil, fmt.Errorf("%w: %s", ErrMotionNotUsable, key)
	}

	tr := &Trace{Motion: key, FPS: fps}
	dt := 1 / float64(fps)
	roles := s.rig.Tracked()
	chans := s.rig.Channels()

	for i := 0; s.player.Playing(); i++ {
		t := float64(i) * dt
		if t > maxTraceSeconds {
			s.player.Stop()
			return nil, fmt.Errorf("motion %s still running after %ds", key, maxTraceSeconds)
		}
		s.player.Update(t, dt)
		if !s.player.Playing() {
			tr.Duration = t
			break
		}
		tr.Frames = append(tr.Frames, s.sample(t, roles, chans))
	}

	s.log.Debug("trace recorded",
		zap.String("motion", string(key)),
		zap.Int("frames", len(tr.Frames)),
		zap.Float64("duration", tr.Duration))
	return tr, nil
}

func (s *Session) sample(t float64, roles []rig.Role, chans []rig.Channel) Frame {
	f := Frame{Time: t}
	p := s.root.Position
	f.Root = [3]float32{p.X, p.Y, p.Z}

	if len(roles) > 0 {
		f.Joints = make(map[rig.Role][3]float32, len(roles))
		for _, role := range roles {
			r := s.rig.Joint(role).Node().Rotation
			f.Joints[role] = [3]float32{r.X, r.Y, r.Z}
		}
	}
	if len(chans) > 0 {
		f.Channels = make(map[string]float32, len(chans))
		for _, ch := range chans {
			f.Channels[ch.Name()] = s.rig.Value(ch)
		}
	}
	return f
}

// WriteYAML encodes the trace.
func (tr *Trace) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tr); err != nil {
		return fmt.Errorf("encoding trace: %w", err)
	}
	return enc.Close()
}
