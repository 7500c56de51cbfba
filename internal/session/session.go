// Package session owns the currently loaded model together with the rig
// accessor and motion player bound to it. The viewers and rigtool drive
// everything through a Session.
package session

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/inspect"
	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/formats"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// Session errors.
var (
	ErrNoModel         = errors.New("no model loaded")
	ErrUnknownMotion   = errors.New("unknown motion")
	ErrMotionNotUsable = errors.New("motion not available on this rig")
)

// DemoPath is the Path of the built-in mannequin model.
const DemoPath = "(demo mannequin)"

// Session holds one model at a time. The rig reads the root through a
// getter, so swapping models never rebuilds the rig or the player.
type Session struct {
	cfg config.ModelConfig
	log *zap.Logger

	model  *formats.Model
	root   *scene.Node // model root, or its normalizing pivot
	report inspect.Report

	rig    *rig.Rig
	player *motion.Player

	selected int // index into rig.Channels() for manual morph control

	clip      *clipPlayback
	clipSpeed float64
	clipLoop  bool
}

// New creates an empty session. opts are passed to the motion player.
func New(cfg config.ModelConfig, log *zap.Logger, opts ...motion.Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{cfg: cfg, log: log, clipSpeed: 1, clipLoop: true}
	s.rig = rig.New(func() *scene.Node { return s.root })
	s.player = motion.NewPlayer(s.rig, append([]motion.Option{motion.WithLogger(log.Named("player"))}, opts...)...)
	return s
}

// Load reads a model file and adopts it. On error the current model stays.
func (s *Session) Load(path string) error {
	m, err := formats.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	s.Adopt(m)
	return nil
}

// LoadDemo adopts the built-in mannequin.
func (s *Session) LoadDemo() {
	s.Adopt(&formats.Model{Root: scene.Mannequin(), Path: DemoPath})
}

// Adopt makes m the current model. The player is reset without restoring
// the old pose, since the old tree is discarded.
func (s *Session) Adopt(m *formats.Model) {
	s.player.Reset()
	s.clip = nil

	s.model = m
	s.report = inspect.Inspect(m.Root, m.Clips)
	s.root = m.Root
	if s.cfg.Normalize {
		s.root = scene.Normalize(m.Root, s.cfg.FitSize)
	}
	s.rig.Invalidate()
	s.selected = 0

	s.log.Info("model loaded",
		zap.String("path", m.Path),
		zap.String("format", m.Format.String()),
		zap.Int("meshes", s.report.MeshCount),
		zap.Int("bones", s.report.BoneCount),
		zap.Int("morph_meshes", s.report.MorphMeshCount),
		zap.Int("clips", s.report.ClipCount),
	)
	for _, d := range motion.Catalog() {
		s.log.Debug("motion availability",
			zap.String("motion", string(d.Key)),
			zap.Bool("available", d.Available(s.rig)),
		)
	}
}

// Model returns the loaded model, nil before the first load.
func (s *Session) Model() *formats.Model {
	return s.model
}

// Root returns the node the rig and renderer work on.
func (s *Session) Root() *scene.Node {
	return s.root
}

// Report returns the inspection report of the loaded model.
func (s *Session) Report() inspect.Report {
	return s.report
}

// Rig returns the rig accessor.
func (s *Session) Rig() *rig.Rig {
	return s.rig
}

// Player returns the motion player.
func (s *Session) Player() *motion.Player {
	return s.player
}

// Bounds returns the world bounds of the current root.
func (s *Session) Bounds() (scene.Bounds, bool) {
	if s.root == nil {
		return scene.Bounds{}, false
	}
	return scene.WorldBounds(s.root)
}

// Update advances the motion player and the clip. Call once per frame.
func (s *Session) Update(globalTime, dt float64) {
	s.advanceClip(dt)
	s.player.Update(globalTime, dt)
}

// Play starts key, reporting why it could not. A playing clip is stopped
// and its writes undone before the motion captures its rest pose.
func (s *Session) Play(key motion.Key) error {
	if s.root == nil {
		return ErrNoModel
	}
	if _, ok := motion.Lookup(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMotion, key)
	}
	if !s.player.Available(key) {
		return fmt.Errorf("%w: %s", ErrMotionNotUsable, key)
	}
	s.StopClip()
	if !s.player.Play(key) {
		return fmt.Errorf("%w: %s", ErrMotionNotUsable, key)
	}
	return nil
}

// TrackedNodes returns the nodes behind every resolved role.
func (s *Session) TrackedNodes() map[*scene.Node]bool {
	out := make(map[*scene.Node]bool)
	for _, role := range s.rig.Tracked() {
		out[s.rig.Joint(role).Node()] = true
	}
	return out
}
