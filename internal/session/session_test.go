package session

import (
	"bytes"
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/formats"
	"github.com/Faultbox/rigscope/pkg/scene"
)

func newSession(normalize bool) *Session {
	cfg := config.ModelConfig{Normalize: normalize, FitSize: 1.6, FitPadding: 1.3}
	return New(cfg, nil, motion.WithSeed(7))
}

func TestEmptySession(t *testing.T) {
	s := newSession(true)
	if s.Root() != nil || s.Model() != nil {
		t.Fatal("new session should be empty")
	}
	if _, ok := s.Bounds(); ok {
		t.Error("empty session should have no bounds")
	}
	if err := s.Play(motion.Wave); !errors.Is(err, ErrNoModel) {
		t.Errorf("Play error = %v, want ErrNoModel", err)
	}
	if _, ok := s.SelectedChannel(); ok {
		t.Error("no channels expected without a model")
	}
}

func TestLoadDemoNormalizes(t *testing.T) {
	s := newSession(true)
	s.LoadDemo()

	if s.Model().Path != DemoPath {
		t.Errorf("path = %q", s.Model().Path)
	}
	if s.Root() == s.Model().Root {
		t.Fatal("normalized session should hold the pivot, not the model root")
	}
	b, ok := s.Bounds()
	if !ok {
		t.Fatal("demo should have bounds")
	}
	size := b.Size()
	largest := max(size.X, size.Y, size.Z)
	if gomath.Abs(float64(largest)-1.6) > 1e-4 {
		t.Errorf("largest extent = %f, want 1.6", largest)
	}
	c := b.Center()
	if gomath.Abs(float64(c.X)) > 1e-4 || gomath.Abs(float64(c.Y)) > 1e-4 {
		t.Errorf("center = %+v, want origin", c)
	}

	if s.Report().BoneCount != 24 {
		t.Errorf("bones = %d", s.Report().BoneCount)
	}
	if !s.Rig().Has(rig.Head) {
		t.Error("rig should resolve through the pivot")
	}
}

func TestLoadKeepsModelWithoutNormalize(t *testing.T) {
	s := newSession(false)
	s.LoadDemo()
	if s.Root() != s.Model().Root {
		t.Error("root should be the model root when normalization is off")
	}
}

func TestLoadFile(t *testing.T) {
	s := newSession(true)
	s.LoadDemo()
	demo := s.Model()

	if err := s.Load(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Fatal("missing file should fail")
	}
	if s.Model() != demo {
		t.Error("failed load should keep the current model")
	}

	path := filepath.Join(t.TempDir(), "tri.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Model().Format != formats.FormatOBJ {
		t.Errorf("format = %s", s.Model().Format)
	}
	if len(s.Rig().Tracked()) != 0 {
		t.Error("OBJ has no skeleton")
	}
	if err := s.Play(motion.Wave); !errors.Is(err, ErrMotionNotUsable) {
		t.Errorf("Play error = %v, want ErrMotionNotUsable", err)
	}
}

func TestAdoptResetsPlayer(t *testing.T) {
	s := newSession(false)
	s.LoadDemo()
	if err := s.Play(motion.Wave); err != nil {
		t.Fatal(err)
	}
	s.Update(0.5, 0.5)
	if !s.Player().Playing() {
		t.Fatal("wave should be playing")
	}

	s.LoadDemo()
	if s.Player().Playing() || s.Player().Base() != nil {
		t.Error("adopting a model should reset the player")
	}
}

func TestPlayErrors(t *testing.T) {
	s := newSession(false)
	s.LoadDemo()

	if err := s.Play("moonwalk"); !errors.Is(err, ErrUnknownMotion) {
		t.Errorf("error = %v, want ErrUnknownMotion", err)
	}
	if err := s.Play(motion.SmileSmirk); err != nil {
		t.Errorf("smileSmirk on demo: %v", err)
	}
}

func TestTrackedNodes(t *testing.T) {
	s := newSession(false)
	s.LoadDemo()
	nodes := s.TrackedNodes()
	if len(nodes) != len(s.Rig().Tracked()) {
		t.Errorf("tracked nodes = %d, roles = %d", len(nodes), len(s.Rig().Tracked()))
	}
	if !nodes[s.Root().Find("Head")] {
		t.Error("Head should be tracked")
	}
	if nodes[s.Root().Find("LeftFoot")] {
		t.Error("feet have no role")
	}
}

func TestMorphControls(t *testing.T) {
	s := newSession(false)
	s.LoadDemo()

	ch, ok := s.SelectedChannel()
	if !ok || ch.Name() != "eyeBlink" {
		t.Fatalf("first channel = %q", ch.Name())
	}

	tests := []struct {
		step int
		want string
	}{
		{1, "jawOpen"},
		{-2, "viseme_aa"},
		{1, "eyeBlink"},
		{len(scene.MannequinMorphs), "eyeBlink"},
	}
	for _, tt := range tests {
		ch, _ := s.SelectChannel(tt.step)
		if ch.Name() != tt.want {
			t.Errorf("SelectChannel(%d) = %q, want %q", tt.step, ch.Name(), tt.want)
		}
	}

	_, v, _ := s.NudgeChannel(0.7)
	if v != 0.7 {
		t.Errorf("nudge = %f", v)
	}
	_, v, _ = s.NudgeChannel(0.7)
	if v != 1 {
		t.Errorf("nudge should clamp to 1, got %f", v)
	}
	_, v, _ = s.NudgeChannel(-5)
	if v != 0 {
		t.Errorf("nudge should clamp to 0, got %f", v)
	}

	s.SetChannel(s.Rig().Channel("mouthSmile"), 0.4)
	if n := s.ClearFace(); n != len(scene.MannequinMorphs) {
		t.Errorf("cleared %d channels", n)
	}
	if s.Rig().Value(s.Rig().Channel("mouthSmile")) != 0 {
		t.Error("face should be neutral after ClearFace")
	}
}

func TestRecord(t *testing.T) {
	s := newSession(false)
	s.LoadDemo()
	arm := s.Root().Find("RightArm")
	rest := arm.Rotation

	tr, err := s.Record(motion.Wave, 30)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if tr.Motion != motion.Wave || tr.FPS != 30 {
		t.Errorf("trace header = %+v", tr)
	}
	if gomath.Abs(tr.Duration-2.5) > 1.0/30+1e-9 {
		t.Errorf("duration = %f, want about 2.5", tr.Duration)
	}
	if n := len(tr.Frames); n < 74 || n > 76 {
		t.Errorf("frames = %d, want about 75", n)
	}
	if tr.Frames[0].Time != 0 {
		t.Errorf("first frame at %f", tr.Frames[0].Time)
	}

	moved := false
	for _, f := range tr.Frames {
		if f.Joints[rig.RightUpperArm] != [3]float32{rest.X, rest.Y, rest.Z} {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("right upper arm never moved")
	}
	if s.Player().Playing() || arm.Rotation != rest {
		t.Error("recording should end idle with the rest pose restored")
	}

	var buf bytes.Buffer
	if err := tr.WriteYAML(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "motion: wave\nfps: 30\n") {
		t.Errorf("yaml header:\n%s", buf.String()[:min(80, buf.Len())])
	}
	var back Trace
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Frames) != len(tr.Frames) || back.Frames[3].Joints[rig.Head] != tr.Frames[3].Joints[rig.Head] {
		t.Error("trace did not survive a yaml round trip")
	}
}

func TestRecordErrors(t *testing.T) {
	s := newSession(false)
	if _, err := s.Record(motion.Wave, 30); !errors.Is(err, ErrNoModel) {
		t.Errorf("error = %v, want ErrNoModel", err)
	}
	s.LoadDemo()
	tests := []struct {
		name string
		key  motion.Key
		fps  int
		want error
	}{
		{"unknown", "moonwalk", 30, ErrUnknownMotion},
		{"zero fps", motion.Wave, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Record(tt.key, tt.fps)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
