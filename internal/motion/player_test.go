package motion

import (
	gomath "math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// frame is every transform and morph weight in a tree.
type frame struct {
	pos    map[*scene.Node]math.Vec3
	rot    map[*scene.Node]math.Euler
	morphs map[*scene.Mesh][]float32
}

func snapshot(root *scene.Node) frame {
	f := frame{
		pos:    make(map[*scene.Node]math.Vec3),
		rot:    make(map[*scene.Node]math.Euler),
		morphs: make(map[*scene.Mesh][]float32),
	}
	root.Traverse(func(n *scene.Node) {
		f.pos[n] = n.Position
		f.rot[n] = n.Rotation
		if n.Mesh != nil && n.Mesh.HasMorphs() {
			f.morphs[n.Mesh] = append([]float32(nil), n.Mesh.Influences...)
		}
	})
	return f
}

// posedMannequin returns a mannequin whose rest pose is not all zeros, so a
// restore that writes zeros instead of the captured pose is caught.
func posedMannequin() *scene.Node {
	root := scene.Mannequin()
	root.Position = math.Vec3{X: 1, Y: 0, Z: -2}
	root.Find("Head").Rotation = math.Euler{X: 0.1, Y: 0.2, Z: -0.05}
	root.Find("LeftEye").Rotation = math.Euler{Y: 0.04}
	root.Find("RightArm").Rotation = math.Euler{Z: -0.3}
	root.Find("Hips").Rotation = math.Euler{Y: 0.02}
	root.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			for i := range n.Mesh.Influences {
				n.Mesh.Influences[i] = 0.25
			}
		}
	})
	return root
}

func newTestPlayer(root *scene.Node, opts ...Option) *Player {
	r := rig.New(func() *scene.Node { return root })
	return NewPlayer(r, append([]Option{WithSeed(42)}, opts...)...)
}

func TestCatalogKeys(t *testing.T) {
	want := []Key{
		ListeningIdle, BreathingLoop, WeightShift, EyebrowRaise, RelaxedCalm,
		EyeDarts, RandomGaze, NodBlink, Blink, Wave, OpenArms, WeightTransfer,
		LeanIn, SpeechLoop, SmileSmirk,
	}
	if got := Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v", got)
	}
	for _, d := range Catalog() {
		if d.Duration <= 0 {
			t.Errorf("%s: non-positive duration", d.Key)
		}
		if d.requires == nil || d.build == nil {
			t.Errorf("%s: incomplete definition", d.Key)
		}
	}
	if _, ok := Lookup("moonwalk"); ok {
		t.Error("unknown key should not resolve")
	}
}

func TestPoseRestoredOnStop(t *testing.T) {
	for _, key := range Keys() {
		t.Run(string(key), func(t *testing.T) {
			root := posedMannequin()
			p := newTestPlayer(root)
			before := snapshot(root)
			def, _ := Lookup(key)

			if !p.PlayAt(key, 0) {
				t.Fatalf("play %s failed on mannequin", key)
			}
			for _, frac := range []float64{0.1, 0.3, 0.5, 0.9} {
				p.Update(def.Duration*frac, 0.016)
			}
			if !p.Playing() {
				t.Fatal("motion ended early")
			}
			p.Stop()

			if after := snapshot(root); !reflect.DeepEqual(before, after) {
				t.Error("pose not restored after Stop")
			}
		})
	}
}

func TestPoseRestoredOnCompletion(t *testing.T) {
	for _, key := range Keys() {
		t.Run(string(key), func(t *testing.T) {
			root := posedMannequin()
			p := newTestPlayer(root)
			before := snapshot(root)
			def, _ := Lookup(key)

			p.PlayAt(key, 5)
			p.Update(5+def.Duration/2, 0.016)
			p.Update(5+def.Duration+0.01, 0.016)

			if p.Playing() {
				t.Fatal("motion should have completed")
			}
			if after := snapshot(root); !reflect.DeepEqual(before, after) {
				t.Error("pose not restored after completion")
			}
		})
	}
}

func TestMotionsMoveSomething(t *testing.T) {
	for _, key := range Keys() {
		t.Run(string(key), func(t *testing.T) {
			root := posedMannequin()
			p := newTestPlayer(root)
			before := snapshot(root)
			def, _ := Lookup(key)

			p.PlayAt(key, 0)
			p.Update(def.Duration*0.3, 0.016)

			if reflect.DeepEqual(before, snapshot(root)) {
				t.Errorf("%s changed nothing at 30%%", key)
			}
		})
	}
}

func TestCompletionMonotonic(t *testing.T) {
	root := scene.Mannequin()
	r := rig.New(func() *scene.Node { return root })
	base := capturePose(r)

	for _, d := range Catalog() {
		m := d.build(&env{rig: r, base: base, rnd: rand.New(rand.NewSource(1))})
		if m == nil {
			t.Fatalf("%s: build returned nil", d.Key)
		}
		if m.Done(0) || m.Done(d.Duration-1e-6) {
			t.Errorf("%s: done before its duration", d.Key)
		}
		for _, tt := range []float64{d.Duration, d.Duration + 0.5, d.Duration * 10} {
			if !m.Done(tt) {
				t.Errorf("%s: not done at %.2f", d.Key, tt)
			}
		}
	}
}

func TestNodBlinkTimeline(t *testing.T) {
	root := scene.Mannequin()
	p := newTestPlayer(root)
	head := root.Find("Head")
	baseHead := head.Rotation
	blink := p.Rig().Channel(rig.ChannelBlink)

	if !p.PlayAt(NodBlink, 10.0) {
		t.Fatal("nodBlink should play on mannequin")
	}

	p.Update(10.5, 0.016)
	if got, want := head.Rotation.X, baseHead.X+float32(NodPulse(0.5)); got != want {
		t.Errorf("head pitch at p=0.5 = %f, want %f", got, want)
	}
	if NodPulse(0.5) == 0 {
		t.Error("nod pulse should be non-zero mid-motion")
	}
	if v := p.Rig().Value(blink); gomath.Abs(float64(v)-0.9) > 1e-6 {
		t.Errorf("blink at p=0.5 = %f, want 0.9", v)
	}
	if p.LocalTime() != 0.5 {
		t.Errorf("local time = %f, want 0.5", p.LocalTime())
	}

	p.Update(11.0, 0.016)
	if p.Playing() {
		t.Error("nodBlink should be done at local time 1.0")
	}
	if head.Rotation != baseHead {
		t.Errorf("head rotation = %+v, want %+v", head.Rotation, baseHead)
	}
	if v := p.Rig().Value(blink); v != 0 {
		t.Errorf("blink = %f after completion, want 0", v)
	}
}

func TestStopIdempotent(t *testing.T) {
	root := posedMannequin()
	p := newTestPlayer(root)

	p.PlayAt(Wave, 0)
	p.Update(1.0, 0.016)
	p.Stop()
	first := snapshot(root)
	p.Stop()

	if !reflect.DeepEqual(first, snapshot(root)) {
		t.Error("second Stop changed the pose")
	}
	if p.Playing() || p.Active() != "" {
		t.Error("player should be idle")
	}
	if p.Base() == nil {
		t.Error("Stop should keep the captured pose")
	}
}

func TestUpdateWhileIdle(t *testing.T) {
	root := posedMannequin()
	p := newTestPlayer(root)
	before := snapshot(root)

	p.Update(3.0, 0.016)
	p.Update(4.0, 0.016)

	if !reflect.DeepEqual(before, snapshot(root)) {
		t.Error("idle update changed the pose")
	}
}

func TestSingleFlight(t *testing.T) {
	root := posedMannequin()
	p := newTestPlayer(root)
	arm := root.Find("RightArm")
	restArm := arm.Rotation

	p.PlayAt(Wave, 0)
	p.Update(1.0, 0.016)
	if arm.Rotation == restArm {
		t.Fatal("wave should move the right arm")
	}

	if !p.PlayAt(NodBlink, 1.0) {
		t.Fatal("nodBlink should replace wave")
	}
	if arm.Rotation != restArm {
		t.Error("replacing a motion must undo its writes")
	}
	if got := p.Base().RotationOf(arm); got != restArm {
		t.Errorf("new base captured mid-motion arm %+v", got)
	}

	p.Update(1.4, 0.016)
	if arm.Rotation != restArm {
		t.Error("nodBlink must not touch the arm")
	}
	if p.Active() != NodBlink {
		t.Errorf("active = %s, want nodBlink", p.Active())
	}
}

func TestBaseContents(t *testing.T) {
	root := posedMannequin()
	p := newTestPlayer(root)
	if !p.PlayAt(NodBlink, 0) {
		t.Fatal("nodBlink should play")
	}
	base := p.Base()

	for _, name := range []string{"Head", "Neck", "LeftEye"} {
		if !base.Tracks(root.Find(name)) {
			t.Errorf("pose should track %s", name)
		}
	}
	if !base.Tracks(root) {
		t.Error("pose should track the root")
	}
	if base.Tracks(scene.NewNode("Stray", scene.KindBone)) {
		t.Error("pose should not track a node outside the rig")
	}

	blink := p.Rig().Channel(rig.ChannelBlink)
	if v, ok := base.ChannelValue(blink); !ok || v != 0.25 {
		t.Errorf("captured blink = %f, %v; want 0.25", v, ok)
	}
	if _, ok := base.ChannelValue(rig.Channel{}); ok {
		t.Error("unresolved channel should not be captured")
	}
}

func TestReset(t *testing.T) {
	root := posedMannequin()
	p := newTestPlayer(root)
	arm := root.Find("RightArm")

	p.PlayAt(Wave, 0)
	p.Update(1.0, 0.016)
	moved := arm.Rotation
	p.Reset()

	if p.Playing() || p.Base() != nil {
		t.Fatal("Reset should clear motion and pose")
	}
	if arm.Rotation != moved {
		t.Error("Reset must not restore")
	}

	p.PlayAt(NodBlink, 2.0)
	if got := p.Base().RotationOf(arm); got != moved {
		t.Error("play after Reset should capture the current pose")
	}
}

func TestAvailabilityWithoutEyes(t *testing.T) {
	root := posedMannequin()
	root.Find("LeftEye").Detach()
	root.Find("RightEye").Detach()
	p := newTestPlayer(root)

	avail := p.Availability()
	if avail[EyeDarts] || avail[RandomGaze] {
		t.Error("eye motions should be unavailable without eyes")
	}
	if !avail[NodBlink] || !avail[Wave] {
		t.Error("head and arm motions should still be available")
	}

	p.PlayAt(NodBlink, 0)
	before := snapshot(root)
	if p.PlayAt(EyeDarts, 0.1) {
		t.Fatal("eyeDarts should fail without eyes")
	}
	if p.Active() != NodBlink {
		t.Error("failed play must leave the running motion alone")
	}
	if !reflect.DeepEqual(before, snapshot(root)) {
		t.Error("failed play must not touch the pose")
	}
}

func TestAvailabilityBareRig(t *testing.T) {
	root := scene.NewNode("prop", scene.KindGroup)
	p := newTestPlayer(root)

	tests := []struct {
		key  Key
		want bool
	}{
		{BreathingLoop, true},
		{WeightShift, true},
		{ListeningIdle, false},
		{NodBlink, false},
		{Blink, false},
		{Wave, false},
		{OpenArms, false},
		{WeightTransfer, false},
		{LeanIn, false},
		{SpeechLoop, false},
		{SmileSmirk, false},
	}
	for _, tt := range tests {
		if got := p.Available(tt.key); got != tt.want {
			t.Errorf("Available(%s) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if !p.PlayAt(WeightShift, 0) {
		t.Fatal("weightShift should fall back to the root")
	}
	p.Update(0.75, 0.016)
	if root.Position.X == 0 {
		t.Error("weightShift should move the root without hips")
	}
	if gomath.Abs(float64(root.Rotation.Y)-0.07) > 1e-4 {
		t.Errorf("root yaw at the sway peak = %f, want 0.07", root.Rotation.Y)
	}
	p.Stop()
	if root.Position.X != 0 || root.Rotation.Y != 0 {
		t.Error("root not restored")
	}
}

func TestEyeDartsLeaveImmediately(t *testing.T) {
	root := posedMannequin()
	p := newTestPlayer(root)
	eye := root.Find("LeftEye")
	rest := eye.Rotation.Y

	if !p.PlayAt(EyeDarts, 0) {
		t.Fatal("eyeDarts should play on the mannequin")
	}
	for ts := 0.0; ts < 0.25; ts += 0.016 {
		p.Update(ts, 0.016)
	}
	// Still before the first hop time, the eyes are already heading for it.
	moved := float64(eye.Rotation.Y - rest)
	if moved < 0.1 || moved > 0.12+1e-6 {
		t.Errorf("eye yaw offset before the first hop = %f, want close to 0.12", moved)
	}
}

func TestSpeechLoopChannelsOnly(t *testing.T) {
	root := scene.NewNode("root", scene.KindGroup)
	face := scene.NewNode("face", scene.KindMesh)
	face.Mesh = &scene.Mesh{}
	face.Mesh.SetMorphs("viseme_O")
	root.Add(face)

	p := newTestPlayer(root)
	if !p.Available(SpeechLoop) {
		t.Fatal("a single viseme should be enough for speech")
	}
	if p.Available(ListeningIdle) {
		t.Error("no head, no listening")
	}
}

func TestNoRoot(t *testing.T) {
	p := NewPlayer(rig.New(func() *scene.Node { return nil }))

	for _, key := range Keys() {
		if p.Available(key) {
			t.Errorf("%s available without root", key)
		}
		if p.Play(key) {
			t.Errorf("%s played without root", key)
		}
	}
	p.Update(1, 0.016)
	p.Stop()
	p.Reset()
	if p.Playing() {
		t.Error("player should stay idle")
	}
}

func TestUnknownKey(t *testing.T) {
	p := newTestPlayer(scene.Mannequin())
	if p.Play("moonwalk") {
		t.Error("unknown key should fail")
	}
	if p.Available("moonwalk") {
		t.Error("unknown key should be unavailable")
	}
}

func TestClock(t *testing.T) {
	t.Run("default follows update", func(t *testing.T) {
		p := newTestPlayer(scene.Mannequin())
		p.Update(7.0, 0.016)
		p.Play(NodBlink)
		p.Update(7.25, 0.016)
		if p.LocalTime() != 0.25 {
			t.Errorf("local time = %f, want 0.25", p.LocalTime())
		}
	})

	t.Run("injected", func(t *testing.T) {
		p := newTestPlayer(scene.Mannequin(), WithClock(func() float64 { return 3 }))
		p.Play(Wave)
		p.Update(3.5, 0.016)
		if p.LocalTime() != 0.5 {
			t.Errorf("local time = %f, want 0.5", p.LocalTime())
		}
	})
}

func TestSeededMotionsRepeat(t *testing.T) {
	run := func() []float32 {
		root := scene.Mannequin()
		p := newTestPlayer(root, WithSeed(7))
		ch := p.Rig().Channel(rig.ChannelBlink)
		p.PlayAt(Blink, 0)
		var out []float32
		for tt := 0.0; tt < 4.9; tt += 0.05 {
			p.Update(tt, 0.05)
			out = append(out, p.Rig().Value(ch))
		}
		return out
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should give the same blink schedule")
	}
	peak := float32(0)
	for _, v := range a {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		t.Error("blink never closed the eyes")
	}
}

func TestCurveShapes(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"blink peak", NodBlinkValue(0.5), 0.9},
		{"blink closed before", NodBlinkValue(0.3), 0},
		{"nod symmetric", NodPulse(0.25), NodPulse(0.75)},
		{"envelope start", gestureEnvelope(0), 0},
		{"envelope hold", gestureEnvelope(0.5), 1},
		{"envelope end", gestureEnvelope(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if gomath.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("got %f, want %f", tt.got, tt.want)
			}
		})
	}

	smile, smirk := SmileSmirkValues(1)
	if gomath.Abs(smile) > 1e-9 || gomath.Abs(smirk) > 1e-9 {
		t.Errorf("smile/smirk should relax to zero, got %f/%f", smile, smirk)
	}
	if _, smirk := SmileSmirkValues(0.2); smirk != 0 {
		t.Error("no smirk during the smile phase")
	}
}
