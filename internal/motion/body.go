package motion

import (
	gomath "math"

	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/math"
)

const tau = 2 * gomath.Pi

// breathingLoop bobs the model and flexes the spine twice per period.
type breathingLoop struct {
	finite
	*env
	root  rig.Joint
	spine rig.Joint
}

func newBreathingLoop(e *env) Motion {
	return &breathingLoop{finite: finite{6.0}, env: e, root: e.rig.RootJoint(), spine: e.joint(rig.Spine)}
}

func (m *breathingLoop) Update(t, _ float64) {
	s := gomath.Sin(m.progress(t) * 2 * tau)
	m.translate(m.root, math.Vec3{Y: float32(s * 0.02)})
	if m.spine.Ok() {
		m.rotate(m.spine, math.Euler{X: float32(s * 0.03)})
	}
}

// weightShift sways the hips sideways with a matching yaw of the model. A rig
// without hips sways and yaws the root alone.
type weightShift struct {
	finite
	*env
	root rig.Joint
	hips rig.Joint
}

func newWeightShift(e *env) Motion {
	m := &weightShift{finite: finite{3.0}, env: e, root: e.rig.RootJoint(), hips: e.joint(rig.Hips)}
	if !m.hips.Ok() {
		m.hips = m.root
	}
	return m
}

func (m *weightShift) Update(t, _ float64) {
	s := gomath.Sin(m.progress(t) * tau)
	m.translate(m.hips, math.Vec3{X: float32(s * 0.03)})
	m.rotate(m.root, math.Euler{Y: float32(s * 0.07)})
}

// gestureEnvelope rises over the first quarter, holds, and falls over the
// last quarter.
func gestureEnvelope(p float64) float64 {
	switch {
	case p < 0.25:
		return math.Smoothstep(p / 0.25)
	case p > 0.75:
		return 1 - math.Smoothstep((p-0.75)/0.25)
	default:
		return 1
	}
}

// wave raises the right arm and waves the forearm.
type wave struct {
	finite
	*env
	shoulder, upper, fore, hand rig.Joint
}

func newWave(e *env) Motion {
	return &wave{
		finite:   finite{2.5},
		env:      e,
		shoulder: e.joint(rig.RightShoulder),
		upper:    e.joint(rig.RightUpperArm),
		fore:     e.joint(rig.RightForearm),
		hand:     e.joint(rig.RightHand),
	}
}

func (m *wave) Update(t, _ float64) {
	lift := gestureEnvelope(m.progress(t))
	swing := gomath.Sin(t*tau*2.5) * 0.35 * lift

	m.rotate(m.upper, math.Euler{Z: float32(-1.1 * lift)})
	m.rotate(m.fore, math.Euler{Y: float32(0.3*lift + swing), Z: float32(-0.6 * lift)})
	if m.shoulder.Ok() {
		m.rotate(m.shoulder, math.Euler{Z: float32(-0.1 * lift)})
	}
	if m.hand.Ok() {
		m.rotate(m.hand, math.Euler{Z: float32(swing * 0.5)})
	}
}

// openArms spreads both arms outward, palms forward, and brings them back.
type openArms struct {
	finite
	*env
	leftUpper, rightUpper rig.Joint
	leftFore, rightFore   rig.Joint
}

func newOpenArms(e *env) Motion {
	return &openArms{
		finite:     finite{3.0},
		env:        e,
		leftUpper:  e.joint(rig.LeftUpperArm),
		rightUpper: e.joint(rig.RightUpperArm),
		leftFore:   e.joint(rig.LeftForearm),
		rightFore:  e.joint(rig.RightForearm),
	}
}

func (m *openArms) Update(t, _ float64) {
	lift := float32(gestureEnvelope(m.progress(t)))
	m.rotate(m.leftUpper, math.Euler{Y: -0.35 * lift, Z: 0.5 * lift})
	m.rotate(m.rightUpper, math.Euler{Y: 0.35 * lift, Z: -0.5 * lift})
	if m.leftFore.Ok() {
		m.rotate(m.leftFore, math.Euler{Y: 0.4 * lift})
	}
	if m.rightFore.Ok() {
		m.rotate(m.rightFore, math.Euler{Y: -0.4 * lift})
	}
}

// weightTransfer moves the hips side to side with a roll, and rolls the
// spine against it to keep the shoulders level.
type weightTransfer struct {
	finite
	*env
	hips, spine rig.Joint
}

func newWeightTransfer(e *env) Motion {
	return &weightTransfer{finite: finite{4.0}, env: e, hips: e.joint(rig.Hips), spine: e.joint(rig.Spine)}
}

func (m *weightTransfer) Update(t, _ float64) {
	s := gomath.Sin(m.progress(t) * tau)
	m.translate(m.hips, math.Vec3{X: float32(s * 0.05), Y: float32(-0.01 * gomath.Abs(s))})
	m.rotate(m.hips, math.Euler{Z: float32(s * 0.06)})
	if m.spine.Ok() && m.spine.Node() != m.hips.Node() {
		m.rotate(m.spine, math.Euler{Z: float32(-s * 0.08)})
	}
}

// leanIn eases into a forward lean and back out again.
type leanIn struct {
	finite
	*env
	torso, neck rig.Joint
}

func newLeanIn(e *env) Motion {
	return &leanIn{finite: finite{3.0}, env: e, torso: e.joint(rig.Spine, rig.Hips), neck: e.joint(rig.Neck)}
}

func (m *leanIn) Update(t, _ float64) {
	p := m.progress(t)
	var lean float64
	if p < 0.5 {
		lean = math.EaseInOut(p / 0.5)
	} else {
		lean = 1 - math.EaseInOut((p-0.5)/0.5)
	}
	m.rotate(m.torso, math.Euler{X: float32(0.18 * lean)})
	if m.neck.Ok() {
		m.rotate(m.neck, math.Euler{X: float32(-0.06 * lean)})
	}
}

// speechLoop drives the jaw and visemes with layered sines and blinks on a
// fixed cadence.
type speechLoop struct {
	finite
	*env
	jaw     rig.Joint
	jawOpen rig.Channel
	visemes []visemeVoice
	blink   rig.Channel
	phase   float64
}

type visemeVoice struct {
	ch    rig.Channel
	freq  float64
	phase float64
}

const blinkCadence = 3.2

func newSpeechLoop(e *env) Motion {
	m := &speechLoop{
		finite:  finite{8.0},
		env:     e,
		jaw:     e.joint(rig.Jaw),
		jawOpen: e.channel(rig.ChannelJawOpen),
		blink:   e.channel(rig.ChannelBlink),
		phase:   e.uniform(0, tau),
	}
	for i, name := range rig.Visemes {
		ch := e.rig.Channel(name)
		if !ch.Ok() || ch == m.jawOpen {
			continue
		}
		m.visemes = append(m.visemes, visemeVoice{ch: ch, freq: 1.7 + 0.6*float64(i), phase: e.uniform(0, tau)})
	}
	return m
}

// Mouth opening at time t for a loop with the given phase, in [0, 1].
func speechOpen(t, phase float64) float64 {
	syllables := 0.35 +
		0.25*gomath.Sin(tau*3.1*t+phase) +
		0.15*gomath.Sin(tau*4.7*t+1.3+phase) +
		0.10*gomath.Sin(tau*7.3*t+0.4)
	// Slow envelope leaves short pauses between phrases.
	phrase := math.Smoothstep((0.5 + 0.5*gomath.Sin(tau*0.45*t+phase)) / 0.3)
	return math.Clamp01(syllables * phrase)
}

func (m *speechLoop) Update(t, _ float64) {
	open := speechOpen(t, m.phase)

	if m.jawOpen.Ok() {
		m.set(m.jawOpen, open)
	}
	if m.jaw.Ok() {
		m.rotate(m.jaw, math.Euler{X: float32(open * 0.12)})
	}
	for _, v := range m.visemes {
		shape := 0.5 + 0.5*gomath.Sin(tau*v.freq*t+v.phase)
		m.set(v.ch, math.Clamp01(open*shape))
	}
	if m.blink.Ok() {
		m.set(m.blink, math.Triangle(gomath.Mod(t, blinkCadence), blinkLength/2+0.4, blinkLength/2))
	}
}
