package motion

import (
	gomath "math"

	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/pkg/math"
)

// listeningIdle tilts the head one way, then the other, then settles, with
// a slight forward nod across the whole run.
type listeningIdle struct {
	finite
	*env
	head rig.Joint
}

func newListeningIdle(e *env) Motion {
	return &listeningIdle{finite: finite{4.0}, env: e, head: e.joint(rig.Head, rig.Neck)}
}

func (m *listeningIdle) Update(t, _ float64) {
	const amp = 0.18
	p := m.progress(t)

	var tilt float64
	switch {
	case p < 0.33:
		tilt = amp * math.Smoothstep(p/0.33)
	case p < 0.66:
		tilt = amp * (1 - 2*math.Smoothstep((p-0.33)/0.33))
	default:
		tilt = -amp * (1 - math.Smoothstep((p-0.66)/0.34))
	}
	nod := gomath.Sin(p*gomath.Pi) * 0.05

	m.rotate(m.head, math.Euler{X: float32(nod), Z: float32(tilt)})
}

// eyebrowRaise is a quick double nod, two Gaussian pulses on head pitch.
type eyebrowRaise struct {
	finite
	*env
	head rig.Joint
}

func newEyebrowRaise(e *env) Motion {
	return &eyebrowRaise{finite: finite{1.6}, env: e, head: e.joint(rig.Head, rig.Neck)}
}

func (m *eyebrowRaise) Update(t, _ float64) {
	p := m.progress(t)
	pulse := math.Gaussian(p, 0.15, 40) + math.Gaussian(p, 0.55, 40)
	m.rotate(m.head, math.Euler{X: float32(pulse * 0.20)})
}

// relaxedCalm lowers the head over the first half and brings it back over
// the second.
type relaxedCalm struct {
	finite
	*env
	head rig.Joint
}

func newRelaxedCalm(e *env) Motion {
	return &relaxedCalm{finite: finite{3.0}, env: e, head: e.joint(rig.Head, rig.Neck)}
}

func (m *relaxedCalm) Update(t, _ float64) {
	const depth = 0.08
	p := m.progress(t)
	down := math.Smoothstep(gomath.Min(p, 0.5)/0.5) * depth
	up := 0.0
	if p > 0.5 {
		up = math.Smoothstep((p-0.5)/0.5) * depth
	}
	m.rotate(m.head, math.Euler{X: float32(down - up)})
}

// nodBlink is a short double nod with a single blink at its midpoint.
type nodBlink struct {
	finite
	*env
	head  rig.Joint
	blink rig.Channel
}

func newNodBlink(e *env) Motion {
	return &nodBlink{
		finite: finite{1.0},
		env:    e,
		head:   e.joint(rig.Head, rig.Neck),
		blink:  e.channel(rig.ChannelBlink),
	}
}

// NodPulse is the nodBlink head pitch offset at progress p.
func NodPulse(p float64) float64 {
	return (math.Gaussian(p, 0.25, 40) + math.Gaussian(p, 0.75, 40)) * 0.18
}

// NodBlinkValue is the nodBlink blink channel value at progress p.
func NodBlinkValue(p float64) float64 {
	return 0.9 * math.Triangle(p, 0.5, 0.12)
}

func (m *nodBlink) Update(t, _ float64) {
	p := m.progress(t)
	m.rotate(m.head, math.Euler{X: float32(NodPulse(p))})
	if m.blink.Ok() {
		m.set(m.blink, NodBlinkValue(p))
	}
}

type gazeHop struct {
	at   float64
	x, y float64
}

// eyeDarts hops both eyes between fixed targets, easing toward the current
// one each frame.
type eyeDarts struct {
	finite
	*env
	left, right rig.Joint
	hops        []gazeHop
	x, y        float64
}

// Per-second convergence rate for eye targets; about a third of the
// remaining distance per frame at 60 fps.
const gazeRate = 26.0

func newEyeDarts(e *env) Motion {
	return &eyeDarts{
		finite: finite{2.5},
		env:    e,
		left:   e.joint(rig.LeftEye),
		right:  e.joint(rig.RightEye),
		hops: []gazeHop{
			{at: 0.3, x: 0.12, y: 0.03},
			{at: 1.2, x: -0.10, y: -0.02},
			{at: 1.9, x: 0, y: 0},
		},
	}
}

// target is the latest hop reached by t. The eyes head for the first hop
// from the start.
func (m *eyeDarts) target(t float64) gazeHop {
	cur := m.hops[0]
	for _, h := range m.hops {
		if t >= h.at {
			cur = h
		}
	}
	return cur
}

func (m *eyeDarts) Update(t, dt float64) {
	h := m.target(t)
	k := approachRate(dt)
	m.x = math.Lerp(m.x, h.x, k)
	m.y = math.Lerp(m.y, h.y, k)
	aimEyes(m.env, m.left, m.right, m.x, m.y)
}

// randomGaze wanders both eyes between random targets and returns them to
// center for the last stretch.
type randomGaze struct {
	finite
	*env
	left, right rig.Joint
	hops        []gazeHop
	x, y        float64
}

func newRandomGaze(e *env) Motion {
	m := &randomGaze{
		finite: finite{4.0},
		env:    e,
		left:   e.joint(rig.LeftEye),
		right:  e.joint(rig.RightEye),
	}
	const settle = 0.6
	for at := e.uniform(0.1, 0.4); at < m.duration-settle; at += e.uniform(0.4, 1.0) {
		m.hops = append(m.hops, gazeHop{at: at, x: e.uniform(-0.08, 0.08), y: e.uniform(-0.04, 0.04)})
	}
	m.hops = append(m.hops, gazeHop{at: m.duration - settle})
	return m
}

func (m *randomGaze) Update(t, dt float64) {
	var h gazeHop
	for _, hop := range m.hops {
		if t >= hop.at {
			h = hop
		}
	}
	k := approachRate(dt)
	m.x = math.Lerp(m.x, h.x, k)
	m.y = math.Lerp(m.y, h.y, k)
	aimEyes(m.env, m.left, m.right, m.x, m.y)
}

func approachRate(dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return 1 - gomath.Exp(-gazeRate*dt)
}

// aimEyes yaws both eyes by x and pitches them by y.
func aimEyes(e *env, left, right rig.Joint, x, y float64) {
	off := math.Euler{X: float32(y), Y: float32(x)}
	e.rotate(left, off)
	e.rotate(right, off)
}

// blink closes the eyes at random intervals.
type blink struct {
	finite
	*env
	ch     rig.Channel
	starts []float64
}

const blinkLength = 0.18

func newBlink(e *env) Motion {
	m := &blink{finite: finite{5.0}, env: e, ch: e.channel(rig.ChannelBlink)}
	for at := e.uniform(0.2, 0.8); at+blinkLength <= m.duration; at += blinkLength + e.uniform(0.6, 2.2) {
		m.starts = append(m.starts, at)
	}
	return m
}

func (m *blink) Update(t, _ float64) {
	v := 0.0
	for _, s := range m.starts {
		v = gomath.Max(v, math.Triangle(t, s+blinkLength/2, blinkLength/2))
	}
	m.set(m.ch, v)
}

// smileSmirk eases into a smile, trades it for a smirk, then relaxes both.
type smileSmirk struct {
	finite
	*env
	smile, smirk rig.Channel
}

func newSmileSmirk(e *env) Motion {
	return &smileSmirk{
		finite: finite{3.0},
		env:    e,
		smile:  e.channel(rig.ChannelSmile),
		smirk:  e.channel(rig.ChannelSmirk),
	}
}

// SmileSmirkValues returns the smile and smirk weights at progress p.
func SmileSmirkValues(p float64) (smile, smirk float64) {
	const third = 1.0 / 3
	switch {
	case p < third:
		return 0.8 * math.EaseInOut(p/third), 0
	case p < 2*third:
		s := math.EaseInOut((p - third) / third)
		return math.Lerp(0.8, 0.2, s), 0.7 * s
	default:
		s := math.EaseInOut((p - 2*third) / third)
		return math.Lerp(0.2, 0, s), math.Lerp(0.7, 0, s)
	}
}

func (m *smileSmirk) Update(t, _ float64) {
	smile, smirk := SmileSmirkValues(m.progress(t))
	if m.smile.Ok() {
		m.set(m.smile, smile)
	}
	if m.smirk.Ok() {
		m.set(m.smirk, smirk)
	}
}
