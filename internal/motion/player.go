package motion

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/internal/rig"
)

// Option configures a Player.
type Option func(*Player)

// WithClock sets the time source used by Play. Without it Play starts
// motions at the last global time passed to Update.
func WithClock(clock func() float64) Option {
	return func(p *Player) {
		p.clock = clock
	}
}

// WithRand sets the random source for motions with randomized timing.
func WithRand(rnd *rand.Rand) Option {
	return func(p *Player) {
		p.rnd = rnd
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(p *Player) {
		p.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// Player runs at most one motion at a time against a rig.
//
// The player is Idle or Playing. Starting a motion captures the rest pose;
// stopping, completing or replacing the motion writes that pose back.
// Not safe for concurrent use; drive it from the frame loop.
type Player struct {
	rig   *rig.Rig
	log   *zap.Logger
	clock func() float64
	rnd   *rand.Rand

	active    Motion
	activeKey Key
	start     float64
	local     float64
	base      *Pose
	lastTime  float64
}

// NewPlayer creates an idle player for r.
func NewPlayer(r *rig.Rig, opts ...Option) *Player {
	p := &Player{
		rig: r,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(1))
	}
	if p.clock == nil {
		p.clock = func() float64 { return p.lastTime }
	}
	return p
}

// Rig returns the rig the player drives.
func (p *Player) Rig() *rig.Rig {
	return p.rig
}

// Play starts key at the player's current time.
func (p *Player) Play(key Key) bool {
	return p.PlayAt(key, p.clock())
}

// PlayAt starts key with local time zero at the given global time.
//
// It fails, leaving the player untouched, when the key is unknown, there is
// no root, or the rig lacks what the motion requires. Otherwise any running
// motion is replaced: its writes are undone by restoring the previous rest
// pose before the new one is captured.
func (p *Player) PlayAt(key Key, start float64) bool {
	def, ok := Lookup(key)
	if !ok {
		p.log.Warn("unknown motion", zap.String("motion", string(key)))
		return false
	}
	if !def.Available(p.rig) {
		p.log.Debug("motion unavailable", zap.String("motion", string(key)))
		return false
	}

	if p.base != nil {
		p.base.restore(p.rig)
	}
	p.active = nil
	p.base = capturePose(p.rig)

	m := def.build(&env{rig: p.rig, base: p.base, rnd: p.rnd})
	if m == nil {
		return false
	}

	p.active = m
	p.activeKey = key
	p.start = start
	p.local = 0
	p.log.Debug("motion started",
		zap.String("motion", string(key)),
		zap.Float64("start", start),
		zap.Float64("duration", def.Duration))
	return true
}

// Update advances the active motion to globalTime. The motion is stopped,
// and the rest pose restored, as soon as it reports done.
func (p *Player) Update(globalTime, dt float64) {
	p.lastTime = globalTime
	if p.active == nil || p.rig.Root() == nil {
		return
	}

	t := globalTime - p.start
	p.local = t
	p.active.Update(t, dt)
	if p.active.Done(t) {
		p.log.Debug("motion finished", zap.String("motion", string(p.activeKey)), zap.Float64("t", t))
		p.Stop()
	}
}

// Stop ends the active motion and restores the rest pose. The captured pose
// is kept, so a later Play first restores it again.
func (p *Player) Stop() {
	if p.active == nil {
		return
	}
	p.active = nil
	p.activeKey = ""
	p.base.restore(p.rig)
}

// Reset stops without restoring, forgets the captured pose and drops the
// rig caches. Used when a different model is loaded.
func (p *Player) Reset() {
	p.active = nil
	p.activeKey = ""
	p.base = nil
	p.local = 0
	p.rig.Invalidate()
}

// Playing reports whether a motion is active.
func (p *Player) Playing() bool {
	return p.active != nil
}

// Active returns the key of the running motion, empty when idle.
func (p *Player) Active() Key {
	return p.activeKey
}

// LocalTime returns the local time passed to the last motion update.
func (p *Player) LocalTime() float64 {
	return p.local
}

// Base returns the captured rest pose, nil before the first Play or after
// Reset.
func (p *Player) Base() *Pose {
	return p.base
}

// Available reports whether key can play on the current rig.
func (p *Player) Available(key Key) bool {
	def, ok := Lookup(key)
	return ok && def.Available(p.rig)
}

// Availability maps every catalog key to whether it can play right now.
func (p *Player) Availability() map[Key]bool {
	out := make(map[Key]bool, len(catalog))
	for _, d := range catalog {
		out[d.Key] = d.Available(p.rig)
	}
	return out
}
