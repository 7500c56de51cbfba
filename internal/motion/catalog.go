package motion

import (
	"github.com/Faultbox/rigscope/internal/rig"
)

// Key names a motion in the catalog.
type Key string

// Motion keys.
const (
	ListeningIdle  Key = "listeningIdle"
	BreathingLoop  Key = "breathingLoop"
	WeightShift    Key = "weightShift"
	EyebrowRaise   Key = "eyebrowRaise"
	RelaxedCalm    Key = "relaxedCalm"
	EyeDarts       Key = "eyeDarts"
	RandomGaze     Key = "randomGaze"
	NodBlink       Key = "nodBlink"
	Blink          Key = "blink"
	Wave           Key = "wave"
	OpenArms       Key = "openArms"
	WeightTransfer Key = "weightTransfer"
	LeanIn         Key = "leanIn"
	SpeechLoop     Key = "speechLoop"
	SmileSmirk     Key = "smileSmirk"
)

// Definition describes one catalog entry.
type Definition struct {
	Key         Key
	Label       string
	Duration    float64 // seconds
	Description string

	// requires is shared by availability and construction, so a motion
	// reported available can always be built.
	requires func(r *rig.Rig) bool
	build    func(e *env) Motion
}

// Available reports whether the definition can run on r.
func (d Definition) Available(r *rig.Rig) bool {
	if r.Root() == nil {
		return false
	}
	return d.requires == nil || d.requires(r)
}

func always(*rig.Rig) bool { return true }

func anyJoint(roles ...rig.Role) func(*rig.Rig) bool {
	return func(r *rig.Rig) bool {
		for _, role := range roles {
			if r.Has(role) {
				return true
			}
		}
		return false
	}
}

func allJoints(roles ...rig.Role) func(*rig.Rig) bool {
	return func(r *rig.Rig) bool {
		for _, role := range roles {
			if !r.Has(role) {
				return false
			}
		}
		return true
	}
}

func anyChannel(names ...string) func(*rig.Rig) bool {
	return func(r *rig.Rig) bool {
		for _, name := range names {
			if r.HasChannel(name) {
				return true
			}
		}
		return false
	}
}

func either(checks ...func(*rig.Rig) bool) func(*rig.Rig) bool {
	return func(r *rig.Rig) bool {
		for _, c := range checks {
			if c(r) {
				return true
			}
		}
		return false
	}
}

var catalog = []Definition{
	{
		Key: ListeningIdle, Label: "Listening", Duration: 4.0,
		Description: "head tilts one way, then the other, then settles",
		requires:    anyJoint(rig.Head, rig.Neck),
		build:       newListeningIdle,
	},
	{
		Key: BreathingLoop, Label: "Breathing", Duration: 6.0,
		Description: "vertical bob with spine flex",
		requires:    always,
		build:       newBreathingLoop,
	},
	{
		Key: WeightShift, Label: "Weight shift", Duration: 3.0,
		Description: "hips sway sideways with a slight yaw",
		requires:    always,
		build:       newWeightShift,
	},
	{
		Key: EyebrowRaise, Label: "Double nod", Duration: 1.6,
		Description: "two quick nods",
		requires:    anyJoint(rig.Head, rig.Neck),
		build:       newEyebrowRaise,
	},
	{
		Key: RelaxedCalm, Label: "Relaxed", Duration: 3.0,
		Description: "head lowers and returns",
		requires:    anyJoint(rig.Head, rig.Neck),
		build:       newRelaxedCalm,
	},
	{
		Key: EyeDarts, Label: "Eye darts", Duration: 2.5,
		Description: "eyes hop between fixed targets",
		requires:    allJoints(rig.LeftEye, rig.RightEye),
		build:       newEyeDarts,
	},
	{
		Key: RandomGaze, Label: "Random gaze", Duration: 4.0,
		Description: "eyes wander between random targets and recenter",
		requires:    allJoints(rig.LeftEye, rig.RightEye),
		build:       newRandomGaze,
	},
	{
		Key: NodBlink, Label: "Nod + blink", Duration: 1.0,
		Description: "double nod with a blink in the middle",
		requires:    anyJoint(rig.Head, rig.Neck),
		build:       newNodBlink,
	},
	{
		Key: Blink, Label: "Blink", Duration: 5.0,
		Description: "blinks at random intervals",
		requires:    anyChannel(rig.ChannelBlink),
		build:       newBlink,
	},
	{
		Key: Wave, Label: "Wave", Duration: 2.5,
		Description: "right arm raises and waves",
		requires:    allJoints(rig.RightUpperArm, rig.RightForearm),
		build:       newWave,
	},
	{
		Key: OpenArms, Label: "Open arms", Duration: 3.0,
		Description: "both arms spread outward and return",
		requires:    allJoints(rig.LeftUpperArm, rig.RightUpperArm),
		build:       newOpenArms,
	},
	{
		Key: WeightTransfer, Label: "Weight transfer", Duration: 4.0,
		Description: "hips translate with spine counter-rotation",
		requires:    anyJoint(rig.Hips),
		build:       newWeightTransfer,
	},
	{
		Key: LeanIn, Label: "Lean in", Duration: 3.0,
		Description: "torso leans forward and back",
		requires:    anyJoint(rig.Spine, rig.Hips),
		build:       newLeanIn,
	},
	{
		Key: SpeechLoop, Label: "Speech", Duration: 8.0,
		Description: "jaw and visemes driven by layered sines",
		requires: either(
			anyJoint(rig.Jaw),
			anyChannel(append([]string{rig.ChannelJawOpen}, rig.Visemes...)...),
		),
		build: newSpeechLoop,
	},
	{
		Key: SmileSmirk, Label: "Smile / smirk", Duration: 3.0,
		Description: "smile, trade for a smirk, relax",
		requires:    anyChannel(rig.ChannelSmile, rig.ChannelSmirk),
		build:       newSmileSmirk,
	},
}

// Catalog returns every motion definition in display order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a definition by key.
func Lookup(key Key) (Definition, bool) {
	for _, d := range catalog {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Keys returns every motion key in display order.
func Keys() []Key {
	keys := make([]Key, len(catalog))
	for i, d := range catalog {
		keys[i] = d.Key
	}
	return keys
}
