package session

import "github.com/Faultbox/rigscope/internal/rig"

// Morph channels are edited by hand in [0, 1], the usual blendshape
// weight range. Motions may still write outside it.
const (
	morphMin = 0
	morphMax = 1
)

// SelectedChannel returns the channel picked for manual control.
func (s *Session) SelectedChannel() (rig.Channel, bool) {
	chans := s.rig.Channels()
	if len(chans) == 0 {
		return rig.Channel{}, false
	}
	if s.selected >= len(chans) {
		s.selected = 0
	}
	return chans[s.selected], true
}

// SelectChannel moves the selection by step, wrapping around.
func (s *Session) SelectChannel(step int) (rig.Channel, bool) {
	n := len(s.rig.Channels())
	if n == 0 {
		return rig.Channel{}, false
	}
	s.selected = ((s.selected+step)%n + n) % n
	return s.SelectedChannel()
}

// NudgeChannel adds delta to the selected channel and returns its new value.
func (s *Session) NudgeChannel(delta float32) (rig.Channel, float32, bool) {
	ch, ok := s.SelectedChannel()
	if !ok {
		return ch, 0, false
	}
	v := s.SetChannel(ch, s.rig.Value(ch)+delta)
	return ch, v, true
}

// SetChannel writes v, clamped to the manual range, and returns it.
func (s *Session) SetChannel(ch rig.Channel, v float32) float32 {
	v = min(max(v, morphMin), morphMax)
	s.rig.SetValue(ch, v)
	return v
}

// ClearFace zeroes every face channel (blinks, visemes, mouth shapes).
func (s *Session) ClearFace() int {
	return s.rig.ZeroChannels(rig.FacePrefixes, rig.MatchContains)
}
