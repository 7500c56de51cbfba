package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/rigscope/internal/engine/input"
	"github.com/Faultbox/rigscope/internal/motion"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdQuit
	cmdPlay
	cmdReplay
	cmdStop
	cmdReset
	cmdOpen
	cmdScreenshot
	cmdSelectMorph
	cmdNudgeMorph
	cmdClearFace
	cmdToggleGrid
	cmdToggleBounds
	cmdToggleSkeleton
	cmdFrame
	cmdNextClip
	cmdToggleLoop
)

type command struct {
	kind   commandKind
	motion motion.Key
	step   int
}

// morphStep is how far one -/= press moves the selected channel.
const morphStep = 0.1

var digitKeys = []sdl.Keycode{sdl.K_1, sdl.K_2, sdl.K_3, sdl.K_4, sdl.K_5, sdl.K_6, sdl.K_7, sdl.K_8, sdl.K_9, sdl.K_0}

var keyCommands = map[sdl.Keycode]command{
	sdl.K_ESCAPE:       {kind: cmdQuit},
	sdl.K_SPACE:        {kind: cmdReplay},
	sdl.K_s:            {kind: cmdStop},
	sdl.K_r:            {kind: cmdReset},
	sdl.K_o:            {kind: cmdOpen},
	sdl.K_F12:          {kind: cmdScreenshot},
	sdl.K_LEFTBRACKET:  {kind: cmdSelectMorph, step: -1},
	sdl.K_RIGHTBRACKET: {kind: cmdSelectMorph, step: 1},
	sdl.K_MINUS:        {kind: cmdNudgeMorph, step: -1},
	sdl.K_EQUALS:       {kind: cmdNudgeMorph, step: 1},
	sdl.K_n:            {kind: cmdClearFace},
	sdl.K_g:            {kind: cmdToggleGrid},
	sdl.K_b:            {kind: cmdToggleBounds},
	sdl.K_k:            {kind: cmdToggleSkeleton},
	sdl.K_f:            {kind: cmdFrame},
	sdl.K_c:            {kind: cmdNextClip},
	sdl.K_l:            {kind: cmdToggleLoop},
}

// commandFor maps a key press to a viewer command. Digits 1-9 and 0 pick
// the first ten catalog motions, Shift+1-5 the remaining ones.
func commandFor(ev input.Event) command {
	if ev.Type != input.EventKeyDown {
		return command{}
	}
	for i, k := range digitKeys {
		if ev.Key != k {
			continue
		}
		if ev.Shift {
			i += len(digitKeys)
		}
		keys := motion.Keys()
		if i < len(keys) {
			return command{kind: cmdPlay, motion: keys[i]}
		}
		return command{}
	}
	return keyCommands[ev.Key]
}

// HelpText lists the key bindings.
func HelpText() string {
	return `Keys:
  1-9, 0        play motions 1-10
  Shift+1-5     play motions 11-15
  Space         replay the last motion
  S / R         stop / stop and forget the rest pose
  [ / ]         select morph channel
  - / =         lower / raise selected morph
  C / L         play the next authored clip / toggle clip looping
  N             neutral face
  G / B / K     toggle grid / bounds / skeleton
  F             frame the model
  O             open a model
  F12           screenshot
  Esc           quit
Mouse: drag to orbit, wheel to zoom, drop a file to open it.`
}
