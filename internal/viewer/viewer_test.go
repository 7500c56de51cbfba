package viewer

import (
	"strings"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/engine/debug"
	"github.com/Faultbox/rigscope/internal/engine/input"
	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/session"
)

func keyDown(k sdl.Keycode, shift bool) input.Event {
	return input.Event{Type: input.EventKeyDown, Key: k, Shift: shift}
}

func TestCommandFor(t *testing.T) {
	keys := motion.Keys()
	tests := []struct {
		name string
		ev   input.Event
		want command
	}{
		{"first motion", keyDown(sdl.K_1, false), command{kind: cmdPlay, motion: keys[0]}},
		{"tenth motion", keyDown(sdl.K_0, false), command{kind: cmdPlay, motion: keys[9]}},
		{"shift first", keyDown(sdl.K_1, true), command{kind: cmdPlay, motion: keys[10]}},
		{"shift fifth", keyDown(sdl.K_5, true), command{kind: cmdPlay, motion: keys[14]}},
		{"shift past catalog", keyDown(sdl.K_6, true), command{}},
		{"escape", keyDown(sdl.K_ESCAPE, false), command{kind: cmdQuit}},
		{"stop", keyDown(sdl.K_s, false), command{kind: cmdStop}},
		{"morph down", keyDown(sdl.K_MINUS, false), command{kind: cmdNudgeMorph, step: -1}},
		{"next morph", keyDown(sdl.K_RIGHTBRACKET, false), command{kind: cmdSelectMorph, step: 1}},
		{"next clip", keyDown(sdl.K_c, false), command{kind: cmdNextClip}},
		{"loop", keyDown(sdl.K_l, false), command{kind: cmdToggleLoop}},
		{"unbound", keyDown(sdl.K_z, false), command{}},
		{"key up ignored", input.Event{Type: input.EventKeyUp, Key: sdl.K_1}, command{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandFor(tt.ev); got != tt.want {
				t.Errorf("commandFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEveryMotionHasAKey(t *testing.T) {
	seen := make(map[motion.Key]bool)
	for _, shift := range []bool{false, true} {
		for _, k := range digitKeys {
			if c := commandFor(keyDown(k, shift)); c.kind == cmdPlay {
				seen[c.motion] = true
			}
		}
	}
	for _, key := range motion.Keys() {
		if !seen[key] {
			t.Errorf("motion %s has no key binding", key)
		}
	}
}

func TestHelpText(t *testing.T) {
	for _, want := range []string{"F12", "Shift+1-5", "clip", "drop a file"} {
		if !strings.Contains(HelpText(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestFrameLines(t *testing.T) {
	s := session.New(config.Default().Model, nil)
	grid := len(debug.GridLines(gridHalf, gridStep, debug.ColorGrid)) + len(debug.AxesLines(axesLen))

	if got := len(FrameLines(s, Layers{Grid: true, Bounds: true, Skeleton: true})); got != grid {
		t.Errorf("empty session drew %d vertices, want grid only (%d)", got, grid)
	}

	s.LoadDemo()
	skeleton := len(debug.SkeletonLines(s.Root(), nil))
	tests := []struct {
		name string
		l    Layers
		want int
	}{
		{"nothing", Layers{}, 0},
		{"grid", Layers{Grid: true}, grid},
		{"bounds", Layers{Bounds: true}, debug.BoxVertexCount},
		{"skeleton", Layers{Skeleton: true}, skeleton},
		{"all", Layers{Grid: true, Bounds: true, Skeleton: true}, grid + debug.BoxVertexCount + skeleton},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(FrameLines(s, tt.l)); got != tt.want {
				t.Errorf("vertices = %d, want %d", got, tt.want)
			}
		})
	}
}
