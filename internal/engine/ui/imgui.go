// Package ui wraps the cimgui-go SDL backend used by rigbrowser.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/internal/logger"
)

// latinGlyphRanges covers the accented names common in exported rigs.
// Format: pairs of [start, end] values terminated by 0.
var latinGlyphRanges = []imgui.Wchar{
	0x0020, 0x00FF, // Basic Latin + Latin Supplement
	0x0100, 0x017F, // Latin Extended-A
	0x2000, 0x206F, // General Punctuation
	0, // Terminator
}

// fontPaths are tried in order; the first that exists is loaded.
var fontPaths = []string{
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf", // macOS
	"/Library/Fonts/Arial Unicode.ttf",                     // macOS (symlink)
	"C:\\Windows\\Fonts\\segoeui.ttf",                      // Windows
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",      // Linux
	"/usr/share/fonts/TTF/DejaVuSans.ttf",                  // Linux alt
}

// Backend wraps the ImGui SDL backend.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	width   int32
	height  int32
}

// NewBackend creates the window, the ImGui context and loads GL.
func NewBackend(title string, width, height int32, bg [3]float32) (*Backend, error) {
	b := &Backend{
		width:  width,
		height: height,
	}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	// Fonts must be added before the first frame builds the atlas.
	b.backend.SetAfterCreateContextHook(b.loadFont)

	b.backend.SetBgColor(imgui.NewVec4(bg[0], bg[1], bg[2], 1.0))
	b.backend.CreateWindow(title, int(width), int(height))

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("init opengl: %w", err)
	}
	return b, nil
}

func (b *Backend) loadFont() {
	fontPath := findFont(fontPaths)
	if fontPath == "" {
		logger.Debug("no system font found, using ImGui default")
		return
	}

	fontCfg := imgui.NewFontConfig()
	defer fontCfg.Destroy()

	fonts := imgui.CurrentIO().Fonts()
	if fonts.AddFontFromFileTTFV(fontPath, 16.0, fontCfg, &latinGlyphRanges[0]) == nil {
		logger.Warn("failed to load font", zap.String("path", fontPath))
		return
	}
	logger.Debug("loaded font", zap.String("path", fontPath))
}

// findFont returns the first existing path, or "".
func findFont(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Run starts the main render loop.
func (b *Backend) Run(renderFunc func()) {
	b.backend.Run(renderFunc)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// WindowSize returns the size the window was created with.
func (b *Backend) WindowSize() (int32, int32) {
	return b.width, b.height
}

// Viewport returns the main viewport work area, which excludes the menu bar.
func (b *Backend) Viewport() (pos, size imgui.Vec2) {
	viewport := imgui.MainViewport()
	return viewport.WorkPos(), viewport.WorkSize()
}

// IsKeyPressed checks if a key was pressed this frame.
func IsKeyPressed(key imgui.Key) bool {
	return imgui.IsKeyChordPressed(imgui.KeyChord(key))
}

// IsShortcutPressed checks a key with a modifier, e.g. Ctrl+O.
func IsShortcutPressed(mod, key imgui.Key) bool {
	return imgui.IsKeyChordPressed(imgui.KeyChord(mod) | imgui.KeyChord(key))
}
