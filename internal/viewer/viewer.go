// Package viewer runs the interactive SDL window: an orbit camera around the
// loaded model, line rendering of its skeleton and keyboard control of the
// motion player.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/engine/camera"
	"github.com/Faultbox/rigscope/internal/engine/debug"
	"github.com/Faultbox/rigscope/internal/engine/input"
	"github.com/Faultbox/rigscope/internal/engine/renderer"
	"github.com/Faultbox/rigscope/internal/engine/window"
	"github.com/Faultbox/rigscope/internal/logger"
	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/session"
)

const title = "rigscope"

// Viewer is the interactive model viewer.
type Viewer struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	session  *session.Session
	shots    *debug.ScreenshotCapture

	running bool
	started time.Time
	now     float64 // seconds since start, the player clock

	layers     Layers
	lastMotion motion.Key

	opened     chan string // paths chosen in the file dialog
	dialogOpen bool
}

// New opens the window and prepares an empty session.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		camera: camera.NewOrbitCamera(cfg.Viewer.FOV),
		shots:  debug.NewScreenshotCapture(cfg.Screenshot.Dir, cfg.Screenshot.Prefix, cfg.Screenshot.Format),
		layers: Layers{Grid: cfg.Viewer.Grid, Skeleton: true},
		opened: make(chan string, 1),
	}
	v.log.Info("initializing viewer",
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
		zap.Bool("fullscreen", cfg.Viewer.Fullscreen),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		Background: cfg.Viewer.Background,
		LineWidth:  2,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Resize(w, h)

	v.input = input.New()
	v.session = session.New(cfg.Model, logger.Named("session"),
		motion.WithClock(func() float64 { return v.now }),
		motion.WithSeed(cfg.Motion.Seed),
	)
	v.started = time.Now()

	v.log.Info("viewer initialized")
	return v, nil
}

// Open loads a model file into the session and frames it.
func (v *Viewer) Open(path string) error {
	if err := v.session.Load(path); err != nil {
		return err
	}
	v.afterLoad()
	return nil
}

// OpenDemo loads the built-in mannequin.
func (v *Viewer) OpenDemo() {
	v.session.LoadDemo()
	v.afterLoad()
}

func (v *Viewer) afterLoad() {
	v.frame()
	v.lastMotion = ""
	if key := motion.Key(v.cfg.Motion.Default); key != "" {
		v.play(key)
	}
	v.updateTitle()
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")
	v.log.Debug(HelpText())

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now
		v.now = now.Sub(v.started).Seconds()

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.pollDialog()

		v.update(dt)
		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if v.cfg.Viewer.ShowFPS {
				v.window.SetTitle(fmt.Sprintf("%s (%d fps)", v.titleText(), frameCount))
			}
			v.log.Debug("fps", zap.Int("count", frameCount), zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases the renderer and window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) handleEvents() {
	for _, ev := range v.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventMouseMove:
			if v.input.IsButtonDown(sdl.BUTTON_LEFT) {
				v.camera.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
			}
		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(ev.DeltaY))
		case input.EventDropFile:
			v.openLogged(ev.Path)
		case input.EventKeyDown:
			v.execute(commandFor(ev))
		}
	}
}

func (v *Viewer) execute(c command) {
	switch c.kind {
	case cmdQuit:
		v.running = false
	case cmdPlay:
		v.play(c.motion)
	case cmdReplay:
		if v.lastMotion != "" {
			v.play(v.lastMotion)
		}
	case cmdStop:
		v.session.Player().Stop()
		v.session.StopClip()
		v.updateTitle()
	case cmdReset:
		v.session.Player().Stop()
		v.session.Player().Reset()
		v.updateTitle()
	case cmdOpen:
		v.openDialog()
	case cmdScreenshot:
		v.screenshot()
	case cmdSelectMorph:
		if ch, ok := v.session.SelectChannel(c.step); ok {
			v.log.Info("morph selected", zap.String("channel", ch.Name()), zap.Float32("value", v.session.Rig().Value(ch)))
		}
	case cmdNudgeMorph:
		if ch, val, ok := v.session.NudgeChannel(float32(c.step) * morphStep); ok {
			v.log.Info("morph set", zap.String("channel", ch.Name()), zap.Float32("value", val))
		}
	case cmdClearFace:
		v.log.Info("face cleared", zap.Int("channels", v.session.ClearFace()))
	case cmdToggleGrid:
		v.layers.Grid = !v.layers.Grid
	case cmdToggleBounds:
		v.layers.Bounds = !v.layers.Bounds
	case cmdToggleSkeleton:
		v.layers.Skeleton = !v.layers.Skeleton
	case cmdFrame:
		v.frame()
	case cmdNextClip:
		v.nextClip()
	case cmdToggleLoop:
		loop := !v.session.ClipStatus().Loop
		v.session.SetClipLoop(loop)
		v.log.Info("clip looping", zap.Bool("loop", loop))
	}
}

// nextClip plays the clip after the current one, wrapping to the first.
func (v *Viewer) nextClip() {
	m := v.session.Model()
	if m == nil || len(m.Clips) == 0 {
		v.log.Info("model has no clips")
		return
	}
	next := (v.session.ClipStatus().Index + 1) % len(m.Clips)
	if err := v.session.PlayClip(next); err != nil {
		v.log.Warn("cannot play clip", zap.Error(err))
		return
	}
	v.updateTitle()
}

func (v *Viewer) play(key motion.Key) {
	if err := v.session.Play(key); err != nil {
		v.log.Warn("cannot play motion", zap.Error(err))
		return
	}
	v.lastMotion = key
	v.updateTitle()
}

func (v *Viewer) update(dt float64) {
	p := v.session.Player()
	wasPlaying := p.Playing()
	v.session.Update(v.now, dt)

	if wasPlaying && !p.Playing() {
		v.updateTitle()
		if key := motion.Key(v.cfg.Motion.Default); v.cfg.Motion.Autoplay && key != "" {
			v.play(key)
		}
	}
}

func (v *Viewer) render() error {
	v.renderer.Begin()
	view := v.camera.ViewMatrix()
	proj := v.camera.ProjectionMatrix(v.renderer.Aspect())
	v.renderer.DrawLines(FrameLines(v.session, v.layers), proj.Mul(view))
	v.renderer.End()
	return nil
}

func (v *Viewer) frame() {
	if b, ok := v.session.Bounds(); ok {
		v.camera.FitToBounds(b, v.cfg.Model.FitPadding)
	}
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) openLogged(path string) {
	if err := v.Open(path); err != nil {
		v.log.Error("cannot open model", zap.Error(err))
	}
}

// openDialog shows the native file picker off the main loop. The chosen
// path is handed back through v.opened.
func (v *Viewer) openDialog() {
	if v.dialogOpen {
		return
	}
	v.dialogOpen = true
	go func() {
		path, err := dialog.File().
			Filter("Models", "glb", "gltf", "vrm", "obj").
			Title("Open model").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				v.log.Error("file dialog failed", zap.Error(err))
			}
			path = ""
		}
		v.opened <- path
	}()
}

func (v *Viewer) pollDialog() {
	select {
	case path := <-v.opened:
		v.dialogOpen = false
		if path != "" {
			v.openLogged(path)
		}
	default:
	}
}

func (v *Viewer) titleText() string {
	t := title
	if m := v.session.Model(); m != nil {
		t += " - " + filepath.Base(m.Path)
	}
	if key := v.session.Player().Active(); key != "" {
		t += " [" + string(key) + "]"
	} else if st := v.session.ClipStatus(); st.Index >= 0 {
		t += " [clip " + st.Name + "]"
	}
	return t
}

func (v *Viewer) updateTitle() {
	v.window.SetTitle(v.titleText())
}
