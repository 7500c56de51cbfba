// rigbrowser - an ImGui tool for browsing a model's rig, morph channels and
// procedural motions.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/engine/debug"
	"github.com/Faultbox/rigscope/internal/engine/ui"
	"github.com/Faultbox/rigscope/internal/logger"
	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/session"
)

const appTitle = "Rig Browser"

func main() {
	runtime.LockOSThread()

	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	if path := config.ModelPath(); path != "" && !config.Demo() {
		if err := app.Open(path); err != nil {
			logger.Error("cannot open model", zap.Error(err))
		}
	} else {
		app.OpenDemo()
	}

	app.Run()
}

// App is the browser state.
type App struct {
	cfg *config.Config
	log *zap.Logger

	ui      *ui.Backend
	session *session.Session
	preview *Preview
	shots   *debug.ScreenshotCapture

	started   time.Time
	lastFrame time.Time
	now       float64

	// File dialog results, opened on the main thread.
	opened     chan string
	dialogOpen bool

	// Notification shown in the status bar.
	statusMsg  string
	statusTime time.Time

	screenshotRequested bool
	showFace            bool
}

// NewApp creates the window and the preview.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:      cfg,
		log:      logger.Named("rigbrowser"),
		shots:    debug.NewScreenshotCapture(cfg.Screenshot.Dir, cfg.Screenshot.Prefix, cfg.Screenshot.Format),
		opened:   make(chan string, 1),
		showFace: true,
	}

	var err error
	app.ui, err = ui.NewBackend(appTitle, int32(cfg.Viewer.Width), int32(cfg.Viewer.Height), cfg.Viewer.Background)
	if err != nil {
		return nil, err
	}
	app.preview, err = NewPreview(512, 512, cfg.Viewer)
	if err != nil {
		return nil, fmt.Errorf("creating preview: %w", err)
	}

	app.session = session.New(cfg.Model, logger.Named("session"),
		motion.WithClock(func() float64 { return app.now }),
		motion.WithSeed(cfg.Motion.Seed),
	)
	app.started = time.Now()
	app.lastFrame = app.started
	return app, nil
}

// Open loads a model file.
func (app *App) Open(path string) error {
	if err := app.session.Load(path); err != nil {
		return err
	}
	app.afterLoad()
	return nil
}

// OpenDemo loads the built-in mannequin.
func (app *App) OpenDemo() {
	app.session.LoadDemo()
	app.afterLoad()
}

func (app *App) afterLoad() {
	app.preview.Selected = nil
	if b, ok := app.session.Bounds(); ok {
		app.preview.Frame(b, app.cfg.Model.FitPadding)
	}
	if key := motion.Key(app.cfg.Motion.Default); key != "" {
		app.play(key)
	}
	app.ui.SetWindowTitle(fmt.Sprintf("%s - %s", appTitle, filepath.Base(app.session.Model().Path)))
}

// Close releases GL resources.
func (app *App) Close() {
	if app.preview != nil {
		app.preview.Destroy()
		app.preview = nil
	}
}

// Run starts the main loop.
func (app *App) Run() {
	app.ui.Run(app.render)
}

func (app *App) play(key motion.Key) {
	if err := app.session.Play(key); err != nil {
		app.notify(err.Error())
	}
}

func (app *App) playClip(index int) {
	if err := app.session.PlayClip(index); err != nil {
		app.notify(err.Error())
	}
}

func (app *App) notify(msg string) {
	app.log.Info(msg)
	app.statusMsg = msg
	app.statusTime = time.Now()
}

// openFileDialog shows the native picker off the main loop; the result is
// picked up by the next render.
func (app *App) openFileDialog() {
	if app.dialogOpen {
		return
	}
	app.dialogOpen = true
	go func() {
		filename, err := dialog.File().
			Filter("Models", "glb", "gltf", "vrm", "obj").
			Filter("All Files", "*").
			Title("Open Model").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				app.log.Error("file dialog failed", zap.Error(err))
			}
			filename = ""
		}
		app.opened <- filename
	}()
}

func (app *App) pollDialog() {
	select {
	case path := <-app.opened:
		app.dialogOpen = false
		if path == "" {
			return
		}
		if err := app.Open(path); err != nil {
			app.notify(err.Error())
		}
	default:
	}
}

// render is called each frame to advance the player and draw the UI.
func (app *App) render() {
	now := time.Now()
	dt := now.Sub(app.lastFrame).Seconds()
	app.lastFrame = now
	app.now = now.Sub(app.started).Seconds()

	// Capture at the start of the frame, after last frame's preview render.
	if app.screenshotRequested {
		app.screenshotRequested = false
		app.captureScreenshot()
	}

	app.pollDialog()
	app.handleShortcuts()

	p := app.session.Player()
	wasPlaying := p.Playing()
	app.session.Update(app.now, dt)
	if wasPlaying && !p.Playing() {
		if key := motion.Key(app.cfg.Motion.Default); app.cfg.Motion.Autoplay && key != "" {
			app.play(key)
		}
	}

	app.renderMenu()
	app.renderLayout()
}

func (app *App) handleShortcuts() {
	if ui.IsKeyPressed(imgui.KeyF12) {
		app.screenshotRequested = true
	}
	if ui.IsShortcutPressed(imgui.ModCtrl, imgui.KeyO) {
		app.openFileDialog()
	}
	if imgui.IsAnyItemActive() {
		return
	}
	if ui.IsKeyPressed(imgui.KeySpace) {
		app.session.Player().Stop()
		app.session.StopClip()
	}
}

func (app *App) captureScreenshot() {
	pixels, w, h := app.preview.ReadPixels()
	path, err := app.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		app.notify(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	app.notify("Saved: " + path)
}
