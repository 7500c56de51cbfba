package main

import (
	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/rigscope/internal/config"
	"github.com/Faultbox/rigscope/internal/engine/camera"
	"github.com/Faultbox/rigscope/internal/engine/debug"
	"github.com/Faultbox/rigscope/internal/engine/framebuffer"
	"github.com/Faultbox/rigscope/internal/engine/picking"
	"github.com/Faultbox/rigscope/internal/engine/renderer"
	"github.com/Faultbox/rigscope/internal/session"
	"github.com/Faultbox/rigscope/internal/viewer"
	"github.com/Faultbox/rigscope/pkg/math"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// Preview renders the session's skeleton into an offscreen texture shown
// as an ImGui image.
type Preview struct {
	fb       *framebuffer.Framebuffer
	renderer *renderer.Renderer
	camera   *camera.OrbitCamera
	Layers   viewer.Layers

	// Selected is the bone last clicked in the preview.
	Selected *scene.Node

	lastMouse imgui.Vec2
	pressed   bool
	dragged   bool
}

// Bone picking radius and marker size.
const (
	pickRadius = 12 // logical pixels
	markerSize = 0.03
)

// NewPreview creates the render target. Requires a current GL context.
func NewPreview(width, height int32, cfg config.ViewerConfig) (*Preview, error) {
	fb, err := framebuffer.New(width, height)
	if err != nil {
		return nil, err
	}
	w, h := fb.Size()
	r, err := renderer.New(renderer.Config{
		Width:      int(w),
		Height:     int(h),
		Background: cfg.Background,
		LineWidth:  2,
	})
	if err != nil {
		fb.Destroy()
		return nil, err
	}
	return &Preview{
		fb:       fb,
		renderer: r,
		camera:   camera.NewOrbitCamera(cfg.FOV),
		Layers:   viewer.Layers{Grid: cfg.Grid, Skeleton: true},
	}, nil
}

// Frame points the camera at b.
func (p *Preview) Frame(b scene.Bounds, padding float32) {
	p.camera.FitToBounds(b, padding)
}

// Render draws s at the given pixel size and returns the color texture.
func (p *Preview) Render(s *session.Session, width, height int32) uint32 {
	resized := p.fb.Resize(width, height)
	p.fb.Draw(func() {
		if resized {
			w, h := p.fb.Size()
			p.renderer.Resize(int(w), int(h))
		}
		p.renderer.Begin()
		lines := viewer.FrameLines(s, p.Layers)
		if p.Selected != nil {
			lines = append(lines, debug.MarkerLines(p.Selected.WorldPosition(), markerSize, debug.ColorHighlight)...)
		}
		p.renderer.DrawLines(lines, p.viewProj(p.renderer.Aspect()))
		p.renderer.End()
	})
	return p.fb.ColorTexture()
}

func (p *Preview) viewProj(aspect float32) math.Mat4 {
	return p.camera.ProjectionMatrix(aspect).Mul(p.camera.ViewMatrix())
}

// Pick selects the bone nearest to cursor, given in logical pixels
// relative to the image of the given size. A miss clears the selection.
func (p *Preview) Pick(s *session.Session, cursor, size imgui.Vec2) *scene.Node {
	p.Selected = nil
	if s.Root() == nil || size.X <= 0 || size.Y <= 0 {
		return nil
	}
	vp := picking.Viewport{Width: size.X, Height: size.Y}
	hit, ok := picking.NearestBone(s.Root(), p.viewProj(size.X/size.Y), vp, cursor.X, cursor.Y, pickRadius)
	if ok {
		p.Selected = hit.Node
	}
	return p.Selected
}

// Show renders s and draws it as an image filling size, with orbit and
// zoom while hovered.
func (p *Preview) Show(s *session.Session, size imgui.Vec2, scale imgui.Vec2) {
	tex := p.Render(s, int32(size.X*scale.X), int32(size.Y*scale.Y))
	origin := imgui.CursorScreenPos()

	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(tex))
	imgui.ImageWithBgV(
		*texRef,
		size,
		imgui.NewVec2(0, 1), // GL textures are bottom-up
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if !imgui.IsItemHovered() {
		return
	}
	mousePos := imgui.MousePos()
	if imgui.IsMouseClickedBool(imgui.MouseButtonLeft) {
		p.pressed = true
		p.dragged = false
	}
	if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
		p.camera.HandleDrag(mousePos.X-p.lastMouse.X, mousePos.Y-p.lastMouse.Y)
		p.dragged = true
	}
	p.lastMouse = mousePos

	// A click without drag picks a bone.
	if p.pressed && !imgui.IsMouseDown(imgui.MouseButtonLeft) {
		p.pressed = false
		if !p.dragged {
			p.Pick(s, imgui.NewVec2(mousePos.X-origin.X, mousePos.Y-origin.Y), size)
		}
	}

	if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
		p.camera.HandleZoom(wheel)
	}
}

// ReadPixels returns the last rendered preview as bottom-up RGBA rows.
func (p *Preview) ReadPixels() ([]byte, int, int) {
	return p.fb.ReadPixels()
}

// Destroy releases GL resources.
func (p *Preview) Destroy() {
	p.renderer.Close()
	p.fb.Destroy()
}
