package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/rigscope/internal/motion"
	"github.com/Faultbox/rigscope/internal/rig"
	"github.com/Faultbox/rigscope/internal/session"
	"github.com/Faultbox/rigscope/pkg/formats"
	"github.com/Faultbox/rigscope/pkg/scene"
)

// Layout dimensions.
const (
	leftPanelWidth  = float32(320)
	rightPanelWidth = float32(280)
	statusBarHeight = float32(30)
	statusTimeout   = 4 * time.Second
)

var (
	colorOK      = imgui.NewVec4(0.4, 0.85, 0.45, 1)
	colorMissing = imgui.NewVec4(0.9, 0.45, 0.35, 1)
	colorActive  = imgui.NewVec4(1.0, 0.8, 0.3, 1)
)

func (app *App) renderMenu() {
	if !imgui.BeginMainMenuBar() {
		return
	}
	if imgui.BeginMenu("File") {
		if imgui.MenuItemBool("Open Model... (Ctrl+O)") {
			app.openFileDialog()
		}
		if imgui.MenuItemBool("Load Mannequin") {
			app.OpenDemo()
		}
		imgui.Separator()
		if imgui.MenuItemBool("Screenshot (F12)") {
			app.screenshotRequested = true
		}
		imgui.Separator()
		if imgui.MenuItemBool("Exit") {
			os.Exit(0)
		}
		imgui.EndMenu()
	}
	if imgui.BeginMenu("View") {
		l := &app.preview.Layers
		if imgui.MenuItemBool(checkLabel("Grid", l.Grid)) {
			l.Grid = !l.Grid
		}
		if imgui.MenuItemBool(checkLabel("Bounds", l.Bounds)) {
			l.Bounds = !l.Bounds
		}
		if imgui.MenuItemBool(checkLabel("Skeleton", l.Skeleton)) {
			l.Skeleton = !l.Skeleton
		}
		imgui.Separator()
		if imgui.MenuItemBool("Frame Model") {
			if b, ok := app.session.Bounds(); ok {
				app.preview.Frame(b, app.cfg.Model.FitPadding)
			}
		}
		imgui.EndMenu()
	}
	imgui.EndMainMenuBar()
}

func checkLabel(label string, on bool) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

func (app *App) renderLayout() {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()
	contentHeight := workSize.Y - statusBarHeight
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(leftPanelWidth, contentHeight))
	if imgui.BeginV("Model", nil, flags) {
		app.renderModelPanel()
	}
	imgui.End()

	previewWidth := workSize.X - leftPanelWidth - rightPanelWidth
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+leftPanelWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(previewWidth, contentHeight))
	if imgui.BeginV("Preview", nil, flags|imgui.WindowFlagsNoScrollbar) {
		avail := imgui.ContentRegionAvail()
		avail.Y -= imgui.FrameHeightWithSpacing()
		if avail.X > 1 && avail.Y > 1 {
			app.preview.Show(app.session, avail, imgui.CurrentIO().DisplayFramebufferScale())
		}
		imgui.TextDisabled("Drag to orbit, scroll to zoom, Space stops the motion")
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-rightPanelWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(rightPanelWidth, contentHeight))
	if imgui.BeginV("Motions", nil, flags) {
		app.renderMotionPanel()
		imgui.Separator()
		app.renderMorphPanel()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X, workPos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, statusBarHeight))
	if imgui.BeginV("Status", nil, flags|imgui.WindowFlagsNoTitleBar|imgui.WindowFlagsNoScrollbar) {
		app.renderStatusBar()
	}
	imgui.End()
}

func (app *App) renderModelPanel() {
	m := app.session.Model()
	if m == nil {
		imgui.TextDisabled("No model loaded")
		return
	}
	r := app.session.Report()

	imgui.TextWrapped(m.Path)
	imgui.TextDisabled(m.Format.String())
	for i, c := range r.Chips {
		if i > 0 {
			imgui.SameLine()
		}
		col := colorOK
		if !c.OK {
			col = colorMissing
		}
		imgui.TextColored(col, "["+c.Label+"]")
	}
	imgui.Spacing()

	if sel := app.preview.Selected; sel != nil {
		pos := sel.WorldPosition()
		label := sel.Name
		if role, ok := roleOf(app.session.Rig(), sel); ok {
			label += " (" + string(role) + ")"
		}
		imgui.TextColored(colorActive, "Selected: "+label)
		imgui.TextDisabled(fmt.Sprintf("%.3f %.3f %.3f", pos.X, pos.Y, pos.Z))
		imgui.Spacing()
	}

	if imgui.BeginTable("stats", 2) {
		row := func(k, v string) {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(k)
			imgui.TableNextColumn()
			imgui.Text(v)
		}
		row("Meshes", fmt.Sprint(r.MeshCount))
		row("Skinned", fmt.Sprint(r.SkinnedCount))
		row("Bones", fmt.Sprint(r.BoneCount))
		row("Morph meshes", fmt.Sprint(r.MorphMeshCount))
		row("Clips", fmt.Sprint(r.ClipCount))
		row("Weighted", r.WeightedPct())
		row("Avg influences", r.AvgInf())
		row("Max influences", fmt.Sprint(r.MaxInfluences))
		imgui.EndTable()
	}

	if imgui.TreeNodeExStrV("Joint roles", imgui.TreeNodeFlagsDefaultOpen) {
		rg := app.session.Rig()
		for _, role := range rig.Roles() {
			j := rg.Joint(role)
			if j.Ok() {
				imgui.TextColored(colorOK, fmt.Sprintf("%-15s %s", role, j.Node().Name))
			} else {
				imgui.TextDisabled(fmt.Sprintf("%-15s -", role))
			}
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeExStrV("Bones", 0) {
		if r.BoneTree == "" {
			imgui.TextDisabled("(no bones found)")
		} else {
			imgui.BeginChildStrV("bonetree", imgui.NewVec2(0, 240), imgui.ChildFlagsBorders, 0)
			for _, line := range strings.Split(r.BoneTree, "\n") {
				imgui.Text(line)
			}
			imgui.EndChild()
		}
		imgui.TreePop()
	}

	if len(r.Clips) > 0 && imgui.TreeNodeExStrV("Clips", 0) {
		app.renderClipControls(r.Clips)
		imgui.TreePop()
	}
}

// renderClipControls lists the authored clips with play buttons and the
// shared speed and loop settings.
func (app *App) renderClipControls(clips []formats.Clip) {
	st := app.session.ClipStatus()
	for i, c := range clips {
		label := fmt.Sprintf("%s  %.2fs##clip%d", c.Name, c.Duration, i)
		if st.Index == i {
			label = "> " + label
		}
		if imgui.ButtonV(label, imgui.NewVec2(-1, 0)) {
			app.playClip(i)
		}
	}

	if st.Index >= 0 {
		imgui.ProgressBarV(progress(st.Time, st.Duration), imgui.NewVec2(-1, 0), st.Name)
	}
	if imgui.Button("Stop clip") {
		app.session.StopClip()
	}
	imgui.SameLine()
	loop := st.Loop
	if imgui.Checkbox("Loop", &loop) {
		app.session.SetClipLoop(loop)
	}
	speed := float32(st.Speed)
	imgui.SetNextItemWidth(120)
	if imgui.SliderFloatV("Speed", &speed, session.MinClipSpeed, session.MaxClipSpeed, "%.1fx", imgui.SliderFlagsNone) {
		app.session.SetClipSpeed(float64(speed))
	}
}

func (app *App) renderMotionPanel() {
	p := app.session.Player()
	avail := p.Availability()

	imgui.Text("Motions")
	if key := p.Active(); key != "" {
		def, _ := motion.Lookup(key)
		imgui.ProgressBarV(progress(p.LocalTime(), def.Duration), imgui.NewVec2(-1, 0), def.Label)
	} else {
		imgui.ProgressBarV(0, imgui.NewVec2(-1, 0), "idle")
	}

	for _, d := range motion.Catalog() {
		imgui.BeginDisabledV(!avail[d.Key])
		label := d.Label
		if p.Active() == d.Key {
			label = "> " + label
		}
		if imgui.ButtonV(label+"##"+string(d.Key), imgui.NewVec2(-1, 0)) {
			app.play(d.Key)
		}
		imgui.EndDisabled()
		if imgui.IsItemHovered() {
			imgui.SetTooltip(fmt.Sprintf("%s (%.1fs)", d.Description, d.Duration))
		}
	}

	if imgui.Button("Stop") {
		p.Stop()
	}
	imgui.SameLine()
	if imgui.Button("Neutral face") {
		p.Stop()
		app.session.ClearFace()
	}
}

func (app *App) renderMorphPanel() {
	chans := app.session.Rig().Channels()
	imgui.Text(fmt.Sprintf("Morph channels (%d)", len(chans)))
	if len(chans) == 0 {
		imgui.TextDisabled("none")
		return
	}
	imgui.Checkbox("Face channels only", &app.showFace)

	imgui.BeginChildStrV("morphs", imgui.NewVec2(0, 0), imgui.ChildFlagsBorders, 0)
	for _, ch := range filterChannels(chans, app.showFace) {
		v := app.session.Rig().Value(ch)
		imgui.SetNextItemWidth(120)
		if imgui.SliderFloatV(ch.Name(), &v, 0, 1, "%.2f", imgui.SliderFlagsNone) {
			app.session.SetChannel(ch, v)
		}
	}
	imgui.EndChild()
}

func (app *App) renderStatusBar() {
	p := app.session.Player()
	if key := p.Active(); key != "" {
		imgui.TextColored(colorActive, fmt.Sprintf("Playing %s  t=%.2fs", key, p.LocalTime()))
	} else if st := app.session.ClipStatus(); st.Index >= 0 {
		imgui.TextColored(colorActive, fmt.Sprintf("Clip %s  t=%.2f/%.2fs", st.Name, st.Time, st.Duration))
	} else {
		imgui.TextDisabled("Idle")
	}
	if app.statusMsg != "" && time.Since(app.statusTime) < statusTimeout {
		imgui.SameLine()
		imgui.Text("|  " + app.statusMsg)
	}
	imgui.SameLine()
	imgui.TextDisabled(fmt.Sprintf("|  %.0f fps", imgui.CurrentIO().Framerate()))
}

// roleOf returns the joint role bound to n, if any.
func roleOf(r *rig.Rig, n *scene.Node) (rig.Role, bool) {
	for _, role := range rig.Roles() {
		if r.Joint(role).Node() == n {
			return role, true
		}
	}
	return "", false
}

// progress is the fraction of duration elapsed, in [0, 1].
func progress(t, duration float64) float32 {
	if duration <= 0 {
		return 0
	}
	return float32(min(max(t/duration, 0), 1))
}

// filterChannels keeps only facial channels when faceOnly is set.
func filterChannels(chans []rig.Channel, faceOnly bool) []rig.Channel {
	if !faceOnly {
		return chans
	}
	var out []rig.Channel
	for _, ch := range chans {
		if isFaceChannel(ch.Name()) {
			out = append(out, ch)
		}
	}
	return out
}

func isFaceChannel(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range rig.FacePrefixes {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
