package rsgview

import (
	"testing"
)

func newTestViewer(t *testing.T, w *WorldModel) *Viewer {
	t.Helper()
	return NewViewer(w, NewDrawings(), ViewerOptions{
		Logger:        quietLogger(),
		ScreenshotDir: t.TempDir(),
		Width:         800,
		Height:        600,
	})
}

func commandsOn(v *Viewer, layer uint8) []RenderCommand {
	var out []RenderCommand
	for _, c := range v.commands {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

func TestViewerFitsFieldOnCreate(t *testing.T) {
	v := newTestViewer(t, newTestWorld(t))
	// 12 x 8 field plus a 1 m margin in 800 x 600: width limits.
	if want := 800.0 / 14; !approxEqual(v.Camera().Zoom, want, 1e-9) {
		t.Errorf("Zoom = %v, want %v", v.Camera().Zoom, want)
	}
	if !v.fitted {
		t.Error("fitted = false")
	}
}

func TestBuildCommandsField(t *testing.T) {
	v := newTestViewer(t, newTestWorld(t))
	v.buildCommands()

	field := commandsOn(v, layerField)
	if len(field) != 22 {
		t.Errorf("field commands = %d, want 22", len(field))
	}
	if field[0].Type != CommandTriangles || len(field[0].inds) != 6 {
		t.Errorf("first field command = %v with %d indices, want the pitch quad", field[0].Type, len(field[0].inds))
	}
}

func TestBuildCommandsAgentsAndBall(t *testing.T) {
	w := newTestWorld(t)
	v := newTestViewer(t, w)
	w.Select(w.Agent(SideLeft, 1))
	v.buildCommands()

	cam := v.Camera()
	leftPos := cam.Project(Vec3{-3, 1, 0})
	ballPos := cam.Project(Vec3{1, 2, 0})

	var agentDisk, ball, ring bool
	var labels []string
	for _, c := range v.commands {
		switch {
		case c.Type == CommandDisk && c.Color == toColor32(leftTeamColor):
			agentDisk = approxEqual(float64(c.X0), leftPos.X, 1e-3) && approxEqual(float64(c.Y0), leftPos.Y, 1e-3)
		case c.Type == CommandDisk && c.Color == toColor32(ballColor):
			ball = approxEqual(float64(c.X0), ballPos.X, 1e-3) && approxEqual(float64(c.Y0), ballPos.Y, 1e-3)
			if c.Radius < minBallPx {
				t.Errorf("ball radius = %v, want at least %v", c.Radius, minBallPx)
			}
		case c.Type == CommandRing && c.Color == toColor32(selectionColor):
			ring = approxEqual(float64(c.X0), leftPos.X, 1e-3)
		case c.Type == CommandText:
			labels = append(labels, c.Text)
		}
	}
	if !agentDisk {
		t.Error("no left agent disk at the agent position")
	}
	if !ball {
		t.Error("no ball disk at the ball position")
	}
	if !ring {
		t.Error("no selection ring around left 1")
	}
	if len(labels) != 2 || labels[0] != "1" || labels[1] != "2" {
		t.Errorf("labels = %v, want [1 2]", labels)
	}
}

func TestBuildCommandsCullsOffscreenMarkers(t *testing.T) {
	w := newTestWorld(t)
	v := newTestViewer(t, w)
	cam := v.Camera()

	markers := func() int {
		n := 0
		for _, c := range v.commands {
			if c.Type == CommandDisk && c.Layer == layerScene {
				n++
			}
		}
		return n
	}

	v.buildCommands()
	if got := markers(); got != 3 {
		t.Fatalf("markers = %d, want 3 (two agents and the ball)", got)
	}

	// Center the view on the right agent, zoomed in so the others leave.
	cam.X, cam.Y, cam.Zoom = 4, -2, 400
	cam.MarkDirty()
	v.buildCommands()
	if got := markers(); got != 1 {
		t.Errorf("markers = %d, want 1 (right 2 only)", got)
	}
	for _, c := range v.commands {
		if c.Type == CommandText && c.Layer == layerLabels && c.Text == "1" {
			t.Error("label of culled left 1 still emitted")
		}
	}
}

func TestBuildCommandsDrawings(t *testing.T) {
	w := newTestWorld(t)
	v := newTestViewer(t, w)
	d := v.drawings

	d.AddShape("plan", Line{Start: Vec3{0, 0, 0}, End: Vec3{1, 0, 0}, Thickness: 0.2, Color: ColorWhite})
	d.AddShape("hidden", Point{Size: 4, Color: ColorWhite})
	d.AddAnnotation("plan", Annotation{Text: "go", Position: Vec3{2, 0, 0}, Color: ColorWhite})
	d.SetAgentAnnotation(AgentAnnotation{Agent: AgentKey{SideRight, 2}, Text: "mark", Color: ColorWhite})
	d.SwapBuffers("")
	d.SetVisible("hidden", false)

	v.buildCommands()

	drawn := commandsOn(v, layerDrawings)
	if len(drawn) != 1 || drawn[0].Type != CommandLine {
		t.Fatalf("drawing commands = %+v, want one line", drawn)
	}
	if drawn[0].Width != 1 {
		t.Errorf("line width = %v, want the 1 px minimum", drawn[0].Width)
	}

	var texts []string
	for _, c := range commandsOn(v, layerLabels) {
		texts = append(texts, c.Text)
	}
	want := map[string]bool{"1": true, "2": true, "go": true, "mark": true}
	if len(texts) != len(want) {
		t.Errorf("labels = %v, want %d", texts, len(want))
	}
	for _, s := range texts {
		if !want[s] {
			t.Errorf("unexpected label %q", s)
		}
	}
}

func TestBuildCommandsStandardMesh(t *testing.T) {
	w := NewWorldModel(quietLogger())
	msg := `(RSG 0 1)(
		(nd TRF (SLT 1 0 0 0 0 1 0 0 0 0 1 0 0 0 0.5 1) (nd SMN (load StdUnitBox) (sSc 0.5 0.5 0.5) (sMat matRed)))
		(nd SMN (load StdUnitSphere) (setVisible 0))
		(nd SMN (load StdTeapot))
		(nd SMN (load StdTeapot))
		(nd StaticMesh (load models/lupperarm.obj) (resetMaterials matRight matNum3)))`
	if err := w.HandleMessage([]byte(msg)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	v := newTestViewer(t, w)
	v.buildCommands()

	var tris, limbs int
	for _, c := range commandsOn(v, layerScene) {
		switch c.Type {
		case CommandTriangles:
			tris++
			if len(c.inds)%3 != 0 || len(c.inds) == 0 {
				t.Errorf("triangle command with %d indices", len(c.inds))
			}
			if c.Depth != 0.5 {
				t.Errorf("mesh depth = %v, want 0.5", c.Depth)
			}
		case CommandDisk:
			limbs++
		}
	}
	if tris != 1 {
		t.Errorf("triangle commands = %d, want 1 (the hidden sphere is skipped)", tris)
	}
	if limbs != 1 {
		t.Errorf("limb markers = %d, want 1", limbs)
	}
	if len(v.meshErrs) != 1 {
		t.Errorf("meshErrs = %v, want one entry", v.meshErrs)
	}
	if v.meshes.Len() != 1 {
		t.Errorf("cached meshes = %d, want 1", v.meshes.Len())
	}
}

func TestMergeSortOrder(t *testing.T) {
	v := newTestViewer(t, NewWorldModel(quietLogger()))
	v.commands = v.commands[:0]
	v.treeOrder = 0
	v.emit(RenderCommand{Text: "label", Layer: layerLabels})
	v.emit(RenderCommand{Text: "high", Layer: layerScene, Depth: 1})
	v.emit(RenderCommand{Text: "low-a", Layer: layerScene, Depth: 0})
	v.emit(RenderCommand{Text: "field", Layer: layerField})
	v.emit(RenderCommand{Text: "low-b", Layer: layerScene, Depth: 0})
	v.mergeSort()

	want := []string{"field", "low-a", "low-b", "high", "label"}
	for i, c := range v.commands {
		if c.Text != want[i] {
			t.Errorf("commands[%d] = %q, want %q", i, c.Text, want[i])
		}
	}
}

func TestMergeSortLargeStable(t *testing.T) {
	v := newTestViewer(t, NewWorldModel(quietLogger()))
	v.commands = v.commands[:0]
	v.treeOrder = 0
	for i := range 1000 {
		v.emit(RenderCommand{Layer: uint8(i % 4), Depth: float64(i % 7)})
	}
	v.mergeSort()
	for i := 1; i < len(v.commands); i++ {
		if !commandLessOrEqual(v.commands[i-1], v.commands[i]) {
			t.Fatalf("commands[%d] and [%d] out of order", i-1, i)
		}
	}
}

func TestCanvasCommands(t *testing.T) {
	v := newTestViewer(t, NewWorldModel(quietLogger()))
	v.camera.Zoom = 10
	v.camera.MarkDirty()
	v.commands = v.commands[:0]
	c := v.canvas(layerDrawings)

	c.Circle(Vec3{}, 2, 0, ColorWhite)
	c.Dot(Vec3{}, 6, ColorWhite)
	c.Sphere(Vec3{}, 0.01, ColorWhite)
	c.Polygon([]Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0.3}}, ColorWhite)
	c.Polygon([]Vec3{{0, 0, 0}, {1, 0, 0}}, ColorWhite)
	c.Text(Vec3{}, "", ColorWhite)
	c.Text(Vec3{}, "hi", ColorWhite)

	if len(v.commands) != 5 {
		t.Fatalf("commands = %d, want 5", len(v.commands))
	}
	if r := v.commands[0]; r.Type != CommandRing || r.Radius != 20 || r.Width != 1 {
		t.Errorf("circle = %+v, want ring of 20 px, width 1", r)
	}
	if d := v.commands[1]; d.Type != CommandDisk || d.Radius != 3 {
		t.Errorf("dot radius = %v, want 3", d.Radius)
	}
	if s := v.commands[2]; s.Radius != 1 {
		t.Errorf("tiny sphere radius = %v, want 1", s.Radius)
	}
	p := v.commands[3]
	if len(p.verts) != 4 || len(p.inds) != 6 || p.Depth != 0.3 {
		t.Errorf("polygon = %d verts %d inds depth %v, want 4, 6, 0.3", len(p.verts), len(p.inds), p.Depth)
	}
	if v.commands[4].Text != "hi" {
		t.Errorf("text = %q, want hi", v.commands[4].Text)
	}
}

func TestMaterialColor(t *testing.T) {
	if got := materialColor([]string{"matUnknown", "matRed"}); got != materialColors["matRed"] {
		t.Errorf("materialColor = %v, want red", got)
	}
	if got := materialColor(nil); got != (Color{0.7, 0.7, 0.7, 1}) {
		t.Errorf("materialColor(nil) = %v, want grey", got)
	}
	if got := lighten(Color{0, 0.5, 1, 0.5}, 0.5); got != (Color{0.5, 0.75, 1, 0.5}) {
		t.Errorf("lighten = %v", got)
	}
}

func TestCountByType(t *testing.T) {
	counts := countByType([]RenderCommand{{Type: CommandLine}, {Type: CommandLine}, {Type: CommandText}})
	if counts[CommandLine] != 2 || counts[CommandText] != 1 || counts[CommandDisk] != 0 {
		t.Errorf("countByType = %v", counts)
	}
}
