package rsgview

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const defaultCommandCap = 1024

// ViewerOptions configures NewViewer.
type ViewerOptions struct {
	Logger        *slog.Logger
	ScreenshotDir string
	ShowHUD       bool
	Width, Height int
}

// Viewer is the ebiten game that draws the world and the debug drawings
// and handles camera and selection input.
type Viewer struct {
	world    *WorldModel
	drawings *Drawings
	logger   *slog.Logger

	camera   *Camera
	meshes   *MeshCache
	meshErrs map[string]bool

	// Render state
	commands  []RenderCommand
	sortBuf   []RenderCommand
	treeOrder int
	cull      Rect // world area whose markers are drawn this frame

	// Input state
	pointer      pointerState
	dragDeadZone float64
	injectQueue  []syntheticPointerEvent
	keyBuf       []ebiten.Key
	script       *ScriptRunner

	follow   bool
	showHUD  bool
	showSets bool
	debug    bool

	lastDebugLog    time.Time
	screenshotDir   string
	screenshotQueue []string

	width, height int
	fitted        bool
}

// NewViewer returns a viewer over world and drawings.
func NewViewer(world *WorldModel, drawings *Drawings, opts ViewerOptions) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	v := &Viewer{
		world:         world,
		drawings:      drawings,
		logger:        logger,
		meshes:        NewMeshCache(),
		meshErrs:      make(map[string]bool),
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:       make([]RenderCommand, 0, defaultCommandCap),
		dragDeadZone:  defaultDragDeadZone,
		showHUD:       opts.ShowHUD,
		screenshotDir: opts.ScreenshotDir,
		width:         opts.Width,
		height:        opts.Height,
	}
	v.camera = newCamera(Rect{Width: float64(opts.Width), Height: float64(opts.Height)})
	if opts.Width > 0 && opts.Height > 0 {
		v.fitField()
	}
	return v
}

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *Camera { return v.camera }

// SetDebugMode enables per-frame stats in the log and the overlay.
func (v *Viewer) SetDebugMode(enabled bool) { v.debug = enabled }

// fitField frames the whole field.
func (v *Viewer) fitField() {
	s := v.world.GameState()
	v.camera.FitField(s.FieldLength, s.FieldWidth, fieldMargin)
	v.fitted = true
}

// Update advances the camera and handles input. Implements ebiten.Game.
func (v *Viewer) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	if v.script != nil {
		v.script.step(v)
	}
	v.processInput()
	v.syncFollow()
	v.camera.update(dt)
	return nil
}

// Draw renders one frame. Implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundCol.toRGBA())

	var stats debugStats
	var t0 time.Time
	if v.debug {
		t0 = time.Now()
	}

	v.buildCommands()

	if v.debug {
		stats.buildTime = time.Since(t0)
		t0 = time.Now()
	}

	v.mergeSort()

	if v.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(v.commands)
		t0 = time.Now()
	}

	stats.drawCallCount = v.submitCommands(screen)

	if v.debug {
		stats.submitTime = time.Since(t0)
		stats.meshCount = v.meshes.Len()
		v.debugLog(stats)
	}

	if v.showHUD {
		v.drawHUD(screen)
	}
	v.flushScreenshots(screen)
}

// Layout tracks the window size and keeps the camera viewport matching
// it. Implements ebiten.Game.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		v.width, v.height = outsideWidth, outsideHeight
		v.camera.Viewport = Rect{Width: float64(outsideWidth), Height: float64(outsideHeight)}
		v.camera.MarkDirty()
		if !v.fitted {
			v.fitField()
		}
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and runs the viewer until it is closed.
func Run(v *Viewer, title string, width, height int) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(v)
}
