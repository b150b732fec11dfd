package rsgview

import (
	"fmt"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	hudX          = 8
	hudY          = 6
	maxListedSets = 9
)

// hudInfo is everything the overlay shows, gathered once per frame.
type hudInfo struct {
	state     GameState
	selected  string
	follow    bool
	connected bool
	sets      []string
	visible   []bool
	showSets  bool
	fps       float64
	debug     map[CommandType]int
}

// hudText formats the overlay.
func hudText(h hudInfo) string {
	var b strings.Builder
	left, right := h.state.TeamName(SideLeft), h.state.TeamName(SideRight)
	if left == "" {
		left = "Left"
	}
	if right == "" {
		right = "Right"
	}
	fmt.Fprintf(&b, "%s %d : %d %s\n", left, h.state.ScoreLeft, h.state.ScoreRight, right)
	fmt.Fprintf(&b, "%s  half %d  %s\n", formatClock(h.state.Time), h.state.Half, h.state.PlayModeName())
	if !h.connected {
		b.WriteString("no scene\n")
	}
	if h.selected != "" {
		b.WriteString("selected: " + h.selected)
		if h.follow {
			b.WriteString(" (following)")
		}
		b.WriteByte('\n')
	}
	if h.showSets {
		b.WriteString("drawing sets:\n")
		for i, name := range h.sets {
			if i >= maxListedSets {
				fmt.Fprintf(&b, "  ... %d more\n", len(h.sets)-maxListedSets)
				break
			}
			mark := " "
			if h.visible[i] {
				mark = "x"
			}
			fmt.Fprintf(&b, "  %d [%s] %s\n", i+1, mark, name)
		}
	}
	if h.debug != nil {
		fmt.Fprintf(&b, "fps %.1f  tri %d  line %d  ring %d  disk %d  text %d\n", h.fps,
			h.debug[CommandTriangles], h.debug[CommandLine], h.debug[CommandRing],
			h.debug[CommandDisk], h.debug[CommandText])
	}
	return b.String()
}

// formatClock renders match time in seconds as m:ss.s.
func formatClock(t float64) string {
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	tenths := int(math.Round(t * 10))
	return fmt.Sprintf("%d:%02d.%d", tenths/600, tenths/10%60, tenths%10)
}

// gatherHUD collects the overlay contents.
func (v *Viewer) gatherHUD() hudInfo {
	h := hudInfo{
		state:     v.world.GameState(),
		follow:    v.follow,
		connected: v.world.Scene().State() == GraphPopulated,
		showSets:  v.showSets,
	}
	if sel := v.world.Selected(); sel != nil {
		h.selected = sel.Label()
	}
	if v.showSets {
		h.sets = v.drawings.SetNames()
		h.visible = make([]bool, len(h.sets))
		for i, name := range h.sets {
			h.visible[i] = v.drawings.Visible(name)
		}
	}
	if v.debug {
		h.fps = ebiten.ActualFPS()
		h.debug = countByType(v.commands)
	}
	return h
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, hudText(v.gatherHUD()), hudX, hudY)
}
