package rsgview

import (
	"time"
)

// debugStats holds per-frame timing and draw-call metrics.
// Only populated when the viewer's debug mode is on.
type debugStats struct {
	buildTime     time.Duration
	sortTime      time.Duration
	submitTime    time.Duration
	commandCount  int
	drawCallCount int
	meshCount     int
}

// debugLogInterval limits frame stats to one log line per interval.
const debugLogInterval = time.Second

// debugLog logs timing and draw-call stats, at most once per interval.
func (v *Viewer) debugLog(stats debugStats) {
	if !v.debug {
		return
	}
	now := time.Now()
	if now.Sub(v.lastDebugLog) < debugLogInterval {
		return
	}
	v.lastDebugLog = now
	v.logger.Debug("frame",
		"build", stats.buildTime,
		"sort", stats.sortTime,
		"submit", stats.submitTime,
		"total", stats.buildTime+stats.sortTime+stats.submitTime,
		"commands", stats.commandCount,
		"draw_calls", stats.drawCallCount,
		"cached_meshes", stats.meshCount,
		"generation", v.world.Scene().Generation())
}

// countByType tallies commands per type, for the debug overlay.
func countByType(commands []RenderCommand) map[CommandType]int {
	counts := make(map[CommandType]int)
	for i := range commands {
		counts[commands[i].Type]++
	}
	return counts
}
