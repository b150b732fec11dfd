package rsgview

import (
	"strconv"
	"strings"
	"testing"
)

func TestLoadScriptValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "steps: []", "no steps"},
		{"unknown action", "steps:\n  - action: dance", "unknown action"},
		{"bad key", "steps:\n  - action: key\n    key: NotAKey", "step 1"},
		{"bad side", "steps:\n  - action: wait\n  - action: select\n    side: middle\n    id: 1", "step 2"},
		{"not yaml", "steps: [", "parse viewer script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadScript err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParseSide(t *testing.T) {
	for in, want := range map[string]Side{"left": SideLeft, "l": SideLeft, "right": SideRight, "r": SideRight} {
		got, err := parseSide(in)
		if err != nil || got != want {
			t.Errorf("parseSide(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := parseSide("Left"); err == nil {
		t.Error("parseSide is case sensitive")
	}
}

func TestScriptRuns(t *testing.T) {
	w := newTestWorld(t)
	v := newTestViewer(t, w)
	r, err := LoadScript([]byte(`
steps:
  - action: select
    side: right
    id: 2
  - action: key
    key: F
  - action: wait
    frames: 3
  - action: screenshot
    label: kickoff
`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	v.SetScript(r)

	frames := 0
	for !r.Done() && frames < 20 {
		r.step(v)
		frames++
	}
	if !r.Done() {
		t.Fatal("script did not finish")
	}
	if frames != 6 {
		t.Errorf("frames = %d, want 6", frames)
	}
	if w.Selected() != Selectable(w.Agent(SideRight, 2)) {
		t.Errorf("Selected = %v, want right 2", w.Selected())
	}
	if !v.follow {
		t.Error("key F step did not turn on follow")
	}
	if len(v.screenshotQueue) != 1 || v.screenshotQueue[0] != "kickoff" {
		t.Errorf("screenshotQueue = %v", v.screenshotQueue)
	}
}

func TestScriptWaitsForInjectedInput(t *testing.T) {
	w := newTestWorld(t)
	v := newTestViewer(t, w)
	sx, sy := screenOf(v, Vec3{-3, 1, 0})
	r, err := LoadScript([]byte(`{"steps": [{"action": "click", "x": ` +
		strconv.FormatFloat(sx, 'f', -1, 64) + `, "y": ` + strconv.FormatFloat(sy, 'f', -1, 64) + `}, {"action": "screenshot"}]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}

	r.step(v)
	if len(v.injectQueue) != 2 {
		t.Fatalf("injectQueue = %d events, want 2", len(v.injectQueue))
	}
	r.step(v)
	if len(v.screenshotQueue) != 0 {
		t.Error("script ran ahead of queued input")
	}
	for v.processInjectedInput() {
	}
	r.step(v)
	if len(v.screenshotQueue) != 1 || !r.Done() {
		t.Errorf("screenshotQueue = %v done %v", v.screenshotQueue, r.Done())
	}
	if w.Selected() != Selectable(w.Agent(SideLeft, 1)) {
		t.Errorf("Selected = %v, want left 1", w.Selected())
	}
}
