package rsgview

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a viewer script.
type scriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	Key    string  `yaml:"key,omitempty"`
	Side   string  `yaml:"side,omitempty"`
	ID     int     `yaml:"id,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	FromX  float64 `yaml:"fromX,omitempty"`
	FromY  float64 `yaml:"fromY,omitempty"`
	ToX    float64 `yaml:"toX,omitempty"`
	ToY    float64 `yaml:"toY,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
}

type viewerScript struct {
	Steps []scriptStep `yaml:"steps"`
}

// ScriptRunner sequences input, key presses, selections and screenshots
// across frames, for unattended captures of a running match.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a YAML (or JSON) viewer script.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var script viewerScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse viewer script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse viewer script: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse viewer script: step %d: %w", i+1, err)
		}
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

func (st scriptStep) validate() error {
	switch st.Action {
	case "screenshot", "click", "drag", "wait":
		return nil
	case "key":
		var k ebiten.Key
		return k.UnmarshalText([]byte(st.Key))
	case "select":
		if _, err := parseSide(st.Side); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

func parseSide(s string) (Side, error) {
	switch s {
	case "left", "l":
		return SideLeft, nil
	case "right", "r":
		return SideRight, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// SetScript attaches a runner. Its step method is called from Update
// before input is processed.
func (v *Viewer) SetScript(r *ScriptRunner) {
	v.script = r
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(v *Viewer) {
	if r.done {
		return
	}
	if len(v.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		v.Screenshot(st.Label)
	case "click":
		v.InjectClick(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "key":
		var k ebiten.Key
		if err := k.UnmarshalText([]byte(st.Key)); err == nil {
			v.HandleKey(k)
		}
	case "select":
		side, _ := parseSide(st.Side)
		if a := v.world.Agent(side, st.ID); a != nil {
			v.world.Select(a)
		} else {
			v.logger.Warn("script selects unknown agent", "agent", AgentKey{side, st.ID})
		}
		v.syncFollow()
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(v.injectQueue) == 0 {
		r.done = true
	}
}
