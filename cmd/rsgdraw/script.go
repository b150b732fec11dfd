package main

import (
	"errors"
	"fmt"
	"math"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/phanxgames/rsgview"
)

// flushThreshold is the packet size at which pending commands are sent
// before the next one is added. It keeps datagrams under the UDP limit.
const flushThreshold = 60000

// sexpVec3 carries a position between builtins.
type sexpVec3 struct {
	vec rsgview.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpColor carries a color between builtins.
type sexpColor struct {
	color rsgview.Color
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgb %g %g %g %g)", c.color.R, c.color.G, c.color.B, c.color.A)
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

// drawScript evaluates drawing programs into packets. Each program runs in
// a fresh sandbox; frame counts completed runs so looping programs can
// animate.
type drawScript struct {
	builder *rsgview.PacketBuilder
	send    func([]byte) error
	frame   int
	packets int
}

func newDrawScript(send func([]byte) error) *drawScript {
	return &drawScript{builder: rsgview.NewPacketBuilder(), send: send}
}

// Run evaluates source once and sends whatever it drew.
func (s *drawScript) Run(source string) error {
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	s.register(env)

	if err := env.LoadString(source); err != nil {
		return fmt.Errorf("load script: %w", err)
	}
	if _, err := env.Run(); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	s.frame++
	return s.flush()
}

func (s *drawScript) flush() error {
	if s.builder.Len() == 0 {
		return nil
	}
	defer s.builder.Reset()
	s.packets++
	return s.send(s.builder.Bytes())
}

// reserve sends the pending packet if it has grown past the threshold.
func (s *drawScript) reserve() error {
	if s.builder.Len() < flushThreshold {
		return nil
	}
	return s.flush()
}

// register installs the drawing builtins. Optional trailing arguments
// default to white and the unnamed set.
func (s *drawScript) register(env *zygo.Zlisp) {
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 || len(args) > 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 takes 2 or 3 numbers, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			v, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
			}
			xyz[i] = v
		}
		return &sexpVec3{vec: rsgview.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})
	env.AddFunction("rgb", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 3 || len(args) > 4 {
			return zygo.SexpNull, fmt.Errorf("rgb takes 3 or 4 numbers, got %d", len(args))
		}
		c := [4]float64{0, 0, 0, 1}
		for i, a := range args {
			v, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rgb: %w", err)
			}
			c[i] = v
		}
		return &sexpColor{color: rsgview.Color{R: c[0], G: c[1], B: c[2], A: c[3]}}, nil
	})
	env.AddFunction("frame", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(s.frame)}, nil
	})
	env.AddFunction("sin", mathFunc(math.Sin))
	env.AddFunction("cos", mathFunc(math.Cos))

	s.command(env, "circle", 3, func(a *argList) {
		s.builder.Circle(a.vec(0), a.num(1), a.num(2), a.color(3), a.str(4))
	})
	s.command(env, "line", 3, func(a *argList) {
		s.builder.Line(a.vec(0), a.vec(1), a.num(2), a.color(3), a.str(4))
	})
	s.command(env, "point", 2, func(a *argList) {
		s.builder.Point(a.vec(0), a.num(1), a.color(2), a.str(3))
	})
	s.command(env, "sphere", 2, func(a *argList) {
		s.builder.Sphere(a.vec(0), a.num(1), a.color(2), a.str(3))
	})
	s.command(env, "polygon", 1, func(a *argList) {
		s.builder.Polygon(a.vecs(0), a.color(1), a.str(2))
	})
	s.command(env, "annotate", 2, func(a *argList) {
		s.builder.Annotation(a.str(0), a.vec(1), a.color(2), a.str(3))
	})
	s.command(env, "agent_note", 3, func(a *argList) {
		s.builder.AgentAnnotation(a.side(0), a.integer(1), a.color(3), a.str(2))
	})
	s.command(env, "agent_clear", 2, func(a *argList) {
		s.builder.ClearAgentAnnotation(a.side(0), a.integer(1))
	})
	s.command(env, "select_agent", 2, func(a *argList) {
		s.builder.SelectAgent(a.side(0), a.integer(1))
	})
	s.command(env, "swap", 0, func(a *argList) {
		s.builder.SwapBuffers(a.str(0))
	})
	env.AddFunction("flush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, s.flush()
	})
}

// command registers a builtin that appends one drawing command. An
// argument conversion or encoding error rolls the command back.
func (s *drawScript) command(env *zygo.Zlisp, name string, required int, fn func(*argList)) {
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < required {
			return zygo.SexpNull, fmt.Errorf("%s needs at least %d arguments, got %d", name, required, len(args))
		}
		if err := s.reserve(); err != nil {
			return zygo.SexpNull, err
		}
		mark := s.builder.Len()
		a := &argList{args: args}
		fn(a)
		if a.err == nil {
			a.err = s.builder.Err()
		}
		if a.err != nil {
			s.builder.Truncate(mark)
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, a.err)
		}
		return zygo.SexpNull, nil
	})
}

func mathFunc(f func(float64) float64) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s takes one number", name)
		}
		v, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &zygo.SexpFloat{Val: f(v)}, nil
	}
}

// argList reads builtin arguments by position. Missing optional
// arguments read as zero values, white, or the empty string. The first
// conversion error is kept in err.
type argList struct {
	args []zygo.Sexp
	err  error
}

func (a *argList) note(i int, err error) {
	if a.err == nil {
		a.err = fmt.Errorf("argument %d: %w", i+1, err)
	}
}

func (a *argList) get(i int) (zygo.Sexp, bool) {
	if i >= len(a.args) {
		return nil, false
	}
	return a.args[i], true
}

func (a *argList) num(i int) float64 {
	v, ok := a.get(i)
	if !ok {
		return 0
	}
	f, err := toFloat64(v)
	if err != nil {
		a.note(i, err)
	}
	return f
}

func (a *argList) integer(i int) int {
	return int(math.Round(a.num(i)))
}

func (a *argList) str(i int) string {
	v, ok := a.get(i)
	if !ok {
		return ""
	}
	str, ok := v.(*zygo.SexpStr)
	if !ok {
		a.note(i, fmt.Errorf("expected string, got %s", v.SexpString(nil)))
		return ""
	}
	return str.S
}

func (a *argList) vec(i int) rsgview.Vec3 {
	v, ok := a.get(i)
	if !ok {
		a.note(i, errors.New("missing vec3"))
		return rsgview.Vec3{}
	}
	p, err := toVec3(v)
	if err != nil {
		a.note(i, err)
	}
	return p
}

func (a *argList) vecs(i int) []rsgview.Vec3 {
	v, ok := a.get(i)
	if !ok {
		return nil
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		a.note(i, err)
		return nil
	}
	out := make([]rsgview.Vec3, 0, len(items))
	for _, item := range items {
		p, err := toVec3(item)
		if err != nil {
			a.note(i, err)
			return nil
		}
		out = append(out, p)
	}
	return out
}

func (a *argList) color(i int) rsgview.Color {
	v, ok := a.get(i)
	if !ok {
		return rsgview.ColorWhite
	}
	c, isColor := v.(*sexpColor)
	if !isColor {
		a.note(i, fmt.Errorf("expected color, got %s", v.SexpString(nil)))
		return rsgview.ColorWhite
	}
	return c.color
}

// side accepts "left"/"right" or 0/1.
func (a *argList) side(i int) rsgview.Side {
	v, ok := a.get(i)
	if !ok {
		return rsgview.SideLeft
	}
	if str, isStr := v.(*zygo.SexpStr); isStr {
		switch str.S {
		case "left", "l":
			return rsgview.SideLeft
		case "right", "r":
			return rsgview.SideRight
		}
		a.note(i, fmt.Errorf("unknown side %q", str.S))
		return rsgview.SideLeft
	}
	if a.integer(i) == 1 {
		return rsgview.SideRight
	}
	return rsgview.SideLeft
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (rsgview.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return rsgview.Vec3{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", s.SexpString(nil))
}
