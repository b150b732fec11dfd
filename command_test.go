package rsgview

import (
	"errors"
	"testing"
)

func TestSwapAfterCircle(t *testing.T) {
	d := NewDrawings()
	target := &DrawTarget{Drawings: d}
	data := NewPacketBuilder().
		Circle(Vec3{1, 1, 0}, 0.5, 1, ColorWhite, "ball").
		SwapBuffers("").
		Bytes()

	ran, err := ExecutePacket(data, target, quietLogger())
	if err != nil {
		t.Fatalf("ExecutePacket: %v", err)
	}
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
	set := d.ShapeSet("ball")
	front := set.FrontSnapshot()
	if len(front) != 1 {
		t.Fatalf("front = %d shapes, want 1", len(front))
	}
	if c, ok := front[0].(Circle); !ok || c.Radius != 0.5 {
		t.Errorf("front[0] = %#v, want the circle", front[0])
	}
	if set.BackLen() != 0 {
		t.Errorf("BackLen = %d, want 0", set.BackLen())
	}
}

func TestExecutePacketStopsAtBadCommand(t *testing.T) {
	d := NewDrawings()
	data := NewPacketBuilder().Point(Vec3{}, 3, ColorWhite, "p").Bytes()
	data = append(data, categoryShape, 42, 0, 0, 0, 0)
	data = append(data, NewPacketBuilder().Point(Vec3{}, 3, ColorWhite, "q").Bytes()...)

	ran, err := ExecutePacket(data, &DrawTarget{Drawings: d}, quietLogger())
	if !errors.Is(err, ErrUnknownCommandSubtype) {
		t.Errorf("err = %v, want ErrUnknownCommandSubtype", err)
	}
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
	if n := d.ShapeSet("p").BackLen(); n != 1 {
		t.Errorf("p back buffer = %d, want 1", n)
	}
	for _, name := range d.SetNames() {
		if name == "q" {
			t.Error("command after the bad one was executed")
		}
	}
}

func TestExecutePacketNilLogger(t *testing.T) {
	d := NewDrawings()
	data := NewPacketBuilder().
		SelectAgent(SideRight, 9).
		Point(Vec3{}, 3, ColorWhite, "p").
		Bytes()

	// No world: the agent command fails and is logged to the default logger.
	ran, err := ExecutePacket(data, &DrawTarget{Drawings: d}, nil)
	if err != nil {
		t.Fatalf("ExecutePacket: %v", err)
	}
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
	if n := d.ShapeSet("p").BackLen(); n != 1 {
		t.Errorf("p back buffer = %d, want 1", n)
	}
}

func TestAgentClearWithoutAnnotation(t *testing.T) {
	d := NewDrawings()
	target := &DrawTarget{Drawings: d, World: NewWorldModel(quietLogger())}
	data := NewPacketBuilder().ClearAgentAnnotation(SideLeft, 4).ClearAgentAnnotation(SideLeft, 4).Bytes()

	ran, err := ExecutePacket(data, target, quietLogger())
	if err != nil {
		t.Fatalf("ExecutePacket: %v", err)
	}
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
	if len(d.AgentAnnotations()) != 0 {
		t.Errorf("AgentAnnotations = %v, want none", d.AgentAnnotations())
	}
}

func TestAgentAnnotationCommands(t *testing.T) {
	w := newTestWorld(t)
	d := NewDrawings()
	target := &DrawTarget{Drawings: d, World: w}
	red := Color{1, 0, 0, 1}

	ran, err := ExecutePacket(NewPacketBuilder().
		AgentAnnotation(SideLeft, 1, red, "shoot").
		AgentAnnotation(SideRight, 9, red, "ghost").
		Bytes(), target, quietLogger())
	if err != nil {
		t.Fatalf("ExecutePacket: %v", err)
	}
	if ran != 1 {
		t.Errorf("ran = %d, want 1 (right 9 is not on the field)", ran)
	}
	a, ok := d.AgentAnnotation(AgentKey{SideLeft, 1})
	if !ok || a.Text != "shoot" || a.Color != red {
		t.Errorf("AgentAnnotation(left 1) = %+v, %v", a, ok)
	}
	if _, ok := d.AgentAnnotation(AgentKey{SideRight, 9}); ok {
		t.Error("annotation stored for an unknown agent")
	}

	if _, err := ExecutePacket(NewPacketBuilder().ClearAgentAnnotation(SideLeft, 1).Bytes(), target, quietLogger()); err != nil {
		t.Fatalf("ExecutePacket clear: %v", err)
	}
	if _, ok := d.AgentAnnotation(AgentKey{SideLeft, 1}); ok {
		t.Error("annotation survived agent clear")
	}
}

func TestSelectAgentCommand(t *testing.T) {
	w := newTestWorld(t)
	target := &DrawTarget{Drawings: NewDrawings(), World: w}

	cmd := &SelectAgentCommand{Agent: AgentKey{SideRight, 2}}
	if err := cmd.Execute(target); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if w.Selected() != Selectable(w.Agent(SideRight, 2)) {
		t.Errorf("Selected = %v, want right 2", w.Selected())
	}

	miss := &SelectAgentCommand{Agent: AgentKey{SideLeft, 5}}
	if err := miss.Execute(target); !errors.Is(err, ErrUnresolvedAgent) {
		t.Errorf("err = %v, want ErrUnresolvedAgent", err)
	}
	if w.Selected() != Selectable(w.Agent(SideRight, 2)) {
		t.Error("failed select changed the selection")
	}

	noWorld := &DrawTarget{Drawings: NewDrawings()}
	if err := cmd.Execute(noWorld); !errors.Is(err, ErrUnresolvedAgent) {
		t.Errorf("without world: err = %v, want ErrUnresolvedAgent", err)
	}
}

func TestAnnotationCommand(t *testing.T) {
	d := NewDrawings()
	data := NewPacketBuilder().
		Annotation("pass", Vec3{1, 2, 0}, ColorWhite, "notes").
		SwapBuffers("notes").
		Bytes()
	if _, err := ExecutePacket(data, &DrawTarget{Drawings: d}, quietLogger()); err != nil {
		t.Fatalf("ExecutePacket: %v", err)
	}
	got := d.VisibleAnnotations()
	if len(got) != 1 || got[0].Text != "pass" {
		t.Errorf("VisibleAnnotations = %+v, want one \"pass\"", got)
	}
}
