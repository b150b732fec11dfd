package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phanxgames/rsgview"
)

// capture returns a drawScript that keeps a copy of every packet.
func capture() (*drawScript, *[][]byte) {
	var packets [][]byte
	s := newDrawScript(func(p []byte) error {
		packets = append(packets, bytes.Clone(p))
		return nil
	})
	return s, &packets
}

func TestScriptBuildsPacket(t *testing.T) {
	s, packets := capture()
	err := s.Run(`
(circle (vec3 1 2 0) 0.5 2 (rgb 1 0 0) "agent.kick")
(point (vec3 0 0 0) 4)
(swap "agent.")
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*packets) != 1 {
		t.Fatalf("packets = %d, want 1", len(*packets))
	}
	cmds, err := rsgview.DecodePacket((*packets)[0])
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("commands = %d, want 3", len(cmds))
	}

	circle, ok := cmds[0].(*rsgview.ShapeCommand)
	if !ok {
		t.Fatalf("cmds[0] = %T, want *ShapeCommand", cmds[0])
	}
	if circle.Set != "agent.kick" {
		t.Errorf("circle set = %q, want %q", circle.Set, "agent.kick")
	}
	c := circle.Shape.(rsgview.Circle)
	if c.Center != (rsgview.Vec3{X: 1, Y: 2}) || c.Radius != 0.5 || c.Thickness != 2 {
		t.Errorf("circle = %+v", c)
	}
	if c.Color.R != 1 || c.Color.G != 0 {
		t.Errorf("circle color = %+v, want red", c.Color)
	}

	point := cmds[1].(*rsgview.ShapeCommand)
	if point.Set != "" {
		t.Errorf("point set = %q, want empty", point.Set)
	}
	if p := point.Shape.(rsgview.Point); p.Color != rsgview.ColorWhite {
		t.Errorf("point color = %+v, want white default", p.Color)
	}

	swap, ok := cmds[2].(*rsgview.SwapBuffersCommand)
	if !ok || swap.Set != "agent." {
		t.Errorf("cmds[2] = %#v, want swap of agent.", cmds[2])
	}
}

func TestScriptAgentCommands(t *testing.T) {
	s, packets := capture()
	err := s.Run(`
(agent_note "right" 7 "striker")
(agent_clear "left" 2)
(select_agent 1 7)
`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	cmds, err := rsgview.DecodePacket((*packets)[0])
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if len(cmds) != 3 {
		t.Fatalf("commands = %d, want 3", len(cmds))
	}
	note := cmds[0].(*rsgview.AgentAnnotationCommand)
	want := rsgview.AgentKey{Side: rsgview.SideRight, ID: 7}
	if note.Annotation.Agent != want || note.Annotation.Text != "striker" {
		t.Errorf("note = %+v", note.Annotation)
	}
	clr := cmds[1].(*rsgview.AgentClearCommand)
	if clr.Agent != (rsgview.AgentKey{Side: rsgview.SideLeft, ID: 2}) {
		t.Errorf("clear agent = %v", clr.Agent)
	}
	sel := cmds[2].(*rsgview.SelectAgentCommand)
	if sel.Agent != want {
		t.Errorf("select agent = %v, want %v", sel.Agent, want)
	}
}

func TestScriptBadArgumentDropsCommand(t *testing.T) {
	s, packets := capture()
	err := s.Run(`(circle (vec3 0 0 0) "wide" 2)`)
	if err == nil {
		t.Fatal("Run succeeded, want argument error")
	}
	if !strings.Contains(err.Error(), "circle") {
		t.Errorf("error %q does not name the builtin", err)
	}
	if len(*packets) != 0 {
		t.Errorf("packets = %d, want 0", len(*packets))
	}
	if s.builder.Len() != 0 {
		t.Errorf("builder holds %d bytes after failed command", s.builder.Len())
	}
}

func TestScriptAgentNumberOutOfRange(t *testing.T) {
	s, packets := capture()
	err := s.Run(`(select_agent "left" 1) (select_agent "left" 300)`)
	if err == nil || !strings.Contains(err.Error(), "cannot be encoded") {
		t.Fatalf("Run err = %v, want an encoding error", err)
	}
	if len(*packets) != 0 {
		t.Errorf("packets = %d, want 0", len(*packets))
	}
	if s.builder.Len() != 4 || s.builder.Err() != nil {
		t.Errorf("builder Len, Err = %d, %v; want 4, nil", s.builder.Len(), s.builder.Err())
	}
}

func TestScriptFrameCounts(t *testing.T) {
	s, _ := capture()
	for i := 0; i < 3; i++ {
		if err := s.Run(`(swap)`); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
	if s.frame != 3 || s.packets != 3 {
		t.Errorf("frame, packets = %d, %d; want 3, 3", s.frame, s.packets)
	}
}

func TestScriptSplitsLargeOutput(t *testing.T) {
	s, packets := capture()
	var prog strings.Builder
	for i := 0; i < 2500; i++ {
		prog.WriteString(`(line (vec3 0 0 0) (vec3 1 1 0) 1 (rgb 0 1 0) "bulk.lines")` + "\n")
	}
	if err := s.Run(prog.String()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(*packets) < 2 {
		t.Fatalf("packets = %d, want the output split", len(*packets))
	}
	total := 0
	for i, p := range *packets {
		if len(p) > flushThreshold+64 {
			t.Errorf("packet %d is %d bytes", i, len(p))
		}
		cmds, err := rsgview.DecodePacket(p)
		if err != nil {
			t.Fatalf("packet %d: %v", i, err)
		}
		total += len(cmds)
	}
	if total != 2500 {
		t.Errorf("decoded %d commands, want 2500", total)
	}
}
