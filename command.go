package rsgview

import (
	"fmt"
)

// DrawTarget is the shared state draw commands act on.
type DrawTarget struct {
	Drawings *Drawings
	World    *WorldModel
}

// Command is one decoded draw-protocol command. Execute performs its
// effect once, on the goroutine that decoded it.
type Command interface {
	Execute(t *DrawTarget) error
}

// ShapeCommand adds a shape to a set's back buffer.
type ShapeCommand struct {
	Set   string
	Shape Shape
}

func (c *ShapeCommand) Execute(t *DrawTarget) error {
	t.Drawings.AddShape(c.Set, c.Shape)
	return nil
}

// AnnotationCommand adds free-floating text to a set's back buffer.
type AnnotationCommand struct {
	Set        string
	Annotation Annotation
}

func (c *AnnotationCommand) Execute(t *DrawTarget) error {
	t.Drawings.AddAnnotation(c.Set, c.Annotation)
	return nil
}

// AgentAnnotationCommand attaches text to an agent.
type AgentAnnotationCommand struct {
	Annotation AgentAnnotation
}

func (c *AgentAnnotationCommand) Execute(t *DrawTarget) error {
	if _, err := resolveAgent(t, c.Annotation.Agent); err != nil {
		return err
	}
	t.Drawings.SetAgentAnnotation(c.Annotation)
	return nil
}

// AgentClearCommand removes an agent's text.
type AgentClearCommand struct {
	Agent AgentKey
}

func (c *AgentClearCommand) Execute(t *DrawTarget) error {
	t.Drawings.ClearAgentAnnotation(c.Agent)
	return nil
}

// SwapBuffersCommand publishes pending drawings. An empty Set swaps all
// sets; otherwise every set whose name starts with Set.
type SwapBuffersCommand struct {
	Set string
}

func (c *SwapBuffersCommand) Execute(t *DrawTarget) error {
	t.Drawings.SwapBuffers(c.Set)
	return nil
}

// SelectAgentCommand makes an agent the world's selection.
type SelectAgentCommand struct {
	Agent AgentKey
}

func (c *SelectAgentCommand) Execute(t *DrawTarget) error {
	a, err := resolveAgent(t, c.Agent)
	if err != nil {
		return err
	}
	t.World.Select(a)
	return nil
}

// resolveAgent looks key up in the world. A miss is routine: draw
// commands can arrive before the scene graph has shown the agent.
func resolveAgent(t *DrawTarget, key AgentKey) (*Agent, error) {
	if t.World == nil {
		return nil, fmt.Errorf("%s: no world: %w", key, ErrUnresolvedAgent)
	}
	a := t.World.Agent(key.Side, key.ID)
	if a == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrUnresolvedAgent)
	}
	return a, nil
}

// --- decoding ---

type decodeFunc func(r *Reader) (Command, error)

// decoders is indexed by category, then subtype.
var decoders = [...][]decodeFunc{
	categoryOption: {
		optionSwapBuffers: decodeSwapBuffers,
	},
	categoryShape: {
		shapeCircle:  decodeCircle,
		shapeLine:    decodeLine,
		shapePoint:   decodePoint,
		shapeSphere:  decodeSphere,
		shapePolygon: decodePolygon,
	},
	categoryAnnotation: {
		annotationStandard:   decodeAnnotation,
		annotationAgent:      decodeAgentAnnotation,
		annotationAgentClear: decodeAgentClear,
	},
	categoryControl: {
		controlSelectAgent: decodeSelectAgent,
	},
}

// DecodeCommand reads one command. On error the reader position is
// unspecified; the rest of the packet cannot be trusted.
func DecodeCommand(r *Reader) (Command, error) {
	at := r.Offset()
	category, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	subtype, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if int(category) >= len(decoders) {
		return nil, fmt.Errorf("category %d at offset %d: %w", category, at, ErrUnknownCommandCategory)
	}
	table := decoders[category]
	if int(subtype) >= len(table) || table[subtype] == nil {
		return nil, fmt.Errorf("category %d subtype %d at offset %d: %w", category, subtype, at, ErrUnknownCommandSubtype)
	}
	cmd, err := table[subtype](r)
	if err != nil {
		return nil, fmt.Errorf("category %d subtype %d at offset %d: %w", category, subtype, at, err)
	}
	return cmd, nil
}

// DecodePacket decodes commands until the packet is exhausted. If a
// command fails to decode, the commands before it are returned together
// with the error and the rest of the packet is dropped.
func DecodePacket(data []byte) ([]Command, error) {
	r := NewReader(data)
	var cmds []Command
	for r.Len() > 0 {
		cmd, err := DecodeCommand(r)
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func decodeSwapBuffers(r *Reader) (Command, error) {
	if r.Len() == 0 {
		return &SwapBuffersCommand{}, nil
	}
	set, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &SwapBuffersCommand{Set: set}, nil
}

func decodeCircle(r *Reader) (Command, error) {
	var s Circle
	var err error
	if s.Center, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if s.Radius, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if s.Thickness, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if s.Color, err = r.ReadRGB(); err != nil {
		return nil, err
	}
	return shapeTail(r, s)
}

func decodeLine(r *Reader) (Command, error) {
	var s Line
	var err error
	if s.Start, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if s.End, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if s.Thickness, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if s.Color, err = r.ReadRGB(); err != nil {
		return nil, err
	}
	return shapeTail(r, s)
}

func decodePoint(r *Reader) (Command, error) {
	var s Point
	var err error
	if s.Position, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if s.Size, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if s.Color, err = r.ReadRGB(); err != nil {
		return nil, err
	}
	return shapeTail(r, s)
}

func decodeSphere(r *Reader) (Command, error) {
	var s Sphere
	var err error
	if s.Center, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if s.Radius, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if s.Color, err = r.ReadRGB(); err != nil {
		return nil, err
	}
	return shapeTail(r, s)
}

func decodePolygon(r *Reader) (Command, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	s := Polygon{Vertices: make([]Vec3, n)}
	for i := range s.Vertices {
		if s.Vertices[i], err = r.ReadVec3(); err != nil {
			return nil, err
		}
	}
	if s.Color, err = r.ReadRGBA(); err != nil {
		return nil, err
	}
	return shapeTail(r, s)
}

// shapeTail reads the set name that ends every shape command.
func shapeTail(r *Reader, s Shape) (Command, error) {
	set, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &ShapeCommand{Set: set, Shape: s}, nil
}

func decodeAnnotation(r *Reader) (Command, error) {
	var a Annotation
	var err error
	if a.Text, err = r.ReadString(); err != nil {
		return nil, err
	}
	if a.Position, err = r.ReadVec3(); err != nil {
		return nil, err
	}
	if a.Color, err = r.ReadRGB(); err != nil {
		return nil, err
	}
	set, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &AnnotationCommand{Set: set, Annotation: a}, nil
}

func decodeAgentAnnotation(r *Reader) (Command, error) {
	key, err := readAgentKey(r)
	if err != nil {
		return nil, err
	}
	a := AgentAnnotation{Agent: key}
	if a.Color, err = r.ReadRGB(); err != nil {
		return nil, err
	}
	if a.Text, err = r.ReadString(); err != nil {
		return nil, err
	}
	return &AgentAnnotationCommand{Annotation: a}, nil
}

func decodeAgentClear(r *Reader) (Command, error) {
	key, err := readAgentKey(r)
	if err != nil {
		return nil, err
	}
	return &AgentClearCommand{Agent: key}, nil
}

func decodeSelectAgent(r *Reader) (Command, error) {
	key, err := readAgentKey(r)
	if err != nil {
		return nil, err
	}
	return &SelectAgentCommand{Agent: key}, nil
}

// readAgentKey reads the team flag and uniform number bytes. A team flag
// other than 0 or 1 decodes fine and simply never resolves.
func readAgentKey(r *Reader) (AgentKey, error) {
	team, err := r.ReadByte()
	if err != nil {
		return AgentKey{}, err
	}
	id, err := r.ReadByte()
	if err != nil {
		return AgentKey{}, err
	}
	return AgentKey{Side: Side(team), ID: int(id)}, nil
}
