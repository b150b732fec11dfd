package rsgview

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Draw command wire categories.
const (
	categoryOption     = 0
	categoryShape      = 1
	categoryAnnotation = 2
	categoryControl    = 3
)

// Subtypes within categoryShape.
const (
	shapeCircle = iota
	shapeLine
	shapePoint
	shapeSphere
	shapePolygon
)

// Subtypes within categoryAnnotation.
const (
	annotationStandard = iota
	annotationAgent
	annotationAgentClear
)

const (
	optionSwapBuffers  = 0
	controlSelectAgent = 0
)

// PacketBuilder appends draw commands to a datagram payload. It is the
// encoding side of DecodePacket and is used by test clients.
//
// A value the wire format cannot carry sets a sticky error reported by
// Err; the payload must then be truncated or reset before it is sent.
type PacketBuilder struct {
	buf   []byte
	ascii bool
	err   error
}

// PacketOption configures a PacketBuilder.
type PacketOption func(*PacketBuilder)

// WithASCIIFloats writes every float as six ASCII characters, the legacy
// helper format. Packets built this way are not readable by DecodePacket.
func WithASCIIFloats() PacketOption {
	return func(b *PacketBuilder) { b.ascii = true }
}

// NewPacketBuilder returns an empty builder.
func NewPacketBuilder(opts ...PacketOption) *PacketBuilder {
	b := &PacketBuilder{}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Bytes returns the encoded payload. The slice aliases the builder.
func (b *PacketBuilder) Bytes() []byte { return b.buf }

// Len returns the payload size in bytes.
func (b *PacketBuilder) Len() int { return len(b.buf) }

// Err returns the first encoding error since the last Reset or Truncate.
func (b *PacketBuilder) Err() error { return b.err }

// Reset discards all commands and any error while keeping the backing
// array.
func (b *PacketBuilder) Reset() {
	b.buf = b.buf[:0]
	b.err = nil
}

// Truncate drops everything after the first n bytes and clears the
// error, rolling back a command that failed to encode.
func (b *PacketBuilder) Truncate(n int) {
	if n >= 0 && n < len(b.buf) {
		b.buf = b.buf[:n]
	}
	b.err = nil
}

func (b *PacketBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// SwapBuffers swaps every set whose name starts with set. An empty set
// name swaps all sets.
func (b *PacketBuilder) SwapBuffers(set string) *PacketBuilder {
	b.buf = append(b.buf, categoryOption, optionSwapBuffers)
	b.putString(set)
	return b
}

// Circle draws a circle of the given radius around center.
func (b *PacketBuilder) Circle(center Vec3, radius, thickness float64, c Color, set string) *PacketBuilder {
	b.buf = append(b.buf, categoryShape, shapeCircle)
	b.putVec3(center)
	b.putFloat(radius)
	b.putFloat(thickness)
	b.putRGB(c)
	b.putString(set)
	return b
}

// Line draws a segment from start to end.
func (b *PacketBuilder) Line(start, end Vec3, thickness float64, c Color, set string) *PacketBuilder {
	b.buf = append(b.buf, categoryShape, shapeLine)
	b.putVec3(start)
	b.putVec3(end)
	b.putFloat(thickness)
	b.putRGB(c)
	b.putString(set)
	return b
}

// Point draws a dot of the given pixel size.
func (b *PacketBuilder) Point(p Vec3, size float64, c Color, set string) *PacketBuilder {
	b.buf = append(b.buf, categoryShape, shapePoint)
	b.putVec3(p)
	b.putFloat(size)
	b.putRGB(c)
	b.putString(set)
	return b
}

// Sphere draws a sphere of the given radius.
func (b *PacketBuilder) Sphere(center Vec3, radius float64, c Color, set string) *PacketBuilder {
	b.buf = append(b.buf, categoryShape, shapeSphere)
	b.putVec3(center)
	b.putFloat(radius)
	b.putRGB(c)
	b.putString(set)
	return b
}

// Polygon draws a filled polygon. At most 255 vertices are written.
func (b *PacketBuilder) Polygon(verts []Vec3, c Color, set string) *PacketBuilder {
	if len(verts) > math.MaxUint8 {
		verts = verts[:math.MaxUint8]
	}
	b.buf = append(b.buf, categoryShape, shapePolygon, byte(len(verts)))
	for _, v := range verts {
		b.putVec3(v)
	}
	b.putRGBA(c)
	b.putString(set)
	return b
}

// Annotation places free-floating text at pos.
func (b *PacketBuilder) Annotation(text string, pos Vec3, c Color, set string) *PacketBuilder {
	b.buf = append(b.buf, categoryAnnotation, annotationStandard)
	b.putString(text)
	b.putVec3(pos)
	b.putRGB(c)
	b.putString(set)
	return b
}

// AgentAnnotation attaches text above an agent.
func (b *PacketBuilder) AgentAnnotation(side Side, id int, c Color, text string) *PacketBuilder {
	if !b.agentRef(side, id) {
		return b
	}
	b.buf = append(b.buf, categoryAnnotation, annotationAgent, byte(side), byte(id))
	b.putRGB(c)
	b.putString(text)
	return b
}

// ClearAgentAnnotation removes an agent's text.
func (b *PacketBuilder) ClearAgentAnnotation(side Side, id int) *PacketBuilder {
	if !b.agentRef(side, id) {
		return b
	}
	b.buf = append(b.buf, categoryAnnotation, annotationAgentClear, byte(side), byte(id))
	return b
}

// SelectAgent makes the viewer select an agent.
func (b *PacketBuilder) SelectAgent(side Side, id int) *PacketBuilder {
	if !b.agentRef(side, id) {
		return b
	}
	b.buf = append(b.buf, categoryControl, controlSelectAgent, byte(side), byte(id))
	return b
}

// --- encoding helpers ---

// agentRef checks that an agent reference fits its two wire bytes. A bad
// reference fails the builder and appends nothing.
func (b *PacketBuilder) agentRef(side Side, id int) bool {
	if !side.Valid() || id < 0 || id > math.MaxUint8 {
		b.fail(fmt.Errorf("agent %d of team %d: %w", id, side, ErrValueOutOfRange))
		return false
	}
	return true
}

func (b *PacketBuilder) putFloat(v float64) {
	if b.ascii {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.fail(fmt.Errorf("ascii float %v: %w", v, ErrValueOutOfRange))
		}
		b.buf = append(b.buf, formatASCIIFloat(v)...)
		return
	}
	b.buf = binary.BigEndian.AppendUint32(b.buf, math.Float32bits(float32(v)))
}

func (b *PacketBuilder) putVec3(v Vec3) {
	b.putFloat(v.X)
	b.putFloat(v.Y)
	b.putFloat(v.Z)
}

func (b *PacketBuilder) putRGB(c Color) {
	b.buf = append(b.buf, channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

func (b *PacketBuilder) putRGBA(c Color) {
	b.buf = append(b.buf, channelByte(c.R), channelByte(c.G), channelByte(c.B), channelByte(c.A))
}

func (b *PacketBuilder) putString(s string) {
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, 0)
}

func channelByte(v float64) byte {
	return byte(clamp01(v)*255 + 0.5)
}

// Range of the six-character ASCII float encoding.
const (
	maxASCIIFloat = 999999
	minASCIIFloat = -99999
)

// formatASCIIFloat renders v as exactly asciiFloatWidth characters.
// Values outside [minASCIIFloat, maxASCIIFloat] are clamped to the
// bounds and fractional digits that do not fit are dropped.
func formatASCIIFloat(v float64) []byte {
	v = math.Max(minASCIIFloat, math.Min(maxASCIIFloat, v))
	s := strconv.FormatFloat(v, 'f', 4, 64)
	out := make([]byte, asciiFloatWidth)
	for i := range out {
		if i < len(s) {
			out[i] = s[i]
		} else {
			out[i] = ' '
		}
	}
	return out
}
