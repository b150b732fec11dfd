package rsgview

import (
	"fmt"
	"log/slog"
	"sync"
)

// UpdateKind says whether a scene-graph message replaces the tree or
// patches it.
type UpdateKind uint8

const (
	UpdateFull UpdateKind = iota // RSG: complete tree
	UpdateDiff                   // RDS: positional patch of the current tree
)

func (k UpdateKind) String() string {
	if k == UpdateDiff {
		return "RDS"
	}
	return "RSG"
}

// supportedMajor is the only protocol major version seen in the wild.
// Other versions are parsed the same way after a warning.
const supportedMajor = 0

// Header is the (RSG major minor) or (RDS major minor) list that precedes
// every scene graph.
type Header struct {
	Kind  UpdateKind
	Major int
	Minor int
}

// ParseHeader validates a header list. Any deviation fails with
// ErrMalformedHeader.
func ParseHeader(e SExpr) (Header, error) {
	var h Header
	switch e.Head() {
	case "RSG":
		h.Kind = UpdateFull
	case "RDS":
		h.Kind = UpdateDiff
	default:
		return h, fmt.Errorf("header %s: %w", e, ErrMalformedHeader)
	}
	if len(e.List) != 3 {
		return h, fmt.Errorf("header %s: want 2 version numbers: %w", e, ErrMalformedHeader)
	}
	var err error
	if h.Major, err = e.List[1].Int(); err != nil {
		return h, fmt.Errorf("header %s: major version: %w", e, ErrMalformedHeader)
	}
	if h.Minor, err = e.List[2].Int(); err != nil {
		return h, fmt.Errorf("header %s: minor version: %w", e, ErrMalformedHeader)
	}
	return h, nil
}

// Message is one server update split into its parts.
type Message struct {
	Prelude []SExpr // expressions before the header, normally game state
	Header  Header
	Graph   SExpr
}

// ParseMessage parses message text and locates the header. A message
// without a valid header, or without a graph after it, is rejected as a
// whole.
func ParseMessage(data []byte) (Message, error) {
	var msg Message
	exprs, err := ParseSExprs(data)
	if err != nil {
		return msg, err
	}
	at := -1
	for i, e := range exprs {
		if h := e.Head(); h == "RSG" || h == "RDS" {
			at = i
			break
		}
	}
	if at < 0 {
		return msg, fmt.Errorf("no RSG/RDS header: %w", ErrMalformedHeader)
	}
	if msg.Header, err = ParseHeader(exprs[at]); err != nil {
		return msg, err
	}
	if at+1 >= len(exprs) || !exprs[at+1].IsList {
		return msg, fmt.Errorf("%s message has no graph: %w", msg.Header.Kind, ErrMalformedExpression)
	}
	msg.Prelude = exprs[:at]
	msg.Graph = exprs[at+1]
	return msg, nil
}

// GraphState is the lifecycle stage of a SceneGraph.
type GraphState uint8

const (
	GraphEmpty     GraphState = iota // nothing received yet
	GraphPopulated                   // a full tree is present
	GraphDisposed                    // session ended; waiting for a new full tree
)

// UpdateStats counts what one Apply call did. Skipped units were logged.
type UpdateStats struct {
	Nodes        int // node declarations visited
	Ops          int // directives applied
	SkippedOps   int // directives rejected
	SkippedNodes int // declarations replaced by a placeholder or dropped
	Mismatches   int // diff subtrees abandoned because the tree was smaller
}

// SceneGraph owns the current node tree. Updates run on the ingestion
// goroutine; readers on any goroutine go through View.
//
// Full trees are built without holding the lock and swapped in, diffs
// mutate under the write lock, so a reader never observes a half-applied
// message.
type SceneGraph struct {
	logger *slog.Logger

	mu          sync.RWMutex
	root        *Node
	state       GraphState
	header      Header
	generation  uint64
	warnedMajor int
}

// NewSceneGraph returns an empty scene graph. A nil logger uses
// slog.Default().
func NewSceneGraph(logger *slog.Logger) *SceneGraph {
	if logger == nil {
		logger = slog.Default()
	}
	return &SceneGraph{logger: logger, warnedMajor: supportedMajor}
}

// View calls fn with the current root under the read lock. root is nil
// until the first full message. fn must not keep references to nodes
// after it returns.
func (g *SceneGraph) View(fn func(root *Node)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(g.root)
}

// State returns the lifecycle stage.
func (g *SceneGraph) State() GraphState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Header returns the header of the last applied message.
func (g *SceneGraph) Header() Header {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.header
}

// Generation increases every time a message is applied or the tree is
// disposed.
func (g *SceneGraph) Generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

// ApplyText parses and applies one message, ignoring any prelude.
func (g *SceneGraph) ApplyText(data []byte) (UpdateStats, error) {
	msg, err := ParseMessage(data)
	if err != nil {
		return UpdateStats{}, err
	}
	return g.Apply(msg)
}

// Apply applies a parsed message. Per-node and per-directive failures are
// logged and counted in the returned stats; only message-level failures
// are returned as errors, and those leave the tree untouched.
func (g *SceneGraph) Apply(msg Message) (UpdateStats, error) {
	var stats UpdateStats
	if msg.Header.Major != supportedMajor {
		g.mu.Lock()
		warn := g.warnedMajor != msg.Header.Major
		g.warnedMajor = msg.Header.Major
		g.mu.Unlock()
		if warn {
			g.logger.Warn("unknown scene graph major version, parsing anyway",
				"major", msg.Header.Major, "minor", msg.Header.Minor)
		}
	}

	switch msg.Header.Kind {
	case UpdateFull:
		root := NewNode(NodeTypeBase)
		root.markExpanded()
		g.populate(root, msg.Graph.List, &stats)

		g.mu.Lock()
		old := g.root
		g.root = root
		g.state = GraphPopulated
		g.header = msg.Header
		g.generation++
		if old != nil {
			old.dispose()
		}
		g.mu.Unlock()

	case UpdateDiff:
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.state != GraphPopulated {
			return stats, fmt.Errorf("graph is %s: %w", g.state, ErrDiffWithoutFull)
		}
		g.diffItems(g.root, msg.Graph.List, &stats)
		g.header = msg.Header
		g.generation++
	}
	return stats, nil
}

// Dispose drops the tree, as on disconnect. The next message must be a
// full one.
func (g *SceneGraph) Dispose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.root != nil {
		g.root.dispose()
		g.root = nil
	}
	g.state = GraphDisposed
	g.generation++
}

// --- full ---

// parseNode builds a node from (nd Type item...). An unknown type fails
// with ErrUnknownNodeType.
func (g *SceneGraph) parseNode(decl SExpr, stats *UpdateStats) (*Node, error) {
	args := decl.Args()
	if len(args) == 0 || args[0].IsList {
		return nil, fmt.Errorf("declaration %s has no type: %w", decl, ErrMalformedExpression)
	}
	t, ok := ParseNodeType(args[0].Atom)
	if !ok {
		return nil, fmt.Errorf("%q: %w", args[0].Atom, ErrUnknownNodeType)
	}
	n := NewNode(t)
	n.markExpanded()
	g.populate(n, args[1:], stats)
	return n, nil
}

// populate applies the directives in items to n and appends the nodes
// they declare. A declaration that cannot be built keeps its slot as an
// unexpanded placeholder so that later diffs stay aligned with the
// server's tree; diffs that reach into the placeholder stop there.
func (g *SceneGraph) populate(n *Node, items []SExpr, stats *UpdateStats) {
	for _, item := range items {
		if !item.IsList {
			g.logger.Debug("ignoring stray atom in declaration", "atom", item.Atom)
			continue
		}
		if item.Head() == "nd" {
			stats.Nodes++
			child, err := g.parseNode(item, stats)
			if err != nil {
				g.logger.Debug("skipping node declaration", "error", err)
				stats.SkippedNodes++
				child = NewNode(NodeTypeBase)
			}
			n.AddChild(child)
			continue
		}
		g.apply(n, item, stats)
	}
}

// --- diff ---

// diffItems walks items against n in lockstep: the i-th declaration maps
// to the i-th child, whatever either of them claims to be.
func (g *SceneGraph) diffItems(n *Node, items []SExpr, stats *UpdateStats) {
	next := 0
	for _, item := range items {
		if !item.IsList {
			continue
		}
		if item.Head() != "nd" {
			g.apply(n, item, stats)
			continue
		}
		if next >= len(n.children) {
			stats.Mismatches++
			g.logger.Debug("abandoning diff subtree",
				"node", n.ID, "children", len(n.children),
				"error", ErrStructuralMismatch)
			return
		}
		stats.Nodes++
		g.diffNode(n.children[next], item, stats)
		next++
	}
}

func (g *SceneGraph) diffNode(n *Node, decl SExpr, stats *UpdateStats) {
	if !n.Expanded() {
		// Placeholder for a declaration the full update could not build.
		stats.SkippedNodes++
		return
	}
	items := decl.Args()
	// A type tag is allowed but ignored; dispatch uses the existing node.
	if len(items) > 0 && !items[0].IsList {
		items = items[1:]
	}
	g.diffItems(n, items, stats)
}

func (g *SceneGraph) apply(n *Node, op SExpr, stats *UpdateStats) {
	if err := applyOp(n, op); err != nil {
		stats.SkippedOps++
		g.logger.Debug("skipping directive", "node", n.ID, "error", err)
		return
	}
	stats.Ops++
}

func (s GraphState) String() string {
	switch s {
	case GraphEmpty:
		return "empty"
	case GraphPopulated:
		return "populated"
	case GraphDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("GraphState(%d)", uint8(s))
	}
}
