package rsgview

import "sync/atomic"

// nodeIDCounter is atomic because trees are built on the ingestion
// goroutine while tests may build them in parallel.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// --- Node ---

// Node is one element of the server scene graph. A single flat struct is
// used for every node type; fields that do not apply to a Type stay at
// their zero value.
type Node struct {
	// Identity
	ID   uint32
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Local transform. Nil means identity.
	Local *Mat4

	// Mesh fields (NodeTypeStaticMesh, NodeTypeStandardMesh)
	Name        string    // resource, after goalie substitution
	Params      []float64 // extra load arguments of standard primitives
	Scale       Vec3
	Visible     bool
	Transparent bool
	Materials   []string
	baseName    string // resource as loaded

	// Light fields (NodeTypeLight)
	Diffuse  Color
	Ambient  Color
	Specular Color
}

// NewNode creates a detached node of the given type with default state:
// unit scale, visible, no local transform and no children.
func NewNode(t NodeType) *Node {
	return &Node{
		ID:      nextNodeID(),
		Type:    t,
		Scale:   Vec3{1, 1, 1},
		Visible: true,
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// Panics if child is nil, already has a parent, or is an ancestor of this
// node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("rsgview: cannot add nil child")
	}
	if child.Parent != nil {
		panic("rsgview: child already has a parent")
	}
	if isAncestor(child, n) {
		panic("rsgview: adding child would create a cycle")
	}
	child.Parent = n
	n.children = append(n.children, child)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Expanded reports whether the node's child list was ever populated,
// even if it ended up empty.
func (n *Node) Expanded() bool {
	return n.children != nil
}

// markExpanded gives the node an empty, non-nil child list.
func (n *Node) markExpanded() {
	if n.children == nil {
		n.children = []*Node{}
	}
}

// HasMaterial reports whether name is among the node's materials.
func (n *Node) HasMaterial(name string) bool {
	for _, m := range n.Materials {
		if m == name {
			return true
		}
	}
	return false
}

// BaseName returns the mesh resource as loaded, before goalie
// substitution.
func (n *Node) BaseName() string {
	return n.baseName
}

// --- Disposal ---

// dispose releases the subtree. Ingestion never reuses a node after it,
// so a stray reference sees an empty, detached node.
func (n *Node) dispose() {
	for _, child := range n.children {
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Local = nil
	n.Materials = nil
	n.Params = nil
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}
