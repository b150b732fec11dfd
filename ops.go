package rsgview

import (
	"fmt"
	"path"
	"strings"
)

// opFunc applies one named directive to a node. Every directive is an
// idempotent write: applying it again with the same arguments leaves the
// node unchanged.
type opFunc func(n *Node, args []SExpr) error

var (
	groupOps = map[string]opFunc{
		"SLT": opSetLocalTransform,
	}
	lightOps = map[string]opFunc{
		"SLT":         opSetLocalTransform,
		"setDiffuse":  lightColorOp(func(n *Node) *Color { return &n.Diffuse }),
		"setAmbient":  lightColorOp(func(n *Node) *Color { return &n.Ambient }),
		"setSpecular": lightColorOp(func(n *Node) *Color { return &n.Specular }),
	}
	meshOps = map[string]opFunc{
		"SLT":            opSetLocalTransform,
		"load":           opLoad,
		"sSc":            opSetScale,
		"setVisible":     opSetVisible,
		"resetMaterials": opResetMaterials,
		"setTransparent": opSetTransparent,
		"sMat":           opSetMaterial,
	}
)

// nodeOps dispatches directives on the target node's type, never on a
// type tag found in the message.
var nodeOps = [...]map[string]opFunc{
	NodeTypeBase:         groupOps,
	NodeTypeTransform:    groupOps,
	NodeTypeLight:        lightOps,
	NodeTypeStaticMesh:   meshOps,
	NodeTypeStandardMesh: meshOps,
}

// applyOp runs one (name arg...) directive against n.
func applyOp(n *Node, op SExpr) error {
	name := op.Head()
	if name == "" {
		return fmt.Errorf("directive %s has no name: %w", op, ErrMalformedExpression)
	}
	var fn opFunc
	if int(n.Type) < len(nodeOps) {
		fn = nodeOps[n.Type][name]
	}
	if fn == nil {
		return fmt.Errorf("%s on %s node: %w", name, n.Type, ErrUnknownOperation)
	}
	if err := fn(n, op.Args()); err != nil {
		return fmt.Errorf("%s on %s node: %w", name, n.Type, err)
	}
	return nil
}

func opSetLocalTransform(n *Node, args []SExpr) error {
	v, err := floats(args, 16)
	if err != nil {
		return err
	}
	var m Mat4
	copy(m[:], v)
	n.Local = &m
	return nil
}

func opLoad(n *Node, args []SExpr) error {
	if len(args) == 0 || args[0].IsList {
		return fmt.Errorf("missing resource name: %w", ErrMalformedExpression)
	}
	params := make([]float64, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := a.Float()
		if err != nil {
			return err
		}
		params = append(params, v)
	}
	n.baseName = args[0].Atom
	n.Params = params
	substituteGoalie(n)
	return nil
}

func opSetScale(n *Node, args []SExpr) error {
	v, err := floats(args, 3)
	if err != nil {
		return err
	}
	n.Scale = Vec3{v[0], v[1], v[2]}
	return nil
}

func opSetVisible(n *Node, args []SExpr) error {
	if len(args) != 1 || args[0].IsList {
		return fmt.Errorf("want one flag: %w", ErrMalformedExpression)
	}
	switch args[0].Atom {
	case "1", "true":
		n.Visible = true
	case "0", "false":
		n.Visible = false
	default:
		return fmt.Errorf("bad visibility flag %q: %w", args[0].Atom, ErrMalformedExpression)
	}
	return nil
}

func opResetMaterials(n *Node, args []SExpr) error {
	mats := make([]string, 0, len(args))
	for _, a := range args {
		if a.IsList {
			return fmt.Errorf("material name is a list: %w", ErrMalformedExpression)
		}
		mats = append(mats, a.Atom)
	}
	n.Materials = mats
	substituteGoalie(n)
	return nil
}

func opSetTransparent(n *Node, _ []SExpr) error {
	n.Transparent = true
	return nil
}

func opSetMaterial(n *Node, args []SExpr) error {
	if len(args) != 1 || args[0].IsList {
		return fmt.Errorf("want one material: %w", ErrMalformedExpression)
	}
	n.Materials = []string{args[0].Atom}
	substituteGoalie(n)
	return nil
}

func lightColorOp(field func(*Node) *Color) opFunc {
	return func(n *Node, args []SExpr) error {
		v, err := floats(args, 4)
		if err != nil {
			return err
		}
		*field(n) = Color{v[0], v[1], v[2], v[3]}
		return nil
	}
}

// --- Goalie substitution ---

// goalieMaterial marks the meshes of a team's agent number 1.
const goalieMaterial = "matNum1"

// goalieModels are the model stems that have a goalie-colored variant.
var goalieModels = map[string]bool{
	"naobody":   true,
	"lupperarm": true,
	"rupperarm": true,
}

// substituteGoalie derives Name from the loaded resource: goalie meshes
// get a "_goalie" suffix before the extension. It always starts from
// baseName, so running it again never stacks suffixes.
func substituteGoalie(n *Node) {
	n.Name = n.baseName
	if n.Type != NodeTypeStaticMesh || !n.HasMaterial(goalieMaterial) {
		return
	}
	ext := path.Ext(n.baseName)
	stem := strings.TrimSuffix(n.baseName, ext)
	if goalieModels[path.Base(stem)] {
		n.Name = stem + "_goalie" + ext
	}
}
