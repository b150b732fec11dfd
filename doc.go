// Package rsgview is a monitor client for a 3D robot soccer simulator,
// drawn top-down with [Ebitengine].
//
// The viewer has two inputs. The simulator server streams S-expression
// scene graph messages over TCP; each message is either a full tree or a
// positional diff against the tree built so far. Agent programs send
// binary debug drawing commands over UDP, which land in named,
// double-buffered drawing sets.
//
// # Scene graph
//
// A [WorldModel] owns the [SceneGraph], the [GameState] the server
// reports alongside it, and the agent roster derived from the tree:
//
//	world := rsgview.NewWorldModel(logger)
//	conn := &rsgview.ServerConn{Addr: "localhost:3200", World: world}
//	go conn.Run(ctx)
//
// [SceneGraph.Apply] replaces the tree for a full update and walks it
// child by child for a diff. A diff arriving before any full update is
// rejected with [ErrDiffWithoutFull].
//
// # Debug drawings
//
// Agents build datagrams with a [PacketBuilder]:
//
//	b := rsgview.NewPacketBuilder()
//	b.Circle(rsgview.Vec3{X: 1, Y: 2}, 0.5, 2, rsgview.ColorWhite, "agent1.kick")
//	b.SwapBuffers("agent1.")
//	conn.Write(b.Bytes())
//
// A [Receiver] decodes them and applies each command to a [Drawings].
// Shapes and annotations go to the back buffer of their set; a swap
// command publishes every set whose name starts with the given prefix.
//
// # Viewer
//
// [Viewer] implements [ebiten.Game]. It draws the field, the scene, the
// visible drawing sets and a HUD, and supports panning, zooming, agent
// selection and follow mode:
//
//	v := rsgview.NewViewer(world, drawings, rsgview.ViewerOptions{Width: 1280, Height: 800})
//	rsgview.Run(v, "rsgview", 1280, 800)
//
// Camera tweens use [gween]. Standard primitive meshes are tessellated
// with [sdfx].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [sdfx]: https://github.com/deadsy/sdfx
package rsgview
