package rsgview

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Scene-graph conventions used to recognize agents and the ball.
const (
	materialLeft    = "matLeft"
	materialRight   = "matRight"
	materialNumber  = "matNum"
	bodyModelPrefix = "naobody"
	ballModel       = "soccerball"

	// agentHeadHeight is the offset from the body origin to where
	// agent labels are anchored.
	agentHeadHeight = 0.3
)

// AgentKey is a non-owning handle to an agent: its team and uniform
// number. It stays valid while the agent leaves and rejoins the field.
type AgentKey struct {
	Side Side
	ID   int
}

func (k AgentKey) String() string {
	return fmt.Sprintf("%s %d", k.Side, k.ID)
}

// Selectable is anything the viewer can select and follow.
type Selectable interface {
	Position() Vec3
	Label() string
}

// Agent is a robot discovered in the scene graph. Its position is cached
// from the last applied message.
type Agent struct {
	Key AgentKey

	mu       sync.RWMutex
	position Vec3
}

// Position returns the body position.
func (a *Agent) Position() Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.position
}

// HeadPosition returns the anchor point for text drawn above the agent.
func (a *Agent) HeadPosition() Vec3 {
	return a.Position().Add(Vec3{Z: agentHeadHeight})
}

// Label names the agent for the HUD.
func (a *Agent) Label() string { return a.Key.String() }

func (a *Agent) setPosition(p Vec3) {
	a.mu.Lock()
	a.position = p
	a.mu.Unlock()
}

// Ball is the soccer ball.
type Ball struct {
	mu       sync.RWMutex
	position Vec3
}

// Position returns the ball center.
func (b *Ball) Position() Vec3 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.position
}

// Label names the ball for the HUD.
func (b *Ball) Label() string { return "ball" }

func (b *Ball) setPosition(p Vec3) {
	b.mu.Lock()
	b.position = p
	b.mu.Unlock()
}

// WorldModel is the viewer's model of the match: the scene graph, the
// game state, both team rosters and the current selection. It is shared
// by the ingestion goroutine, the draw receiver and the render loop.
type WorldModel struct {
	logger *slog.Logger
	scene  *SceneGraph

	mu       sync.RWMutex
	state    GameState
	teams    [2]map[int]*Agent
	ball     *Ball
	selected Selectable
}

// NewWorldModel returns an empty world. A nil logger uses slog.Default().
func NewWorldModel(logger *slog.Logger) *WorldModel {
	if logger == nil {
		logger = slog.Default()
	}
	w := &WorldModel{
		logger: logger,
		scene:  NewSceneGraph(logger),
		state:  DefaultGameState(),
	}
	w.teams[SideLeft] = make(map[int]*Agent)
	w.teams[SideRight] = make(map[int]*Agent)
	return w
}

// Scene returns the scene graph.
func (w *WorldModel) Scene() *SceneGraph { return w.scene }

// HandleMessage ingests one server message: game state first, then the
// scene graph, then the rosters are refreshed from the new tree.
func (w *WorldModel) HandleMessage(data []byte) error {
	msg, err := ParseMessage(data)
	if err != nil {
		return err
	}
	if len(msg.Prelude) > 0 {
		w.mu.Lock()
		for _, e := range msg.Prelude {
			if err := w.state.Update(e); err != nil {
				w.logger.Debug("partial game state update", "error", err)
			}
		}
		w.mu.Unlock()
	}
	stats, err := w.scene.Apply(msg)
	if err != nil {
		return err
	}
	if stats.SkippedNodes > 0 || stats.SkippedOps > 0 || stats.Mismatches > 0 {
		w.logger.Debug("scene graph applied with skips",
			"kind", msg.Header.Kind,
			"skipped_nodes", stats.SkippedNodes,
			"skipped_ops", stats.SkippedOps,
			"mismatches", stats.Mismatches)
	}
	w.refreshRoster()
	return nil
}

// GameState returns a copy of the game state.
func (w *WorldModel) GameState() GameState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Agent returns the agent with the given team and number, or nil if the
// scene graph has not shown it.
func (w *WorldModel) Agent(side Side, id int) *Agent {
	if !side.Valid() {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.teams[side][id]
}

// Agents returns a team ordered by number.
func (w *WorldModel) Agents(side Side) []*Agent {
	if !side.Valid() {
		return nil
	}
	w.mu.RLock()
	out := make([]*Agent, 0, len(w.teams[side]))
	for _, a := range w.teams[side] {
		out = append(out, a)
	}
	w.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Agent) int { return a.Key.ID - b.Key.ID })
	return out
}

// Ball returns the ball, or nil if the scene graph has none.
func (w *WorldModel) Ball() *Ball {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ball
}

// Select replaces the selection. Nil clears it.
func (w *WorldModel) Select(s Selectable) {
	w.mu.Lock()
	w.selected = s
	w.mu.Unlock()
}

// Selected returns the current selection, or nil.
func (w *WorldModel) Selected() Selectable {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selected
}

// Reset forgets the session, as on disconnect.
func (w *WorldModel) Reset() {
	w.scene.Dispose()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = DefaultGameState()
	w.teams[SideLeft] = make(map[int]*Agent)
	w.teams[SideRight] = make(map[int]*Agent)
	w.ball = nil
	w.selected = nil
}

// refreshRoster rescans the tree for agent bodies and the ball. Agents
// that are no longer in the tree are dropped, and deselected.
func (w *WorldModel) refreshRoster() {
	found := make(map[AgentKey]Vec3)
	var ballPos Vec3
	haveBall := false

	w.scene.View(func(root *Node) {
		if root == nil {
			return
		}
		root.Walk(func(n *Node, world Mat4) bool {
			if n.Type != NodeTypeStaticMesh {
				return true
			}
			stem := modelStem(n.BaseName())
			switch {
			case stem == ballModel:
				ballPos, haveBall = world.Translation(), true
			case strings.HasPrefix(stem, bodyModelPrefix):
				if key, ok := agentKeyFromMaterials(n.Materials); ok {
					found[key] = world.Translation()
				}
			}
			return true
		})
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	for side := range w.teams {
		for id, a := range w.teams[side] {
			if _, ok := found[a.Key]; !ok {
				delete(w.teams[side], id)
				if w.selected == Selectable(a) {
					w.selected = nil
				}
			}
		}
	}
	for key, pos := range found {
		a := w.teams[key.Side][key.ID]
		if a == nil {
			a = &Agent{Key: key}
			w.teams[key.Side][key.ID] = a
		}
		a.setPosition(pos)
	}
	switch {
	case haveBall && w.ball == nil:
		w.ball = &Ball{position: ballPos}
	case haveBall:
		w.ball.setPosition(ballPos)
	case w.ball != nil:
		if w.selected == Selectable(w.ball) {
			w.selected = nil
		}
		w.ball = nil
	}
}

// modelStem strips directory and extension from a resource name.
func modelStem(resource string) string {
	base := path.Base(resource)
	return strings.TrimSuffix(base, path.Ext(base))
}

// agentKeyFromMaterials reads the team and number materials of a body
// mesh.
func agentKeyFromMaterials(materials []string) (AgentKey, bool) {
	var key AgentKey
	haveSide, haveID := false, false
	for _, m := range materials {
		switch {
		case m == materialLeft:
			key.Side, haveSide = SideLeft, true
		case m == materialRight:
			key.Side, haveSide = SideRight, true
		case strings.HasPrefix(m, materialNumber):
			id, err := strconv.Atoi(strings.TrimPrefix(m, materialNumber))
			if err == nil && id > 0 {
				key.ID, haveID = id, true
			}
		}
	}
	return key, haveSide && haveID
}
