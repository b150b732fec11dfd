package rsgview

// Annotation is free-floating text at a fixed world position.
type Annotation struct {
	Text     string
	Position Vec3
	Color    Color
}

// Draw renders the text at its position.
func (a Annotation) Draw(c Canvas) {
	c.Text(a.Position, a.Text, a.Color)
}

// AgentAnnotation is text that follows an agent. It holds the agent's key,
// not the agent, and resolves it on every draw.
type AgentAnnotation struct {
	Agent AgentKey
	Text  string
	Color Color
}

// Draw renders the text above the agent's current head position. Agents
// the world does not know are skipped.
func (a AgentAnnotation) Draw(c Canvas, w *WorldModel) bool {
	agent := w.Agent(a.Agent.Side, a.Agent.ID)
	if agent == nil {
		return false
	}
	c.Text(agent.HeadPosition(), a.Text, a.Color)
	return true
}
