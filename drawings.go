package rsgview

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Drawings holds every named drawing set. Shape sets and annotation sets
// live in separate namespaces, so a shape set and an annotation set may
// share a name without being related. Sets are created on first use.
//
// The receive goroutine adds and swaps; the render loop takes snapshots.
type Drawings struct {
	mu          sync.RWMutex
	shapes      map[string]*BufferedSet[Shape]
	annotations map[string]*BufferedSet[Annotation]
	agentNotes  map[AgentKey]AgentAnnotation
}

// NewDrawings returns an empty registry.
func NewDrawings() *Drawings {
	return &Drawings{
		shapes:      make(map[string]*BufferedSet[Shape]),
		annotations: make(map[string]*BufferedSet[Annotation]),
		agentNotes:  make(map[AgentKey]AgentAnnotation),
	}
}

// ShapeSet returns the shape set called name, creating it if needed.
func (d *Drawings) ShapeSet(name string) *BufferedSet[Shape] {
	return lookupSet(&d.mu, d.shapes, name)
}

// AnnotationSet returns the annotation set called name, creating it if
// needed.
func (d *Drawings) AnnotationSet(name string) *BufferedSet[Annotation] {
	return lookupSet(&d.mu, d.annotations, name)
}

func lookupSet[T any](mu *sync.RWMutex, sets map[string]*BufferedSet[T], name string) *BufferedSet[T] {
	mu.RLock()
	s := sets[name]
	mu.RUnlock()
	if s != nil {
		return s
	}
	mu.Lock()
	defer mu.Unlock()
	if s = sets[name]; s == nil {
		s = NewBufferedSet[T](name)
		sets[name] = s
	}
	return s
}

// AddShape appends s to the back buffer of the named set.
func (d *Drawings) AddShape(set string, s Shape) {
	d.ShapeSet(set).Put(s)
}

// AddAnnotation appends a to the back buffer of the named set.
func (d *Drawings) AddAnnotation(set string, a Annotation) {
	d.AnnotationSet(set).Put(a)
}

// SwapBuffers swaps every shape and annotation set whose name starts
// with prefix. An empty prefix swaps all sets. It returns the number of
// sets swapped.
func (d *Drawings) SwapBuffers(prefix string) int {
	d.mu.RLock()
	shapes := matchingSets(d.shapes, prefix)
	notes := matchingSets(d.annotations, prefix)
	d.mu.RUnlock()
	for _, s := range shapes {
		s.SwapBuffers()
	}
	for _, s := range notes {
		s.SwapBuffers()
	}
	return len(shapes) + len(notes)
}

func matchingSets[T any](sets map[string]*BufferedSet[T], prefix string) []*BufferedSet[T] {
	var out []*BufferedSet[T]
	for name, s := range sets {
		if strings.HasPrefix(name, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// SetVisible shows or hides every set, of either kind, whose name starts
// with prefix.
func (d *Drawings) SetVisible(prefix string, visible bool) {
	d.mu.RLock()
	shapes := matchingSets(d.shapes, prefix)
	notes := matchingSets(d.annotations, prefix)
	d.mu.RUnlock()
	for _, s := range shapes {
		s.SetVisible(visible)
	}
	for _, s := range notes {
		s.SetVisible(visible)
	}
}

// ShapeSets returns all shape sets ordered by name.
func (d *Drawings) ShapeSets() []*BufferedSet[Shape] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedSets(d.shapes)
}

// AnnotationSets returns all annotation sets ordered by name.
func (d *Drawings) AnnotationSets() []*BufferedSet[Annotation] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sortedSets(d.annotations)
}

func sortedSets[T any](sets map[string]*BufferedSet[T]) []*BufferedSet[T] {
	names := slices.Sorted(maps.Keys(sets))
	out := make([]*BufferedSet[T], len(names))
	for i, n := range names {
		out[i] = sets[n]
	}
	return out
}

// SetNames lists the names of all sets of either kind, sorted, without
// duplicates. This is what a set list UI shows.
func (d *Drawings) SetNames() []string {
	d.mu.RLock()
	names := slices.Collect(maps.Keys(d.shapes))
	for n := range d.annotations {
		names = append(names, n)
	}
	d.mu.RUnlock()
	slices.Sort(names)
	return slices.Compact(names)
}

// VisibleShapes returns the front buffers of all visible shape sets,
// ordered by set name.
func (d *Drawings) VisibleShapes() []Shape {
	var out []Shape
	for _, s := range d.ShapeSets() {
		if s.Visible() {
			out = append(out, s.FrontSnapshot()...)
		}
	}
	return out
}

// VisibleAnnotations returns the front buffers of all visible annotation
// sets, ordered by set name.
func (d *Drawings) VisibleAnnotations() []Annotation {
	var out []Annotation
	for _, s := range d.AnnotationSets() {
		if s.Visible() {
			out = append(out, s.FrontSnapshot()...)
		}
	}
	return out
}

// SetAgentAnnotation attaches text to an agent, replacing any previous
// text for it.
func (d *Drawings) SetAgentAnnotation(a AgentAnnotation) {
	d.mu.Lock()
	d.agentNotes[a.Agent] = a
	d.mu.Unlock()
}

// ClearAgentAnnotation removes an agent's text. Clearing an agent that has
// none does nothing.
func (d *Drawings) ClearAgentAnnotation(key AgentKey) {
	d.mu.Lock()
	delete(d.agentNotes, key)
	d.mu.Unlock()
}

// AgentAnnotation returns the text attached to key, if any.
func (d *Drawings) AgentAnnotation(key AgentKey) (AgentAnnotation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agentNotes[key]
	return a, ok
}

// AgentAnnotations returns a copy of all agent annotations.
func (d *Drawings) AgentAnnotations() []AgentAnnotation {
	d.mu.RLock()
	out := slices.Collect(maps.Values(d.agentNotes))
	d.mu.RUnlock()
	slices.SortFunc(out, func(a, b AgentAnnotation) int {
		if a.Agent.Side != b.Agent.Side {
			return int(a.Agent.Side) - int(b.Agent.Side)
		}
		return a.Agent.ID - b.Agent.ID
	})
	return out
}

// Clear removes every set and agent annotation.
func (d *Drawings) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.shapes)
	clear(d.annotations)
	clear(d.agentNotes)
}

// ToggleVisible flips the visibility of the existing sets named exactly
// name, of either kind, and returns the new state. If any of them was
// visible, all become hidden.
func (d *Drawings) ToggleVisible(name string) bool {
	d.mu.RLock()
	shapes, notes := d.shapes[name], d.annotations[name]
	d.mu.RUnlock()
	visible := (shapes != nil && shapes.Visible()) || (notes != nil && notes.Visible())
	if shapes != nil {
		shapes.SetVisible(!visible)
	}
	if notes != nil {
		notes.SetVisible(!visible)
	}
	return !visible
}

// Visible reports whether any set named exactly name is visible.
func (d *Drawings) Visible(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if s := d.shapes[name]; s != nil && s.Visible() {
		return true
	}
	if s := d.annotations[name]; s != nil && s.Visible() {
		return true
	}
	return false
}
