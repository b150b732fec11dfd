package rsgview

import (
	"sync"
	"sync/atomic"
)

// BufferedSet is a named, double-buffered collection. One writer
// goroutine appends to the back buffer with Put and publishes it with
// SwapBuffers; any number of readers take copies of the front buffer
// with FrontSnapshot. SwapBuffers is the point at which items become
// visible.
type BufferedSet[T any] struct {
	name    string
	visible atomic.Bool

	mu      sync.Mutex // guards front/back against FrontSnapshot
	buffers [2][]T
	front   int
	back    int
}

// NewBufferedSet returns an empty, visible set.
func NewBufferedSet[T any](name string) *BufferedSet[T] {
	s := &BufferedSet[T]{name: name, front: 0, back: 1}
	s.visible.Store(true)
	return s
}

// Name returns the set's name.
func (s *BufferedSet[T]) Name() string { return s.name }

// Visible reports whether the renderer should draw this set.
func (s *BufferedSet[T]) Visible() bool { return s.visible.Load() }

// SetVisible shows or hides the set. Safe from any goroutine.
func (s *BufferedSet[T]) SetVisible(v bool) { s.visible.Store(v) }

// Put appends item to the back buffer. Only the writer goroutine may call
// Put and SwapBuffers; Put takes no lock because readers never touch the
// back buffer.
func (s *BufferedSet[T]) Put(item T) {
	s.buffers[s.back] = append(s.buffers[s.back], item)
}

// SwapBuffers publishes everything put since the previous swap and
// empties the new back buffer.
func (s *BufferedSet[T]) SwapBuffers() {
	s.mu.Lock()
	s.front, s.back = s.back, s.front
	clear(s.buffers[s.back])
	s.buffers[s.back] = s.buffers[s.back][:0]
	s.mu.Unlock()
}

// FrontSnapshot returns a copy of the front buffer. The copy is the
// caller's; later swaps do not affect it.
func (s *BufferedSet[T]) FrontSnapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	front := s.buffers[s.front]
	out := make([]T, len(front))
	copy(out, front)
	return out
}

// BackLen returns the number of pending items. Writer goroutine only.
func (s *BufferedSet[T]) BackLen() int {
	return len(s.buffers[s.back])
}
