// Package diagnostics tracks process readiness in memory (C12,
// SPEC_FULL.md §2). Grounded in the teacher's internal/api.HealthHandler,
// which aggregates per-dependency status into one overall verdict; here
// there is no HTTP listener to serve it from (the projector has no
// synchronous API surface), so Status is read directly by cmd/projector
// for structured startup logging rather than exposed over a network.
package diagnostics

import "sync"

// Component names a dependency whose readiness is tracked independently.
type Component string

const (
	ComponentBroker    Component = "broker"
	ComponentRelStore  Component = "relation_store"
	ComponentConsumers Component = "consumers"
)

// Status records the up/down state of each tracked component.
type Status struct {
	mu    sync.RWMutex
	ready map[Component]bool
}

// New returns a Status with every component marked not ready.
func New() *Status {
	return &Status{ready: make(map[Component]bool)}
}

// Set marks component as ready or not.
func (s *Status) Set(component Component, ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready[component] = ready
}

// Ready reports whether component has been marked ready.
func (s *Status) Ready(component Component) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready[component]
}

// AllReady reports whether every component passed in is ready. Used at
// startup to report whether the projector has finished coming up.
func (s *Status) AllReady(components ...Component) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range components {
		if !s.ready[c] {
			return false
		}
	}
	return true
}
