// Package registry provides name-to-curve lookup for the builder packages.
// Build ordering is the owning orchestrator's job; builders only consume
// already-built dependency curves through the Registry interface.
package registry

import (
	"fmt"
	"sync"

	"github.com/meenmo/termstruct/curve"
)

// Key identifies a curve by currency and curve id.
type Key struct {
	Currency string
	CurveID  string
}

func (k Key) String() string {
	return fmt.Sprintf("Yield/%s/%s", k.Currency, k.CurveID)
}

// NotFoundError reports a lookup for a curve that has not been registered.
type NotFoundError struct {
	Key Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: curve %s not found", e.Key)
}

// Registry is the name-to-curve lookup consumed by the builders.
type Registry interface {
	Lookup(k Key) (curve.TermStructure, error)
}

// Map is a mutex-guarded map-backed Registry. The orchestrator registers
// each curve after its build finishes; builders only read.
type Map struct {
	mu     sync.RWMutex
	curves map[Key]curve.TermStructure
}

// NewMap returns an empty registry.
func NewMap() *Map {
	return &Map{curves: make(map[Key]curve.TermStructure)}
}

// Register stores a finished curve under the given key, replacing any
// previous entry.
func (m *Map) Register(k Key, ts curve.TermStructure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.curves[k] = ts
}

// Lookup returns the curve registered under k.
func (m *Map) Lookup(k Key) (curve.TermStructure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.curves[k]
	if !ok {
		return nil, &NotFoundError{Key: k}
	}
	return ts, nil
}
