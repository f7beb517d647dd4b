package inject

import (
	"cmp"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Registry stores bindings per service type, in registration order.
// Readers always receive copies, so mutations never affect a lookup in flight.
type Registry struct {
	mu       sync.RWMutex
	bindings map[reflect.Type][]*Binding
	open     map[GenericDefinition][]*Binding
	logger   *zap.Logger
}

func newRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		bindings: make(map[reflect.Type][]*Binding),
		open:     make(map[GenericDefinition][]*Binding),
		logger:   logger,
	}
}

// Add registers a binding.
func (r *Registry) Add(b *Binding) {
	r.mu.Lock()
	if b.generic != nil {
		r.open[*b.generic] = append(r.open[*b.generic], b)
	} else {
		r.bindings[b.service] = append(r.bindings[b.service], b)
	}
	r.mu.Unlock()
	r.logger.Debug("binding added", zap.Stringer("binding", b))
}

// AddImplicit registers a self-binding for service unless bindings for it
// already exist, and returns the bindings now registered.
func (r *Registry) AddImplicit(service reflect.Type) []*Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.bindings[service]; len(existing) > 0 {
		return slices.Clone(existing)
	}
	b := newImplicitBinding(service)
	r.bindings[service] = []*Binding{b}
	r.logger.Debug("implicit self-binding created", zap.Stringer("service", service))
	return []*Binding{b}
}

// RemoveAll unregisters every binding of service and returns them.
func (r *Registry) RemoveAll(service reflect.Type) []*Binding {
	r.mu.Lock()
	removed := r.bindings[service]
	delete(r.bindings, service)
	r.mu.Unlock()
	for _, b := range removed {
		r.logger.Debug("binding removed", zap.Stringer("binding", b))
	}
	return removed
}

// RemoveAllGeneric unregisters every open binding of def and returns them.
func (r *Registry) RemoveAllGeneric(def GenericDefinition) []*Binding {
	r.mu.Lock()
	removed := r.open[def]
	delete(r.open, def)
	r.mu.Unlock()
	for _, b := range removed {
		r.logger.Debug("binding removed", zap.Stringer("binding", b))
	}
	return removed
}

// GetBindings returns the bindings of service. A generic instantiation with no
// bindings of its own falls back to the bindings of its open definition.
func (r *Registry) GetBindings(service reflect.Type) []*Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if bs := r.bindings[service]; len(bs) > 0 {
		return slices.Clone(bs)
	}
	if def, ok := DefinitionOf(service); ok {
		return slices.Clone(r.open[def])
	}
	return nil
}

// Has reports whether service has bindings of its own.
func (r *Registry) Has(service reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings[service]) > 0
}

// All returns every binding in registration order.
func (r *Registry) All() []*Binding {
	r.mu.RLock()
	var out []*Binding
	for _, bs := range r.bindings {
		out = append(out, bs...)
	}
	for _, bs := range r.open {
		out = append(out, bs...)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Binding) int {
		return cmp.Compare(a.id, b.id)
	})
	return out
}
