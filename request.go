package inject

import (
	"reflect"
	"slices"
)

// Request describes one attempt to resolve a service, either from user code
// (a root request) or for a dependency of an instance under construction.
type Request struct {
	Service       reflect.Type
	ParentRequest *Request
	ParentContext *Context
	Target        *Target
	Constraint    Constraint
	Parameters    []Parameter
	IsOptional    bool
	IsUnique      bool
	Depth         int

	scope *Scope
	root  *Request
}

// ResolveOption customizes a root request.
type ResolveOption func(r *Request)

// Named restricts resolution to bindings with the given name.
func Named(name string) ResolveOption {
	return Where(NamedConstraint(name))
}

// WithTag restricts resolution to bindings carrying the given tag value.
func WithTag(key string, value any) ResolveOption {
	return Where(func(m *Metadata) bool {
		v, ok := m.Get(key)
		return ok && v == value
	})
}

// Where restricts resolution to bindings whose metadata satisfies c.
func Where(c Constraint) ResolveOption {
	return func(r *Request) {
		r.Constraint = andConstraint(r.Constraint, c)
	}
}

// WithArgs passes parameters to the activation of the requested service.
func WithArgs(params ...Parameter) ResolveOption {
	return func(r *Request) {
		r.Parameters = append(r.Parameters, params...)
	}
}

// NamedConstraint matches bindings with the given name.
func NamedConstraint(name string) Constraint {
	return func(m *Metadata) bool {
		return m.Name == name
	}
}

func andConstraint(a, b Constraint) Constraint {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(m *Metadata) bool {
		return a(m) && b(m)
	}
}

func newRequest(service reflect.Type, scope *Scope, optional, unique bool, opts []ResolveOption) *Request {
	r := &Request{
		Service:    service,
		IsOptional: optional,
		IsUnique:   unique,
		scope:      scope,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.root = r
	return r
}

// createChild creates the request for a dependency of the instance being
// activated by parent.
func (r *Request) createChild(service reflect.Type, parent *Context, target *Target) *Request {
	child := &Request{
		Service:       service,
		ParentRequest: r,
		ParentContext: parent,
		Target:        target,
		IsUnique:      true,
		Depth:         r.Depth + 1,
		scope:         r.scope,
		root:          r.root,
	}
	for _, p := range parent.Parameters {
		if p.inherited {
			child.Parameters = append(child.Parameters, p)
		}
	}
	if target != nil {
		child.Constraint = target.Constraint()
		child.IsOptional = target.Optional
	}
	return child
}

// Root returns the request made by user code that started the resolution.
func (r *Request) Root() *Request { return r.root }

// Scope returns the *Scope the resolution runs in, or nil.
func (r *Request) Scope() *Scope { return r.scope }

// Matches reports whether the request constraint accepts b.
func (r *Request) Matches(b *Binding) bool {
	return r.Constraint == nil || r.Constraint(b.metadata)
}

func (r *Request) String() string {
	if r.Target != nil {
		return typeName(r.Service) + " for " + r.Target.String()
	}
	return typeName(r.Service)
}

// chain lists the services that led to r, closest first.
func (r *Request) chain() []string {
	var out []string
	for p := r.ParentRequest; p != nil; p = p.ParentRequest {
		out = append(out, typeName(p.Service))
	}
	return out
}

// path lists the services from the root down to r.
func (r *Request) path() []string {
	out := append([]string{typeName(r.Service)}, r.chain()...)
	slices.Reverse(out)
	return out
}
