package inject

import (
	"context"
	"reflect"
)

// Context holds the state of one activation: the request being served, the
// binding chosen for it and, once built, the plan and the instance.
// A Context belongs to the goroutine running the resolution.
type Context struct {
	Kernel     *Kernel
	Request    *Request
	Binding    *Binding
	Plan       *Plan
	Parameters []Parameter
	Instance   any

	constructing  bool
	scope         any
	scopeResolved bool
}

func newContext(k *Kernel, r *Request, b *Binding) *Context {
	params := make([]Parameter, 0, len(b.parameters)+len(r.Parameters))
	params = append(params, r.Parameters...)
	params = append(params, b.parameters...)
	return &Context{
		Kernel:     k,
		Request:    r,
		Binding:    b,
		Parameters: params,
	}
}

// Scope returns the scope key of the activation, or nil for transient ones.
func (c *Context) Scope() any {
	if !c.scopeResolved {
		c.scope = normalizeScope(c.Binding.Scope(c))
		c.scopeResolved = true
	}
	return c.scope
}

// Provider returns the provider chosen by the binding for this activation.
func (c *Context) Provider() Provider {
	return c.Binding.Provider(c)
}

// Get resolves a dependency of the instance being activated. Factory methods
// use it so that the dependency shares the resolution chain of its parent.
func (c *Context) Get(service reflect.Type, opts ...ResolveOption) (any, error) {
	r := c.Request.createChild(service, c, nil)
	for _, opt := range opts {
		opt(r)
	}
	return c.Kernel.resolveOne(r)
}

// Resolve is the typed form of Context.Get.
func Resolve[T any](ctx *Context, opts ...ResolveOption) (T, error) {
	return cast[T](ctx.Get(reflect.TypeFor[T](), opts...))
}

// normalizeScope turns typed nil scope keys into nil.
func normalizeScope(scope any) any {
	if scope == nil {
		return nil
	}
	if isNilValue(reflect.ValueOf(scope)) {
		return nil
	}
	return scope
}

type scopeContextKey struct{}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFrom returns the scope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeContextKey{}).(*Scope)
	return s
}
