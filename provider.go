package inject

import (
	"fmt"
	"reflect"
)

// StandardProvider builds instances of a concrete type from its plan:
// the selected constructor is called with resolved dependencies.
type StandardProvider struct {
	typ reflect.Type
}

func standardProviderCallback(t reflect.Type) ProviderCallback {
	p := &StandardProvider{typ: t}
	return func(*Context) Provider { return p }
}

func (p *StandardProvider) Type() reflect.Type { return p.typ }

func (p *StandardProvider) Create(ctx *Context) (any, error) {
	plan, err := ctx.Kernel.planner.GetPlan(p.typ)
	if err != nil {
		return nil, err
	}
	ctx.Plan = plan
	d := plan.Constructor
	args := make([]reflect.Value, len(d.Targets))
	for i, t := range d.Targets {
		v, _, err := t.resolve(ctx)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return d.inject(args)
}

func (p *StandardProvider) String() string {
	return "standard(" + typeName(p.typ) + ")"
}

// ConstantProvider returns the same value for every activation.
type ConstantProvider struct {
	value any
}

func (p *ConstantProvider) Type() reflect.Type { return reflect.TypeOf(p.value) }

func (p *ConstantProvider) Create(*Context) (any, error) { return p.value, nil }

func (p *ConstantProvider) String() string {
	return fmt.Sprintf("constant(%T)", p.value)
}

// MethodProvider calls a factory function.
type MethodProvider struct {
	typ reflect.Type
	fn  func(ctx *Context) (any, error)
}

func (p *MethodProvider) Type() reflect.Type { return p.typ }

func (p *MethodProvider) Create(ctx *Context) (any, error) { return p.fn(ctx) }

func (p *MethodProvider) String() string { return "method" }

// openProviderCallback closes an open implementation definition against the
// requested service type.
func openProviderCallback(impl GenericDefinition) ProviderCallback {
	return func(ctx *Context) Provider {
		closed := ctx.Kernel.selector.closeGeneric(impl, ctx.Request.Service)
		if closed == nil {
			return &unclosedProvider{impl: impl, service: ctx.Request.Service}
		}
		return &StandardProvider{typ: closed}
	}
}

type unclosedProvider struct {
	impl    GenericDefinition
	service reflect.Type
}

func (p *unclosedProvider) Type() reflect.Type { return nil }

func (p *unclosedProvider) Create(*Context) (any, error) {
	return nil, &NoUsableConstructorError{
		Type:   p.service,
		Reason: fmt.Sprintf("no constructor registered for an instantiation of %s matching %s", p.impl, p.service),
	}
}

func providerName(p Provider) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
