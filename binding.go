package inject

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"
)

var bindingSeq atomic.Uint64

// Metadata holds the name and tags attached to a binding.
type Metadata struct {
	Name string
	tags map[string]any
}

// Get returns the tag value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.tags[key]
	return v, ok
}

// Has reports whether a tag is stored under key.
func (m *Metadata) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Tags returns a copy of every tag.
func (m *Metadata) Tags() map[string]any {
	out := make(map[string]any, len(m.tags))
	for k, v := range m.tags {
		out[k] = v
	}
	return out
}

// Binding maps a service type to the way its instances are created.
// A binding is immutable once it has been built by NewBinding.
type Binding struct {
	id                  uint64
	service             reflect.Type
	generic             *GenericDefinition
	metadata            *Metadata
	conditions          []Condition
	parameters          []Parameter
	activationActions   []Action
	deactivationActions []Action
	provider            ProviderCallback
	target              string
	scope               ScopeFunc
	scopeName           string
	implicit            bool
}

// BindingOption configures a binding under construction.
type BindingOption func(b *Binding) error

// NewBinding creates a binding for a closed service type.
// A target option (ToType, ToSelf, ToConstant, ToMethod, ToProvider) is required.
func NewBinding(service reflect.Type, opts ...BindingOption) (*Binding, error) {
	if service == nil {
		return nil, &InvalidBindingError{Reason: "service type is nil"}
	}
	b := &Binding{
		service:   service,
		metadata:  &Metadata{tags: map[string]any{}},
		scope:     TransientScope,
		scopeName: "transient",
	}
	return b.build(opts)
}

// NewOpenBinding creates a binding for every instantiation of a generic
// definition. Providers see the closed type in ctx.Request.Service.
func NewOpenBinding(def GenericDefinition, opts ...BindingOption) (*Binding, error) {
	if def.Name == "" {
		return nil, &InvalidBindingError{Reason: "generic definition has no name"}
	}
	b := &Binding{
		generic:   &def,
		metadata:  &Metadata{tags: map[string]any{}},
		scope:     TransientScope,
		scopeName: "transient",
	}
	return b.build(opts)
}

func (b *Binding) build(opts []BindingOption) (*Binding, error) {
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.provider == nil {
		return nil, &InvalidBindingError{Reason: fmt.Sprintf("binding for %s has no target", b.serviceName())}
	}
	b.id = bindingSeq.Add(1)
	return b, nil
}

func newImplicitBinding(service reflect.Type) *Binding {
	return &Binding{
		id:        bindingSeq.Add(1),
		service:   service,
		metadata:  &Metadata{tags: map[string]any{}},
		provider:  standardProviderCallback(service),
		target:    "self",
		scope:     TransientScope,
		scopeName: "transient",
		implicit:  true,
	}
}

// Service returns the bound service type. It is nil for open bindings.
func (b *Binding) Service() reflect.Type { return b.service }

// Definition returns the generic definition of an open binding.
func (b *Binding) Definition() (GenericDefinition, bool) {
	if b.generic == nil {
		return GenericDefinition{}, false
	}
	return *b.generic, true
}

// Name returns the binding name, or "" for unnamed bindings.
func (b *Binding) Name() string { return b.metadata.Name }

// Metadata returns the binding metadata.
func (b *Binding) Metadata() *Metadata { return b.metadata }

// IsConditional reports whether the binding carries at least one condition.
func (b *Binding) IsConditional() bool { return len(b.conditions) > 0 }

// IsImplicit reports whether the kernel created the binding on demand.
func (b *Binding) IsImplicit() bool { return b.implicit }

// Parameters returns the parameters applied to every activation of the binding.
func (b *Binding) Parameters() []Parameter { return b.parameters }

// Target describes what the binding resolves to.
func (b *Binding) Target() string { return b.target }

// ScopeName describes the binding scope.
func (b *Binding) ScopeName() string { return b.scopeName }

// Matches reports whether every condition of the binding holds for r.
func (b *Binding) Matches(r *Request) bool {
	for _, cond := range b.conditions {
		if !cond(r) {
			return false
		}
	}
	return true
}

// Provider returns the provider for an activation.
func (b *Binding) Provider(ctx *Context) Provider {
	return b.provider(ctx)
}

// Scope returns the scope key for an activation.
func (b *Binding) Scope(ctx *Context) any {
	return b.scope(ctx)
}

func (b *Binding) String() string {
	var sb strings.Builder
	sb.WriteString(b.serviceName())
	if b.metadata.Name != "" {
		fmt.Fprintf(&sb, " named %q", b.metadata.Name)
	}
	sb.WriteString(" to ")
	sb.WriteString(b.target)
	if b.IsConditional() {
		sb.WriteString(" (conditional)")
	}
	if b.implicit {
		sb.WriteString(" (implicit)")
	}
	return sb.String()
}

func (b *Binding) serviceName() string {
	if b.generic != nil {
		return b.generic.String()
	}
	return typeName(b.service)
}

// precedence ranks bindings for unique requests.
func (b *Binding) precedence() int {
	p := 0
	if b.IsConditional() {
		p += 2
	}
	if !b.implicit {
		p++
	}
	return p
}

// ToType binds the service to an implementation type built through its plan.
func ToType(impl reflect.Type) BindingOption {
	return func(b *Binding) error {
		if impl == nil {
			return &InvalidBindingError{Reason: "implementation type is nil"}
		}
		if b.service != nil && !impl.AssignableTo(b.service) {
			return &InvalidBindingError{
				Reason: fmt.Sprintf("%s is not assignable to %s", impl, b.service),
			}
		}
		if b.generic != nil {
			if def, ok := DefinitionOf(impl); ok {
				b.provider = openProviderCallback(def)
				b.target = "type " + def.String()
				return nil
			}
		}
		b.provider = standardProviderCallback(impl)
		b.target = "type " + impl.String()
		return nil
	}
}

// ToGeneric binds an open service definition to an open implementation
// definition. The closed implementation must have a registered constructor.
func ToGeneric(impl GenericDefinition) BindingOption {
	return func(b *Binding) error {
		b.provider = openProviderCallback(impl)
		b.target = "type " + impl.String()
		return nil
	}
}

// ToSelf binds the service to itself.
func ToSelf() BindingOption {
	return func(b *Binding) error {
		if b.service == nil {
			return &InvalidBindingError{Reason: "open bindings cannot target themselves"}
		}
		b.provider = standardProviderCallback(b.service)
		b.target = "self"
		return nil
	}
}

// ToConstant binds the service to a fixed value. Constant bindings default to
// singleton scope.
func ToConstant(value any) BindingOption {
	return func(b *Binding) error {
		if value == nil {
			return &InvalidBindingError{Reason: "constant value is nil"}
		}
		if b.service != nil && !reflect.TypeOf(value).AssignableTo(b.service) {
			return &InvalidBindingError{
				Reason: fmt.Sprintf("constant of type %T is not assignable to %s", value, b.service),
			}
		}
		p := &ConstantProvider{value: value}
		b.provider = func(*Context) Provider { return p }
		b.target = fmt.Sprintf("constant %T", value)
		b.scope = SingletonScope
		b.scopeName = "singleton"
		return nil
	}
}

// ToMethod binds the service to a factory function.
func ToMethod(fn func(ctx *Context) (any, error)) BindingOption {
	return func(b *Binding) error {
		if fn == nil {
			return &InvalidBindingError{Reason: "factory method is nil"}
		}
		p := &MethodProvider{typ: b.service, fn: fn}
		b.provider = func(*Context) Provider { return p }
		b.target = "method"
		return nil
	}
}

// ToProvider binds the service to a custom provider.
func ToProvider(p Provider) BindingOption {
	return func(b *Binding) error {
		if p == nil {
			return &InvalidBindingError{Reason: "provider is nil"}
		}
		b.provider = func(*Context) Provider { return p }
		b.target = "provider " + typeName(p.Type())
		return nil
	}
}

// WithName names the binding.
func WithName(name string) BindingOption {
	return func(b *Binding) error {
		b.metadata.Name = name
		return nil
	}
}

// WithMetadata attaches a tag to the binding.
func WithMetadata(key string, value any) BindingOption {
	return func(b *Binding) error {
		b.metadata.tags[key] = value
		return nil
	}
}

// When adds conditions that must all hold for the binding to apply.
func When(conds ...Condition) BindingOption {
	return func(b *Binding) error {
		for _, c := range conds {
			if c == nil {
				return &InvalidBindingError{Reason: "condition is nil"}
			}
		}
		b.conditions = append(b.conditions, conds...)
		return nil
	}
}

// WithParameters attaches parameters to every activation of the binding.
func WithParameters(params ...Parameter) BindingOption {
	return func(b *Binding) error {
		b.parameters = append(b.parameters, params...)
		return nil
	}
}

// OnActivation adds an action run after the instance is initialized and started.
func OnActivation(action Action) BindingOption {
	return func(b *Binding) error {
		b.activationActions = append(b.activationActions, action)
		return nil
	}
}

// OnDeactivation adds an action run when the instance is released.
func OnDeactivation(action Action) BindingOption {
	return func(b *Binding) error {
		b.deactivationActions = append(b.deactivationActions, action)
		return nil
	}
}

// InScope sets a custom scope callback.
func InScope(fn ScopeFunc) BindingOption {
	return func(b *Binding) error {
		if fn == nil {
			return &InvalidBindingError{Reason: "scope callback is nil"}
		}
		b.scope = fn
		b.scopeName = "custom"
		return nil
	}
}

// InTransientScope creates a new instance for every request.
func InTransientScope() BindingOption {
	return namedScope(TransientScope, "transient")
}

// InSingletonScope shares one instance for the kernel lifetime.
func InSingletonScope() BindingOption {
	return namedScope(SingletonScope, "singleton")
}

// InRequestScope shares one instance per *Scope. Requests made outside of a
// scope get transient instances.
func InRequestScope() BindingOption {
	return namedScope(RequestScope, "request")
}

// InGoroutineScope shares one instance per goroutine until
// Kernel.EndGoroutineScope is called on it. Instances of goroutines that
// exit without ending their scope are deactivated by the next prune.
func InGoroutineScope() BindingOption {
	return namedScope(GoroutineScope, "goroutine")
}

func namedScope(fn ScopeFunc, name string) BindingOption {
	return func(b *Binding) error {
		b.scope = fn
		b.scopeName = name
		return nil
	}
}
