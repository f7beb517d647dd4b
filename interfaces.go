package inject

import "reflect"

// Initializable is implemented by services that need a setup step once all of
// their dependencies have been injected.
type Initializable interface {
	// Initialize is called after property and method injection.
	Initialize() error
}

// Startable is implemented by services with a running phase.
type Startable interface {
	// Start is called during activation, after Initialize.
	Start() error

	// Stop is called during deactivation, before Dispose.
	Stop() error
}

// Disposable is implemented by services that hold resources.
type Disposable interface {
	// Dispose releases the resources held by the service.
	// It is called at most once per instance.
	Dispose() error
}

// Provider creates instances for a binding.
type Provider interface {
	// Type returns the type of instance the provider creates.
	Type() reflect.Type

	// Create builds a new instance for the given activation context.
	Create(ctx *Context) (any, error)
}

// ProviderCallback returns the provider used for an activation.
type ProviderCallback func(ctx *Context) Provider

// Condition decides whether a binding applies to a request.
type Condition func(r *Request) bool

// Constraint filters bindings by their metadata.
type Constraint func(m *Metadata) bool

// ScopeFunc returns the scope key for an activation.
// A nil key means the instance is transient and never cached.
type ScopeFunc func(ctx *Context) any

// Action runs against an instance during activation or deactivation.
type Action func(ctx *Context, instance any) error

// Lifetime is implemented by scope keys that know when they have ended.
// Cached instances whose scope key reports Released are pruned.
type Lifetime interface {
	Released() bool
}

// Resolver resolves services. It is implemented by *Kernel and *Scope.
type Resolver interface {
	Get(service reflect.Type, opts ...ResolveOption) (any, error)
	TryGet(service reflect.Type, opts ...ResolveOption) (any, error)
	GetAll(service reflect.Type, opts ...ResolveOption) (*Instances, error)
}
