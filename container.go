package inject

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Kernel resolves services from bindings, manages the lifetime of the
// instances it creates and runs their activation and deactivation hooks.
// A Kernel is safe for concurrent use.
type Kernel struct {
	settings Settings
	logger   *zap.Logger
	registry *Registry
	selector *Selector
	planner  *Planner
	pipeline *Pipeline
	cache    *Cache
	pruner   *Pruner
	disposed atomic.Bool
}

// New creates a kernel.
func New(opts ...Option) (*Kernel, error) {
	cfg := &config{settings: DefaultSettings(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.settings.validate(); err != nil {
		return nil, err
	}

	c := newComponents(cfg)
	k := &Kernel{
		settings: component[Settings](c),
		logger:   component[*zap.Logger](c),
		registry: component[*Registry](c),
		selector: component[*Selector](c),
		planner:  component[*Planner](c),
		pipeline: component[*Pipeline](c),
		cache:    component[*Cache](c),
		pruner:   component[*Pruner](c),
	}
	if err := k.pruner.Start(); err != nil {
		return nil, err
	}
	return k, nil
}

// Settings returns the kernel settings.
func (k *Kernel) Settings() Settings { return k.settings }

// Logger returns the kernel logger.
func (k *Kernel) Logger() *zap.Logger { return k.logger }

// Released reports whether the kernel has been disposed. Singleton instances
// are cached with the kernel as their scope key.
func (k *Kernel) Released() bool { return k.disposed.Load() }

// Add registers a binding.
func (k *Kernel) Add(b *Binding) error {
	if k.disposed.Load() {
		return &KernelDisposedError{}
	}
	if b == nil {
		return &InvalidBindingError{Reason: "binding is nil"}
	}
	k.registry.Add(b)
	return nil
}

// Bind builds a binding for service and registers it.
func (k *Kernel) Bind(service reflect.Type, opts ...BindingOption) (*Binding, error) {
	b, err := NewBinding(service, opts...)
	if err != nil {
		return nil, err
	}
	return b, k.Add(b)
}

// BindGeneric builds an open binding for def and registers it.
func (k *Kernel) BindGeneric(def GenericDefinition, opts ...BindingOption) (*Binding, error) {
	b, err := NewOpenBinding(def, opts...)
	if err != nil {
		return nil, err
	}
	return b, k.Add(b)
}

// RemoveAll unregisters every binding of service and deactivates the
// instances cached for them.
func (k *Kernel) RemoveAll(service reflect.Type) error {
	return k.removeCached(k.registry.RemoveAll(service))
}

// RemoveAllGeneric unregisters every open binding of def.
func (k *Kernel) RemoveAllGeneric(def GenericDefinition) error {
	return k.removeCached(k.registry.RemoveAllGeneric(def))
}

func (k *Kernel) removeCached(bindings []*Binding) error {
	var err error
	for _, b := range bindings {
		err = multierr.Append(err, k.cache.RemoveBinding(b))
	}
	return err
}

// Rebind replaces every binding of service with a new one.
func (k *Kernel) Rebind(service reflect.Type, opts ...BindingOption) (*Binding, error) {
	b, err := NewBinding(service, opts...)
	if err != nil {
		return nil, err
	}
	err = k.RemoveAll(service)
	return b, multierr.Append(err, k.Add(b))
}

// GetBindings returns the bindings registered for service.
func (k *Kernel) GetBindings(service reflect.Type) []*Binding {
	return k.registry.GetBindings(service)
}

// RegisterConstructor registers fn as a constructor of the type it returns.
// fn must return the instance and, optionally, an error. Constructors must be
// registered before the type is first resolved.
func (k *Kernel) RegisterConstructor(fn any, opts ...ConstructorOption) error {
	c, err := newConstructor(fn, opts...)
	if err != nil {
		return err
	}
	if k.planner.Has(c.Type) {
		return &InvalidBindingError{
			Reason: fmt.Sprintf("constructor %s registered after %s was planned", c.Name, c.Type),
		}
	}
	k.selector.register(c)
	return nil
}

// Get resolves one instance of service.
func (k *Kernel) Get(service reflect.Type, opts ...ResolveOption) (any, error) {
	return k.get(service, nil, false, opts)
}

// TryGet resolves one instance of service, returning nil when no binding
// matches.
func (k *Kernel) TryGet(service reflect.Type, opts ...ResolveOption) (any, error) {
	return k.get(service, nil, true, opts)
}

// GetAll returns the instances of every binding of service. Resolution is lazy
// and happens again on each iteration.
func (k *Kernel) GetAll(service reflect.Type, opts ...ResolveOption) (*Instances, error) {
	return k.getAll(service, nil, opts)
}

// CanResolve reports whether a binding would be selected for service.
func (k *Kernel) CanResolve(service reflect.Type, opts ...ResolveOption) bool {
	if k.disposed.Load() || service == nil {
		return false
	}
	bindings, err := k.selectBindings(newRequest(service, nil, true, true, opts))
	return err == nil && len(bindings) > 0
}

// Inject runs the activation pipeline over an existing instance: fields and
// methods are injected, then the lifecycle hooks run.
func (k *Kernel) Inject(instance any) error {
	if err := k.check(nil); err != nil {
		return err
	}
	if instance == nil {
		return &ActivationError{Err: errors.New("instance is nil")}
	}
	t := reflect.TypeOf(instance)
	plan, err := k.planner.activationPlan(t)
	if err != nil {
		return err
	}
	ctx := newContext(k, newRequest(t, nil, false, true, nil), newImplicitBinding(t))
	ctx.Plan = plan
	ctx.Instance = instance
	return k.pipeline.Activate(ctx, instance)
}

// Release deactivates instance. It reports false, and does nothing, when the
// instance is owned by a live scope, was never tracked, or was already
// released.
func (k *Kernel) Release(instance any) (bool, error) {
	if instance == nil || k.cache.Owns(instance) {
		return false, nil
	}
	if ok, err := k.cache.Release(instance); ok {
		return true, err
	}
	return k.pipeline.release(instance)
}

// BeginScope starts a scope for request-scoped bindings.
func (k *Kernel) BeginScope(name string) *Scope {
	s := newScope(k, nil, name)
	if k.disposed.Load() {
		s.released.Store(true)
	}
	return s
}

// EndGoroutineScope deactivates the instances cached for the calling
// goroutine by InGoroutineScope bindings.
func (k *Kernel) EndGoroutineScope() error {
	return k.cache.Clear(goroutineKey(goid()))
}

// Prune deactivates the instances of every released scope now.
func (k *Kernel) Prune() error {
	return k.cache.Prune()
}

// Dispose stops the pruner and deactivates every cached and tracked
// instance, newest first. Later calls return nil.
func (k *Kernel) Dispose() error {
	if !k.disposed.CompareAndSwap(false, true) {
		return nil
	}
	k.pruner.Stop()
	err := k.cache.ClearAll()
	err = multierr.Append(err, k.pipeline.deactivateAll())
	k.logger.Debug("kernel disposed", zap.Error(err))
	return err
}

func (k *Kernel) check(scope *Scope) error {
	if k.disposed.Load() {
		return &KernelDisposedError{}
	}
	if scope != nil && scope.Released() {
		return &ScopeReleasedError{Scope: scope.name}
	}
	return nil
}

func (k *Kernel) get(service reflect.Type, scope *Scope, optional bool, opts []ResolveOption) (any, error) {
	if err := k.check(scope); err != nil {
		return nil, err
	}
	if service == nil {
		return nil, &InvalidBindingError{Reason: "requested service type is nil"}
	}
	return k.resolveOne(newRequest(service, scope, optional, true, opts))
}

func (k *Kernel) getAll(service reflect.Type, scope *Scope, opts []ResolveOption) (*Instances, error) {
	if err := k.check(scope); err != nil {
		return nil, err
	}
	if service == nil {
		return nil, &InvalidBindingError{Reason: "requested service type is nil"}
	}
	return &Instances{kernel: k, service: service, scope: scope, opts: opts}, nil
}

// Instances is the lazy result of GetAll.
type Instances struct {
	kernel  *Kernel
	service reflect.Type
	scope   *Scope
	opts    []ResolveOption
}

// All resolves the instances one binding at a time. Iteration stops after
// the first error.
func (i *Instances) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		if err := i.kernel.check(i.scope); err != nil {
			yield(nil, err)
			return
		}
		r := newRequest(i.service, i.scope, true, false, i.opts)
		bindings, err := i.kernel.selectBindings(r)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, b := range bindings {
			inst, err := i.kernel.resolveContext(newContext(i.kernel, r, b))
			if inst == nil && err == nil {
				continue
			}
			if !yield(inst, err) || err != nil {
				return
			}
		}
	}
}

// Slice resolves every instance.
func (i *Instances) Slice() ([]any, error) {
	var out []any
	for inst, err := range i.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Len returns the number of bindings that currently satisfy the request.
func (i *Instances) Len() int {
	if i.kernel.check(i.scope) != nil {
		return 0
	}
	bindings, err := i.kernel.selectBindings(newRequest(i.service, i.scope, true, false, i.opts))
	if err != nil {
		return 0
	}
	return len(bindings)
}
