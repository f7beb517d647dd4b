package inject

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// selectBindings returns the bindings that satisfy r. Unique requests get at
// most one binding: the single best by precedence. Other requests get every
// satisfied binding, leaving out implicit self-bindings once an explicit
// binding is satisfied.
func (k *Kernel) selectBindings(r *Request) ([]*Binding, error) {
	all := k.registry.GetBindings(r.Service)
	if len(all) == 0 && k.settings.AllowImplicitSelfBinding && k.selector.IsSelfBindable(r.Service) {
		all = k.registry.AddImplicit(r.Service)
	}

	satisfied := make([]*Binding, 0, len(all))
	for _, b := range all {
		if b.Matches(r) && r.Matches(b) {
			satisfied = append(satisfied, b)
		}
	}
	if len(satisfied) == 0 {
		if r.IsOptional {
			return nil, nil
		}
		return nil, newNoBindingFoundError(r)
	}
	if !r.IsUnique {
		if explicit := slices.DeleteFunc(slices.Clone(satisfied), (*Binding).IsImplicit); len(explicit) > 0 {
			return explicit, nil
		}
		return satisfied, nil
	}
	if len(satisfied) == 1 {
		return satisfied, nil
	}

	slices.SortStableFunc(satisfied, func(a, b *Binding) int {
		return cmp.Compare(b.precedence(), a.precedence())
	})
	n := 1
	for n < len(satisfied) && satisfied[n].precedence() == satisfied[0].precedence() {
		n++
	}
	if n > 1 {
		return nil, newAmbiguousBindingError(r, satisfied[:n])
	}
	return satisfied[:1], nil
}

// resolveOne resolves a unique request. It returns nil without error when an
// optional request has nothing to resolve.
func (k *Kernel) resolveOne(r *Request) (any, error) {
	bindings, err := k.selectBindings(r)
	if err != nil || len(bindings) == 0 {
		return nil, err
	}
	return k.resolveContext(newContext(k, r, bindings[0]))
}

// resolveAll resolves one instance per satisfied binding.
func (k *Kernel) resolveAll(r *Request) ([]any, error) {
	bindings, err := k.selectBindings(r)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(bindings))
	for _, b := range bindings {
		inst, err := k.resolveContext(newContext(k, r, b))
		if err != nil {
			return nil, err
		}
		if inst != nil {
			out = append(out, inst)
		}
	}
	return out, nil
}

// resolveContext returns the instance for ctx, from the scope cache when the
// binding is scoped.
func (k *Kernel) resolveContext(ctx *Context) (any, error) {
	if ctx.Request.Depth > k.settings.MaxResolutionDepth || isCyclical(ctx) {
		return nil, newCyclicDependencyError(ctx.Request)
	}

	scope := ctx.Scope()
	if scope == nil {
		return k.construct(ctx, nil)
	}
	if !isComparable(scope) {
		return nil, &ActivationError{
			Type:     ctx.Request.Service,
			Strategy: "scope",
			Err:      fmt.Errorf("scope key of type %T is not comparable", scope),
		}
	}
	if inst, ok := k.cache.TryGet(ctx); ok {
		return inst, nil
	}
	release, err := k.cache.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	if inst, ok := k.cache.TryGet(ctx); ok {
		return inst, nil
	}
	return k.construct(ctx, release)
}

// construct creates the instance through the provider, caches it when scoped
// and runs the activation pipeline. commit, when set, is called once the
// instance is cached and before activation starts.
func (k *Kernel) construct(ctx *Context, commit func()) (any, error) {
	provider := ctx.Provider()
	ctx.constructing = true
	instance, err := create(provider, ctx)
	ctx.constructing = false
	if instance != nil && isNilValue(reflect.ValueOf(instance)) {
		instance = nil
	}
	if err != nil {
		if isKernelError(err) {
			return nil, err
		}
		return nil, &ProviderError{Type: ctx.Request.Service, Provider: providerName(provider), Err: err}
	}
	if instance == nil {
		if k.settings.AllowNilInjection {
			return nil, nil
		}
		return nil, &ProviderError{
			Type:     ctx.Request.Service,
			Provider: providerName(provider),
			Err:      errors.New("provider returned nil"),
		}
	}

	t := reflect.TypeOf(instance)
	if !t.AssignableTo(ctx.Request.Service) {
		return nil, &ProviderError{
			Type:     ctx.Request.Service,
			Provider: providerName(provider),
			Err:      fmt.Errorf("created %s, which is not assignable to %s", t, ctx.Request.Service),
		}
	}
	ctx.Instance = instance
	if ctx.Plan == nil {
		plan, err := k.planner.activationPlan(t)
		if err != nil {
			return nil, err
		}
		ctx.Plan = plan
	}

	k.cache.Remember(ctx, instance)
	if commit != nil {
		commit()
	}
	if err := k.pipeline.Activate(ctx, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func create(p Provider, ctx *Context) (instance any, err error) {
	defer func() {
		if r := recover(); r != nil {
			instance, err = nil, &PanicError{Value: r}
		}
	}()
	return p.Create(ctx)
}

// isCyclical reports whether an ancestor activation of the same binding and
// service is still constructing its instance.
func isCyclical(ctx *Context) bool {
	for p := ctx.Request.ParentContext; p != nil; p = p.Request.ParentContext {
		if p.Binding == ctx.Binding && p.Request.Service == ctx.Request.Service && p.constructing {
			return true
		}
	}
	return false
}
