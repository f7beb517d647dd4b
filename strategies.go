package inject

import (
	"reflect"
)

// PropertyInjectionStrategy sets the fields listed in the plan.
type PropertyInjectionStrategy struct{}

func (PropertyInjectionStrategy) Activate(ctx *Context, instance any) error {
	if ctx.Plan == nil || len(ctx.Plan.Properties) == 0 {
		return nil
	}
	v := reflect.ValueOf(instance)
	if !isStructPointer(v.Type()) {
		return nil
	}
	for _, d := range ctx.Plan.Properties {
		value, ok, err := d.Target.resolve(ctx)
		if err != nil {
			return err
		}
		if ok {
			d.inject(v, value)
		}
	}
	return nil
}

func (PropertyInjectionStrategy) Deactivate(*Context, any) error { return nil }

// MethodInjectionStrategy calls the injection methods listed in the plan.
type MethodInjectionStrategy struct{}

func (MethodInjectionStrategy) Activate(ctx *Context, instance any) error {
	if ctx.Plan == nil || len(ctx.Plan.Methods) == 0 {
		return nil
	}
	v := reflect.ValueOf(instance)
	for _, d := range ctx.Plan.Methods {
		args := make([]reflect.Value, len(d.Targets))
		for i, t := range d.Targets {
			arg, _, err := t.resolve(ctx)
			if err != nil {
				return err
			}
			args[i] = arg
		}
		if err := d.inject(v, args); err != nil {
			return err
		}
	}
	return nil
}

func (MethodInjectionStrategy) Deactivate(*Context, any) error { return nil }

// InitializableStrategy calls Initialize on Initializable instances.
type InitializableStrategy struct{}

func (InitializableStrategy) Activate(_ *Context, instance any) error {
	if i, ok := instance.(Initializable); ok {
		return i.Initialize()
	}
	return nil
}

func (InitializableStrategy) Deactivate(*Context, any) error { return nil }

// StartableStrategy starts Startable instances on activation and stops them
// on deactivation.
type StartableStrategy struct{}

func (StartableStrategy) Activate(_ *Context, instance any) error {
	if s, ok := instance.(Startable); ok {
		return s.Start()
	}
	return nil
}

func (StartableStrategy) Deactivate(_ *Context, instance any) error {
	if s, ok := instance.(Startable); ok {
		return s.Stop()
	}
	return nil
}

// BindingActionStrategy runs the activation and deactivation actions of the
// binding that produced the instance.
type BindingActionStrategy struct{}

func (BindingActionStrategy) Activate(ctx *Context, instance any) error {
	for _, action := range ctx.Binding.activationActions {
		if err := action(ctx, instance); err != nil {
			return err
		}
	}
	return nil
}

func (BindingActionStrategy) Deactivate(ctx *Context, instance any) error {
	for _, action := range ctx.Binding.deactivationActions {
		if err := action(ctx, instance); err != nil {
			return err
		}
	}
	return nil
}

// DisposableStrategy registers instances that need deactivation and disposes
// Disposable instances when they are deactivated.
type DisposableStrategy struct {
	tracker *activationTracker
}

func (s *DisposableStrategy) Activate(ctx *Context, instance any) error {
	if needsDeactivation(ctx.Binding, instance) {
		s.tracker.add(ctx, instance)
	}
	return nil
}

func (s *DisposableStrategy) Deactivate(_ *Context, instance any) error {
	if d, ok := instance.(Disposable); ok {
		return d.Dispose()
	}
	return nil
}

func needsDeactivation(b *Binding, instance any) bool {
	if len(b.deactivationActions) > 0 {
		return true
	}
	switch instance.(type) {
	case Disposable, Startable:
		return true
	}
	return false
}
