package inject

import (
	"fmt"
	"reflect"
)

// TargetKind tells where a dependency is injected.
type TargetKind int

const (
	// ConstructorTarget is a constructor argument.
	ConstructorTarget TargetKind = iota
	// FieldTarget is an exported struct field.
	FieldTarget
	// MethodTarget is an argument of an injection method.
	MethodTarget
)

// Target is an injection point discovered by the planner.
type Target struct {
	Kind     TargetKind
	Owner    reflect.Type
	Member   string
	Position int
	Type     reflect.Type
	Name     string
	Optional bool
}

// Constraint returns the constraint applied to requests made for the target.
func (t *Target) Constraint() Constraint {
	if t.Name == "" {
		return nil
	}
	return NamedConstraint(t.Name)
}

func (t *Target) String() string {
	switch t.Kind {
	case FieldTarget:
		return fmt.Sprintf("field %s of %s", t.Member, typeName(t.Owner))
	case MethodTarget:
		return fmt.Sprintf("argument #%d of %s.%s", t.Position, typeName(t.Owner), t.Member)
	default:
		return fmt.Sprintf("argument #%d of %s", t.Position, t.Member)
	}
}

// resolve produces the value for the target within the activation ctx.
// The boolean result is false when an optional target had nothing to inject.
func (t *Target) resolve(ctx *Context) (reflect.Value, bool, error) {
	for _, p := range ctx.Parameters {
		if !p.appliesTo(t) {
			continue
		}
		v, err := p.valueFor(t)
		if err != nil {
			return reflect.Value{}, false, &ActivationError{Type: t.Owner, Strategy: "parameters", Err: err}
		}
		return v, true, nil
	}

	k := ctx.Kernel
	if t.Type.Kind() == reflect.Slice && !k.registry.Has(t.Type) {
		req := ctx.Request.createChild(t.Type.Elem(), ctx, t)
		req.IsUnique = false
		req.IsOptional = true
		instances, err := k.resolveAll(req)
		if err != nil {
			return reflect.Value{}, false, err
		}
		out := reflect.MakeSlice(t.Type, 0, len(instances))
		for _, inst := range instances {
			out = reflect.Append(out, reflect.ValueOf(inst))
		}
		return out, true, nil
	}

	req := ctx.Request.createChild(t.Type, ctx, t)
	inst, err := k.resolveOne(req)
	if err != nil {
		return reflect.Value{}, false, err
	}
	if inst == nil {
		return reflect.Zero(t.Type), !t.Optional, nil
	}
	return reflect.ValueOf(inst), true, nil
}
