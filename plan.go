package inject

import (
	"reflect"
)

// Plan is the cached recipe for building and injecting one concrete type.
// Plans are immutable once returned by the planner.
type Plan struct {
	Type        reflect.Type
	Constructor *ConstructorDirective
	Properties  []*PropertyDirective
	Methods     []*MethodDirective
}

// ConstructorDirective describes the constructor call.
type ConstructorDirective struct {
	Constructor *Constructor
	Targets     []*Target
}

func (d *ConstructorDirective) inject(args []reflect.Value) (any, error) {
	return d.Constructor.invoke(args)
}

// PropertyDirective describes one injected field.
type PropertyDirective struct {
	Field  reflect.StructField
	Target *Target
}

func (d *PropertyDirective) inject(instance reflect.Value, value reflect.Value) {
	instance.Elem().FieldByIndex(d.Field.Index).Set(value)
}

// MethodDirective describes one injection method call.
type MethodDirective struct {
	Method  reflect.Method
	Targets []*Target
}

func (d *MethodDirective) inject(instance reflect.Value, args []reflect.Value) error {
	in := append([]reflect.Value{instance}, args...)
	out := d.Method.Func.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

// HasInjection reports whether the plan injects anything after construction.
func (p *Plan) HasInjection() bool {
	return len(p.Properties) > 0 || len(p.Methods) > 0
}
