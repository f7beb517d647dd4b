package inject

import (
	"fmt"
	"reflect"
)

type parameterKind int

const (
	constructorIndexParameter parameterKind = iota
	constructorTypeParameter
	propertyParameter
)

// Parameter overrides the value injected into a constructor argument or a field.
type Parameter struct {
	kind      parameterKind
	index     int
	typ       reflect.Type
	field     string
	value     any
	inherited bool
}

// ConstructorArgument supplies the constructor argument at position index.
func ConstructorArgument(index int, value any) Parameter {
	return Parameter{kind: constructorIndexParameter, index: index, value: value}
}

// TypedConstructorArgument supplies every constructor argument of type t.
func TypedConstructorArgument(t reflect.Type, value any) Parameter {
	return Parameter{kind: constructorTypeParameter, typ: t, value: value}
}

// PropertyValue supplies the value of an injected field.
func PropertyValue(field string, value any) Parameter {
	return Parameter{kind: propertyParameter, field: field, value: value}
}

// Inherited marks p so that it also applies to the dependencies of the
// activated instance.
func Inherited(p Parameter) Parameter {
	p.inherited = true
	return p
}

// IsInherited reports whether the parameter flows to child requests.
func (p Parameter) IsInherited() bool { return p.inherited }

// Value returns the supplied value.
func (p Parameter) Value() any { return p.value }

func (p Parameter) String() string {
	switch p.kind {
	case constructorIndexParameter:
		return fmt.Sprintf("constructor argument #%d", p.index)
	case constructorTypeParameter:
		return fmt.Sprintf("constructor argument of type %s", typeName(p.typ))
	default:
		return fmt.Sprintf("property %s", p.field)
	}
}

func (p Parameter) appliesTo(t *Target) bool {
	switch p.kind {
	case constructorIndexParameter:
		return t.Kind == ConstructorTarget && t.Position == p.index
	case constructorTypeParameter:
		return t.Kind == ConstructorTarget && t.Type == p.typ
	default:
		return t.Kind == FieldTarget && t.Member == p.field
	}
}

// valueFor converts the parameter value for assignment to t.
func (p Parameter) valueFor(t *Target) (reflect.Value, error) {
	if p.value == nil {
		return reflect.Zero(t.Type), nil
	}
	v := reflect.ValueOf(p.value)
	if !v.Type().AssignableTo(t.Type) {
		return reflect.Value{}, fmt.Errorf("%s: value of type %s is not assignable to %s", p, v.Type(), t.Type)
	}
	return v, nil
}
