package inject

import (
	"fmt"
	"reflect"
	"strings"
)

// GenericDefinition identifies an open generic type: every instantiation of
// Repository[T] shares the definition {PkgPath, "Repository"}.
type GenericDefinition struct {
	PkgPath string
	Name    string
	Pointer bool
}

func (d GenericDefinition) String() string {
	name := d.Name + "[...]"
	if d.PkgPath != "" {
		name = d.PkgPath[strings.LastIndex(d.PkgPath, "/")+1:] + "." + name
	}
	if d.Pointer {
		return "*" + name
	}
	return name
}

// DefinitionOf returns the open definition of a generic instantiation.
// The second result is false for non-generic types.
func DefinitionOf(t reflect.Type) (GenericDefinition, bool) {
	if t == nil {
		return GenericDefinition{}, false
	}
	pointer := false
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		pointer = true
		t = t.Elem()
	}
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i <= 0 {
		return GenericDefinition{}, false
	}
	return GenericDefinition{PkgPath: t.PkgPath(), Name: name[:i], Pointer: pointer}, true
}

// GenericOf returns the open definition shared by all instantiations of T.
// Any instantiation may be used, e.g. GenericOf[Repository[any]]().
// It panics if T is not a generic type.
func GenericOf[T any]() GenericDefinition {
	t := reflect.TypeFor[T]()
	def, ok := DefinitionOf(t)
	if !ok {
		panic(fmt.Sprintf("inject: %s is not a generic type", t))
	}
	return def
}

// typeArguments returns the bracketed type argument list of an instantiation.
func typeArguments(t reflect.Type) string {
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i > 0 {
		return name[i:]
	}
	return ""
}
