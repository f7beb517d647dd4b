package inject

import (
	"reflect"
	"strings"
)

// ConstructorScorer scores constructors. The highest score wins.
type ConstructorScorer interface {
	Score(c *Constructor) int
}

// StandardConstructorScorer prefers constructors registered with Preferred,
// then the constructor with the most parameters.
type StandardConstructorScorer struct{}

func (StandardConstructorScorer) Score(c *Constructor) int {
	if c.Preferred {
		return int(^uint(0) >> 1)
	}
	return len(c.Params)
}

// InjectionHeuristic decides which fields and methods receive injection.
type InjectionHeuristic interface {
	ShouldInjectField(owner reflect.Type, field reflect.StructField) bool
	ShouldInjectMethod(owner reflect.Type, method reflect.Method) bool
}

// StandardInjectionHeuristic injects exported fields carrying the tag key and
// exported methods whose name starts with the method prefix.
type StandardInjectionHeuristic struct {
	TagKey       string
	MethodPrefix string
}

func (h StandardInjectionHeuristic) ShouldInjectField(_ reflect.Type, field reflect.StructField) bool {
	if !field.IsExported() || field.Anonymous {
		return false
	}
	tag, ok := field.Tag.Lookup(h.TagKey)
	return ok && tag != "-"
}

func (h StandardInjectionHeuristic) ShouldInjectMethod(_ reflect.Type, method reflect.Method) bool {
	if !method.IsExported() || h.MethodPrefix == "" {
		return false
	}
	if !strings.HasPrefix(method.Name, h.MethodPrefix) || len(method.Name) == len(h.MethodPrefix) {
		return false
	}
	// receiver plus at least one argument, returning nothing or an error
	mt := method.Type
	if mt.NumIn() < 2 || mt.IsVariadic() {
		return false
	}
	switch mt.NumOut() {
	case 0:
		return true
	case 1:
		return mt.Out(0) == errorType
	default:
		return false
	}
}

// injectTag holds the options parsed from an inject struct tag,
// e.g. `inject:"name=primary,optional"`.
type injectTag struct {
	name     string
	optional bool
}

func parseInjectTag(tag string) injectTag {
	var out injectTag
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "optional":
			out.optional = true
		case strings.HasPrefix(part, "name="):
			out.name = strings.TrimPrefix(part, "name=")
		}
	}
	return out
}
