package inject

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
)

var errorType = reflect.TypeFor[error]()

// Constructor is a function registered to build instances of a type.
type Constructor struct {
	Type      reflect.Type
	Name      string
	Params    []reflect.Type
	Preferred bool
	Implicit  bool

	fn           reflect.Value
	returnsError bool
}

// ConstructorOption configures a registered constructor.
type ConstructorOption func(c *Constructor)

// Preferred marks a constructor so that it wins over every other candidate.
func Preferred() ConstructorOption {
	return func(c *Constructor) {
		c.Preferred = true
	}
}

func newConstructor(fn any, opts ...ConstructorOption) (*Constructor, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return nil, &InvalidBindingError{Reason: fmt.Sprintf("constructor must be a function, got %T", fn)}
	}
	ft := v.Type()
	if ft.IsVariadic() {
		return nil, &InvalidBindingError{Reason: fmt.Sprintf("constructor %s is variadic", ft)}
	}
	c := &Constructor{fn: v, Name: runtime.FuncForPC(v.Pointer()).Name()}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		c.returnsError = true
	default:
		return nil, &InvalidBindingError{
			Reason: fmt.Sprintf("constructor %s must return a value and an optional error", ft),
		}
	}
	c.Type = ft.Out(0)
	c.Params = make([]reflect.Type, ft.NumIn())
	for i := range c.Params {
		c.Params[i] = ft.In(i)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// implicitConstructor allocates a zero struct for pointer-to-struct types.
func implicitConstructor(t reflect.Type) *Constructor {
	return &Constructor{Type: t, Name: "new(" + t.Elem().String() + ")", Implicit: true}
}

func (c *Constructor) invoke(args []reflect.Value) (any, error) {
	if c.Implicit {
		return reflect.New(c.Type.Elem()).Interface(), nil
	}
	out := c.fn.Call(args)
	if c.returnsError && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	if isNilValue(out[0]) {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func (c *Constructor) String() string { return c.Name }

// Selector picks the constructor, fields and methods used to build a type.
type Selector struct {
	scorer    ConstructorScorer
	heuristic InjectionHeuristic

	mu           sync.RWMutex
	constructors map[reflect.Type][]*Constructor
}

func newSelector(scorer ConstructorScorer, heuristic InjectionHeuristic) *Selector {
	return &Selector{
		scorer:       scorer,
		heuristic:    heuristic,
		constructors: make(map[reflect.Type][]*Constructor),
	}
}

func (s *Selector) register(c *Constructor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.constructors[c.Type] = append(s.constructors[c.Type], c)
}

// Constructors returns the constructors registered for t in declaration order.
func (s *Selector) Constructors(t reflect.Type) []*Constructor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Constructor(nil), s.constructors[t]...)
}

// SelectConstructorForInjection returns the best scoring constructor for t.
// Ties go to the constructor registered first.
func (s *Selector) SelectConstructorForInjection(t reflect.Type) (*Constructor, error) {
	candidates := s.Constructors(t)
	if len(candidates) == 0 {
		if !isStructPointer(t) {
			return nil, &NoUsableConstructorError{Type: t, Reason: "no constructor registered"}
		}
		return implicitConstructor(t), nil
	}
	best, bestScore := candidates[0], s.scorer.Score(candidates[0])
	for _, c := range candidates[1:] {
		if score := s.scorer.Score(c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, nil
}

// SelectPropertiesForInjection returns the injectable fields of a
// pointer-to-struct type, in declaration order.
func (s *Selector) SelectPropertiesForInjection(t reflect.Type) []reflect.StructField {
	if !isStructPointer(t) {
		return nil
	}
	st := t.Elem()
	var fields []reflect.StructField
	for i := 0; i < st.NumField(); i++ {
		if f := st.Field(i); s.heuristic.ShouldInjectField(t, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// SelectMethodsForInjection returns the injection methods of t sorted by name.
func (s *Selector) SelectMethodsForInjection(t reflect.Type) []reflect.Method {
	if t.Kind() == reflect.Interface {
		return nil
	}
	var methods []reflect.Method
	for i := 0; i < t.NumMethod(); i++ {
		if m := t.Method(i); s.heuristic.ShouldInjectMethod(t, m) {
			methods = append(methods, m)
		}
	}
	return methods
}

// IsSelfBindable reports whether t can be resolved without a binding.
func (s *Selector) IsSelfBindable(t reflect.Type) bool {
	if isStructPointer(t) {
		return true
	}
	return len(s.Constructors(t)) > 0
}

// closeGeneric finds the registered instantiation of def carrying the same
// type arguments as service.
func (s *Selector) closeGeneric(def GenericDefinition, service reflect.Type) reflect.Type {
	args := typeArguments(service)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for t := range s.constructors {
		if d, ok := DefinitionOf(t); ok && d == def && typeArguments(t) == args {
			return t
		}
	}
	return nil
}

func isStructPointer(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return !v.IsValid()
	}
}
