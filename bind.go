package inject

import (
	"fmt"
	"reflect"
)

// Bind binds service S to implementation I.
//
//	inject.Bind[Logger, *ConsoleLogger](k, inject.InSingletonScope())
func Bind[S any, I any](k *Kernel, opts ...BindingOption) (*Binding, error) {
	return k.Bind(reflect.TypeFor[S](), append([]BindingOption{ToType(reflect.TypeFor[I]())}, opts...)...)
}

// BindToSelf binds T to itself.
func BindToSelf[T any](k *Kernel, opts ...BindingOption) (*Binding, error) {
	return k.Bind(reflect.TypeFor[T](), append([]BindingOption{ToSelf()}, opts...)...)
}

// BindConstant binds T to value.
func BindConstant[T any](k *Kernel, value T, opts ...BindingOption) (*Binding, error) {
	return k.Bind(reflect.TypeFor[T](), append([]BindingOption{ToConstant(value)}, opts...)...)
}

// BindMethod binds T to a typed factory.
func BindMethod[T any](k *Kernel, fn func(ctx *Context) (T, error), opts ...BindingOption) (*Binding, error) {
	method := ToMethod(func(ctx *Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	return k.Bind(reflect.TypeFor[T](), append([]BindingOption{method}, opts...)...)
}

// RegisterConstructor registers fn as a constructor of T.
func RegisterConstructor[T any](k *Kernel, fn any, opts ...ConstructorOption) error {
	t := reflect.TypeFor[T]()
	ft := reflect.TypeOf(fn)
	if ft == nil || ft.Kind() != reflect.Func || ft.NumOut() == 0 || ft.Out(0) != t {
		return &InvalidBindingError{Reason: fmt.Sprintf("constructor %T does not return %s", fn, t)}
	}
	return k.RegisterConstructor(fn, opts...)
}

// Get resolves one T.
func Get[T any](r Resolver, opts ...ResolveOption) (T, error) {
	v, err := r.Get(reflect.TypeFor[T](), opts...)
	return cast[T](v, err)
}

// GetNamed resolves the T bound with the given name.
func GetNamed[T any](r Resolver, name string, opts ...ResolveOption) (T, error) {
	return Get[T](r, append(opts, Named(name))...)
}

// TryGet resolves one T, returning the zero value when nothing matches.
func TryGet[T any](r Resolver, opts ...ResolveOption) (T, error) {
	v, err := r.TryGet(reflect.TypeFor[T](), opts...)
	return cast[T](v, err)
}

// MustGet resolves one T and panics on failure.
func MustGet[T any](r Resolver, opts ...ResolveOption) T {
	v, err := Get[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// GetAll resolves every T.
func GetAll[T any](r Resolver, opts ...ResolveOption) ([]T, error) {
	instances, err := r.GetAll(reflect.TypeFor[T](), opts...)
	if err != nil {
		return nil, err
	}
	var out []T
	for inst, err := range instances.All() {
		if err != nil {
			return nil, err
		}
		v, err := cast[T](inst, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func cast[T any](v any, err error) (T, error) {
	var zero T
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("inject: resolved %T is not a %s", v, reflect.TypeFor[T]())
	}
	return out, nil
}
