// Package injecttest provides kernel helpers for tests.
package injecttest

import (
	"reflect"

	"github.com/centraunit/inject"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

// TestKernel is a kernel disposed when the test ends.
type TestKernel struct {
	*inject.Kernel
	tb TB
}

func New(tb TB, opts ...inject.Option) *TestKernel {
	tb.Helper()

	k, err := inject.New(opts...)
	if err != nil {
		tb.Fatalf("failed to create kernel: %v", err)
	}
	tk := &TestKernel{Kernel: k, tb: tb}

	tb.Cleanup(func() {
		if err := k.Dispose(); err != nil {
			tb.Fatalf("failed to dispose kernel: %v", err)
		}
	})

	return tk
}

// RequireScope begins a scope released when the test ends.
func (tk *TestKernel) RequireScope(name string) *inject.Scope {
	tk.tb.Helper()

	scope := tk.BeginScope(name)
	tk.tb.Cleanup(func() {
		if err := scope.Release(); err != nil {
			tk.tb.Fatalf("failed to release scope %s: %v", name, err)
		}
	})
	return scope
}

func MustBind[S any, I any](tk *TestKernel, opts ...inject.BindingOption) *inject.Binding {
	tk.tb.Helper()

	b, err := inject.Bind[S, I](tk.Kernel, opts...)
	if err != nil {
		tk.tb.Fatalf("failed to bind %s: %v", reflect.TypeFor[S](), err)
	}
	return b
}

func MustBindConstant[T any](tk *TestKernel, value T, opts ...inject.BindingOption) *inject.Binding {
	tk.tb.Helper()

	b, err := inject.BindConstant(tk.Kernel, value, opts...)
	if err != nil {
		tk.tb.Fatalf("failed to bind constant %s: %v", reflect.TypeFor[T](), err)
	}
	return b
}

func MustRegisterConstructor(tk *TestKernel, fn any, opts ...inject.ConstructorOption) {
	tk.tb.Helper()

	if err := tk.RegisterConstructor(fn, opts...); err != nil {
		tk.tb.Fatalf("failed to register constructor %T: %v", fn, err)
	}
}

// Replace rebinds T to value, dropping every other binding of T.
func Replace[T any](tk *TestKernel, value T) {
	tk.tb.Helper()

	if _, err := tk.Rebind(reflect.TypeFor[T](), inject.ToConstant(value)); err != nil {
		tk.tb.Fatalf("failed to replace %s: %v", reflect.TypeFor[T](), err)
	}
}

func MustGet[T any](tk *TestKernel, opts ...inject.ResolveOption) T {
	tk.tb.Helper()

	return MustGetFrom[T](tk, tk.Kernel, opts...)
}

// MustGetFrom resolves T from r, usually a scope of tk.
func MustGetFrom[T any](tk *TestKernel, r inject.Resolver, opts ...inject.ResolveOption) T {
	tk.tb.Helper()

	v, err := inject.Get[T](r, opts...)
	if err != nil {
		tk.tb.Fatalf("failed to resolve %s: %v", reflect.TypeFor[T](), err)
	}
	return v
}

func MustGetNamed[T any](tk *TestKernel, name string) T {
	tk.tb.Helper()

	v, err := inject.GetNamed[T](tk.Kernel, name)
	if err != nil {
		tk.tb.Fatalf("failed to resolve %s named %q: %v", reflect.TypeFor[T](), name, err)
	}
	return v
}

func AssertCanResolve[T any](tk *TestKernel, opts ...inject.ResolveOption) {
	tk.tb.Helper()

	if !tk.CanResolve(reflect.TypeFor[T](), opts...) {
		tk.tb.Fatalf("expected kernel to resolve %s", reflect.TypeFor[T]())
	}
}

func AssertCannotResolve[T any](tk *TestKernel, opts ...inject.ResolveOption) {
	tk.tb.Helper()

	if tk.CanResolve(reflect.TypeFor[T](), opts...) {
		tk.tb.Fatalf("expected kernel not to resolve %s", reflect.TypeFor[T]())
	}
}

// RequireNoBinding fails unless resolving T reports a missing binding.
func RequireNoBinding[T any](tk *TestKernel) {
	tk.tb.Helper()

	_, err := inject.Get[T](tk.Kernel)
	if !inject.IsNoBindingFound(err) {
		tk.tb.Fatalf("expected no binding for %s, got %v", reflect.TypeFor[T](), err)
	}
}
