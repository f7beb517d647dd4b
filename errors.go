package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// kernelError marks the failures produced by the kernel itself. They travel up
// through nested resolutions unchanged so callers see the root cause.
type kernelError interface {
	error
	kernelError()
}

// NoBindingFoundError is returned when no binding satisfies a request.
type NoBindingFoundError struct {
	Type  reflect.Type
	Chain []string
}

func (e *NoBindingFoundError) Error() string {
	return fmt.Sprintf("no binding found for type: %s%s", typeName(e.Type), formatChain(e.Chain))
}

func (*NoBindingFoundError) kernelError() {}

// AmbiguousBindingError is returned when a unique request matches more than
// one binding of the same precedence.
type AmbiguousBindingError struct {
	Type     reflect.Type
	Bindings []string
	Chain    []string
}

func (e *AmbiguousBindingError) Error() string {
	return fmt.Sprintf(
		"ambiguous bindings for type %s: [%s]%s",
		typeName(e.Type), strings.Join(e.Bindings, "; "), formatChain(e.Chain),
	)
}

func (*AmbiguousBindingError) kernelError() {}

// CyclicDependencyError represents a dependency that requires itself while it
// is still being constructed.
type CyclicDependencyError struct {
	Type reflect.Type
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("cyclic dependency detected for type: %s", typeName(e.Type))
	}
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Path, " -> "))
}

func (*CyclicDependencyError) kernelError() {}

// NoUsableConstructorError is returned by the planner when no constructor can
// be selected for a type.
type NoUsableConstructorError struct {
	Type   reflect.Type
	Reason string
}

func (e *NoUsableConstructorError) Error() string {
	return fmt.Sprintf("no usable constructor for type %s: %s", typeName(e.Type), e.Reason)
}

func (*NoUsableConstructorError) kernelError() {}

// ActivationError wraps a failure raised while activating an instance.
// The activation steps that completed before the failure have been undone,
// so a started instance has been stopped again.
type ActivationError struct {
	Type     reflect.Type
	Strategy string
	Err      error
}

func (e *ActivationError) Error() string {
	if e.Strategy == "" {
		return fmt.Sprintf("activation failed for type %s: %v", typeName(e.Type), e.Err)
	}
	return fmt.Sprintf("activation failed for type %s in %s: %v", typeName(e.Type), e.Strategy, e.Err)
}

func (e *ActivationError) Unwrap() error {
	return e.Err
}

func (*ActivationError) kernelError() {}

// ProviderError wraps a failure raised by a provider while creating an instance.
type ProviderError struct {
	Type     reflect.Type
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s failed for type %s: %v", e.Provider, typeName(e.Type), e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (*ProviderError) kernelError() {}

// InvalidBindingError represents a binding that cannot be registered.
type InvalidBindingError struct {
	Reason string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding: %s", e.Reason)
}

func (*InvalidBindingError) kernelError() {}

// ScopeReleasedError is returned when resolving from a scope that has ended.
type ScopeReleasedError struct {
	Scope string
}

func (e *ScopeReleasedError) Error() string {
	return fmt.Sprintf("scope %q has been released", e.Scope)
}

func (*ScopeReleasedError) kernelError() {}

// KernelDisposedError is returned by every operation after Dispose.
type KernelDisposedError struct{}

func (e *KernelDisposedError) Error() string {
	return "kernel has been disposed"
}

func (*KernelDisposedError) kernelError() {}

// PanicError carries a value recovered from a panicking constructor,
// provider or hook.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsNoBindingFound reports whether err is or wraps a *NoBindingFoundError.
func IsNoBindingFound(err error) bool {
	var e *NoBindingFoundError
	return errors.As(err, &e)
}

// IsAmbiguousBinding reports whether err is or wraps an *AmbiguousBindingError.
func IsAmbiguousBinding(err error) bool {
	var e *AmbiguousBindingError
	return errors.As(err, &e)
}

// IsCyclicDependency reports whether err is or wraps a *CyclicDependencyError.
func IsCyclicDependency(err error) bool {
	var e *CyclicDependencyError
	return errors.As(err, &e)
}

// IsNoUsableConstructor reports whether err is or wraps a *NoUsableConstructorError.
func IsNoUsableConstructor(err error) bool {
	var e *NoUsableConstructorError
	return errors.As(err, &e)
}

// IsActivationFailed reports whether err is or wraps an *ActivationError.
func IsActivationFailed(err error) bool {
	var e *ActivationError
	return errors.As(err, &e)
}

// IsProviderFailed reports whether err is or wraps a *ProviderError.
func IsProviderFailed(err error) bool {
	var e *ProviderError
	return errors.As(err, &e)
}

func isKernelError(err error) bool {
	var e kernelError
	return errors.As(err, &e)
}

func newNoBindingFoundError(r *Request) *NoBindingFoundError {
	return &NoBindingFoundError{Type: r.Service, Chain: r.chain()}
}

func newAmbiguousBindingError(r *Request, bindings []*Binding) *AmbiguousBindingError {
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.String()
	}
	return &AmbiguousBindingError{Type: r.Service, Bindings: names, Chain: r.chain()}
}

func newCyclicDependencyError(r *Request) *CyclicDependencyError {
	return &CyclicDependencyError{Type: r.Service, Path: r.path()}
}

func formatChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return " (requested by " + strings.Join(chain, " <- ") + ")"
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
