package inject

import "reflect"

// WhenInjectedInto applies a binding when the dependency is injected into t,
// or into a type implementing t when t is an interface.
func WhenInjectedInto(t reflect.Type) Condition {
	return func(r *Request) bool {
		owner := injectionOwner(r)
		if owner == nil {
			return false
		}
		if t.Kind() == reflect.Interface {
			return owner.Implements(t)
		}
		return owner == t
	}
}

// WhenInjectedExactlyInto applies a binding when the dependency is injected
// into t itself.
func WhenInjectedExactlyInto(t reflect.Type) Condition {
	return func(r *Request) bool {
		return injectionOwner(r) == t
	}
}

// WhenParentNamed applies a binding when the instance receiving the
// dependency was resolved through a binding with the given name.
func WhenParentNamed(name string) Condition {
	return func(r *Request) bool {
		return r.ParentContext != nil && r.ParentContext.Binding.Name() == name
	}
}

// WhenAnyAncestorNamed applies a binding when any instance up the resolution
// chain was resolved through a binding with the given name.
func WhenAnyAncestorNamed(name string) Condition {
	return func(r *Request) bool {
		for c := r.ParentContext; c != nil; c = c.Request.ParentContext {
			if c.Binding.Name() == name {
				return true
			}
		}
		return false
	}
}

// WhenTargetNamed applies a binding when the dependency is injected into the
// field or injection method named name.
func WhenTargetNamed(name string) Condition {
	return func(r *Request) bool {
		return r.Target != nil && r.Target.Kind != ConstructorTarget && r.Target.Member == name
	}
}

func injectionOwner(r *Request) reflect.Type {
	if r.Target != nil {
		return r.Target.Owner
	}
	if r.ParentContext != nil && r.ParentContext.Plan != nil {
		return r.ParentContext.Plan.Type
	}
	return nil
}
