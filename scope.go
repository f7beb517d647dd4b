package inject

import (
	"bytes"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Scope is an explicit lifetime token. Bindings in request scope share one
// instance per Scope, and those instances are deactivated when it is released.
// A Scope is also a resolution root.
type Scope struct {
	name     string
	kernel   *Kernel
	parent   *Scope
	released atomic.Bool

	mu       sync.Mutex
	children []*Scope
}

func newScope(k *Kernel, parent *Scope, name string) *Scope {
	return &Scope{name: name, kernel: k, parent: parent}
}

// Name returns the name the scope was started with.
func (s *Scope) Name() string { return s.name }

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Released reports whether Release has been called.
func (s *Scope) Released() bool { return s.released.Load() }

// BeginScope starts a nested scope that is released together with s.
func (s *Scope) BeginScope(name string) *Scope {
	child := newScope(s.kernel, s, name)
	s.mu.Lock()
	s.children = append(s.children, child)
	s.mu.Unlock()
	if s.Released() {
		child.released.Store(true)
	}
	return child
}

// Release ends the scope: nested scopes are released first, then every
// instance cached for the scope is deactivated in reverse creation order.
// Releasing twice is a no-op.
func (s *Scope) Release() error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	children := s.children
	s.children = nil
	s.mu.Unlock()

	var err error
	for i := len(children) - 1; i >= 0; i-- {
		err = multierr.Append(err, children[i].Release())
	}
	err = multierr.Append(err, s.kernel.cache.Clear(s))
	if s.parent != nil {
		s.parent.removeChild(s)
	}
	s.kernel.logger.Debug("scope released", zap.String("scope", s.name), zap.Error(err))
	return err
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = slices.DeleteFunc(s.children, func(c *Scope) bool { return c == child })
}

// Get resolves service within the scope.
func (s *Scope) Get(service reflect.Type, opts ...ResolveOption) (any, error) {
	return s.kernel.get(service, s, false, opts)
}

// TryGet resolves service within the scope, returning nil when nothing matches.
func (s *Scope) TryGet(service reflect.Type, opts ...ResolveOption) (any, error) {
	return s.kernel.get(service, s, true, opts)
}

// GetAll resolves every binding of service within the scope.
func (s *Scope) GetAll(service reflect.Type, opts ...ResolveOption) (*Instances, error) {
	return s.kernel.getAll(service, s, opts)
}

func (s *Scope) String() string {
	return "scope " + s.name
}

// TransientScope never caches.
func TransientScope(*Context) any { return nil }

// SingletonScope caches one instance per kernel.
func SingletonScope(ctx *Context) any { return ctx.Kernel }

// RequestScope caches one instance per *Scope the request runs in.
func RequestScope(ctx *Context) any {
	if s := ctx.Request.Scope(); s != nil {
		return s
	}
	return nil
}

// GoroutineScope caches one instance per goroutine.
func GoroutineScope(*Context) any { return goroutineKey(goid()) }

// goroutineKey is the scope key of InGoroutineScope bindings.
type goroutineKey int64

var goroutinePrefix = []byte("goroutine ")

// goid reads the id of the calling goroutine from its stack header.
func goid() int64 {
	var buf [64]byte
	header := bytes.TrimPrefix(buf[:runtime.Stack(buf[:], false)], goroutinePrefix)
	if i := bytes.IndexByte(header, ' '); i >= 0 {
		header = header[:i]
	}
	id, _ := strconv.ParseInt(string(header), 10, 64)
	return id
}

// liveGoroutines returns the ids of every running goroutine.
func liveGoroutines() map[goroutineKey]bool {
	buf := make([]byte, 64<<10)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, 2*len(buf))
	}
	live := make(map[goroutineKey]bool)
	for _, line := range bytes.Split(buf, []byte("\n")) {
		if !bytes.HasPrefix(line, goroutinePrefix) {
			continue
		}
		line = line[len(goroutinePrefix):]
		if i := bytes.IndexByte(line, ' '); i >= 0 {
			line = line[:i]
		}
		if id, err := strconv.ParseInt(string(line), 10, 64); err == nil {
			live[goroutineKey(id)] = true
		}
	}
	return live
}
