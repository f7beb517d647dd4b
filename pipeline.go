package inject

import (
	"cmp"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ActivationStrategy contributes one step of activation and its matching
// deactivation step.
type ActivationStrategy interface {
	Activate(ctx *Context, instance any) error
	Deactivate(ctx *Context, instance any) error
}

// Pipeline runs the activation strategies over new instances and keeps track
// of the instances that need deactivation.
//
// Activation runs the strategies in order. Deactivation runs them in reverse
// order, except that disposal always comes last.
type Pipeline struct {
	strategies []ActivationStrategy
	disposal   *DisposableStrategy
	tracker    *activationTracker
	logger     *zap.Logger
}

func newPipeline(extra []ActivationStrategy, logger *zap.Logger) *Pipeline {
	tracker := newActivationTracker()
	disposal := &DisposableStrategy{tracker: tracker}
	strategies := []ActivationStrategy{
		&PropertyInjectionStrategy{},
		&MethodInjectionStrategy{},
		&InitializableStrategy{},
		&StartableStrategy{},
		&BindingActionStrategy{},
	}
	strategies = append(strategies, extra...)
	strategies = append(strategies, disposal)
	return &Pipeline{
		strategies: strategies,
		disposal:   disposal,
		tracker:    tracker,
		logger:     logger,
	}
}

// Activate runs every strategy over instance. The first failure stops
// activation, undoes the strategies that already ran, and is returned as an
// *ActivationError.
func (p *Pipeline) Activate(ctx *Context, instance any) error {
	for i, s := range p.strategies {
		if err := safeStep(func() error { return s.Activate(ctx, instance) }); err != nil {
			p.rollback(ctx, instance, p.strategies[:i])
			if isKernelError(err) {
				return err
			}
			return &ActivationError{Type: reflect.TypeOf(instance), Strategy: strategyName(s), Err: err}
		}
	}
	return nil
}

// rollback deactivates instance with the strategies that activated it, last
// first. Failures are logged; the activation error is what callers see.
func (p *Pipeline) rollback(ctx *Context, instance any, done []ActivationStrategy) {
	var err error
	for i := len(done) - 1; i >= 0; i-- {
		s := done[i]
		err = multierr.Append(err, safeStep(func() error { return s.Deactivate(ctx, instance) }))
	}
	if err != nil {
		p.logger.Debug("activation rollback failed", zap.Stringer("type", reflect.TypeOf(instance)), zap.Error(err))
	}
}

// Deactivate reverses activation of instance. Instances that were never
// registered for deactivation, or were already deactivated, are skipped.
func (p *Pipeline) Deactivate(ctx *Context, instance any) error {
	if _, ok := p.tracker.take(instance); !ok {
		return nil
	}
	return p.deactivate(ctx, instance)
}

// release deactivates a tracked instance with the context it was activated in.
func (p *Pipeline) release(instance any) (bool, error) {
	rec, ok := p.tracker.take(instance)
	if !ok {
		return false, nil
	}
	return true, p.deactivate(rec.ctx, instance)
}

func (p *Pipeline) deactivate(ctx *Context, instance any) error {
	var err error
	for i := len(p.strategies) - 1; i >= 0; i-- {
		s := p.strategies[i]
		if s == ActivationStrategy(p.disposal) {
			continue
		}
		err = multierr.Append(err, safeStep(func() error { return s.Deactivate(ctx, instance) }))
	}
	err = multierr.Append(err, safeStep(func() error { return p.disposal.Deactivate(ctx, instance) }))
	if err != nil {
		p.logger.Debug("deactivation failed", zap.Stringer("type", reflect.TypeOf(instance)), zap.Error(err))
	}
	return err
}

// deactivateAll deactivates every tracked instance, newest first.
func (p *Pipeline) deactivateAll() error {
	var err error
	for _, rec := range p.tracker.snapshot() {
		err = multierr.Append(err, p.Deactivate(rec.ctx, rec.instance))
	}
	return err
}

func safeStep(step func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return step()
}

func strategyName(s ActivationStrategy) string {
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

type activationRecord struct {
	ctx      *Context
	instance any
	seq      uint64
}

// activationTracker remembers the activated instances awaiting deactivation.
type activationTracker struct {
	mu      sync.Mutex
	seq     uint64
	records map[any]*activationRecord
}

func newActivationTracker() *activationTracker {
	return &activationTracker{records: make(map[any]*activationRecord)}
}

func (t *activationTracker) add(ctx *Context, instance any) {
	if !isComparable(instance) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.records[instance]; ok {
		return
	}
	t.seq++
	t.records[instance] = &activationRecord{ctx: ctx, instance: instance, seq: t.seq}
}

// take removes instance from the tracker and returns its record.
func (t *activationTracker) take(instance any) (*activationRecord, bool) {
	if !isComparable(instance) {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[instance]
	if ok {
		delete(t.records, instance)
	}
	return rec, ok
}

// snapshot returns the tracked records, newest first.
func (t *activationTracker) snapshot() []*activationRecord {
	t.mu.Lock()
	out := make([]*activationRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	t.mu.Unlock()
	slices.SortFunc(out, func(a, b *activationRecord) int {
		return cmp.Compare(b.seq, a.seq)
	})
	return out
}

// Len returns the number of tracked instances.
func (t *activationTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
