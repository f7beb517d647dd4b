package inject

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// PlanningStrategy contributes directives to a plan.
type PlanningStrategy interface {
	Execute(plan *Plan) error
}

// Planner builds plans and caches them for the kernel lifetime.
type Planner struct {
	strategies []PlanningStrategy
	plans      sync.Map
	logger     *zap.Logger
}

func newPlanner(selector *Selector, tagKey string, logger *zap.Logger) *Planner {
	return &Planner{
		strategies: []PlanningStrategy{
			&ConstructorReflectionStrategy{selector: selector},
			&PropertyReflectionStrategy{selector: selector, tagKey: tagKey},
			&MethodReflectionStrategy{selector: selector},
		},
		logger: logger,
	}
}

// GetPlan returns the plan for t, building it on first use.
// Concurrent first calls may both build a plan; only one is kept.
func (p *Planner) GetPlan(t reflect.Type) (*Plan, error) {
	if plan, ok := p.plans.Load(t); ok {
		return plan.(*Plan), nil
	}
	plan := &Plan{Type: t}
	for _, s := range p.strategies {
		if err := s.Execute(plan); err != nil {
			return nil, err
		}
	}
	actual, loaded := p.plans.LoadOrStore(t, plan)
	if !loaded {
		p.logger.Debug("plan built",
			zap.Stringer("type", t),
			zap.Int("properties", len(plan.Properties)),
			zap.Int("methods", len(plan.Methods)),
		)
	}
	return actual.(*Plan), nil
}

// Has reports whether a plan for t has been built.
func (p *Planner) Has(t reflect.Type) bool {
	_, ok := p.plans.Load(t)
	return ok
}

// activationPlan returns the plan used to activate an instance that a
// non-standard provider created. Only struct pointers are injectable.
func (p *Planner) activationPlan(t reflect.Type) (*Plan, error) {
	if !isStructPointer(t) {
		return &Plan{Type: t}, nil
	}
	return p.GetPlan(t)
}

// ConstructorReflectionStrategy selects the constructor and its targets.
type ConstructorReflectionStrategy struct {
	selector *Selector
}

func (s *ConstructorReflectionStrategy) Execute(plan *Plan) error {
	c, err := s.selector.SelectConstructorForInjection(plan.Type)
	if err != nil {
		return err
	}
	d := &ConstructorDirective{Constructor: c, Targets: make([]*Target, len(c.Params))}
	for i, param := range c.Params {
		d.Targets[i] = &Target{
			Kind:     ConstructorTarget,
			Owner:    plan.Type,
			Member:   c.Name,
			Position: i,
			Type:     param,
		}
	}
	plan.Constructor = d
	return nil
}

// PropertyReflectionStrategy adds a directive per injectable field.
type PropertyReflectionStrategy struct {
	selector *Selector
	tagKey   string
}

func (s *PropertyReflectionStrategy) Execute(plan *Plan) error {
	for _, f := range s.selector.SelectPropertiesForInjection(plan.Type) {
		tag := parseInjectTag(f.Tag.Get(s.tagKey))
		plan.Properties = append(plan.Properties, &PropertyDirective{
			Field: f,
			Target: &Target{
				Kind:     FieldTarget,
				Owner:    plan.Type,
				Member:   f.Name,
				Position: -1,
				Type:     f.Type,
				Name:     tag.name,
				Optional: tag.optional,
			},
		})
	}
	return nil
}

// MethodReflectionStrategy adds a directive per injection method.
type MethodReflectionStrategy struct {
	selector *Selector
}

func (s *MethodReflectionStrategy) Execute(plan *Plan) error {
	for _, m := range s.selector.SelectMethodsForInjection(plan.Type) {
		d := &MethodDirective{Method: m}
		// In(0) is the receiver
		for i := 1; i < m.Type.NumIn(); i++ {
			d.Targets = append(d.Targets, &Target{
				Kind:     MethodTarget,
				Owner:    plan.Type,
				Member:   m.Name,
				Position: i - 1,
				Type:     m.Type.In(i),
			})
		}
		plan.Methods = append(plan.Methods, d)
	}
	return nil
}
