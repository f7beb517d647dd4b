package inject

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// components is the fixed set of kernel internals. Each component is built
// once, on first use, from its factory.
type components struct {
	factories map[reflect.Type]func(*components) any
	instances map[reflect.Type]any
}

func provide[T any](c *components, factory func(*components) T) {
	c.factories[reflect.TypeFor[T]()] = func(c *components) any { return factory(c) }
}

func component[T any](c *components) T {
	t := reflect.TypeFor[T]()
	if inst, ok := c.instances[t]; ok {
		return inst.(T)
	}
	factory, ok := c.factories[t]
	if !ok {
		panic(fmt.Sprintf("inject: no kernel component of type %s", t))
	}
	inst := factory(c).(T)
	c.instances[t] = inst
	return inst
}

func newComponents(cfg *config) *components {
	c := &components{
		factories: make(map[reflect.Type]func(*components) any),
		instances: make(map[reflect.Type]any),
	}
	provide(c, func(*components) Settings { return cfg.settings })
	provide(c, func(*components) *zap.Logger { return cfg.logger })
	provide(c, func(c *components) *Registry {
		return newRegistry(component[*zap.Logger](c))
	})
	provide(c, func(c *components) *Selector {
		s := component[Settings](c)
		heuristic := cfg.heuristic
		if heuristic == nil {
			heuristic = StandardInjectionHeuristic{TagKey: s.InjectTag, MethodPrefix: s.InjectMethodPrefix}
		}
		scorer := cfg.scorer
		if scorer == nil {
			scorer = StandardConstructorScorer{}
		}
		return newSelector(scorer, heuristic)
	})
	provide(c, func(c *components) *Planner {
		return newPlanner(component[*Selector](c), component[Settings](c).InjectTag, component[*zap.Logger](c))
	})
	provide(c, func(c *components) *Pipeline {
		return newPipeline(cfg.strategies, component[*zap.Logger](c))
	})
	provide(c, func(c *components) *Cache {
		return newCache(component[*Pipeline](c), component[*zap.Logger](c))
	})
	provide(c, func(c *components) *Pruner {
		return newPruner(component[*Cache](c), component[Settings](c).CachePruningInterval, component[*zap.Logger](c))
	})
	return c
}
