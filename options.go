package inject

import (
	"time"

	"go.uber.org/zap"
)

type config struct {
	settings   Settings
	logger     *zap.Logger
	scorer     ConstructorScorer
	heuristic  InjectionHeuristic
	strategies []ActivationStrategy
}

// Option configures a Kernel.
type Option func(*config)

// WithSettings replaces the kernel settings.
func WithSettings(s Settings) Option {
	return func(c *config) {
		c.settings = s
	}
}

// WithLogger sets the logger used for kernel diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithScorer replaces the constructor scorer.
func WithScorer(s ConstructorScorer) Option {
	return func(c *config) {
		c.scorer = s
	}
}

// WithHeuristic replaces the field and method injection heuristic.
func WithHeuristic(h InjectionHeuristic) Option {
	return func(c *config) {
		c.heuristic = h
	}
}

// WithActivationStrategies adds strategies that run after the binding
// activation actions and before disposal registration.
func WithActivationStrategies(strategies ...ActivationStrategy) Option {
	return func(c *config) {
		c.strategies = append(c.strategies, strategies...)
	}
}

// WithPruneInterval enables the background cache pruner.
func WithPruneInterval(d time.Duration) Option {
	return func(c *config) {
		c.settings.CachePruningInterval = d
	}
}

// WithoutImplicitSelfBinding requires an explicit binding for every service.
func WithoutImplicitSelfBinding() Option {
	return func(c *config) {
		c.settings.AllowImplicitSelfBinding = false
	}
}
