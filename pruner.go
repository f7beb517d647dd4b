package inject

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pruner periodically removes cached instances whose scope has been released.
type Pruner struct {
	cache    *Cache
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func newPruner(cache *Cache, interval time.Duration, logger *zap.Logger) *Pruner {
	return &Pruner{cache: cache, interval: interval, logger: logger}
}

// Start schedules pruning. It does nothing when the interval is zero or the
// pruner is already running. Intervals are rounded down to whole seconds.
func (p *Pruner) Start() error {
	if p.interval <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cron != nil {
		return nil
	}
	interval := p.interval.Truncate(time.Second)
	if interval < time.Second {
		interval = time.Second
	}
	log := cronLogger{p.logger.Sugar()}
	c := cron.New(
		cron.WithChain(cron.Recover(log)),
		cron.WithLogger(log),
	)
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), p.Run); err != nil {
		return fmt.Errorf("inject: schedule cache pruning: %w", err)
	}
	c.Start()
	p.cron = c
	p.logger.Debug("cache pruner started", zap.Duration("interval", interval))
	return nil
}

// Stop stops the schedule and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	p.logger.Debug("cache pruner stopped")
}

// Running reports whether the schedule is active.
func (p *Pruner) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cron != nil
}

// Run prunes the cache once.
func (p *Pruner) Run() {
	if err := p.cache.Prune(); err != nil {
		p.logger.Warn("cache pruning failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
