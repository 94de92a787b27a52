package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	fn      CheckFunc
	timeout time.Duration
}

// Status is a snapshot of the latest probe results.
type Status struct {
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every probed dependency is up.
func (s Status) Healthy() bool {
	if len(s.Services) == 0 {
		return false
	}
	for _, up := range s.Services {
		if !up {
			return false
		}
	}
	return true
}

// Monitor periodically runs dependency checks on a cron schedule and caches
// the result for the health endpoint.
type Monitor struct {
	mu     sync.RWMutex
	checks []check
	status Status

	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
		status:   Status{Services: map[string]bool{}},
	}
}

// Add registers a named check. Must be called before Start.
func (m *Monitor) Add(name string, fn CheckFunc, timeout time.Duration) {
	if fn == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, check{name: name, fn: fn, timeout: timeout})
}

// Start runs the checks once and then schedules them every interval.
func (m *Monitor) Start() error {
	m.Refresh()
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", m.interval), m.Refresh); err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, up := range m.status.Services {
		services[name] = up
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

// Refresh probes every dependency synchronously.
func (m *Monitor) Refresh() {
	m.mu.RLock()
	checks := append([]check(nil), m.checks...)
	m.mu.RUnlock()

	services := make(map[string]bool, len(checks))
	for _, c := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		err := c.fn(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("service", c.name), zap.Error(err))
		}
		services[c.name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()
}
