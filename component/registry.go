package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/skillsenselab/vaani/logger"
)

// stopTimeout bounds how long one component may take to stop before the
// registry moves on to the next.
const stopTimeout = 10 * time.Second

// Registry owns component lifecycle. Components start in registration order
// and stop in reverse, so dependencies are registered first and outlive
// their dependents.
type Registry struct {
	mu      sync.RWMutex
	order   []Component
	index   map[string]Component
	started int // components order[:started] are running
	log     *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]Component),
		log:   logger.WithComponent("registry"),
	}
}

// Register adds a component. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.index[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	r.order = append(r.order, c)
	r.index[name] = c

	r.log.Debug("Component registered", map[string]interface{}{
		logger.FieldComponent: name,
	})
	return nil
}

// StartAll starts every component in registration order, halting at the
// first failure. Components started before the failure stay running; the
// caller is expected to StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting components", map[string]interface{}{
		"count": len(r.order),
	})

	for _, c := range r.order {
		if err := c.Start(ctx); err != nil {
			r.log.Error("Component start failed", map[string]interface{}{
				logger.FieldComponent: c.Name(),
				"error":               err.Error(),
			})
			return fmt.Errorf("failed to start %s: %w", c.Name(), err)
		}
		r.started++
		r.log.Debug("Component started", map[string]interface{}{
			logger.FieldComponent: c.Name(),
		})
	}
	return nil
}

// StopAll stops the started components in reverse order. Each stop gets its
// own timeout so one stuck component cannot eat the whole shutdown budget.
// All stop failures are collected; stopping continues past them.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := r.started - 1; i >= 0; i-- {
		c := r.order[i]
		if err := r.stopOne(ctx, c); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", c.Name(), err))
			r.log.Error("Component stop failed", map[string]interface{}{
				logger.FieldComponent: c.Name(),
				"error":               err.Error(),
			})
			continue
		}
		r.log.Info("Component stopped", map[string]interface{}{
			logger.FieldComponent: c.Name(),
		})
	}
	r.started = 0

	return errors.Join(errs...)
}

func (r *Registry) stopOne(ctx context.Context, c Component) error {
	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	return c.Stop(stopCtx)
}

// HealthAll collects health reports in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	healths := make([]Health, len(r.order))
	for i, c := range r.order {
		healths[i] = c.Health(ctx)
	}
	return healths
}

// Get returns the named component, or nil when it is not registered.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index[name]
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.order...)
}
