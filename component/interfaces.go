package component

import "context"

// HealthStatus is the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's contribution to the service health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy builds a healthy report with an optional load message.
func Healthy(name, message string) Health {
	return Health{Name: name, Status: StatusHealthy, Message: message}
}

// Degraded builds a degraded report. Degraded components still serve but
// with reduced capacity, e.g. an engine that has started draining.
func Degraded(name, message string) Health {
	return Health{Name: name, Status: StatusDegraded, Message: message}
}

// Unhealthy builds an unhealthy report from the failure cause.
func Unhealthy(name string, cause error) Health {
	h := Health{Name: name, Status: StatusUnhealthy}
	if cause != nil {
		h.Message = cause.Error()
	}
	return h
}

// Aggregate folds component reports into one overall status: any unhealthy
// component makes the service unhealthy, otherwise any degraded component
// makes it degraded.
func Aggregate(healths []Health) HealthStatus {
	overall := StatusHealthy
	for _, h := range healths {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Component is a lifecycle-managed part of the service: the model registry,
// the engine, the temp store, the HTTP server.
type Component interface {
	// Name returns the unique registration name.
	Name() string

	// Start brings the component up. It must return once the component is
	// ready to serve, not when it finishes.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health reports the component's current state. It must be cheap: the
	// health endpoint calls it on every request.
	Health(ctx context.Context) Health
}
