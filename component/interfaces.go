package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of a run.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start brings the component into its ready state.
	Start(ctx context.Context) error

	// Stop returns the component to a safe idle state and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information for the run banner.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "module", "journal", "server".
	Type string
	// Details is a one-liner such as "slot 1" or "journal.db".
	Details string
}

// Describable is optionally implemented by components that report
// themselves in the run banner.
type Describable interface {
	Describe() Description
}
