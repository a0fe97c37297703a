package health

import "context"

// HealthPinger is implemented by dependencies the service probes at
// startup and on an interval, such as the store and the analysis
// upstream. HealthPing must return nil when the dependency is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
