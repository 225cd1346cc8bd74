package store

import "context"

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies the record backend is reachable
	CheckConnectivity(ctx context.Context) error
}
