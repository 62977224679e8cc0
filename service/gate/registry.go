package gate

import (
	"context"
	"fmt"
	"sync"
)

// RegistryError carries the status code returned by the external
// subscription registry, so callers can distinguish a missing subscription
// from an outage.
type RegistryError struct {
	StatusCode int
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("subscription registry: status %d", e.StatusCode)
}

// StaticRegistry is an in-memory SubscriptionRegistry keyed by service id.
// It backs tests and single-tenant deployments where the owner mapping is
// known up front.
type StaticRegistry struct {
	mu     sync.RWMutex
	owners map[string]string
}

// NewStaticRegistry creates a StaticRegistry from a serviceID→ownerID map.
func NewStaticRegistry(owners map[string]string) *StaticRegistry {
	cloned := make(map[string]string, len(owners))
	for k, v := range owners {
		cloned[k] = v
	}
	return &StaticRegistry{owners: cloned}
}

// Register adds or replaces the owner of a service.
func (r *StaticRegistry) Register(serviceID, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[serviceID] = ownerID
}

// GetSubscription resolves a service to its owner, answering a 404-shaped
// RegistryError when unknown.
func (r *StaticRegistry) GetSubscription(_ context.Context, serviceID string) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ownerID, ok := r.owners[serviceID]
	if !ok {
		return nil, &RegistryError{StatusCode: 404}
	}
	return &Subscription{OwnerID: ownerID, ETag: fmt.Sprintf("%q", serviceID)}, nil
}
