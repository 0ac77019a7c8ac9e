package provider

import (
	"context"
	"fmt"

	"github.com/softmint/billing/pkg/types"
)

// Adapter is the per-provider capability surface consumed by the billing
// services. Webhook payload verification and translation happen upstream;
// adapters only carry outbound calls back to the provider.
type Adapter interface {
	Provider() types.PaymentProvider
	// CancelSubscription schedules cancellation at period end on the
	// provider side.
	CancelSubscription(ctx context.Context, providerSubscriptionID string) error
}

// Registry resolves an Adapter by provider id.
type Registry struct {
	adapters map[types.PaymentProvider]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[types.PaymentProvider]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

// Get returns an error for an unknown provider; a missing adapter is a
// reported condition, not a crash.
func (r *Registry) Get(provider types.PaymentProvider) (Adapter, error) {
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("no payment adapter registered for provider %s", provider)
	}
	return a, nil
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Provider()] = a
}
