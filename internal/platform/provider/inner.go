package provider

import (
	"context"

	"github.com/softmint/billing/pkg/types"
)

// InnerAdapter backs internally granted entitlements (free gifts, manual
// grants). There is no remote side to call, so cancellation is a local no-op.
type InnerAdapter struct{}

func NewInnerAdapter() *InnerAdapter { return &InnerAdapter{} }

func (a *InnerAdapter) Provider() types.PaymentProvider { return types.PaymentProviderInner }

func (a *InnerAdapter) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	return nil
}
