package store

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewOrderStore),
	fx.Provide(NewPaymentStore),
	fx.Provide(NewSubscriptionStore),
	fx.Provide(NewUserStore),
)
