package provider

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(func() *Registry {
		return NewRegistry(NewInnerAdapter())
	}),
)
