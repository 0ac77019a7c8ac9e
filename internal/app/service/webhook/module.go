package webhook

import (
	"github.com/softmint/billing/internal/app/service/credit"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(c *credit.Service) CreditIssuer { return c }),
	fx.Provide(New),
)
