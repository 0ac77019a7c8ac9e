package app

import (
	"time"

	"github.com/softmint/billing/internal/app/api/server"
	"github.com/softmint/billing/internal/app/service/credit"
	"github.com/softmint/billing/internal/app/service/order"
	"github.com/softmint/billing/internal/app/service/payment"
	"github.com/softmint/billing/internal/app/service/statistics"
	"github.com/softmint/billing/internal/app/service/subscription"
	"github.com/softmint/billing/internal/app/service/webhook"
	"github.com/softmint/billing/internal/app/service/webhooklog"
	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/platform/db"
	"github.com/softmint/billing/internal/platform/provider"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	store.Module,
	provider.Module,
	order.Module,
	subscription.Module,
	credit.Module,
	payment.Module,
	webhook.Module,
	webhooklog.Module,
	statistics.Module,
)
