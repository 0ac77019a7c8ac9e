package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/softmint/billing/docs"
	"github.com/softmint/billing/internal/app/api/handlers"
	creditsvc "github.com/softmint/billing/internal/app/service/credit"
	ordersvc "github.com/softmint/billing/internal/app/service/order"
	paymentsvc "github.com/softmint/billing/internal/app/service/payment"
	"github.com/softmint/billing/internal/app/service/statistics"
	subsvc "github.com/softmint/billing/internal/app/service/subscription"
	"github.com/softmint/billing/internal/app/service/webhook"
	"github.com/softmint/billing/internal/app/service/webhooklog"
	cfgpkg "github.com/softmint/billing/pkg/config"

	mw "github.com/softmint/billing/internal/app/api/middleware"

	metrics "github.com/softmint/billing/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log        *zap.SugaredLogger
	Cfg        *cfgpkg.Config
	Webhook    *webhook.Service
	WebhookLog *webhooklog.Service
	Orders     *ordersvc.Service
	Subs       *subsvc.Service
	Payments   *paymentsvc.Service
	Credits    *creditsvc.Service
	Stats      *statistics.Service
}

func registerRoutes(r *gin.Engine, deps routeDeps) {
	log := deps.Log

	// Prometheus metrics
	if deps.Cfg != nil && deps.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(deps.Cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", deps.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Payment APIs (user identity from gateway header)
	apiV1Payment := r.Group("/api/v1/payment")
	apiV1Payment.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterWebhookRoutes(apiV1Payment, deps.Webhook, deps.WebhookLog, log)
	handlers.RegisterOrderRoutes(apiV1Payment, deps.Orders)
	handlers.RegisterPaymentRoutes(apiV1Payment, deps.Subs, deps.Payments, deps.Credits)

	// Admin APIs
	apiV1Admin := r.Group("/api/v1/admin")
	apiV1Admin.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterAdminRoutes(apiV1Admin, deps.Orders, deps.Stats)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
