package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reelgate/reelgate/internal/account"
	accountdomain "github.com/reelgate/reelgate/internal/account/domain"
	"github.com/reelgate/reelgate/internal/apikey"
	apikeydomain "github.com/reelgate/reelgate/internal/apikey/domain"
	"github.com/reelgate/reelgate/internal/auth"
	authdomain "github.com/reelgate/reelgate/internal/auth/domain"
	"github.com/reelgate/reelgate/internal/billing"
	billingdomain "github.com/reelgate/reelgate/internal/billing/domain"
	"github.com/reelgate/reelgate/internal/catalog"
	catalogdomain "github.com/reelgate/reelgate/internal/catalog/domain"
	"github.com/reelgate/reelgate/internal/config"
	"github.com/reelgate/reelgate/internal/ledger"
	ledgerdomain "github.com/reelgate/reelgate/internal/ledger/domain"
	"github.com/reelgate/reelgate/internal/metering"
	meteringdomain "github.com/reelgate/reelgate/internal/metering/domain"
	"github.com/reelgate/reelgate/internal/observability"
	obslogger "github.com/reelgate/reelgate/internal/observability/logger"
	obsmetrics "github.com/reelgate/reelgate/internal/observability/metrics"
	obstracing "github.com/reelgate/reelgate/internal/observability/tracing"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	account.Module,
	auth.Module,
	apikey.Module,
	ledger.Module,
	metering.Module,
	catalog.Module,
	billing.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	accountSvc  accountdomain.Service
	authSvc     authdomain.Service
	apiKeySvc   apikeydomain.Service
	ledgerSvc   ledgerdomain.Service
	meteringSvc meteringdomain.Service
	catalogSvc  catalogdomain.Service
	billingSvc  billingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	AccountSvc  accountdomain.Service
	AuthSvc     authdomain.Service
	APIKeySvc   apikeydomain.Service
	LedgerSvc   ledgerdomain.Service
	MeteringSvc meteringdomain.Service
	CatalogSvc  catalogdomain.Service
	BillingSvc  billingdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		accountSvc:  p.AccountSvc,
		authSvc:     p.AuthSvc,
		apiKeySvc:   p.APIKeySvc,
		ledgerSvc:   p.LedgerSvc,
		meteringSvc: p.MeteringSvc,
		catalogSvc:  p.CatalogSvc,
		billingSvc:  p.BillingSvc,
	}

	svc.registerAuthRoutes()
	svc.registerDashboardRoutes()
	svc.registerAPIRoutes()
	svc.registerBillingRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
}

func (s *Server) registerDashboardRoutes() {
	dashboard := s.engine.Group("/dashboard", s.AuthRequired())

	dashboard.GET("/profile", s.GetProfile)
	dashboard.PUT("/profile", s.UpdateProfile)
	dashboard.GET("/stats", s.GetStats)
	dashboard.POST("/change-password", s.ChangePassword)
	dashboard.POST("/link-telegram", s.LinkTelegram)

	dashboard.GET("/keys", s.ListAPIKeys)
	dashboard.POST("/keys", s.CreateAPIKey)
	dashboard.DELETE("/keys/:key_id", s.RevokeAPIKey)

	dashboard.GET("/transactions", s.ListTransactions)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/titles/:title_id", s.APIKeyRequired(), s.GetTitle)
}

func (s *Server) registerBillingRoutes() {
	billing := s.engine.Group("/billing")

	billing.POST("/webhook/:provider", s.HandlePaymentWebhook)
	billing.POST("/topup", s.AuthRequired(), s.CreateTopup)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AuthRequired(), s.RequireAdmin())

	admin.GET("/accounts", s.ListAccounts)
	admin.PUT("/accounts/:account_id", s.AdminUpdateAccount)
	admin.DELETE("/accounts/:account_id", s.AdminRemoveAccount)

	admin.GET("/titles", s.ListTitles)
	admin.POST("/titles", s.CreateTitle)
	admin.PUT("/titles/:title_id", s.UpdateTitle)
	admin.DELETE("/titles/:title_id", s.DeleteTitle)

	admin.POST("/keys/:key_id/status", s.SetAPIKeyStatus)
}
