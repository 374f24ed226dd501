package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/billing/domain"
	"github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/config"
	customerdomain "github.com/sagarpandeyprofessional/next-version-keasy-sub003/internal/customer/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Start),
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	BillingSvc  billingdomain.Service
	CustomerSvc customerdomain.Service
}

type Server struct {
	cfg         config.Config
	log         *zap.Logger
	billingSvc  billingdomain.Service
	customerSvc customerdomain.Service
	engine      *gin.Engine
}

func NewServer(p Params) *Server {
	if p.Cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		billingSvc:  p.BillingSvc,
		customerSvc: p.CustomerSvc,
	}
	s.engine = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(s.customerMiddleware())
	{
		api.POST("/billing/checkout", s.BeginCheckout)
		api.POST("/billing/resume", s.ResumeAfterAuthorization)
		api.POST("/billing/confirm", s.ConfirmOneTimePayment)
		api.GET("/subscriptions", s.ListSubscriptions)
		api.GET("/subscriptions/:order_id", s.GetSubscription)
	}

	return r
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func Start(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
