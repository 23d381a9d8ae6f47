package server

import (
	"context"
	"net/http"
	"time"

	"github.com/countrypulse/countrypulse/internal/config"
	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	"github.com/countrypulse/countrypulse/internal/observability"
	obsmiddleware "github.com/countrypulse/countrypulse/internal/observability/logger"
	obsmetrics "github.com/countrypulse/countrypulse/internal/observability/metrics"
	obstracing "github.com/countrypulse/countrypulse/internal/observability/tracing"
	refreshdomain "github.com/countrypulse/countrypulse/internal/refresh/domain"
	"github.com/countrypulse/countrypulse/internal/summary"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
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

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine     *gin.Engine
	cfg        config.Config
	countrySvc countrydomain.Service
	refreshSvc refreshdomain.Service
	generator  summary.Generator
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	CountrySvc countrydomain.Service
	RefreshSvc refreshdomain.Service
	Generator  summary.Generator
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		countrySvc: p.CountrySvc,
		refreshSvc: p.RefreshSvc,
		generator:  p.Generator,
	}

	svc.registerRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) registerRoutes() {
	s.engine.POST("/countries/refresh", s.RefreshCountries)
	s.engine.POST("/refresh", s.RefreshCountries)

	s.engine.GET("/countries", s.ListCountries)
	s.engine.GET("/countries/:name", s.GetCountryByName)
	s.engine.DELETE("/countries/:name", s.DeleteCountry)

	s.engine.GET("/status", s.GetStatus)
	s.engine.GET("/image", s.GetImage)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
