// Package http exposes the gateway, analytics and mirror over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"safisha/internal/auth"
	"safisha/internal/config"
	"safisha/internal/gateway"
	applog "safisha/internal/log"
	"safisha/internal/middleware/ratelimit"
	"safisha/internal/middleware/security"
	"safisha/internal/middleware/trace"
	"safisha/internal/services"
)

// Deps are the collaborators behind the routes. Sync and Ready may be nil.
type Deps struct {
	Gateway     *gateway.Gateway
	Sales       *services.SalesService
	Sync        *services.MirrorSync
	Diagnostics config.Diagnostics
	Ready       func(ctx context.Context) error
	JWTSecret   string
	RateLimit   ratelimit.Config
	Logger      *applog.Logger
}

type Server struct {
	http.Server

	deps     Deps
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = applog.New(applog.DefaultConfig())
	}

	detector := security.NewDetector()
	s := &Server{
		deps:     d,
		logger:   d.Logger.WithComponent(applog.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(d.RateLimit),
		tracer:   trace.NewMiddleware(d.Logger, detector.ClientIP),
		detector: detector,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = gateway.MaxPhotoBytes + 64<<10
	r.Use(
		gin.Recovery(),
		s.tracer.Handler(),
		s.detector.Middleware(s.deps.Logger),
		security.Headers(security.DefaultHeadersConfig()),
		s.limiter.Middleware(s.detector.ClientIP),
	)

	r.GET("/healthz", s.handleHealth)
	r.GET("/readyz", s.handleReady)

	api := r.Group("/api")
	api.GET("/diagnostics", s.handleDiagnostics)
	api.GET("/dashboard", s.handleDashboard)

	sales := api.Group("/sales")
	sales.GET("", s.handleListSales)
	sales.POST("", s.handleCreateSale)
	sales.PATCH("/:id", s.handleUpdateSale)
	sales.DELETE("/:id", s.handleDeleteSale)
	sales.POST("/:id/returned", s.handleMarkReturned)

	employees := api.Group("/employees")
	registerCRUD(s, employees, s.deps.Gateway.Employees.Repository)
	employees.POST("/:id/photo", s.handleUploadPhoto)

	registerCRUD(s, api.Group("/expenses"), s.deps.Gateway.Expenses)
	registerCRUD(s, api.Group("/notes"), s.deps.Gateway.Notes)
	registerCRUD(s, api.Group("/leads"), s.deps.Gateway.Leads)

	operator := auth.Middleware(s.deps.JWTSecret, s.deps.Logger, auth.KindAdmin)
	api.GET("/admin/overview", operator, s.handleAdminOverview)
	api.POST("/mirror/sync", operator, s.handleMirrorSync)

	return r
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "remote": s.deps.Gateway.RemoteActive()})
}

func (s *Server) handleDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"config":    s.deps.Diagnostics,
		"remote":    s.deps.Gateway.RemoteActive(),
		"requests":  s.tracer.GetMetrics(),
		"rateLimit": s.limiter.GetMetrics(),
		"security":  s.detector.GetMetrics(),
	})
}
