package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SandboxFS/internal/api"
	"github.com/GriffinCanCode/SandboxFS/internal/config"
	"github.com/GriffinCanCode/SandboxFS/internal/logging"
	"github.com/GriffinCanCode/SandboxFS/internal/monitoring"
	"github.com/GriffinCanCode/SandboxFS/internal/providers/filesystem"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// New creates a server exposing the filesystem provider.
func New(cfg *config.Config, guard *filesystem.Guard, logger *logging.Logger) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.NewMetrics()
	provider := filesystem.NewProvider(guard, cfg.Limits, logger)
	handlers := api.NewHandlers(provider, metrics, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(cors.Default())
	router.Use(monitoring.Middleware(metrics))

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Root)
	router.GET("/services", handlers.Services)
	router.POST("/services/execute", handlers.Execute)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server initialized",
		zap.String("addr", srv.Addr),
		zap.Strings("allowed_roots", guard.Roots()),
	)

	return &Server{router: router, http: srv, logger: logger, metrics: metrics}
}

// Run starts serving until the listener fails or Close is called.
func (s *Server) Run() error {
	s.logger.Info("server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// requestID attaches a unique ID to every request for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}
