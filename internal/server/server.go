package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/franckalain/foodrescue/internal/database"
	"github.com/franckalain/foodrescue/internal/ml"
	"github.com/franckalain/foodrescue/internal/realtime"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options tune the HTTP surface
type Options struct {
	Debug          bool
	StaticDir      string
	AllowedOrigins []string // empty allows any origin
}

type Server struct {
	db     database.DB
	model  ml.Model
	hub    *realtime.Hub
	logger *zap.Logger
	opts   Options
	router *gin.Engine
}

func New(db database.DB, model ml.Model, logger *zap.Logger, opts Options) *Server {
	if opts.Debug {
		logger.Debug("Debug logging enabled")
	} else if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		db:     db,
		model:  model,
		hub:    realtime.NewHub(logger),
		logger: logger,
		opts:   opts,
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub exposes the realtime hub
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), cors.New(s.corsConfig()))

	r.GET("/health", s.handleHealth)
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.POST("/food-submissions", s.handleCreateSubmission)
		api.GET("/food-submissions", s.handleRecentSubmissions)
		api.PATCH("/food-submissions/:id", s.handleUpdateSubmissionStatus)
		api.GET("/ngos", s.handleListNGOs)
		api.POST("/predict-demand", s.handlePredictDemand)
	}

	if s.opts.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	return r
}

func (s *Server) corsConfig() cors.Config {
	config := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.opts.AllowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = s.opts.AllowedOrigins
	}
	return config
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.opts.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Start serves on port until ctx is cancelled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func errorBody(message string) gin.H {
	return gin.H{"error": message}
}
