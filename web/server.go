package web

import (
	"context"
	"net/http"
	"time"

	"scm-agent/config"
	"scm-agent/web/handlers"
	"scm-agent/web/middleware"
	"scm-agent/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router  *gin.Engine
	limiter *middleware.ClientRateLimiter
	logger  *zap.Logger
	config  *config.Config
}

func NewServer(chat *services.ChatService, data *services.DataService, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Set("logger", logger)
		c.Next()
	})

	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: cfg.RateLimitMessages,
		BurstSize:         cfg.RateLimitBurstSize,
		CleanupInterval:   10 * time.Minute,
	}, logger)

	server := &Server{
		router:  router,
		limiter: limiter,
		logger:  logger,
		config:  cfg,
	}

	server.setupRoutes(chat, data)
	return server
}

func (s *Server) setupRoutes(chat *services.ChatService, data *services.DataService) {
	chatHandler := handlers.NewChatHandler(chat, data, s.logger)

	s.router.GET("/healthz", chatHandler.Health)

	api := s.router.Group("/api")
	api.POST("/chat", middleware.RateLimitMiddleware(s.limiter), chatHandler.SendMessage)
	api.POST("/refresh", chatHandler.Refresh)
	api.GET("/history", chatHandler.History)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
