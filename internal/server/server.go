package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"malldash/internal/api"
	"malldash/internal/config"
	"malldash/internal/importer"
	"malldash/internal/service/ledger"
	"malldash/internal/store"
)

const (
	// devFrontend 开发模式下前端开发服务器地址
	devFrontend     = "http://localhost:5173"
	shutdownTimeout = 10 * time.Second
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
	logger zerolog.Logger
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, st *store.Store, logger zerolog.Logger) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	coordinator := importer.NewCoordinator(st,
		importer.WithHeaders(cfg.HeaderTable()),
		importer.WithCSVEncoding(cfg.Import.CSVEncoding),
		importer.WithLogger(logger.With().Str("component", "importer").Logger()),
	)
	handler := api.NewHandler(st, coordinator, ledger.New(st, nil), api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		DefaultSheet:   cfg.Import.DefaultSheet,
		Logger:         logger,
	})

	s := &Server{
		router: gin.New(),
		store:  st,
		api:    handler,
		logger: logger,
	}

	s.setupRoutes(devMode)

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(gin.Recovery(), requestLogger(s.logger))

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, devFrontend+c.Request.URL.Path)
		})
	} else {
		s.router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
	}
}

// requestLogger 请求日志
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := logger.Info()
		if status >= http.StatusInternalServerError {
			evt = logger.Error()
		} else if status >= http.StatusBadRequest {
			evt = logger.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve 启动服务器，ctx 结束后优雅关闭
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
